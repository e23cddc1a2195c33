// file: internal/server/server_test.go
// version: 2.1.0
// guid: b962df9b-b772-442d-87b0-f1882d7f1936

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jdfalk/portal-server/internal/config"
	"github.com/jdfalk/portal-server/internal/resolver"
	"github.com/jdfalk/portal-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer serves a fresh root populated with files, backed by a
// SQLite store in a separate temp dir.
func setupTestServer(t *testing.T, files map[string]string, mutate ...func(*config.Config)) (*Server, string) {
	t.Helper()

	env := testutil.SetupIntegration(t, "sqlite")
	env.WriteTree(files)

	cfg := env.Config
	for _, m := range mutate {
		m(&cfg)
	}

	res, err := resolver.New(cfg.RootDir, resolver.Options{Exclude: cfg.ExcludePatterns, CacheTTL: cfg.ResolveCacheTTL})
	require.NoError(t, err)

	return NewServer(Dependencies{Store: env.Store, Resolver: res, Config: cfg}), env.RootDir
}

func doRequest(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestStaticExactFile(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{
		"index.html":     "<h1>home</h1>",
		"css/site.css":   "body{}",
		"data/blob.qqzx": "raw",
	})

	w := doRequest(s, http.MethodGet, "/css/site.css", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{}", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")

	w = doRequest(s, http.MethodGet, "/data/blob.qqzx", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
}

func TestStaticRootServesDefaultDocument(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{
		"index.html":      "<h1>home</h1>",
		"docs/index.html": "<h1>docs</h1>",
	})

	w := doRequest(s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>home</h1>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = doRequest(s, http.MethodGet, "/docs/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>docs</h1>", w.Body.String())
}

func TestStaticHeadHasNoBody(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{"index.html": "<h1>home</h1>"})

	w := doRequest(s, http.MethodHead, "/index.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "13", w.Header().Get("Content-Length"))
}

func TestStaticFuzzyFallback(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{
		"index.html":            "home",
		"pages/contact-us.html": "contact",
	})

	w := doRequest(s, http.MethodGet, "/Contact_Us.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "contact", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestStaticFuzzyMatchRemovedWhileCached(t *testing.T) {
	s, root := setupTestServer(t, map[string]string{"report.html": "old"}, func(c *config.Config) {
		c.ResolveCacheTTL = 30 * time.Second
	})

	w := doRequest(s, http.MethodGet, "/report.htm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "old", w.Body.String())

	require.NoError(t, os.Remove(filepath.Join(root, "report.html")))

	w = doRequest(s, http.MethodGet, "/report.htm", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, "File not found", body["message"])
	assert.Equal(t, "/report.htm", body["requested"])
}

func TestStaticFileRemovedBeforeOpen(t *testing.T) {
	gone := filepath.Join(t.TempDir(), "gone.html")
	err := serveFile(nil, gone, htmlContentType)

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAISimulateResolvesToDemoPage(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{
		"ai-simulation-demo.html": "<p>demo</p>",
	})

	w := doRequest(s, http.MethodGet, "/ai-simulate.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>demo</p>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestStaticNotFound(t *testing.T) {
	s, root := setupTestServer(t, map[string]string{"index.html": "home"})

	w := doRequest(s, http.MethodGet, "/nothing.xyz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := decodeJSON(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "File not found", body["message"])
	assert.Equal(t, "/nothing.xyz", body["requested"])
	assert.Equal(t, root, body["current_dir"])
	assert.NotContains(t, body, "suggestions")
}

func TestStaticNotFoundSuggestions(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{"reports/report-2023.pdf": "%PDF"})

	w := doRequest(s, http.MethodGet, "/reprt.doc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := decodeJSON(t, w)
	assert.Equal(t, []any{"reports/report-2023.pdf"}, body["suggestions"])
}

func TestPathTraversalForbidden(t *testing.T) {
	s, root := setupTestServer(t, map[string]string{"index.html": "home"})
	testutil.WriteFile(t, filepath.Dir(root), "secret.txt", "top secret")

	for _, target := range []string{"/../secret.txt", "/css/../../secret.txt", "/ai/../../secret.txt"} {
		t.Run(target, func(t *testing.T) {
			w := doRequest(s, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"Forbidden"}`, w.Body.String())
			assert.NotContains(t, w.Body.String(), "top secret")
		})
	}
}

func TestSafeJoin(t *testing.T) {
	root := filepath.FromSlash("/srv/site")

	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/index.html", filepath.Join(root, "index.html"), false},
		{"//css//a.css", filepath.Join(root, "css", "a.css"), false},
		{"/a/../b.html", filepath.Join(root, "b.html"), false},
		{"/..foo.html", filepath.Join(root, "..foo.html"), false},
		{"/..", "", true},
		{"/../site2/x", "", true},
	}
	for _, tt := range tests {
		got, err := safeJoin(root, tt.path)
		if tt.wantErr {
			var fe *ForbiddenError
			assert.ErrorAs(t, err, &fe, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestOptionsPreflight(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	for _, target := range []string{"/api/users", "/anything.html"} {
		w := doRequest(s, http.MethodOptions, target, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestAIPlaceholderAPI(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	for _, target := range []string{"/api/ai", "/api/ai/chat", "/ai-simulation/simulate", "/AI/Simulate"} {
		w := doRequest(s, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.JSONEq(t, `{"success":true,"message":"AI simulation API placeholder"}`, w.Body.String(), target)
	}
}

func TestAIPageCandidates(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{
		"ai_simulation.html": "<p>candidate</p>",
		"ai/index.txt":       "own",
	})

	w := doRequest(s, http.MethodGet, "/ai-simulation", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>candidate</p>", w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	// The requested path wins over the candidate list.
	w = doRequest(s, http.MethodGet, "/ai/index.txt", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "own", w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	w = doRequest(s, http.MethodGet, "/SIMULATE.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>candidate</p>", w.Body.String())
}

func TestAIPageNotFound(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{"main.js": "console.log(1)"})

	w := doRequest(s, http.MethodGet, "/ai", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"AI simulation page not found"}`, w.Body.String())
}

func TestUnknownPost(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{"index.html": "home"})

	for _, target := range []string{"/index.html", "/api/unknown", "/ai"} {
		w := doRequest(s, http.MethodPost, target, []byte(`{}`))
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.JSONEq(t, `{"success":false,"message":"Not found"}`, w.Body.String(), target)
	}
}

func TestCreateUserThenExisting(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/api/users", []byte(`{"email":" Alice@Example.com ","username":"alice","password":"hunter2"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "hunter2")

	body := decodeJSON(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User created", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice", user["full_name"])
	assert.Equal(t, "", user["phone"])
	firstID := user["id"]

	w = doRequest(s, http.MethodPost, "/api/users", []byte(`{"email":"alice@example.com","username":"other"}`))
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeJSON(t, w)
	assert.Equal(t, "User already exists", body["message"])
	user = body["user"].(map[string]any)
	assert.Equal(t, firstID, user["id"])
	assert.Equal(t, "alice", user["username"])
}

func TestCreateUserMissingEmail(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	for _, payload := range [][]byte{[]byte(`{}`), []byte(`{"email":"   "}`), []byte(``), []byte(`null`)} {
		w := doRequest(s, http.MethodPost, "/api/users", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code, string(payload))
		assert.JSONEq(t, `{"success":false,"message":"Missing required field: email"}`, w.Body.String())
	}
}

func TestCreateUserInvalidJSON(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	for _, payload := range []string{`not json`, `{"email":`, `{"email":{"a":1}}`, `{"email":"a@b.c","phone":[1]}`, `[1,2]`} {
		w := doRequest(s, http.MethodPost, "/api/users", []byte(payload))
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
		assert.JSONEq(t, `{"success":false,"message":"Invalid JSON"}`, w.Body.String(), payload)
	}
}

func TestCreateUserScalarFieldsKeptAsText(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/api/users",
		[]byte(`{"email":"num@example.com","phone":5551234,"username":null,"name":true}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user := decodeJSON(t, w)["user"].(map[string]any)
	assert.Equal(t, "5551234", user["phone"])
	assert.Equal(t, "true", user["username"])
	assert.Equal(t, "true", user["full_name"])
}

func TestCreateUserBodyTooLarge(t *testing.T) {
	s, _ := setupTestServer(t, nil, func(c *config.Config) { c.MaxBodyBytes = 32 })

	payload := []byte(`{"email":"` + strings.Repeat("a", 64) + `@example.com"}`)
	w := doRequest(s, http.MethodPost, "/api/users", payload)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestLoginAndList(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"users":[]}`, w.Body.String())

	w = doRequest(s, http.MethodPost, "/api/login", []byte(`{"email":"bob@example.com","full_name":"Bob Builder"}`))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, "Login successful", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Bob Builder", user["username"])
	assert.Equal(t, "Bob Builder", user["full_name"])

	w = doRequest(s, http.MethodPost, "/api/login", []byte(`{"email":"BOB@example.com"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", decodeJSON(t, w)["message"])

	doRequest(s, http.MethodPost, "/api/users", []byte(`{"email":"carol@example.com","name":"carol"}`))

	w = doRequest(s, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeJSON(t, w)
	users := body["users"].([]any)
	require.Len(t, users, 2)
	assert.Equal(t, "carol@example.com", users[0].(map[string]any)["email"])
	assert.Equal(t, "bob@example.com", users[1].(map[string]any)["email"])
	assert.NotContains(t, users[0].(map[string]any), "password")
}

func TestConcurrentGetOrCreateSameEmail(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	const workers = 16
	ids := make([]any, workers)
	codes := make([]int, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := doRequest(s, http.MethodPost, "/api/login", []byte(`{"email":"race@example.com"}`))
			codes[i] = w.Code
			var body map[string]any
			if json.Unmarshal(w.Body.Bytes(), &body) == nil {
				if user, ok := body["user"].(map[string]any); ok {
					ids[i] = user["id"]
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		assert.Equal(t, http.StatusOK, codes[i])
		assert.Equal(t, ids[0], ids[i])
	}

	w := doRequest(s, http.MethodGet, "/api/users", nil)
	assert.Len(t, decodeJSON(t, w)["users"], 1)
}

func TestHealthAndMetrics(t *testing.T) {
	s, root := setupTestServer(t, nil)
	doRequest(s, http.MethodPost, "/api/users", []byte(`{"email":"h@example.com"}`))

	w := doRequest(s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["users"])
	assert.Equal(t, root, body["root"])

	w = doRequest(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal_server_http_requests_total")
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/api/users", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{"index.html": "home"}, func(c *config.Config) {
		c.RateLimitPerMinute = 1
		c.RateLimitBurst = 1
	})

	assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/api/users", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(s, http.MethodGet, "/api/users", nil).Code)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/index.html", nil).Code)
	}
}

func TestAPINotRateLimitedByDefault(t *testing.T) {
	s, _ := setupTestServer(t, map[string]string{"index.html": "home"})

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/api/users", nil).Code)
	}
}

func TestServerConfigFrom(t *testing.T) {
	sc := ServerConfigFrom(config.Config{Port: "9001"})
	assert.Equal(t, "9001", sc.Port)
	assert.Equal(t, "localhost", sc.Host)
	assert.Equal(t, GetDefaultServerConfig().ReadTimeout, sc.ReadTimeout)
}
