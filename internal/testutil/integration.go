// file: internal/testutil/integration.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/portal-server/internal/config"
	"github.com/jdfalk/portal-server/internal/database"
	"github.com/stretchr/testify/require"
)

// IntegrationEnv holds all resources for an integration test.
type IntegrationEnv struct {
	Store   database.Store
	Config  config.Config
	RootDir string
	DBPath  string
	TempDir string
	T       *testing.T
}

// SetupIntegration creates a serving root and a real store of the given type
// in separate temp directories. The store is closed when the test ends.
func SetupIntegration(t *testing.T, dbType string) *IntegrationEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	tmpBase := t.TempDir()
	rootDir := filepath.Join(tmpBase, "site")
	dbPath := filepath.Join(tmpBase, "data", "users.db")
	require.NoError(t, os.MkdirAll(rootDir, 0o755))

	store, err := database.NewStore(dbType, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &IntegrationEnv{
		Store: store,
		Config: config.Config{
			RootDir:          rootDir,
			DatabasePath:     dbPath,
			DatabaseType:     dbType,
			Host:             "127.0.0.1",
			Port:             "0",
			DefaultDocument:  "index.html",
			AICandidates:     config.DefaultAICandidates,
			AIPrefixes:       config.DefaultAIPrefixes,
			SuggestionsLimit: 5,
			MaxBodyBytes:     1 << 20,
		},
		RootDir: rootDir,
		DBPath:  dbPath,
		TempDir: tmpBase,
		T:       t,
	}
}

// WriteFile creates rel (slash separated) under the serving root and returns
// its absolute path.
func (env *IntegrationEnv) WriteFile(rel, content string) string {
	env.T.Helper()
	return WriteFile(env.T, env.RootDir, rel, content)
}

// WriteTree creates every file in files under the serving root.
func (env *IntegrationEnv) WriteTree(files map[string]string) {
	env.T.Helper()
	for rel, content := range files {
		WriteFile(env.T, env.RootDir, rel, content)
	}
}

// WriteFile creates rel (slash separated) under dir, making parents as needed.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// FindRepoRoot walks up from CWD to find go.mod.
func FindRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find repo root (go.mod)")
		}
		dir = parent
	}
}
