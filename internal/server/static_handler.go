// file: internal/server/static_handler.go
// version: 1.1.0
// guid: db4ece0e-8103-43b8-8c89-c30032e543ec

package server

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/portal-server/internal/resolver"
)

const defaultContentType = "application/octet-stream"

// StaticHandler serves files from the root, falling back to the fuzzy
// resolver when the requested file does not exist.
type StaticHandler struct {
	root             string
	defaultDocument  string
	suggestionsLimit int
	resolver         *resolver.Resolver
}

// NewStaticHandler creates a handler serving res.Root().
func NewStaticHandler(res *resolver.Resolver, defaultDocument string, suggestionsLimit int) *StaticHandler {
	if defaultDocument == "" {
		defaultDocument = "index.html"
	}
	return &StaticHandler{
		root:             res.Root(),
		defaultDocument:  defaultDocument,
		suggestionsLimit: suggestionsLimit,
		resolver:         res,
	}
}

// Serve handles GET and HEAD for any path no API route claimed.
func (h *StaticHandler) Serve(c *gin.Context) {
	requested := c.Request.URL.Path
	if requested == "" || requested == "/" {
		requested = "/" + h.defaultDocument
	}

	target, err := safeJoin(h.root, requested)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
		index := filepath.Join(target, h.defaultDocument)
		if isRegularFile(index) {
			target = index
		}
	}

	if isRegularFile(target) {
		if err := serveFile(c, target, contentTypeFor(target)); err != nil {
			h.fail(c, requested, err)
		}
		return
	}

	if match, ok := h.resolver.Resolve(requested); ok {
		if err := serveFile(c, match, contentTypeFor(match)); err != nil {
			h.fail(c, requested, err)
		}
		return
	}

	h.notFound(c, requested)
}

// fail reports err, turning a file that vanished mid-request into the usual
// not-found response.
func (h *StaticHandler) fail(c *gin.Context, requested string, err error) {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		h.notFound(c, requested)
		return
	}
	_ = c.Error(err)
}

func (h *StaticHandler) notFound(c *gin.Context, requested string) {
	_ = c.Error(&NotFoundError{
		Message: "File not found",
		Body: FileNotFoundResponse{
			Message:     "File not found",
			Requested:   requested,
			CurrentDir:  h.root,
			Suggestions: h.resolver.Suggest(requested, h.suggestionsLimit),
		},
	})
}

// safeJoin maps a URL path onto root. Paths whose cleaned form lands outside
// root yield a *ForbiddenError.
func safeJoin(root, requestPath string) (string, error) {
	rel := strings.TrimLeft(requestPath, "/")
	target := filepath.Join(root, filepath.FromSlash(rel))

	back, err := filepath.Rel(root, target)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", &ForbiddenError{Path: requestPath}
	}
	return target, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// contentTypeFor guesses the media type from the file extension.
func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return defaultContentType
}

// serveFile streams path with an explicit Content-Type. Range and
// conditional requests are honored; HEAD gets headers only.
func serveFile(c *gin.Context, path, contentType string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &NotFoundError{Message: "File not found"}
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return nil
}
