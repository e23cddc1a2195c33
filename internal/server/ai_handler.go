// file: internal/server/ai_handler.go
// version: 1.1.0
// guid: 4ca05e7f-9581-4a16-ad2d-124fcee54413

package server

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/portal-server/internal/resolver"
)

const htmlContentType = "text/html; charset=utf-8"

var errAIPageNotFound = &NotFoundError{Message: "AI simulation page not found"}

// AIHandler answers the AI simulation placeholder routes.
type AIHandler struct {
	root       string
	prefixes   []string
	candidates []string
	resolver   *resolver.Resolver
}

// NewAIHandler creates a handler for requests under any of prefixes. Pages
// are looked up first at the requested path and then at each candidate name.
func NewAIHandler(res *resolver.Resolver, prefixes, candidates []string) *AIHandler {
	lowered := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		lowered = append(lowered, strings.ToLower(p))
	}
	return &AIHandler{
		root:       res.Root(),
		prefixes:   lowered,
		candidates: candidates,
		resolver:   res,
	}
}

// Matches reports whether path falls under an AI prefix, ignoring case.
func (h *AIHandler) Matches(urlPath string) bool {
	lower := strings.ToLower(urlPath)
	for _, p := range h.prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// isPlaceholderAPI reports whether an AI path asks for the JSON stub rather
// than a page.
func isPlaceholderAPI(urlPath string) bool {
	lower := strings.ToLower(urlPath)
	return strings.HasPrefix(lower, "/api/ai") || strings.HasSuffix(lower, "/simulate")
}

// Serve handles GET and HEAD for a path Matches accepted.
func (h *AIHandler) Serve(c *gin.Context) {
	requested := c.Request.URL.Path

	if isPlaceholderAPI(requested) {
		c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "AI simulation API placeholder"})
		return
	}

	own, err := safeJoin(h.root, requested)
	if err != nil {
		_ = c.Error(err)
		return
	}

	for _, name := range append([]string{""}, h.candidates...) {
		target := own
		if name != "" {
			if target, err = safeJoin(h.root, name); err != nil {
				continue
			}
		}
		if isRegularFile(target) {
			if err := serveFile(c, target, htmlContentType); err != nil {
				h.fail(c, err)
			}
			return
		}
	}

	// Only file-shaped requests fall back to fuzzy matching; a bare /ai would
	// otherwise match any name containing "ai".
	if path.Ext(requested) != "" {
		if match, ok := h.resolver.Resolve(requested); ok {
			if err := serveFile(c, match, contentTypeFor(match)); err != nil {
				h.fail(c, err)
			}
			return
		}
	}

	_ = c.Error(errAIPageNotFound)
}

func (h *AIHandler) fail(c *gin.Context, err error) {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		err = errAIPageNotFound
	}
	_ = c.Error(err)
}
