// file: internal/server/middleware/metrics.go
// version: 1.1.0
// guid: da307765-90ec-4814-852d-c6c77c8cb2e9

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/portal-server/internal/metrics"
)

// unmatchedRoute labels requests served by the NoRoute chain so static paths
// do not explode label cardinality.
const unmatchedRoute = "static"

// otherMethod labels any method outside the standard set.
const otherMethod = "other"

var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodConnect: true,
	http.MethodTrace:   true,
}

func methodLabel(method string) string {
	if knownMethods[method] {
		return method
	}
	return otherMethod
}

// Metrics records request counts and latency per registered route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.IncHTTPRequest(methodLabel(c.Request.Method), route, strconv.Itoa(c.Writer.Status()))
		metrics.ObserveHTTPDuration(route, time.Since(start))
	}
}
