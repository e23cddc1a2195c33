// file: internal/server/error_handler.go
// version: 2.0.0
// guid: 5d6e7f8a-9b0c-1d2e-3f4a-5b6c7d8e9f0a

package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/portal-server/internal/server/middleware"
)

// ErrorResponse provides a consistent error response format. Detail and
// Traceback are only filled in debug mode.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	Traceback string `json:"traceback,omitempty"`
}

// BadRequestError marks a request whose body could not be understood.
type BadRequestError struct {
	Message string
	Err     error
}

func (e *BadRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BadRequestError) Unwrap() error { return e.Err }

// NotFoundError marks a missing resource. When Body is set it is sent as the
// response instead of the plain message envelope.
type NotFoundError struct {
	Message string
	Body    any
}

func (e *NotFoundError) Error() string { return e.Message }

// ForbiddenError marks a request path that resolves outside the serving root.
type ForbiddenError struct {
	Path string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("path %q escapes the serving root", e.Path)
}

// RespondWithError sends a standardized error response and logs the error
func RespondWithError(c *gin.Context, statusCode int, message string) {
	logErrorWithContext(c, statusCode, message)
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Message: message})
}

// RespondWithBadRequest sends a 400 Bad Request error response
func RespondWithBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, message)
}

// RespondWithValidationError sends a 400 error for validation failures
func RespondWithValidationError(c *gin.Context, ve ValidationError) {
	LogValidationError(c.FullPath(), ve.Field, ve.Message, middleware.GetRequestID(c))
	RespondWithError(c, http.StatusBadRequest, ve.Message)
}

// RespondWithNotFound sends a 404 Not Found error response
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, message)
}

// RespondWithForbidden sends a 403 Forbidden error response
func RespondWithForbidden(c *gin.Context) {
	RespondWithError(c, http.StatusForbidden, "Forbidden")
}

// RespondWithInternalError sends a 500 Internal Server Error response. The
// client only sees err and traceback when expose is set.
func RespondWithInternalError(c *gin.Context, err error, traceback string, expose bool) {
	logErrorWithContext(c, http.StatusInternalServerError, fmt.Sprint(err))
	resp := ErrorResponse{Message: "Internal Server Error"}
	if expose {
		if err != nil {
			resp.Detail = err.Error()
		}
		resp.Traceback = traceback
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
}

// logErrorWithContext logs an error with request context for debugging
func logErrorWithContext(c *gin.Context, statusCode int, message string) {
	logLevel := "WARN"
	if statusCode >= 500 {
		logLevel = "ERROR"
	}
	log.Printf("[%s] %s %s %d - %s (from %s) [request-id: %s]",
		logLevel, c.Request.Method, c.Request.URL.Path, statusCode, message,
		c.ClientIP(), middleware.GetRequestID(c))
}

// respondWithAppError maps an error raised by a handler onto its response.
func respondWithAppError(c *gin.Context, err error, expose bool) {
	var (
		validation ValidationError
		badRequest *BadRequestError
		notFound   *NotFoundError
		forbidden  *ForbiddenError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validation):
		RespondWithValidationError(c, validation)
	case errors.As(err, &badRequest):
		RespondWithBadRequest(c, badRequest.Message)
	case errors.As(err, &tooLarge):
		RespondWithError(c, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.As(err, &notFound):
		if notFound.Body == nil {
			RespondWithNotFound(c, notFound.Message)
			return
		}
		logErrorWithContext(c, http.StatusNotFound, notFound.Message)
		c.AbortWithStatusJSON(http.StatusNotFound, notFound.Body)
	case errors.As(err, &forbidden):
		RespondWithForbidden(c)
	default:
		RespondWithInternalError(c, err, "", expose)
	}
}

// errorBoundary turns the last error a handler attached with c.Error into a
// JSON response, unless the handler already wrote one.
func errorBoundary(expose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		respondWithAppError(c, c.Errors.Last().Err, expose)
	}
}

// recoveryHandler converts panics into the same 500 envelope as any other
// internal error.
func recoveryHandler(expose bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		RespondWithInternalError(c, fmt.Errorf("panic: %v", recovered), string(debug.Stack()), expose)
	})
}
