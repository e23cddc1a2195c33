// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/portal-server/internal/logging"
	"github.com/jdfalk/portal-server/internal/server/middleware"
)

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler    string
	method     string
	path       string
	startTime  time.Time
	requestID  string
	resourceID string
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(handler, method, path, requestID string) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    method,
		path:      path,
		startTime: time.Now(),
		requestID: requestID,
	}
}

// operationLogger builds an OperationLogger from the request in c.
func operationLogger(c *gin.Context, handler string) *OperationLogger {
	return NewOperationLogger(handler, c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
}

// SetResourceID sets the resource ID being operated on
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	msg := fmt.Sprintf("%s %s %s (%d) in %v",
		ol.handler, ol.method, ol.path, statusCode, time.Since(ol.startTime))
	if ol.resourceID != "" {
		msg = fmt.Sprintf("%s (resource: %s)", msg, ol.resourceID)
	}
	log.Printf("[INFO] %s [request-id: %s]", msg, ol.requestID)
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(err error) {
	msg := fmt.Sprintf("%s %s %s failed in %v: %v",
		ol.handler, ol.method, ol.path, time.Since(ol.startTime), err)
	if ol.resourceID != "" {
		msg = fmt.Sprintf("%s (resource: %s)", msg, ol.resourceID)
	}
	log.Printf("[ERROR] %s [request-id: %s]", msg, ol.requestID)
}

// LogDebug logs a debug message
func (ol *OperationLogger) LogDebug(message string) {
	logging.Debugf("%s: %s [request-id: %s]", ol.handler, message, ol.requestID)
}

// ServiceLogger provides logging for service layer operations
type ServiceLogger struct {
	serviceName string
	requestID   string
}

// NewServiceLogger creates a new service logger
func NewServiceLogger(serviceName, requestID string) *ServiceLogger {
	return &ServiceLogger{
		serviceName: serviceName,
		requestID:   requestID,
	}
}

// LogOperation logs the execution of a service operation
func (sl *ServiceLogger) LogOperation(operation string, details map[string]any) {
	detailStr := ""
	if len(details) > 0 {
		detailStr = fmt.Sprintf(" %v", details)
	}
	log.Printf("[INFO] %s.%s%s [request-id: %s]",
		sl.serviceName, operation, detailStr, sl.requestID)
}

// LogError logs an error from the service
func (sl *ServiceLogger) LogError(operation string, err error) {
	log.Printf("[ERROR] %s.%s: %v [request-id: %s]",
		sl.serviceName, operation, err, sl.requestID)
}

// LogDebug logs a debug message from the service
func (sl *ServiceLogger) LogDebug(operation string, message string) {
	logging.Debugf("%s.%s: %s [request-id: %s]",
		sl.serviceName, operation, message, sl.requestID)
}

// RequestLogger provides request-level logging
type RequestLogger struct {
	requestID string
	clientIP  string
	userAgent string
	method    string
	path      string
	startTime time.Time
}

// NewRequestLogger creates a new request logger
func NewRequestLogger(requestID, clientIP, userAgent, method, path string) *RequestLogger {
	return &RequestLogger{
		requestID: requestID,
		clientIP:  clientIP,
		userAgent: userAgent,
		method:    method,
		path:      path,
		startTime: time.Now(),
	}
}

// LogRequest logs the received request
func (rl *RequestLogger) LogRequest() {
	logging.Debugf("%s %s from %s [request-id: %s] [agent: %s]",
		rl.method, rl.path, rl.clientIP, rl.requestID, rl.userAgent)
}

// LogResponse logs the response sent
func (rl *RequestLogger) LogResponse(statusCode int, responseSize int) {
	if responseSize < 0 {
		responseSize = 0
	}
	log.Printf("[INFO] %s - %s %s -> %d (%d bytes) in %v [request-id: %s]",
		rl.clientIP, rl.method, rl.path, statusCode, responseSize,
		time.Since(rl.startTime), rl.requestID)
}

// requestLogging writes one access log line per request.
func requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		rl := NewRequestLogger(middleware.GetRequestID(c), c.ClientIP(),
			c.Request.UserAgent(), c.Request.Method, c.Request.URL.Path)
		rl.LogRequest()
		c.Next()
		rl.LogResponse(c.Writer.Status(), c.Writer.Size())
	}
}

// LogDatabaseOperation logs a database operation with its performance
func LogDatabaseOperation(operation string, table string, duration time.Duration, rowsAffected int, err error) {
	if err != nil {
		log.Printf("[ERROR] %s on %s failed in %v: %v", operation, table, duration, err)
		return
	}
	logging.Debugf("%s on %s completed in %v (%d rows)", operation, table, duration, rowsAffected)
}

// LogValidationError logs a validation error with context
func LogValidationError(handler string, field string, reason string, requestID string) {
	log.Printf("[WARN] validation failed in %s, field %q: %s [request-id: %s]",
		handler, field, reason, requestID)
}
