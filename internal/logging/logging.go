// file: internal/logging/logging.go
// version: 1.0.0
// guid: 83a05fd6-df63-4e75-8cfa-1b9ea331955d

// Package logging configures the process-wide standard logger. Messages use
// bracketed level tags such as [INFO] and [ERROR]; [DEBUG] lines are only
// written when debug mode is on.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
)

var debugEnabled atomic.Bool

// SetDebug toggles [DEBUG] output.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether [DEBUG] output is on.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Debugf logs a [DEBUG] line when debug mode is on.
func Debugf(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	log.Printf("[DEBUG] "+format, args...)
}

// Setup sends log output to stderr and, when logFile is set, appends it to
// that file as well. The returned closer releases the file.
func Setup(logFile string, debug bool) (io.Closer, error) {
	SetDebug(debug)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if logFile == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
	}

	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
