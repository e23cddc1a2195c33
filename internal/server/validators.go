// file: internal/server/validators.go
// version: 2.0.0
// guid: 9b0c1d2e-3f4a-5b6c-7d8e-9f0a1b2c3d4e

package server

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with code
type ValidationError struct {
	Field   string
	Message string
	Code    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func missingField(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: "Missing required field: " + field,
		Code:    strings.ToUpper(field) + "_REQUIRED",
	}
}

// NormalizeEmail trims and lowercases an address. Emails are compared in this
// form everywhere, so "Alice@Example.com " and "alice@example.com" are one user.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail normalizes email and rejects it when nothing is left.
func ValidateEmail(email string) (string, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return "", missingField("email")
	}
	return normalized, nil
}
