// file: internal/database/store.go
// version: 2.0.0
// guid: 9c50867d-6d81-4491-aeac-2d9c6d66330b

package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrDuplicateEmail is returned by CreateUser when another row already owns
// the email. Callers treat it as "someone else just created it" and re-read.
var ErrDuplicateEmail = errors.New("user with this email already exists")

// User is a registered account. Password is stored exactly as supplied and
// is never serialized to clients.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence contract for the user registry.
type Store interface {
	Close() error

	// CreateUser inserts a new user and returns the stored row, including the
	// id and creation time assigned by the store. It returns
	// ErrDuplicateEmail when the email is taken.
	CreateUser(user *User) (*User, error)
	// GetUserByEmail returns nil, nil when no user has the email.
	GetUserByEmail(email string) (*User, error)
	// GetUserByID returns nil, nil when the id is unknown.
	GetUserByID(id int64) (*User, error)
	// ListUsers returns every user, newest first.
	ListUsers() ([]User, error)
	CountUsers() (int, error)
}

// NewStore opens the store backend named by dbType at path, creating the
// parent directory when needed.
func NewStore(dbType, path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	switch dbType {
	case "sqlite", "sqlite3", "":
		store, err := NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		return store, nil
	case "pebble":
		store, err := NewPebbleStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PebbleDB store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s (supported: sqlite, pebble)", dbType)
	}
}
