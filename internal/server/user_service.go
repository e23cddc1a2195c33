// file: internal/server/user_service.go
// version: 1.0.0
// guid: 76ee7971-668d-4259-aed6-c5fb9d3240f9

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jdfalk/portal-server/internal/database"
	"github.com/jdfalk/portal-server/internal/metrics"
	"github.com/jdfalk/portal-server/internal/server/middleware"
)

// UserRequest is the body accepted by the registration and login endpoints.
// Only Email is required.
type UserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// toUser fills in the derived fields: username falls back to full_name and
// then name, and full_name falls back to the resolved username.
func (r UserRequest) toUser(email string) database.User {
	username := firstNonEmpty(r.Username, r.FullName, r.Name)
	return database.User{
		Username: username,
		Email:    email,
		Password: r.Password,
		FullName: firstNonEmpty(r.FullName, username),
		Phone:    r.Phone,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// UserService implements the get-or-create registry on top of a Store.
type UserService struct {
	store database.Store
}

// NewUserService creates a new user service
func NewUserService(store database.Store) *UserService {
	return &UserService{store: store}
}

// GetOrCreate returns the user owning req.Email, inserting it first when no
// such user exists. created reports whether this call inserted the row.
// Concurrent calls for one email all return the same user.
func (svc *UserService) GetOrCreate(ctx context.Context, req UserRequest) (user *database.User, created bool, err error) {
	email, err := ValidateEmail(req.Email)
	if err != nil {
		return nil, false, err
	}
	sl := NewServiceLogger("UserService", middleware.GetRequestID(ctx))

	existing, err := svc.lookup(email)
	if err != nil {
		sl.LogError("GetOrCreate", err)
		return nil, false, err
	}
	if existing != nil {
		sl.LogDebug("GetOrCreate", "found existing user "+email)
		return existing, false, nil
	}

	candidate := req.toUser(email)
	start := time.Now()
	inserted, err := svc.store.CreateUser(&candidate)
	LogDatabaseOperation("insert", "users", time.Since(start), rowsFor(inserted), err)

	switch {
	case errors.Is(err, database.ErrDuplicateEmail):
		// Lost a race with another request for the same email.
		metrics.IncUserConflicts()
		sl.LogDebug("GetOrCreate", "concurrent insert for "+email+", re-reading")
		existing, err = svc.lookup(email)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("user %s missing after duplicate insert", email)
		}
		return existing, false, nil
	case err != nil:
		sl.LogError("GetOrCreate", err)
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.IncUsersCreated()
	sl.LogOperation("GetOrCreate", map[string]any{"id": inserted.ID, "email": email})
	return inserted, true, nil
}

func (svc *UserService) lookup(email string) (*database.User, error) {
	start := time.Now()
	user, err := svc.store.GetUserByEmail(email)
	LogDatabaseOperation("select", "users", time.Since(start), rowsFor(user), err)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// List returns every user, newest first, and refreshes the users gauge.
func (svc *UserService) List(ctx context.Context) ([]database.User, error) {
	start := time.Now()
	users, err := svc.store.ListUsers()
	LogDatabaseOperation("list", "users", time.Since(start), len(users), err)
	if err != nil {
		NewServiceLogger("UserService", middleware.GetRequestID(ctx)).LogError("List", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	metrics.SetUsers(len(users))
	return users, nil
}

// Count returns the number of registered users.
func (svc *UserService) Count() (int, error) {
	n, err := svc.store.CountUsers()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	metrics.SetUsers(n)
	return n, nil
}

func rowsFor(user *database.User) int {
	if user == nil {
		return 0
	}
	return 1
}
