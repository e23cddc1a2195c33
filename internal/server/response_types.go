// file: internal/server/response_types.go
// version: 2.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

import (
	"net/http"

	"github.com/jdfalk/portal-server/internal/database"
)

// MessageResponse is the minimal JSON envelope used by the API.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserResponse is returned by the create and login endpoints.
type UserResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    *database.User `json:"user"`
}

// UsersListResponse is returned by GET /api/users.
type UsersListResponse struct {
	Success bool            `json:"success"`
	Users   []database.User `json:"users"`
}

// FileNotFoundResponse explains a static 404. Suggestions lists nearby files
// when any scored.
type FileNotFoundResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Requested   string   `json:"requested"`
	CurrentDir  string   `json:"current_dir"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Users   int    `json:"users"`
	Root    string `json:"root"`
	Error   string `json:"error,omitempty"`
}

// NewUserResponse picks the status code and message for a get-or-create
// outcome. Login always answers 200; registration answers 201 only when a
// row was inserted.
func NewUserResponse(user *database.User, created, login bool) (int, UserResponse) {
	resp := UserResponse{Success: true, User: user}
	switch {
	case login:
		resp.Message = "Login successful"
		return http.StatusOK, resp
	case created:
		resp.Message = "User created"
		return http.StatusCreated, resp
	default:
		resp.Message = "User already exists"
		return http.StatusOK, resp
	}
}

// NewUsersListResponse wraps users, never encoding a null list.
func NewUsersListResponse(users []database.User) UsersListResponse {
	if users == nil {
		users = []database.User{}
	}
	return UsersListResponse{Success: true, Users: users}
}
