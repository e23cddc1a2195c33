// file: internal/server/user_handlers.go
// version: 1.1.0
// guid: a9dc92b8-1217-4dae-addf-8298737b2329

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// scalarString accepts any JSON scalar and keeps its literal text, so a
// phone sent as a number is stored as typed. null reads as "".
type scalarString string

func (s *scalarString) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = scalarString(t)
	case json.Number:
		*s = scalarString(t.String())
	case bool:
		*s = scalarString(strconv.FormatBool(t))
	default:
		return fmt.Errorf("expected a scalar value, got %s", data)
	}
	return nil
}

// userPayload is the wire form of UserRequest.
type userPayload struct {
	Email    scalarString `json:"email"`
	Username scalarString `json:"username"`
	FullName scalarString `json:"full_name"`
	Name     scalarString `json:"name"`
	Password scalarString `json:"password"`
	Phone    scalarString `json:"phone"`
}

func (p userPayload) request() UserRequest {
	return UserRequest{
		Email:    string(p.Email),
		Username: string(p.Username),
		FullName: string(p.FullName),
		Name:     string(p.Name),
		Password: string(p.Password),
		Phone:    string(p.Phone),
	}
}

// bindUserRequest decodes the JSON body. An empty body reads as {}.
func bindUserRequest(c *gin.Context) (UserRequest, error) {
	var req UserRequest

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, err
		}
		return req, &BadRequestError{Message: "Invalid JSON", Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	var payload userPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return req, &BadRequestError{Message: "Invalid JSON", Err: err}
	}
	return payload.request(), nil
}

func (s *Server) createUser(c *gin.Context) {
	s.getOrCreateUser(c, "createUser", false)
}

func (s *Server) login(c *gin.Context) {
	s.getOrCreateUser(c, "login", true)
}

func (s *Server) getOrCreateUser(c *gin.Context, handler string, login bool) {
	ol := operationLogger(c, handler)

	req, err := bindUserRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, created, err := s.users.GetOrCreate(c, req)
	if err != nil {
		var ve ValidationError
		if !errors.As(err, &ve) {
			ol.LogError(err)
		}
		_ = c.Error(err)
		return
	}

	ol.SetResourceID(strconv.FormatInt(user.ID, 10))
	status, resp := NewUserResponse(user, created, login)
	c.JSON(status, resp)
	ol.LogSuccess(status)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, NewUsersListResponse(users))
}
