// Package client is the Go counterpart of the web frontend's session
// state: it holds the current token, the identity decoded from it, and
// typed calls against the task-manager API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okozhina/go-task-manager/internal/auth"
	"github.com/okozhina/go-task-manager/internal/models"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

type Session struct {
	baseURL  string
	http     *http.Client
	token    string
	identity *auth.Identity
	expires  time.Time
}

func New(baseURL string) *Session {
	return &Session{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Login exchanges credentials for a token and derives the identity from
// its claims. The claims are decoded without verification, exactly as a
// browser client would; the server re-verifies on every request anyway.
func (s *Session) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	resp, err := s.do(ctx, http.MethodPost, "/auth/login", bytes.NewReader(body), false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	return s.SetToken(result.AccessToken)
}

// SetToken installs a previously obtained token, e.g. one restored from
// disk, and re-derives the identity.
func (s *Session) SetToken(token string) error {
	claims := &auth.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("decode token claims: %w", err)
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return fmt.Errorf("decode token subject: %w", err)
	}

	s.token = token
	s.identity = &auth.Identity{
		ID:       subject,
		Username: claims.Username,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		s.expires = claims.ExpiresAt.Time
	}
	return nil
}

// Logout discards the token. The server keeps no session state, so
// there is nothing to tell it.
func (s *Session) Logout() {
	s.token = ""
	s.identity = nil
	s.expires = time.Time{}
}

// Authenticated reports whether a token is held and not past its
// expiry. Expiry is noticed lazily, right here, not by a timer.
func (s *Session) Authenticated() bool {
	if s.token == "" {
		return false
	}
	return s.expires.IsZero() || time.Now().Before(s.expires)
}

// Identity returns the identity decoded at login, nil when logged out
// or expired.
func (s *Session) Identity() *auth.Identity {
	if !s.Authenticated() {
		return nil
	}
	return s.identity
}

func (s *Session) IsAdmin() bool {
	identity := s.Identity()
	return identity != nil && identity.IsAdmin()
}

func (s *Session) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.getJSON(ctx, "/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Session) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task := &models.Task{}
	if err := s.getJSON(ctx, "/tasks/"+id.String(), task); err != nil {
		return nil, err
	}
	return task, nil
}

type TaskInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

func (s *Session) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	task := &models.Task{}
	if err := s.sendJSON(ctx, http.MethodPost, "/tasks", input, http.StatusCreated, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Session) UpdateTask(ctx context.Context, id uuid.UUID, input TaskInput) (*models.Task, error) {
	task := &models.Task{}
	if err := s.sendJSON(ctx, http.MethodPut, "/tasks/"+id.String(), input, http.StatusOK, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Session) DeleteTask(ctx context.Context, id uuid.UUID) error {
	resp, err := s.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, http.StatusNoContent)
}

// ListUsers requires the admin role server-side; others get
// ErrForbidden.
func (s *Session) ListUsers(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.getJSON(ctx, "/users", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Session) getJSON(ctx context.Context, path string, out any) error {
	resp, err := s.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Session) sendJSON(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := s.do(ctx, method, path, bytes.NewReader(body), true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, wantStatus); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Session) do(ctx context.Context, method, path string, body io.Reader, withAuth bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth && s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return s.http.Do(req)
}

func checkStatus(resp *http.Response, want int) error {
	if resp.StatusCode == want {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
