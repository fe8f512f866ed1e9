package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/okozhina/go-task-manager/internal/auth"
	"github.com/okozhina/go-task-manager/internal/models"
)

func TestListUsers(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)
	setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)

	rr := doRequest(t, handler, http.MethodGet, "/users", issueToken(t, handler, admin), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var got []models.Account
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d accounts, want 2", len(got))
	}
	if strings.Contains(rr.Body.String(), "$2a$") {
		t.Errorf("response leaks password hashes: %s", rr.Body.String())
	}
}

func TestCreateUser(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)
	token := issueToken(t, handler, admin)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedRole   models.Role
	}{
		{"Default role", `{"username": "alice", "password": "strongpass"}`, http.StatusCreated, models.RoleUser},
		{"Admin role", `{"username": "root2", "password": "strongpass", "role": "admin"}`, http.StatusCreated, models.RoleAdmin},
		{"Invalid role", `{"username": "bob", "password": "strongpass", "role": "owner"}`, http.StatusBadRequest, ""},
		{"Short password", `{"username": "bob", "password": "abc"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, handler, http.MethodPost, "/users", token, tt.body)
			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d, body: %s", rr.Code, tt.expectedStatus, rr.Body.String())
			}
			if tt.expectedStatus != http.StatusCreated {
				return
			}
			var account models.Account
			if err := json.Unmarshal(rr.Body.Bytes(), &account); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if account.Role != tt.expectedRole {
				t.Errorf("role = %q, want %q", account.Role, tt.expectedRole)
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	token := issueToken(t, handler, admin)

	rr := doRequest(t, handler, http.MethodGet, "/users/"+alice.ID.String(), token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, handler, http.MethodGet, "/users/"+uuid.New().String(), token, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing user status = %d, want 404", rr.Code)
	}
}

func TestUpdateUser(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	oldHash := alice.PasswordHash
	token := issueToken(t, handler, admin)

	rr := doRequest(t, handler, http.MethodPut, "/users/"+alice.ID.String(), token,
		`{"password": "newpassword", "role": "admin"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	updated, err := accounts.GetByID(t.Context(), alice.ID.String())
	if err != nil {
		t.Fatalf("get updated account: %v", err)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", updated.Role)
	}
	if updated.PasswordHash == oldHash {
		t.Error("password was not re-hashed")
	}
	if !auth.CheckPassword("newpassword", updated.PasswordHash) {
		t.Error("new password does not verify against stored hash")
	}
}

func TestDeleteUser_Idempotence(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	token := issueToken(t, handler, admin)

	rr := doRequest(t, handler, http.MethodDelete, "/users/"+alice.ID.String(), token, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first delete status = %d, want 204", rr.Code)
	}
	rr = doRequest(t, handler, http.MethodDelete, "/users/"+alice.ID.String(), token, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

// every /users route is role-gated, a plain user gets 403 across the board
func TestUsers_NonAdminForbidden(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	token := issueToken(t, handler, alice)

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/users", ""},
		{http.MethodPost, "/users", `{"username": "x", "password": "strongpass"}`},
		{http.MethodGet, "/users/" + alice.ID.String(), ""},
		{http.MethodPut, "/users/" + alice.ID.String(), `{"role": "admin"}`},
		{http.MethodDelete, "/users/" + alice.ID.String(), ""},
	}

	for _, req := range requests {
		rr := doRequest(t, handler, req.method, req.path, token, req.body)
		if rr.Code != http.StatusForbidden {
			t.Errorf("%s %s: status = %d, want 403", req.method, req.path, rr.Code)
		}
	}
}

func TestGetUser_StoreFailure(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	token := issueToken(t, handler, admin)
	accounts.getErr = errors.New("connection refused")

	rr := doRequest(t, handler, http.MethodGet, "/users/"+alice.ID.String(), token, "")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
