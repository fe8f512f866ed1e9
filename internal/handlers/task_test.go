package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/okozhina/go-task-manager/internal/models"
)

func doRequest(t *testing.T, handler *Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}

func TestListTasks_Scoping(t *testing.T) {
	handler, accounts, tasks := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	bob := setupMockAccount(accounts, "bob", "strongpass", models.RoleUser)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)

	setupMockTask(tasks, alice.ID, "Alice task")
	setupMockTask(tasks, bob.ID, "Bob task 1")
	setupMockTask(tasks, bob.ID, "Bob task 2")

	tests := []struct {
		name    string
		account *models.Account
		want    int
	}{
		{"Owner sees only own", alice, 1},
		{"Other owner sees only own", bob, 2},
		{"Admin sees all", admin, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, handler, http.MethodGet, "/tasks", issueToken(t, handler, tt.account), "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
			}
			var got []models.Task
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d tasks, want %d", len(got), tt.want)
			}
		})
	}
}

// a client-supplied owner must be ignored, the caller always owns what
// it creates
func TestCreateTask_OwnerForced(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)

	body := `{"title": "Sneaky", "description": "d", "dueDate": "2026-09-15",
	 "owner_id": "` + uuid.New().String() + `"}`
	rr := doRequest(t, handler, http.MethodPost, "/tasks", issueToken(t, handler, alice), body)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var task models.Task
	if err := json.Unmarshal(rr.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.OwnerID != alice.ID {
		t.Errorf("owner = %s, want caller %s", task.OwnerID, alice.ID)
	}
	if task.Status != models.TaskStatusPending || task.Priority != models.TaskPriorityMedium {
		t.Errorf("defaults not applied: %#v", task)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	handler, accounts, _ := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	token := issueToken(t, handler, alice)

	tests := []struct {
		name         string
		body         string
		expectedBody string
	}{
		{"Missing title", `{"description": "d", "dueDate": "2026-09-15"}`, "title is required"},
		{"Bad due date", `{"title": "t", "dueDate": "tomorrow"}`, "dueDate must be an ISO date"},
		{"Bad status", `{"title": "t", "dueDate": "2026-09-15", "status": "later"}`, "Invalid status value"},
		{"Bad priority", `{"title": "t", "dueDate": "2026-09-15", "priority": "urgent"}`, "Invalid priority value"},
		{"Title too long", `{"title": "` + strings.Repeat("x", 201) + `", "dueDate": "2026-09-15"}`, "title too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, handler, http.MethodPost, "/tasks", token, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body: %s", rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("body = %q, want contains %q", rr.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestGetTask_OwnershipAndExistence(t *testing.T) {
	handler, accounts, tasks := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	bob := setupMockAccount(accounts, "bob", "strongpass", models.RoleUser)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)
	task := setupMockTask(tasks, alice.ID, "Alice task")

	tests := []struct {
		name           string
		account        *models.Account
		taskID         string
		expectedStatus int
	}{
		{"Owner reads own", alice, task.ID.String(), http.StatusOK},
		{"Non-owner denied", bob, task.ID.String(), http.StatusForbidden},
		{"Admin reads any", admin, task.ID.String(), http.StatusOK},
		// existence precedes ownership: missing is 404 for everyone
		{"Missing task owner", alice, uuid.New().String(), http.StatusNotFound},
		{"Missing task admin", admin, uuid.New().String(), http.StatusNotFound},
		{"Bad uuid", alice, "not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, handler, http.MethodGet, "/tasks/"+tt.taskID, issueToken(t, handler, tt.account), "")
			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d, body: %s", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}

func TestUpdateTask(t *testing.T) {
	handler, accounts, tasks := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	bob := setupMockAccount(accounts, "bob", "strongpass", models.RoleUser)
	task := setupMockTask(tasks, alice.ID, "Alice task")

	// non-owner cannot update
	rr := doRequest(t, handler, http.MethodPut, "/tasks/"+task.ID.String(),
		issueToken(t, handler, bob), `{"title": "Hijacked"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-owner update status = %d, want 403", rr.Code)
	}

	// owner partial update
	rr = doRequest(t, handler, http.MethodPut, "/tasks/"+task.ID.String(),
		issueToken(t, handler, alice), `{"status": "in progress", "priority": "high"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner update status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var updated models.Task
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != models.TaskStatusInProgress || updated.Priority != models.TaskPriorityHigh {
		t.Errorf("update not applied: %#v", updated)
	}
	if updated.Title != "Alice task" {
		t.Errorf("absent field changed: title = %q", updated.Title)
	}

	// empty title rejected
	rr = doRequest(t, handler, http.MethodPut, "/tasks/"+task.ID.String(),
		issueToken(t, handler, alice), `{"title": "  "}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty title status = %d, want 400", rr.Code)
	}
}

func TestDeleteTask_Idempotence(t *testing.T) {
	handler, accounts, tasks := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	task := setupMockTask(tasks, alice.ID, "Alice task")
	token := issueToken(t, handler, alice)

	rr := doRequest(t, handler, http.MethodDelete, "/tasks/"+task.ID.String(), token, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first delete status = %d, want 204", rr.Code)
	}

	rr = doRequest(t, handler, http.MethodDelete, "/tasks/"+task.ID.String(), token, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestDeleteTask_NonOwner(t *testing.T) {
	handler, accounts, tasks := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	bob := setupMockAccount(accounts, "bob", "strongpass", models.RoleUser)
	admin := setupMockAccount(accounts, "root", "strongpass", models.RoleAdmin)
	task := setupMockTask(tasks, alice.ID, "Alice task")

	rr := doRequest(t, handler, http.MethodDelete, "/tasks/"+task.ID.String(), issueToken(t, handler, bob), "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete status = %d, want 403", rr.Code)
	}

	// admin may delete anything
	rr = doRequest(t, handler, http.MethodDelete, "/tasks/"+task.ID.String(), issueToken(t, handler, admin), "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("admin delete status = %d, want 204", rr.Code)
	}
}

// a failing store must surface as a server error, not a missing task
func TestGetTask_StoreFailure(t *testing.T) {
	handler, accounts, tasks := newTestHandler(t)
	alice := setupMockAccount(accounts, "alice", "strongpass", models.RoleUser)
	task := setupMockTask(tasks, alice.ID, "Alice task")
	tasks.getErr = errors.New("connection refused")

	token := issueToken(t, handler, alice)
	for _, tt := range []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPut, `{"title": "Renamed"}`},
		{http.MethodDelete, ""},
	} {
		rr := doRequest(t, handler, tt.method, "/tasks/"+task.ID.String(), token, tt.body)
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("%s with failing store = %d, want %d", tt.method, rr.Code, http.StatusInternalServerError)
		}
	}
}
