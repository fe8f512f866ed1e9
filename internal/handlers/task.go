package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okozhina/go-task-manager/internal/auth"
	"github.com/okozhina/go-task-manager/internal/models"
)

// GET /tasks: admins see every task, everyone else only their own.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	ctx, cancel := reqContext(r)
	defer cancel()

	var (
		tasks []*models.Task
		err   error
	)
	if identity.IsAdmin() {
		tasks, err = h.Tasks.ListAll(ctx)
	} else {
		tasks, err = h.Tasks.ListByOwnerID(ctx, identity.ID.String())
	}
	if err != nil {
		sendError(w, "Failed to list tasks", http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	sendJSON(w, http.StatusOK, tasks)
}

// POST /tasks: the owner is always the caller, whatever the body says.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"dueDate"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		sendError(w, "title is required", http.StatusBadRequest)
		return
	}
	if len(title) > 200 {
		sendError(w, "title too long (max 200 chars)", http.StatusBadRequest)
		return
	}
	if len(input.Description) > 1000 {
		sendError(w, "description too long (max 1000 chars)", http.StatusBadRequest)
		return
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		sendError(w, "dueDate must be an ISO date", http.StatusBadRequest)
		return
	}
	status := models.NormalizeStatus(input.Status)
	if status == "" {
		sendError(w, "Invalid status value", http.StatusBadRequest)
		return
	}
	priority := models.NormalizePriority(input.Priority)
	if priority == "" {
		sendError(w, "Invalid priority value", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New(),
		OwnerID:     identity.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		DueDate:     dueDate,
		Status:      status,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := reqContext(r)
	defer cancel()
	if err := h.Tasks.Create(ctx, task); err != nil {
		sendError(w, "Failed to create task", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Location", "/tasks/"+task.ID.String())
	sendJSON(w, http.StatusCreated, task)
}

// GET /tasks/{id}: existence before ownership, a missing task is 404
// for every caller.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqContext(r)
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendError(w, "Task not found", http.StatusNotFound)
		} else {
			sendError(w, "Failed to load task", http.StatusInternalServerError)
		}
		return
	}
	if !auth.CanAccessTask(identity, task) {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}
	sendJSON(w, http.StatusOK, task)
}

// PUT /tasks/{id}: partial update, absent fields keep their value.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	ctx, cancel := reqContext(r)
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendError(w, "Task not found", http.StatusNotFound)
		} else {
			sendError(w, "Failed to load task", http.StatusInternalServerError)
		}
		return
	}
	if !auth.CanAccessTask(identity, task) {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DueDate     *string `json:"dueDate"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			sendError(w, "title cannot be empty", http.StatusBadRequest)
			return
		}
		if len(title) > 200 {
			sendError(w, "title too long (max 200 chars)", http.StatusBadRequest)
			return
		}
		task.Title = title
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if len(desc) > 1000 {
			sendError(w, "description too long (max 1000 chars)", http.StatusBadRequest)
			return
		}
		task.Description = desc
	}
	if input.DueDate != nil {
		dueDate, err := parseDueDate(*input.DueDate)
		if err != nil {
			sendError(w, "dueDate must be an ISO date", http.StatusBadRequest)
			return
		}
		task.DueDate = dueDate
	}
	if input.Status != nil {
		status := models.NormalizeStatus(*input.Status)
		if status == "" {
			sendError(w, "Invalid status value", http.StatusBadRequest)
			return
		}
		task.Status = status
	}
	if input.Priority != nil {
		priority := models.NormalizePriority(*input.Priority)
		if priority == "" {
			sendError(w, "Invalid priority value", http.StatusBadRequest)
			return
		}
		task.Priority = priority
	}
	task.UpdatedAt = time.Now().UTC()

	if err := h.Tasks.Update(ctx, task); err != nil {
		sendError(w, "Failed to update task", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, task)
}

// DELETE /tasks/{id}: 204 on success, 404 when already gone.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqContext(r)
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendError(w, "Task not found", http.StatusNotFound)
		} else {
			sendError(w, "Failed to load task", http.StatusInternalServerError)
		}
		return
	}
	if !auth.CanAccessTask(identity, task) {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Tasks.Delete(ctx, taskID.String()); err != nil {
		sendError(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendError(w, "task id must be a valid uuid", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
