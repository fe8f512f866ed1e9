package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okozhina/go-task-manager/internal/auth"
	"github.com/okozhina/go-task-manager/internal/models"
)

// The /users surface is admin-only; the role gate lives in the route
// table, nothing here re-checks it.

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqContext(r)
	defer cancel()

	accounts, err := h.Accounts.List(ctx)
	if err != nil {
		sendError(w, "Failed to list users", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []*models.Account{}
	}
	sendJSON(w, http.StatusOK, accounts)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if !validateCredentials(credentialsInput{Username: input.Username, Password: input.Password}, w) {
		return
	}
	role := models.RoleUser
	if input.Role != "" {
		role = models.NormalizeRole(input.Role)
		if role == "" {
			sendError(w, "Invalid role value", http.StatusBadRequest)
			return
		}
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		sendError(w, "Cannot hash password", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := reqContext(r)
	defer cancel()
	if err := h.Accounts.Create(ctx, account); err != nil {
		log.Printf("Error creating account %s: %v", account.Username, err)
		sendError(w, "Cannot save user", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusCreated, account)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqContext(r)
	defer cancel()

	account, err := h.Accounts.GetByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendError(w, "User not found", http.StatusNotFound)
		} else {
			sendError(w, "Failed to load user", http.StatusInternalServerError)
		}
		return
	}
	sendJSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(w, r)
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

	account, err := h.Accounts.GetByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendError(w, "User not found", http.StatusNotFound)
		} else {
			sendError(w, "Failed to load user", http.StatusInternalServerError)
		}
		return
	}

	var input struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if input.Username != nil {
		if !usernameRegex.MatchString(*input.Username) {
			sendError(w, "Invalid username", http.StatusBadRequest)
			return
		}
		account.Username = *input.Username
	}
	if input.Password != nil {
		if len(*input.Password) < 4 {
			sendError(w, "Password must be at least 4 characters long", http.StatusBadRequest)
			return
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			sendError(w, "Cannot hash password", http.StatusInternalServerError)
			return
		}
		account.PasswordHash = hash
	}
	if input.Role != nil {
		role := models.NormalizeRole(*input.Role)
		if role == "" {
			sendError(w, "Invalid role value", http.StatusBadRequest)
			return
		}
		account.Role = role
	}
	account.UpdatedAt = time.Now().UTC()

	if err := h.Accounts.Update(ctx, account); err != nil {
		sendError(w, "Failed to update user", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, account)
}

// DELETE /users/{id}: the account's tasks go with it (FK cascade).
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := reqContext(r)
	defer cancel()

	_, err := h.Accounts.GetByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendError(w, "User not found", http.StatusNotFound)
		} else {
			sendError(w, "Failed to load user", http.StatusInternalServerError)
		}
		return
	}

	if err := h.Accounts.Delete(ctx, userID.String()); err != nil {
		sendError(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendError(w, "user id must be a valid uuid", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
