package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/okozhina/go-task-manager/internal/auth"
	"github.com/okozhina/go-task-manager/internal/models"
)

type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if h.RateLimiter != nil && !h.RateLimiter.Allow(ip) {
		log.Printf("Rate limit exceeded for IP: %s", ip)
		sendError(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	var input credentialsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Error decoding JSON: %v", err)
		sendError(w, "Bad JSON", http.StatusBadRequest)
		return
	}
	if input.Username == "" || input.Password == "" {
		sendError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// same response for unknown user and wrong password, so usernames
	// cannot be enumerated
	account, err := h.Accounts.GetByUsername(ctx, input.Username)
	if err != nil {
		log.Printf("Login failed for username %s: %v", input.Username, err)
		sendError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if !auth.CheckPassword(input.Password, account.PasswordHash) {
		log.Printf("Invalid password for username: %s", input.Username)
		sendError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	tokenString, err := h.Tokens.Issue(account)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		sendError(w, "Cannot create token", http.StatusInternalServerError)
		return
	}

	log.Printf("User logged in: %s", account.Username)
	sendJSON(w, http.StatusOK, map[string]any{
		"access_token": tokenString,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if h.RateLimiter != nil && !h.RateLimiter.Allow(ip) {
		log.Printf("Rate limit exceeded for IP: %s", ip)
		sendError(w, "Too many register attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	var input credentialsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Error decoding JSON: %v", err)
		sendError(w, "Bad JSON", http.StatusBadRequest)
		return
	}
	if !validateCredentials(input, w) {
		return
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
		// public registration never grants admin
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Accounts.Create(ctx, account); err != nil {
		log.Printf("Error creating account %s: %v", account.Username, err)
		sendError(w, "Cannot save user", http.StatusInternalServerError)
		return
	}

	log.Printf("User registered: %s", account.Username)
	sendJSON(w, http.StatusCreated, account)
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)

func validateCredentials(input credentialsInput, w http.ResponseWriter) bool {
	if !usernameRegex.MatchString(input.Username) {
		log.Printf("Invalid username format")
		sendError(w, "Invalid username", http.StatusBadRequest)
		return false
	}
	if len(input.Password) < 4 {
		log.Printf("Password too short")
		sendError(w, "Password must be at least 4 characters long", http.StatusBadRequest)
		return false
	}
	return true
}
