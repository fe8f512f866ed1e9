package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/okozhina/go-task-manager/internal/auth"
	"github.com/okozhina/go-task-manager/internal/models"
)

type contextKey int

const identityKey contextKey = iota

// identityFrom returns the verified Identity stored by requireAuth, nil
// if the request never went through it.
func identityFrom(r *http.Request) *auth.Identity {
	identity, _ := r.Context().Value(identityKey).(*auth.Identity)
	return identity
}

/*
Verify the Bearer token, reject with a uniform 401 on any failure
(missing header, bad signature, expiry), then enforce the route's role
requirement. The verified Identity is added to the request context.
*/
func (h *Handler) requireAuth(role models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			sendError(w, "Invalid or missing token", http.StatusUnauthorized)
			return
		}

		identity, err := h.Tokens.Verify(tokenString)
		if err != nil {
			// same message for bad signature and expiry
			sendError(w, "Invalid or missing token", http.StatusUnauthorized)
			return
		}

		if role != "" && identity.Role != role {
			sendError(w, "Insufficient role", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// withCORS reflects the configured frontend origin and answers
// preflight requests.
func (h *Handler) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.AllowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", h.AllowedOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
