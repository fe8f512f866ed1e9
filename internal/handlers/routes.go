package handlers

import (
	"net/http"

	"github.com/okozhina/go-task-manager/internal/models"
)

// route maps {method, path} to a handler plus its auth requirements.
// public routes skip token verification entirely; role "" means any
// authenticated account.
type route struct {
	method  string
	pattern string
	public  bool
	role    models.Role
	handler http.HandlerFunc
}

func (h *Handler) routeTable() []route {
	return []route{
		{method: http.MethodPost, pattern: "/auth/login", public: true, handler: h.Login},
		{method: http.MethodPost, pattern: "/auth/register", public: true, handler: h.Register},

		{method: http.MethodGet, pattern: "/tasks", handler: h.ListTasks},
		{method: http.MethodPost, pattern: "/tasks", handler: h.CreateTask},
		{method: http.MethodGet, pattern: "/tasks/{id}", handler: h.GetTask},
		{method: http.MethodPut, pattern: "/tasks/{id}", handler: h.UpdateTask},
		{method: http.MethodDelete, pattern: "/tasks/{id}", handler: h.DeleteTask},

		{method: http.MethodGet, pattern: "/users", role: models.RoleAdmin, handler: h.ListUsers},
		{method: http.MethodPost, pattern: "/users", role: models.RoleAdmin, handler: h.CreateUser},
		{method: http.MethodGet, pattern: "/users/{id}", role: models.RoleAdmin, handler: h.GetUser},
		{method: http.MethodPut, pattern: "/users/{id}", role: models.RoleAdmin, handler: h.UpdateUser},
		{method: http.MethodDelete, pattern: "/users/{id}", role: models.RoleAdmin, handler: h.DeleteUser},
	}
}

// Routes builds the ServeMux from the route table and wraps it with the
// CORS middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	for _, rt := range h.routeTable() {
		handler := rt.handler
		if !rt.public {
			handler = h.requireAuth(rt.role, handler)
		}
		mux.HandleFunc(rt.method+" "+rt.pattern, handler)
	}
	return h.withCORS(mux)
}
