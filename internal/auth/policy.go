package auth

import "github.com/okozhina/go-task-manager/internal/models"

// CanAccessTask reports whether identity may read, update or delete
// task. Admins always may; everyone else only when they own it.
// Existence of the task is the caller's problem and is checked before
// this, so a missing task is a 404 for admins and owners alike.
func CanAccessTask(identity *Identity, task *models.Task) bool {
	if identity.IsAdmin() {
		return true
	}
	return task.OwnerID == identity.ID
}
