package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          uuid.UUID    `json:"id"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"dueDate"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// convert various user inputs to standard status values
func NormalizeStatus(s string) TaskStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return TaskStatusPending
	case "in-progress", "in_progress", "inprogress", "in progress":
		return TaskStatusInProgress
	case "completed", "done":
		return TaskStatusCompleted
	default:
		return ""
	}
}

func NormalizePriority(s string) TaskPriority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return TaskPriorityLow
	case "", "medium":
		return TaskPriorityMedium
	case "high":
		return TaskPriorityHigh
	default:
		return ""
	}
}
