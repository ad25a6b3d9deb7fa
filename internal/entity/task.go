package entity

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// ParseTaskStatus rejects anything outside the closed set.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return TaskStatus(s), nil
	default:
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
	}
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s), nil
	default:
		return "", &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", s)}
	}
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignee_id"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ApplyStatus sets the status and keeps CompletedAt consistent with it.
func (t *Task) ApplyStatus(status TaskStatus, now time.Time) {
	t.Status = status
	if status == StatusCompleted {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
		return
	}
	t.CompletedAt = nil
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignee_id"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	DueAt       *time.Time `json:"due_at"`
}

func (r *CreateTaskRequest) Validate() error {
	if r.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(r.Title) > 255 {
		return &ValidationError{Field: "title", Message: "title must be at most 255 characters"}
	}
	if r.AssigneeID == "" {
		return &ValidationError{Field: "assignee_id", Message: "assignee is required"}
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if _, err := ParsePriority(string(r.Priority)); err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	if _, err := ParseTaskStatus(string(r.Status)); err != nil {
		return err
	}
	return nil
}

// UpdateTaskRequest - nil fields are left untouched
type UpdateTaskRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	AssigneeID  *string     `json:"assignee_id"`
	Priority    *Priority   `json:"priority"`
	Status      *TaskStatus `json:"status"`
	DueAt       *time.Time  `json:"due_at"`
}

// StatusOnly reports whether the request touches nothing but the status.
func (r *UpdateTaskRequest) StatusOnly() bool {
	return r.Status != nil && r.Title == nil && r.Description == nil &&
		r.AssigneeID == nil && r.Priority == nil && r.DueAt == nil
}

func (r *UpdateTaskRequest) Empty() bool {
	return r.Status == nil && r.Title == nil && r.Description == nil &&
		r.AssigneeID == nil && r.Priority == nil && r.DueAt == nil
}

func (r *UpdateTaskRequest) Validate() error {
	if r.Title != nil && (*r.Title == "" || len(*r.Title) > 255) {
		return &ValidationError{Field: "title", Message: "title must be 1-255 characters"}
	}
	if r.Priority != nil {
		if _, err := ParsePriority(string(*r.Priority)); err != nil {
			return err
		}
	}
	if r.Status != nil {
		if _, err := ParseTaskStatus(string(*r.Status)); err != nil {
			return err
		}
	}
	return nil
}

type TaskFilter struct {
	Status     TaskStatus
	AssigneeID string
	CreatedBy  string
	// VisibleTo restricts results to tasks created by or assigned to this user.
	VisibleTo string
}
