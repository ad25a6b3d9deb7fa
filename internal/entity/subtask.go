package entity

import "time"

type Subtask struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateSubtaskRequest struct {
	Title string `json:"title"`
}

func (r *CreateSubtaskRequest) Validate() error {
	if r.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(r.Title) > 255 {
		return &ValidationError{Field: "title", Message: "title must be at most 255 characters"}
	}
	return nil
}
