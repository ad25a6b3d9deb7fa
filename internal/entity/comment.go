package entity

import (
	"strings"
	"time"
)

const (
	MaxCommentLength      = 2000
	DeletedCommentContent = "This comment has been deleted"
)

type Comment struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Mentions   []string  `json:"mentions"`
	Edited     bool      `json:"edited"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

func (r *CommentRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return &ValidationError{Field: "content", Message: "comment cannot be empty"}
	}
	if len([]rune(r.Content)) > MaxCommentLength {
		return &ValidationError{Field: "content", Message: "comment is too long"}
	}
	return nil
}
