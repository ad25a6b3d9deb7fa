package entity

import "time"

// Notification is created once per mentioned user when a comment is posted.
// The only transition is unread -> read.
type Notification struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CommentID       string    `json:"comment_id"`
	TaskID          string    `json:"task_id"`
	MentionedBy     string    `json:"mentioned_by"`
	MentionedByName string    `json:"mentioned_by_name"`
	Read            bool      `json:"read"`
	CreatedAt       time.Time `json:"created_at"`
}
