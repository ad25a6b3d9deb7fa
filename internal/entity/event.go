package entity

import "time"

type EventType string

const (
	EventTaskStatusUpdated   EventType = "task.status_updated"
	EventTaskChanged         EventType = "task.changed"
	EventSubtaskChanged      EventType = "subtask.changed"
	EventCommentAdded        EventType = "comment.added"
	EventCommentUpdated      EventType = "comment.updated"
	EventCommentDeleted      EventType = "comment.deleted"
	EventNotificationCreated EventType = "notification.created"
)

// Event is delivered to in-process subscribers of a topic.
type Event struct {
	Type      EventType `json:"type"`
	Topic     string    `json:"topic"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func TaskTopic(taskID string) string { return "task:" + taskID }

func UserTopic(userID string) string { return "user:" + userID }
