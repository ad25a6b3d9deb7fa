package usecase

import (
	"context"

	"github.com/St1cky1/task-portal/internal/entity"
)

// AuditPublisher - audit messages go to the queue, never straight to the database
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

// EmailPublisher - fire-and-forget templated email dispatch
type EmailPublisher interface {
	PublishEmail(ctx context.Context, message *entity.EmailMessage) error
}

// EventPublisher - change signals for live views
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event)
}

// IdentityProvider is the external authentication service.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, req *entity.IdentityRequest) (uid string, err error)
	DeleteIdentity(ctx context.Context, uid string) error
	SignIn(ctx context.Context, email, password string) (*entity.IssuedToken, error)
	VerifyToken(ctx context.Context, token string) (uid string, err error)
	RevokeSessions(ctx context.Context, uid string) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// TaskStatusRoller derives a task's status from its subtasks.
type TaskStatusRoller interface {
	RollupTaskStatus(ctx context.Context, taskID string, actorID string) error
}

// MentionNotifier fans a comment's mentions out into notifications.
type MentionNotifier interface {
	NotifyMentionedUsers(ctx context.Context, mentionedUserIDs []string, commentID, taskID, authorID, authorName string) (notificationIDs []string, err error)
}

// UserDirectoryReader supplies the known users mentions are resolved against.
type UserDirectoryReader interface {
	ActiveUsers(ctx context.Context) ([]entity.User, error)
	Invalidate(ctx context.Context)
}

// PasswordResetter is implemented by providers that complete resets
// server-side. Hosted providers finish resets on their own pages.
type PasswordResetter interface {
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}
