package repository

import (
	"context"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
)

// ITaskRepository - интерфейс для TaskRepository. Get* возвращают (nil, nil), если ничего не найдено
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByTaskId(ctx context.Context, taskId string) (*entity.Task, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
}

// ISubtaskRepository - интерфейс для SubtaskRepository
type ISubtaskRepository interface {
	Create(ctx context.Context, subtask *entity.Subtask) (*entity.Subtask, error)
	GetById(ctx context.Context, id string) (*entity.Subtask, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*entity.Subtask, error)
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskId string) ([]entity.Subtask, error)
}

// ICommentRepository - интерфейс для CommentRepository
type ICommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) (*entity.Comment, error)
	GetById(ctx context.Context, id string) (*entity.Comment, error)
	UpdateContent(ctx context.Context, id string, content string, mentions []string) (*entity.Comment, error)
	SoftDelete(ctx context.Context, id string) (*entity.Comment, error)
	ListByTask(ctx context.Context, taskId string) ([]entity.Comment, error)
}

// INotificationRepository - интерфейс для NotificationRepository
type INotificationRepository interface {
	// CreateBatch пишет либо все уведомления, либо ни одного
	CreateBatch(ctx context.Context, notifications []entity.Notification) ([]entity.Notification, error)
	GetById(ctx context.Context, id string) (*entity.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, userId string) (int64, error)
	CountUnread(ctx context.Context, userId string) (int, error)
	ListByUser(ctx context.Context, userId string, unreadOnly bool, limit int) ([]entity.Notification, error)
}

// IUserRepository - интерфейс для UserRepository
type IUserRepository interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	GetById(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	SetStatus(ctx context.Context, id string, status entity.UserStatus) (*entity.User, error)
}

// ICredentialRepository - интерфейс для CredentialRepository (локальный провайдер)
type ICredentialRepository interface {
	Create(ctx context.Context, cred *entity.Credential) error
	GetByEmail(ctx context.Context, email string) (*entity.Credential, error)
	GetByUserId(ctx context.Context, userId string) (*entity.Credential, error)
	Delete(ctx context.Context, userId string) error
	RevokeBefore(ctx context.Context, userId string, t time.Time) error
	SetPasswordHash(ctx context.Context, userId string, hash string) error
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
	ListByEntity(ctx context.Context, entityType string, entityId string) ([]entity.TaskAudit, error)
}

// IUserCache - локальный снимок справочника пользователей
type IUserCache interface {
	Load(ctx context.Context) ([]entity.User, time.Time, error)
	Save(ctx context.Context, users []entity.User) error
	Clear(ctx context.Context) error
}
