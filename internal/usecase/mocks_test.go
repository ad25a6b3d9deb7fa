package usecase

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc      func(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByTaskIdFunc func(ctx context.Context, taskId string) (*entity.Task, error)
	UpdateFunc      func(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error)
	DeleteFunc      func(ctx context.Context, id string) error
	ListFunc        func(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByTaskId(ctx context.Context, taskId string) (*entity.Task, error) {
	if m.GetByTaskIdFunc != nil {
		return m.GetByTaskIdFunc(ctx, taskId)
	}
	return nil, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

// MockSubtaskRepository - мок для ISubtaskRepository
type MockSubtaskRepository struct {
	CreateFunc       func(ctx context.Context, subtask *entity.Subtask) (*entity.Subtask, error)
	GetByIdFunc      func(ctx context.Context, id string) (*entity.Subtask, error)
	SetCompletedFunc func(ctx context.Context, id string, completed bool) (*entity.Subtask, error)
	DeleteFunc       func(ctx context.Context, id string) error
	ListByTaskFunc   func(ctx context.Context, taskId string) ([]entity.Subtask, error)
}

var _ repository.ISubtaskRepository = (*MockSubtaskRepository)(nil)

func (m *MockSubtaskRepository) Create(ctx context.Context, subtask *entity.Subtask) (*entity.Subtask, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, subtask)
	}
	return nil, nil
}

func (m *MockSubtaskRepository) GetById(ctx context.Context, id string) (*entity.Subtask, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSubtaskRepository) SetCompleted(ctx context.Context, id string, completed bool) (*entity.Subtask, error) {
	if m.SetCompletedFunc != nil {
		return m.SetCompletedFunc(ctx, id, completed)
	}
	return nil, nil
}

func (m *MockSubtaskRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockSubtaskRepository) ListByTask(ctx context.Context, taskId string) ([]entity.Subtask, error) {
	if m.ListByTaskFunc != nil {
		return m.ListByTaskFunc(ctx, taskId)
	}
	return nil, nil
}

// MockCommentRepository - мок для ICommentRepository
type MockCommentRepository struct {
	CreateFunc        func(ctx context.Context, comment *entity.Comment) (*entity.Comment, error)
	GetByIdFunc       func(ctx context.Context, id string) (*entity.Comment, error)
	UpdateContentFunc func(ctx context.Context, id string, content string, mentions []string) (*entity.Comment, error)
	SoftDeleteFunc    func(ctx context.Context, id string) (*entity.Comment, error)
	ListByTaskFunc    func(ctx context.Context, taskId string) ([]entity.Comment, error)
}

var _ repository.ICommentRepository = (*MockCommentRepository)(nil)

func (m *MockCommentRepository) Create(ctx context.Context, comment *entity.Comment) (*entity.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	return nil, nil
}

func (m *MockCommentRepository) GetById(ctx context.Context, id string) (*entity.Comment, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCommentRepository) UpdateContent(ctx context.Context, id string, content string, mentions []string) (*entity.Comment, error) {
	if m.UpdateContentFunc != nil {
		return m.UpdateContentFunc(ctx, id, content, mentions)
	}
	return nil, nil
}

func (m *MockCommentRepository) SoftDelete(ctx context.Context, id string) (*entity.Comment, error) {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCommentRepository) ListByTask(ctx context.Context, taskId string) ([]entity.Comment, error) {
	if m.ListByTaskFunc != nil {
		return m.ListByTaskFunc(ctx, taskId)
	}
	return nil, nil
}

// MockNotificationRepository - in-memory INotificationRepository, все методы под мьютексом
type MockNotificationRepository struct {
	mu            sync.Mutex
	items         []entity.Notification
	seq           int
	CreateErr     error
	CreateBatches int
}

var _ repository.INotificationRepository = (*MockNotificationRepository)(nil)

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, notifications []entity.Notification) ([]entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateBatches++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	out := make([]entity.Notification, 0, len(notifications))
	for _, n := range notifications {
		m.seq++
		n.ID = "n" + strconv.Itoa(m.seq)
		n.Read = false
		n.CreatedAt = time.Now().UTC()
		out = append(out, n)
	}
	m.items = append(m.items, out...)
	return out, nil
}

func (m *MockNotificationRepository) GetById(ctx context.Context, id string) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			n := m.items[i]
			return &n, nil
		}
	}
	return nil, nil
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Read = true
			return nil
		}
	}
	return entity.ErrNotificationNotFound
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userId string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userId && !m.items[i].Read {
			m.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userId string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, item := range m.items {
		if item.UserID == userId && !item.Read {
			n++
		}
	}
	return n, nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userId string, unreadOnly bool, limit int) ([]entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Notification
	for _, item := range m.items {
		if item.UserID != userId || (unreadOnly && item.Read) {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockNotificationRepository) forUser(userID string) []entity.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Notification
	for _, item := range m.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out
}

// MockUserRepository - мок для IUserRepository
type MockUserRepository struct {
	CreateFunc     func(ctx context.Context, user *entity.User) (*entity.User, error)
	GetByIdFunc    func(ctx context.Context, id string) (*entity.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	ListFunc       func(ctx context.Context) ([]entity.User, error)
	SetStatusFunc  func(ctx context.Context, id string, status entity.UserStatus) (*entity.User, error)
}

var _ repository.IUserRepository = (*MockUserRepository)(nil)

// usersByID отвечает на GetById из фиксированного набора пользователей
func usersByID(users ...entity.User) func(ctx context.Context, id string) (*entity.User, error) {
	return func(ctx context.Context, id string) (*entity.User, error) {
		for i := range users {
			if users[i].ID == id {
				u := users[i]
				return &u, nil
			}
		}
		return nil, nil
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, nil
}

func (m *MockUserRepository) GetById(ctx context.Context, id string) (*entity.User, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]entity.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockUserRepository) SetStatus(ctx context.Context, id string, status entity.UserStatus) (*entity.User, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return nil, nil
}

// MockUserCache - мок для IUserCache
type MockUserCache struct {
	LoadFunc  func(ctx context.Context) ([]entity.User, time.Time, error)
	SaveFunc  func(ctx context.Context, users []entity.User) error
	ClearFunc func(ctx context.Context) error
}

var _ repository.IUserCache = (*MockUserCache)(nil)

func (m *MockUserCache) Load(ctx context.Context) ([]entity.User, time.Time, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil, time.Time{}, nil
}

func (m *MockUserCache) Save(ctx context.Context, users []entity.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, users)
	}
	return nil
}

func (m *MockUserCache) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return nil
}

// MockAuditPublisher - мок для AuditPublisher
type MockAuditPublisher struct {
	PublishAuditMessageFunc func(ctx context.Context, message *entity.AuditMessage) error
}

func (m *MockAuditPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	if m.PublishAuditMessageFunc != nil {
		return m.PublishAuditMessageFunc(ctx, message)
	}
	return nil
}

// auditRecorder пересылает каждое сообщение аудита в канал (аудит отправляется в горутине)
func auditRecorder() (*MockAuditPublisher, <-chan *entity.AuditMessage) {
	ch := make(chan *entity.AuditMessage, 8)
	return &MockAuditPublisher{
		PublishAuditMessageFunc: func(ctx context.Context, message *entity.AuditMessage) error {
			ch <- message
			return nil
		},
	}, ch
}

// MockEmailPublisher - мок для EmailPublisher
type MockEmailPublisher struct {
	mu               sync.Mutex
	Sent             []*entity.EmailMessage
	PublishEmailFunc func(ctx context.Context, message *entity.EmailMessage) error
}

func (m *MockEmailPublisher) PublishEmail(ctx context.Context, message *entity.EmailMessage) error {
	if m.PublishEmailFunc != nil {
		if err := m.PublishEmailFunc(ctx, message); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, message)
	m.mu.Unlock()
	return nil
}

// MockEventPublisher - записывает опубликованные события
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []entity.Event
}

func (m *MockEventPublisher) Publish(ctx context.Context, event entity.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

func (m *MockEventPublisher) types() []entity.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.EventType, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Type)
	}
	return out
}

// MockRoller - мок для TaskStatusRoller
type MockRoller struct {
	Calls                []string
	RollupTaskStatusFunc func(ctx context.Context, taskID string, actorID string) error
}

func (m *MockRoller) RollupTaskStatus(ctx context.Context, taskID string, actorID string) error {
	m.Calls = append(m.Calls, taskID)
	if m.RollupTaskStatusFunc != nil {
		return m.RollupTaskStatusFunc(ctx, taskID, actorID)
	}
	return nil
}

// MockNotifier - мок для MentionNotifier
type MockNotifier struct {
	Calls                    [][]string
	NotifyMentionedUsersFunc func(ctx context.Context, mentionedUserIDs []string, commentID, taskID, authorID, authorName string) ([]string, error)
}

func (m *MockNotifier) NotifyMentionedUsers(ctx context.Context, mentionedUserIDs []string, commentID, taskID, authorID, authorName string) ([]string, error) {
	m.Calls = append(m.Calls, mentionedUserIDs)
	if m.NotifyMentionedUsersFunc != nil {
		return m.NotifyMentionedUsersFunc(ctx, mentionedUserIDs, commentID, taskID, authorID, authorName)
	}
	return mentionedUserIDs, nil
}

// MockDirectory - мок для UserDirectoryReader
type MockDirectory struct {
	Users           []entity.User
	Err             error
	Invalidations   int
	ActiveUsersFunc func(ctx context.Context) ([]entity.User, error)
}

func (m *MockDirectory) ActiveUsers(ctx context.Context) ([]entity.User, error) {
	if m.ActiveUsersFunc != nil {
		return m.ActiveUsersFunc(ctx)
	}
	return m.Users, m.Err
}

func (m *MockDirectory) Invalidate(ctx context.Context) {
	m.Invalidations++
}

// MockIdentityProvider - мок для IdentityProvider
type MockIdentityProvider struct {
	CreateIdentityFunc    func(ctx context.Context, req *entity.IdentityRequest) (string, error)
	DeleteIdentityFunc    func(ctx context.Context, uid string) error
	SignInFunc            func(ctx context.Context, email, password string) (*entity.IssuedToken, error)
	VerifyTokenFunc       func(ctx context.Context, token string) (string, error)
	RevokeSessionsFunc    func(ctx context.Context, uid string) error
	PasswordResetLinkFunc func(ctx context.Context, email string) (string, error)
}

var _ IdentityProvider = (*MockIdentityProvider)(nil)

func (m *MockIdentityProvider) CreateIdentity(ctx context.Context, req *entity.IdentityRequest) (string, error) {
	if m.CreateIdentityFunc != nil {
		return m.CreateIdentityFunc(ctx, req)
	}
	return "", nil
}

func (m *MockIdentityProvider) DeleteIdentity(ctx context.Context, uid string) error {
	if m.DeleteIdentityFunc != nil {
		return m.DeleteIdentityFunc(ctx, uid)
	}
	return nil
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*entity.IssuedToken, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockIdentityProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, token)
	}
	return "", nil
}

func (m *MockIdentityProvider) RevokeSessions(ctx context.Context, uid string) error {
	if m.RevokeSessionsFunc != nil {
		return m.RevokeSessionsFunc(ctx, uid)
	}
	return nil
}

func (m *MockIdentityProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	if m.PasswordResetLinkFunc != nil {
		return m.PasswordResetLinkFunc(ctx, email)
	}
	return "", nil
}
