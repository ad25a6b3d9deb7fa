package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationService struct {
	notificationRepo repository.INotificationRepository
	userRepo         repository.IUserRepository
	emails           EmailPublisher
	events           EventPublisher
	logger           *slog.Logger
	appURL           string
}

func NewNotificationService(
	notificationRepo repository.INotificationRepository,
	userRepo repository.IUserRepository,
	emails EmailPublisher,
	events EventPublisher,
	logger *slog.Logger,
	appURL string,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		emails:           emails,
		events:           events,
		logger:           logger,
		appURL:           strings.TrimRight(appURL, "/"),
	}
}

// recipients drops the author and duplicates, keeping first-seen order.
func recipients(mentionedUserIDs []string, authorID string) []string {
	out := make([]string, 0, len(mentionedUserIDs))
	seen := make(map[string]struct{}, len(mentionedUserIDs))
	for _, id := range mentionedUserIDs {
		if id == "" || id == authorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// NotifyMentionedUsers creates one unread notification per recipient, all in
// one transaction, then emails each recipient whose address is known. It
// returns the ids of the created notifications.
func (s *NotificationService) NotifyMentionedUsers(
	ctx context.Context,
	mentionedUserIDs []string,
	commentID, taskID, authorID, authorName string,
) ([]string, error) {
	targets := recipients(mentionedUserIDs, authorID)
	if len(targets) == 0 {
		return nil, nil
	}

	batch := make([]entity.Notification, 0, len(targets))
	for _, userID := range targets {
		batch = append(batch, entity.Notification{
			UserID:          userID,
			CommentID:       commentID,
			TaskID:          taskID,
			MentionedBy:     authorID,
			MentionedByName: authorName,
		})
	}

	created, err := s.notificationRepo.CreateBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("creating mention notifications: %w", err)
	}

	ids := make([]string, 0, len(created))
	for i := range created {
		n := created[i]
		ids = append(ids, n.ID)
		s.events.Publish(ctx, entity.Event{
			Type:    entity.EventNotificationCreated,
			Topic:   entity.UserTopic(n.UserID),
			Payload: &n,
		})
	}

	s.logger.Info("mention notifications created",
		slog.String("comment_id", commentID),
		slog.String("task_id", taskID),
		slog.Int("count", len(created)))

	s.sendMentionEmails(ctx, targets, commentID, taskID, authorName)

	return ids, nil
}

// sendMentionEmails publishes one email job per recipient. Each job is
// independent: a lookup or publish failure is logged and skipped.
func (s *NotificationService) sendMentionEmails(ctx context.Context, userIDs []string, commentID, taskID, authorName string) {
	if s.emails == nil {
		return
	}
	for _, userID := range userIDs {
		user, err := s.userRepo.GetById(ctx, userID)
		if err != nil {
			s.logger.Warn("mention email skipped: user lookup failed",
				slog.String("user_id", userID), slog.Any("err", err))
			continue
		}
		if user == nil || user.Email == "" {
			continue
		}

		msg := &entity.EmailMessage{
			To:       user.Email,
			Template: entity.TemplateMention,
			Params: map[string]string{
				"recipient_name": user.Name,
				"author_name":    authorName,
				"task_id":        taskID,
				"comment_id":     commentID,
				"task_url":       s.appURL + "/tasks/" + taskID,
			},
		}
		if err := s.emails.PublishEmail(ctx, msg); err != nil {
			s.logger.Error("mention email publish failed",
				slog.String("user_id", userID), slog.Any("err", err))
		}
	}
}

// MarkAsRead flips an unread notification owned by the caller. Marking an
// already-read notification is a no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, session *entity.Session, notificationID string) error {
	n, err := s.notificationRepo.GetById(ctx, notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return entity.ErrNotificationNotFound
	}
	if n.UserID != session.UserID {
		return entity.ErrForbidden
	}
	if n.Read {
		return nil
	}
	return s.notificationRepo.MarkAsRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.notificationRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entity.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit)
}
