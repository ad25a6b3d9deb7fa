package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

type CommentService struct {
	taskRepo    repository.ITaskRepository
	commentRepo repository.ICommentRepository
	directory   UserDirectoryReader
	notifier    MentionNotifier
	events      EventPublisher
	logger      *slog.Logger
}

func NewCommentService(
	taskRepo repository.ITaskRepository,
	commentRepo repository.ICommentRepository,
	directory UserDirectoryReader,
	notifier MentionNotifier,
	events EventPublisher,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		taskRepo:    taskRepo,
		commentRepo: commentRepo,
		directory:   directory,
		notifier:    notifier,
		events:      events,
		logger:      logger,
	}
}

func (s *CommentService) visibleTask(ctx context.Context, session *entity.Session, taskID string) (*entity.Task, error) {
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}
	if !canViewTask(session, task) {
		return nil, entity.ErrForbidden
	}
	return task, nil
}

// resolveMentions maps @tokens in content to user ids. An unavailable
// directory yields no mentions rather than failing the comment.
func (s *CommentService) resolveMentions(ctx context.Context, content string) []string {
	tokens := ExtractMentions(content)
	if len(tokens) == 0 {
		return []string{}
	}
	users, err := s.directory.ActiveUsers(ctx)
	if err != nil {
		s.logger.Warn("user directory unavailable, mentions dropped", slog.Any("err", err))
		return []string{}
	}
	return ResolveMentionsToUserIDs(tokens, users)
}

func (s *CommentService) notify(ctx context.Context, mentioned []string, comment *entity.Comment) {
	if len(mentioned) == 0 {
		return
	}
	if _, err := s.notifier.NotifyMentionedUsers(ctx, mentioned, comment.ID, comment.TaskID, comment.AuthorID, comment.AuthorName); err != nil {
		s.logger.Error("mention fan-out failed",
			slog.String("comment_id", comment.ID),
			slog.String("task_id", comment.TaskID),
			slog.Any("err", err))
	}
}

// PostComment persists the comment first; notifications follow and never
// undo it.
func (s *CommentService) PostComment(ctx context.Context, session *entity.Session, taskID string, req *entity.CommentRequest) (*entity.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.visibleTask(ctx, session, taskID); err != nil {
		return nil, err
	}

	mentions := s.resolveMentions(ctx, req.Content)

	comment, err := s.commentRepo.Create(ctx, &entity.Comment{
		TaskID:     taskID,
		AuthorID:   session.UserID,
		AuthorName: session.Name,
		Content:    req.Content,
		Mentions:   mentions,
	})
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.events.Publish(ctx, entity.Event{
		Type:    entity.EventCommentAdded,
		Topic:   entity.TaskTopic(taskID),
		Payload: comment,
	})
	s.notify(ctx, mentions, comment)
	return comment, nil
}

func (s *CommentService) commentOf(ctx context.Context, taskID, commentID string) (*entity.Comment, error) {
	c, err := s.commentRepo.GetById(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.TaskID != taskID {
		return nil, entity.ErrCommentNotFound
	}
	return c, nil
}

// EditComment rewrites the author's own comment and notifies only users the
// edit newly mentions.
func (s *CommentService) EditComment(ctx context.Context, session *entity.Session, taskID, commentID string, req *entity.CommentRequest) (*entity.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.visibleTask(ctx, session, taskID); err != nil {
		return nil, err
	}
	existing, err := s.commentOf(ctx, taskID, commentID)
	if err != nil {
		return nil, err
	}
	if existing.Deleted {
		return nil, entity.ErrCommentDeleted
	}
	if existing.AuthorID != session.UserID {
		return nil, entity.ErrForbidden
	}

	mentions := s.resolveMentions(ctx, req.Content)

	updated, err := s.commentRepo.UpdateContent(ctx, commentID, req.Content, mentions)
	if err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	s.events.Publish(ctx, entity.Event{
		Type:    entity.EventCommentUpdated,
		Topic:   entity.TaskTopic(taskID),
		Payload: updated,
	})
	s.notify(ctx, newlyMentioned(existing.Mentions, mentions), updated)
	return updated, nil
}

func newlyMentioned(before, after []string) []string {
	had := make(map[string]struct{}, len(before))
	for _, id := range before {
		had[id] = struct{}{}
	}
	out := make([]string, 0, len(after))
	for _, id := range after {
		if _, ok := had[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// DeleteComment soft-deletes: the row stays, its text is replaced.
func (s *CommentService) DeleteComment(ctx context.Context, session *entity.Session, taskID, commentID string) (*entity.Comment, error) {
	if _, err := s.visibleTask(ctx, session, taskID); err != nil {
		return nil, err
	}
	existing, err := s.commentOf(ctx, taskID, commentID)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != session.UserID && session.Role != entity.RoleAdmin {
		return nil, entity.ErrForbidden
	}
	if existing.Deleted {
		return existing, nil
	}

	deleted, err := s.commentRepo.SoftDelete(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("deleting comment: %w", err)
	}

	s.events.Publish(ctx, entity.Event{
		Type:    entity.EventCommentDeleted,
		Topic:   entity.TaskTopic(taskID),
		Payload: deleted,
	})
	return deleted, nil
}

func (s *CommentService) ListComments(ctx context.Context, session *entity.Session, taskID string) ([]entity.Comment, error) {
	if _, err := s.visibleTask(ctx, session, taskID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByTask(ctx, taskID)
}
