package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

// SubtaskService - any collaborator who can see a task may work its checklist.
type SubtaskService struct {
	taskRepo    repository.ITaskRepository
	subtaskRepo repository.ISubtaskRepository
	rollup      TaskStatusRoller
	events      EventPublisher
	logger      *slog.Logger
}

func NewSubtaskService(
	taskRepo repository.ITaskRepository,
	subtaskRepo repository.ISubtaskRepository,
	rollup TaskStatusRoller,
	events EventPublisher,
	logger *slog.Logger,
) *SubtaskService {
	return &SubtaskService{
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		rollup:      rollup,
		events:      events,
		logger:      logger,
	}
}

func (s *SubtaskService) visibleTask(ctx context.Context, session *entity.Session, taskID string) (*entity.Task, error) {
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

func (s *SubtaskService) subtaskOf(ctx context.Context, taskID, subtaskID string) (*entity.Subtask, error) {
	st, err := s.subtaskRepo.GetById(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	if st == nil || st.TaskID != taskID {
		return nil, entity.ErrSubtaskNotFound
	}
	return st, nil
}

// afterChange signals the change and rolls the parent status up. Neither
// step can fail the mutation that already happened.
func (s *SubtaskService) afterChange(ctx context.Context, session *entity.Session, taskID string, payload interface{}) {
	s.events.Publish(ctx, entity.Event{
		Type:    entity.EventSubtaskChanged,
		Topic:   entity.TaskTopic(taskID),
		Payload: payload,
	})
	if err := s.rollup.RollupTaskStatus(ctx, taskID, session.UserID); err != nil {
		s.logger.Error("status rollup failed",
			slog.String("task_id", taskID),
			slog.Any("err", err))
	}
}

func (s *SubtaskService) CreateSubtask(ctx context.Context, session *entity.Session, taskID string, req *entity.CreateSubtaskRequest) (*entity.Subtask, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.visibleTask(ctx, session, taskID); err != nil {
		return nil, err
	}

	created, err := s.subtaskRepo.Create(ctx, &entity.Subtask{
		TaskID:    taskID,
		Title:     req.Title,
		CreatedBy: session.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating subtask: %w", err)
	}

	s.afterChange(ctx, session, taskID, created)
	return created, nil
}

// ToggleSubtask sets the completion flag to completed, or flips it when
// completed is nil.
func (s *SubtaskService) ToggleSubtask(ctx context.Context, session *entity.Session, taskID, subtaskID string, completed *bool) (*entity.Subtask, error) {
	if _, err := s.visibleTask(ctx, session, taskID); err != nil {
		return nil, err
	}
	st, err := s.subtaskOf(ctx, taskID, subtaskID)
	if err != nil {
		return nil, err
	}

	next := !st.Completed
	if completed != nil {
		next = *completed
	}
	if next == st.Completed {
		return st, nil
	}

	updated, err := s.subtaskRepo.SetCompleted(ctx, subtaskID, next)
	if err != nil {
		return nil, fmt.Errorf("updating subtask: %w", err)
	}

	s.afterChange(ctx, session, taskID, updated)
	return updated, nil
}

func (s *SubtaskService) DeleteSubtask(ctx context.Context, session *entity.Session, taskID, subtaskID string) error {
	if _, err := s.visibleTask(ctx, session, taskID); err != nil {
		return err
	}
	if _, err := s.subtaskOf(ctx, taskID, subtaskID); err != nil {
		return err
	}

	if err := s.subtaskRepo.Delete(ctx, subtaskID); err != nil {
		return fmt.Errorf("deleting subtask: %w", err)
	}

	s.afterChange(ctx, session, taskID, map[string]interface{}{"id": subtaskID, "deleted": true})
	return nil
}

func (s *SubtaskService) ListSubtasks(ctx context.Context, session *entity.Session, taskID string) ([]entity.Subtask, error) {
	if _, err := s.visibleTask(ctx, session, taskID); err != nil {
		return nil, err
	}
	return s.subtaskRepo.ListByTask(ctx, taskID)
}
