package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

// StatusRollup derives a parent task's status from its subtasks.
type StatusRollup struct {
	taskRepo    repository.ITaskRepository
	subtaskRepo repository.ISubtaskRepository
	events      EventPublisher
	audit       *auditSender
	logger      *slog.Logger
	now         func() time.Time
}

func NewStatusRollup(
	taskRepo repository.ITaskRepository,
	subtaskRepo repository.ISubtaskRepository,
	events EventPublisher,
	auditPublisher AuditPublisher,
	logger *slog.Logger,
) *StatusRollup {
	return &StatusRollup{
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		events:      events,
		audit:       &auditSender{publisher: auditPublisher, logger: logger},
		logger:      logger,
		now:         time.Now,
	}
}

// derivedStatus returns the status implied by the subtasks, or false when the
// subtasks imply no change. A task never rolls back to pending.
func derivedStatus(subtasks []entity.Subtask) (entity.TaskStatus, bool) {
	total := len(subtasks)
	if total == 0 {
		return "", false
	}
	completed := 0
	for _, st := range subtasks {
		if st.Completed {
			completed++
		}
	}
	switch {
	case completed == total:
		return entity.StatusCompleted, true
	case completed > 0:
		return entity.StatusInProgress, true
	default:
		return "", false
	}
}

// RollupTaskStatus recomputes and, if it changed, persists the task's status.
// actorID is recorded on the audit message.
func (r *StatusRollup) RollupTaskStatus(ctx context.Context, taskID string, actorID string) error {
	task, err := r.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return fmt.Errorf("loading task %s: %w", taskID, err)
	}
	if task == nil {
		return entity.ErrTaskNotFound
	}

	subtasks, err := r.subtaskRepo.ListByTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("listing subtasks of %s: %w", taskID, err)
	}

	next, ok := derivedStatus(subtasks)
	if !ok || next == task.Status {
		return nil
	}

	derived := *task
	derived.ApplyStatus(next, r.now().UTC())

	updated, err := r.taskRepo.Update(ctx, taskID, map[string]interface{}{
		"status":       derived.Status,
		"completed_at": derived.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("writing rolled up status: %w", err)
	}

	r.logger.Info("task status rolled up",
		slog.String("task_id", taskID),
		slog.String("from", string(task.Status)),
		slog.String("to", string(updated.Status)))

	r.audit.sendTask(entity.ActionUpdate, actorID, task, updated)
	r.events.Publish(ctx, entity.Event{
		Type:    entity.EventTaskStatusUpdated,
		Topic:   entity.TaskTopic(taskID),
		Payload: updated,
	})
	return nil
}
