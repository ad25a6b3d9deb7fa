package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
)

const auditPublishTimeout = 5 * time.Second

// auditSender publishes task audit messages in the background. A failed
// publish is logged; the operation that triggered it has already succeeded.
type auditSender struct {
	publisher AuditPublisher
	logger    *slog.Logger
}

func taskAuditValues(t *entity.Task) map[string]interface{} {
	if t == nil {
		return nil
	}
	values := map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
		"assignee_id": t.AssigneeID,
		"priority":    t.Priority,
		"status":      t.Status,
		"created_by":  t.CreatedBy,
	}
	if t.DueAt != nil {
		values["due_at"] = t.DueAt.UTC().Format(time.RFC3339)
	}
	if t.CompletedAt != nil {
		values["completed_at"] = t.CompletedAt.UTC().Format(time.RFC3339)
	}
	return values
}

// taskChanges - field -> {old, new} for every field that differs
func taskChanges(oldTask, newTask *entity.Task) map[string]interface{} {
	oldValues, newValues := taskAuditValues(oldTask), taskAuditValues(newTask)
	changes := make(map[string]interface{})
	for field, nv := range newValues {
		if ov, ok := oldValues[field]; !ok || ov != nv {
			changes[field] = map[string]interface{}{"old": oldValues[field], "new": nv}
		}
	}
	for field, ov := range oldValues {
		if _, ok := newValues[field]; !ok {
			changes[field] = map[string]interface{}{"old": ov, "new": nil}
		}
	}
	return changes
}

func (a *auditSender) sendTask(action entity.ActionType, userID string, oldTask, newTask *entity.Task) {
	if a == nil || a.publisher == nil {
		return
	}

	msg := &entity.AuditMessage{
		Action:     action,
		UserID:     userID,
		EntityType: "task",
		Timestamp:  time.Now().UTC(),
	}

	switch action {
	case entity.ActionCreate:
		msg.EntityID = newTask.ID
		msg.NewValues = taskAuditValues(newTask)
	case entity.ActionUpdate:
		msg.EntityID = newTask.ID
		msg.OldValues = taskAuditValues(oldTask)
		msg.NewValues = taskAuditValues(newTask)
		msg.Changes = taskChanges(oldTask, newTask)
	case entity.ActionDelete:
		msg.EntityID = oldTask.ID
		msg.OldValues = taskAuditValues(oldTask)
	case entity.ActionRead:
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditPublishTimeout)
		defer cancel()
		if err := a.publisher.PublishAuditMessage(ctx, msg); err != nil {
			a.logger.Error("audit publish failed",
				slog.String("action", string(action)),
				slog.String("task_id", msg.EntityID),
				slog.Any("err", err))
			return
		}
		a.logger.Debug("audit published",
			slog.String("action", string(action)),
			slog.String("task_id", msg.EntityID))
	}()
}
