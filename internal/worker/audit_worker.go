package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/infrastructure/client"
	"github.com/St1cky1/task-portal/internal/repository"
)

// AuditWorker сохраняет сообщения из очереди аудита в task_audit
type AuditWorker struct {
	consumer  *consumer
	auditRepo repository.ITaskAuditRepository
	logger    *slog.Logger
}

func NewAuditWorker(opener ChannelOpener, auditRepo repository.ITaskAuditRepository, logger *slog.Logger) *AuditWorker {
	w := &AuditWorker{
		auditRepo: auditRepo,
		logger:    logger,
	}
	w.consumer = &consumer{
		opener: opener,
		queue:  client.AuditQueue,
		tag:    "audit_worker",
		handle: w.Handle,
		logger: logger,
	}
	return w
}

func (w *AuditWorker) Start(ctx context.Context) {
	w.consumer.start(ctx)
}

// Handle сохраняет одно сообщение аудита. Ошибки БД повторяются, битые сообщения нет
func (w *AuditWorker) Handle(ctx context.Context, body []byte) error {
	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(body, &auditMsg); err != nil {
		return permanent(fmt.Errorf("parsing audit message: %w", err))
	}

	// 2. Конвертируем в TaskAudit
	taskAudit, err := convertToTaskAudit(&auditMsg)
	if err != nil {
		return permanent(fmt.Errorf("converting audit message: %w", err))
	}

	// 3. Сохраняем в БД, подтверждение делает settle
	if err := w.auditRepo.Create(ctx, taskAudit); err != nil {
		return fmt.Errorf("saving audit: %w", err)
	}

	w.logger.Debug("audit saved",
		slog.String("action", string(taskAudit.Action)),
		slog.String("entity_id", taskAudit.EntityID))
	return nil
}

// jsonString конвертирует map[string]any в JSON строку
func jsonString(v map[string]any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func convertToTaskAudit(msg *entity.AuditMessage) (*entity.TaskAudit, error) {
	oldValues, err := jsonString(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := jsonString(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := jsonString(msg.Changes)
	if err != nil {
		return nil, err
	}

	entityType := msg.EntityType
	if entityType == "" {
		entityType = "task"
	}

	return &entity.TaskAudit{
		UserID:     msg.UserID,
		Action:     msg.Action,
		EntityType: entityType,
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangesAt:  msg.Timestamp,
	}, nil
}
