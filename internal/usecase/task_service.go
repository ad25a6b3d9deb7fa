package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

type TaskService struct {
	taskRepo repository.ITaskRepository
	userRepo repository.IUserRepository
	audit    *auditSender
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

func NewTaskService(
	taskRepo repository.ITaskRepository,
	userRepo repository.IUserRepository,
	auditPublisher AuditPublisher,
	events EventPublisher,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		audit:    &auditSender{publisher: auditPublisher, logger: logger},
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *TaskService) requireAssignee(ctx context.Context, userID string) error {
	assignee, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return err
	}
	if assignee == nil {
		return entity.ErrUserNotFound
	}
	if assignee.Status != entity.UserActive {
		return &entity.ValidationError{Field: "assignee_id", Message: "assignee is not active"}
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, session *entity.Session, req *entity.CreateTaskRequest) (*entity.Task, error) {
	if !session.Role.CanManageTasks() {
		return nil, entity.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireAssignee(ctx, req.AssigneeID); err != nil {
		return nil, err
	}

	task := &entity.Task{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Priority:    req.Priority,
		DueAt:       req.DueAt,
		CreatedBy:   session.UserID,
	}
	// создатель берется из сессии, не из тела запроса (безопасность!)
	task.ApplyStatus(req.Status, s.now().UTC())

	// Создаем задачу
	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	// Асинхронно отправляем аудит
	s.audit.sendTask(entity.ActionCreate, session.UserID, nil, created)
	s.events.Publish(ctx, entity.Event{
		Type:    entity.EventTaskChanged,
		Topic:   entity.TaskTopic(created.ID),
		Payload: created,
	})
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, session *entity.Session, taskID string) (*entity.Task, error) {
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

func (s *TaskService) UpdateTask(ctx context.Context, session *entity.Session, taskID string, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	if req.Empty() {
		return nil, entity.ErrNoFieldsToUpdate
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 1. Получаем текущую задачу
	oldTask, err := s.GetTask(ctx, session, taskID)
	if err != nil {
		return nil, err
	}

	// 2. Проверяем права доступа: staff может менять только статус своих задач
	if !canEditTask(session, oldTask) {
		if !req.StatusOnly() || oldTask.AssigneeID != session.UserID {
			return nil, entity.ErrForbidden
		}
	}

	// 3. Подготавливаем обновления
	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.AssigneeID != nil && *req.AssigneeID != oldTask.AssigneeID {
		if err := s.requireAssignee(ctx, *req.AssigneeID); err != nil {
			return nil, err
		}
		updates["assignee_id"] = *req.AssigneeID
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.DueAt != nil {
		updates["due_at"] = *req.DueAt
	}
	if req.Status != nil {
		next := *oldTask
		next.ApplyStatus(*req.Status, s.now().UTC())
		updates["status"] = next.Status
		updates["completed_at"] = next.CompletedAt
	}

	// 4. Обновляем задачу
	updatedTask, err := s.taskRepo.Update(ctx, taskID, updates)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	// 5. Асинхронно отправляем аудит
	s.audit.sendTask(entity.ActionUpdate, session.UserID, oldTask, updatedTask)

	eventType := entity.EventTaskChanged
	if updatedTask.Status != oldTask.Status {
		eventType = entity.EventTaskStatusUpdated
	}
	s.events.Publish(ctx, entity.Event{
		Type:    eventType,
		Topic:   entity.TaskTopic(taskID),
		Payload: updatedTask,
	})
	return updatedTask, nil
}

// DeleteTask удаляет задачу с подзадачами, комментарии и уведомления
// уходят вместе с ней по внешним ключам
func (s *TaskService) DeleteTask(ctx context.Context, session *entity.Session, taskID string) error {
	// 1. Получаем задачу (для аудита и проверки прав)
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return entity.ErrTaskNotFound
	}
	if !canDeleteTask(session, task) {
		return entity.ErrForbidden
	}

	// 2. Удаляем задачу
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	s.audit.sendTask(entity.ActionDelete, session.UserID, task, nil)
	s.events.Publish(ctx, entity.Event{
		Type:    entity.EventTaskChanged,
		Topic:   entity.TaskTopic(taskID),
		Payload: map[string]interface{}{"id": taskID, "deleted": true},
	})
	s.logger.Info("task deleted", slog.String("task_id", taskID), slog.String("by", session.UserID))
	return nil
}

// ListTasks сужает фильтр до задач, видимых вызывающему
func (s *TaskService) ListTasks(ctx context.Context, session *entity.Session, filter entity.TaskFilter) ([]entity.Task, error) {
	if filter.Status != "" {
		if _, err := entity.ParseTaskStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}

	if !session.Tier.SeesAllTasks() {
		switch session.Role {
		case entity.RoleAdmin:
		case entity.RoleManager:
			filter.VisibleTo = session.UserID
		case entity.RoleStaff:
			filter.AssigneeID = session.UserID
		default:
			return nil, entity.ErrForbidden
		}
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}
