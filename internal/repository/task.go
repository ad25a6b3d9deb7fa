package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, assignee_id, priority, status, due_at, created_by, created_at, updated_at, completed_at`

// колонки, которые может менять Update
var taskUpdatable = map[string]bool{
	"title":        true,
	"description":  true,
	"assignee_id":  true,
	"priority":     true,
	"status":       true,
	"due_at":       true,
	"completed_at": true,
}

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var task entity.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.AssigneeID,
		&task.Priority,
		&task.Status,
		&task.DueAt,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	query := `
	INSERT INTO tasks (id, title, description, assignee_id, priority, status, due_at, created_by, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING ` + taskColumns

	created, err := scanTask(r.db.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.AssigneeID,
		task.Priority,
		task.Status,
		task.DueAt,
		task.CreatedBy,
		task.CompletedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

func (r *TaskRepository) GetByTaskId(ctx context.Context, taskId string) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// Update - динамически строим SET часть запроса, updated_at обновляется всегда
func (r *TaskRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error) {
	fields := make([]string, 0, len(updates))
	for field := range updates {
		if !taskUpdatable[field] {
			return nil, fmt.Errorf("update task: column %q is not updatable", field)
		}
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}
	sort.Strings(fields)

	var setClause strings.Builder
	args := make([]interface{}, 0, len(fields)+1)
	for i, field := range fields {
		if i > 0 {
			setClause.WriteString(", ")
		}
		setClause.WriteString(field + " = $" + strconv.Itoa(i+1))
		args = append(args, updates[field])
	}
	setClause.WriteString(", updated_at = now()")
	args = append(args, id)

	query := `
	UPDATE tasks
	SET ` + setClause.String() + `
	WHERE id = $` + strconv.Itoa(len(args)) + `
	RETURNING ` + taskColumns

	task, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return task, nil
}

// Delete - удаление задачи с подзадачами в одной транзакции, комментарии и
// уведомления удаляются через ON DELETE CASCADE
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM subtasks WHERE task_id = $1`, id); err != nil {
			return fmt.Errorf("delete subtasks of %s: %w", id, err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete task %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return entity.ErrTaskNotFound
		}
		return nil
	})
}

// List - список задач с фильтрацией, новые первыми
func (r *TaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`)
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		query.WriteString(" AND status = " + arg(filter.Status))
	}
	if filter.AssigneeID != "" {
		query.WriteString(" AND assignee_id = " + arg(filter.AssigneeID))
	}
	if filter.CreatedBy != "" {
		query.WriteString(" AND created_by = " + arg(filter.CreatedBy))
	}
	if filter.VisibleTo != "" {
		p := arg(filter.VisibleTo)
		query.WriteString(" AND (assignee_id = " + p + " OR created_by = " + p + ")")
	}
	query.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []entity.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
