package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subtaskColumns = `id, task_id, title, completed, created_by, created_at, updated_at`

type SubtaskRepository struct {
	db *pgxpool.Pool
}

func NewSubtaskRepository(db *pgxpool.Pool) *SubtaskRepository {
	return &SubtaskRepository{
		db: db,
	}
}

func scanSubtask(row pgx.Row) (*entity.Subtask, error) {
	var s entity.Subtask
	if err := row.Scan(
		&s.ID,
		&s.TaskID,
		&s.Title,
		&s.Completed,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *entity.Subtask) (*entity.Subtask, error) {
	if subtask.ID == "" {
		subtask.ID = uuid.NewString()
	}

	query := `
	INSERT INTO subtasks (id, task_id, title, completed, created_by)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + subtaskColumns

	created, err := scanSubtask(r.db.QueryRow(ctx, query,
		subtask.ID, subtask.TaskID, subtask.Title, subtask.Completed, subtask.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("insert subtask: %w", err)
	}
	return created, nil
}

func (r *SubtaskRepository) GetById(ctx context.Context, id string) (*entity.Subtask, error) {
	s, err := scanSubtask(r.db.QueryRow(ctx, `SELECT `+subtaskColumns+` FROM subtasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *SubtaskRepository) SetCompleted(ctx context.Context, id string, completed bool) (*entity.Subtask, error) {
	query := `
	UPDATE subtasks
	SET completed = $1, updated_at = now()
	WHERE id = $2
	RETURNING ` + subtaskColumns

	s, err := scanSubtask(r.db.QueryRow(ctx, query, completed, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("update subtask %s: %w", id, err)
	}
	return s, nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subtask %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSubtaskNotFound
	}
	return nil
}

// ListByTask - подзадачи в порядке создания
func (r *SubtaskRepository) ListByTask(ctx context.Context, taskId string) ([]entity.Subtask, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE task_id = $1 ORDER BY created_at ASC`, taskId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []entity.Subtask
	for rows.Next() {
		s, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, *s)
	}
	return subtasks, rows.Err()
}
