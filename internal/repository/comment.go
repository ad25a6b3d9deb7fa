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

const commentColumns = `id, task_id, author_id, author_name, content, mentions, edited, deleted, created_at, updated_at`

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{
		db: db,
	}
}

func scanComment(row pgx.Row) (*entity.Comment, error) {
	var c entity.Comment
	if err := row.Scan(
		&c.ID,
		&c.TaskID,
		&c.AuthorID,
		&c.AuthorName,
		&c.Content,
		&c.Mentions,
		&c.Edited,
		&c.Deleted,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if c.Mentions == nil {
		c.Mentions = []string{}
	}
	return &c, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) (*entity.Comment, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	mentions := comment.Mentions
	if mentions == nil {
		mentions = []string{}
	}

	query := `
	INSERT INTO task_comments (id, task_id, author_id, author_name, content, mentions)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + commentColumns

	created, err := scanComment(r.db.QueryRow(ctx, query,
		comment.ID, comment.TaskID, comment.AuthorID, comment.AuthorName, comment.Content, mentions))
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return created, nil
}

func (r *CommentRepository) GetById(ctx context.Context, id string) (*entity.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM task_comments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// UpdateContent - обновляем текст и упоминания, помечаем комментарий как измененный
func (r *CommentRepository) UpdateContent(ctx context.Context, id string, content string, mentions []string) (*entity.Comment, error) {
	if mentions == nil {
		mentions = []string{}
	}
	query := `
	UPDATE task_comments
	SET content = $1, mentions = $2, edited = true, updated_at = now()
	WHERE id = $3 AND deleted = false
	RETURNING ` + commentColumns

	c, err := scanComment(r.db.QueryRow(ctx, query, content, mentions, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrCommentNotFound
		}
		return nil, fmt.Errorf("update comment %s: %w", id, err)
	}
	return c, nil
}

// SoftDelete - комментарии никогда не удаляются физически
func (r *CommentRepository) SoftDelete(ctx context.Context, id string) (*entity.Comment, error) {
	query := `
	UPDATE task_comments
	SET deleted = true, content = $1, mentions = '{}', updated_at = now()
	WHERE id = $2
	RETURNING ` + commentColumns

	c, err := scanComment(r.db.QueryRow(ctx, query, entity.DeletedCommentContent, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrCommentNotFound
		}
		return nil, fmt.Errorf("delete comment %s: %w", id, err)
	}
	return c, nil
}

func (r *CommentRepository) ListByTask(ctx context.Context, taskId string) ([]entity.Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+commentColumns+` FROM task_comments WHERE task_id = $1 ORDER BY created_at ASC`, taskId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []entity.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}
