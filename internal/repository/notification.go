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

const notificationColumns = `id, user_id, comment_id, task_id, mentioned_by, mentioned_by_name, read, created_at`

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.CommentID,
		&n.TaskID,
		&n.MentionedBy,
		&n.MentionedByName,
		&n.Read,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateBatch - все вставки в одной транзакции, одна ошибка откатывает весь батч
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []entity.Notification) ([]entity.Notification, error) {
	if len(notifications) == 0 {
		return nil, nil
	}

	query := `
	INSERT INTO comment_notifications (id, user_id, comment_id, task_id, mentioned_by, mentioned_by_name, read)
	VALUES ($1, $2, $3, $4, $5, $6, false)
	RETURNING ` + notificationColumns

	created := make([]entity.Notification, 0, len(notifications))
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, n := range notifications {
			id := n.ID
			if id == "" {
				id = uuid.NewString()
			}
			batch.Queue(query, id, n.UserID, n.CommentID, n.TaskID, n.MentionedBy, n.MentionedByName)
		}

		results := tx.SendBatch(ctx, batch)
		for range notifications {
			n, err := scanNotification(results.QueryRow())
			if err != nil {
				results.Close()
				return err
			}
			created = append(created, *n)
		}
		return results.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("insert notification batch: %w", err)
	}
	return created, nil
}

func (r *NotificationRepository) GetById(ctx context.Context, id string) (*entity.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM comment_notifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE comment_notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead - одним запросом помечаем все непрочитанные пользователя
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userId string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE comment_notifications SET read = true WHERE user_id = $1 AND read = false`, userId)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read for %s: %w", userId, err)
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userId string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM comment_notifications WHERE user_id = $1 AND read = false`, userId).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userId string, unreadOnly bool, limit int) ([]entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM comment_notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, userId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}
