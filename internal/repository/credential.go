package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CredentialRepository struct {
	db *pgxpool.Pool
}

func NewCredentialRepository(db *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{
		db: db,
	}
}

func scanCredential(row pgx.Row) (*entity.Credential, error) {
	var c entity.Credential
	if err := row.Scan(&c.UserID, &c.Email, &c.PasswordHash, &c.RevokedBefore, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CredentialRepository) Create(ctx context.Context, cred *entity.Credential) error {
	_, err := r.db.Exec(ctx, `
	INSERT INTO credentials (user_id, email, password_hash)
	VALUES ($1, lower($2), $3)
	`, cred.UserID, cred.Email, cred.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	c, err := scanCredential(r.db.QueryRow(ctx, `
	SELECT user_id, email, password_hash, revoked_before, created_at
	FROM credentials
	WHERE email = lower($1)
	`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CredentialRepository) GetByUserId(ctx context.Context, userId string) (*entity.Credential, error) {
	c, err := scanCredential(r.db.QueryRow(ctx, `
	SELECT user_id, email, password_hash, revoked_before, created_at
	FROM credentials
	WHERE user_id = $1
	`, userId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userId string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM credentials WHERE user_id = $1`, userId)
	return err
}

// RevokeBefore - откатываем все токены, выпущенные до t
func (r *CredentialRepository) RevokeBefore(ctx context.Context, userId string, t time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE credentials SET revoked_before = $1 WHERE user_id = $2`, t, userId)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

// SetPasswordHash - меняем хеш пароля и откатываем все выданные токены
func (r *CredentialRepository) SetPasswordHash(ctx context.Context, userId string, hash string) error {
	tag, err := r.db.Exec(ctx, `
	UPDATE credentials SET password_hash = $1, revoked_before = now()
	WHERE user_id = $2
	`, hash, userId)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}
