package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/St1cky1/task-portal/internal/entity"
)

const userCacheSchema = `
CREATE TABLE IF NOT EXISTS cached_users (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL,
	role           TEXT NOT NULL,
	tier           TEXT NOT NULL,
	department_id  TEXT NOT NULL DEFAULT '',
	designation_id TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS cache_meta (
	name     TEXT PRIMARY KEY,
	saved_at DATETIME NOT NULL
);
`

const userCacheMetaKey = "users"

type cachedUser struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	Role          string    `db:"role"`
	Tier          string    `db:"tier"`
	DepartmentID  string    `db:"department_id"`
	DesignationID string    `db:"designation_id"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// UserCache is a local SQLite snapshot of the user directory. Load and Save
// are the only ways in and out; the snapshot is replaced as a whole.
type UserCache struct {
	db *sqlx.DB
}

// NewUserCache opens (or creates) the cache database at path. ":memory:" is
// accepted for tests.
func NewUserCache(path string) (*UserCache, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening user cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec(userCacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating user cache schema: %w", err)
	}
	return &UserCache{db: db}, nil
}

func (c *UserCache) Close() error {
	return c.db.Close()
}

// Load returns the cached users and when they were saved. A never-saved
// cache returns a zero time.
func (c *UserCache) Load(ctx context.Context) ([]entity.User, time.Time, error) {
	var savedAt time.Time
	err := c.db.GetContext(ctx, &savedAt, `SELECT saved_at FROM cache_meta WHERE name = ?`, userCacheMetaKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading cache timestamp: %w", err)
	}

	var rows []cachedUser
	if err := c.db.SelectContext(ctx, &rows, `SELECT * FROM cached_users ORDER BY name`); err != nil {
		return nil, time.Time{}, fmt.Errorf("reading cached users: %w", err)
	}

	users := make([]entity.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, entity.User{
			ID:            r.ID,
			Name:          r.Name,
			Email:         r.Email,
			Role:          entity.Role(r.Role),
			Tier:          entity.Tier(r.Tier),
			DepartmentID:  r.DepartmentID,
			DesignationID: r.DesignationID,
			Status:        entity.UserStatus(r.Status),
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return users, savedAt, nil
}

// Save replaces the snapshot in one transaction.
func (c *UserCache) Save(ctx context.Context, users []entity.User) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_users`); err != nil {
		return fmt.Errorf("clearing cached users: %w", err)
	}

	for _, u := range users {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO cached_users (id, name, email, role, tier, department_id, designation_id, status, created_at, updated_at)
			VALUES (:id, :name, :email, :role, :tier, :department_id, :designation_id, :status, :created_at, :updated_at)`,
			cachedUser{
				ID:            u.ID,
				Name:          u.Name,
				Email:         u.Email,
				Role:          string(u.Role),
				Tier:          string(u.Tier),
				DepartmentID:  u.DepartmentID,
				DesignationID: u.DesignationID,
				Status:        string(u.Status),
				CreatedAt:     u.CreatedAt.UTC(),
				UpdatedAt:     u.UpdatedAt.UTC(),
			})
		if err != nil {
			return fmt.Errorf("caching user %s: %w", u.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_meta (name, saved_at) VALUES (?, ?)`,
		userCacheMetaKey, time.Now().UTC()); err != nil {
		return fmt.Errorf("stamping cache: %w", err)
	}

	return tx.Commit()
}

// Clear drops the snapshot so the next Load reports a cold cache.
func (c *UserCache) Clear(ctx context.Context) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_users`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_meta WHERE name = ?`, userCacheMetaKey); err != nil {
		return err
	}
	return tx.Commit()
}
