package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

// UserDirectory serves the list of users that mentions resolve against.
// Reads go to the local cache while it is younger than ttl.
type UserDirectory struct {
	userRepo repository.IUserRepository
	cache    repository.IUserCache
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	// gen is bumped by Invalidate. A refresh that read the database under an
	// older generation must not write its snapshot back.
	mu  sync.Mutex
	gen uint64
}

func NewUserDirectory(userRepo repository.IUserRepository, cache repository.IUserCache, ttl time.Duration, logger *slog.Logger) *UserDirectory {
	return &UserDirectory{
		userRepo: userRepo,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func activeOnly(users []entity.User) []entity.User {
	out := make([]entity.User, 0, len(users))
	for _, u := range users {
		if u.Status == entity.UserActive {
			out = append(out, u)
		}
	}
	return out
}

func (d *UserDirectory) ActiveUsers(ctx context.Context) ([]entity.User, error) {
	cached, savedAt, err := d.cache.Load(ctx)
	switch {
	case err != nil:
		d.logger.Warn("user cache read failed", slog.Any("err", err))
	case !savedAt.IsZero() && d.now().Sub(savedAt) < d.ttl:
		return activeOnly(cached), nil
	}

	d.mu.Lock()
	gen := d.gen
	d.mu.Unlock()

	users, err := d.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading user directory: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return activeOnly(users), nil
	}
	if err := d.cache.Save(ctx, users); err != nil {
		d.logger.Warn("user cache write failed", slog.Any("err", err))
	}
	return activeOnly(users), nil
}

// Invalidate forces the next read through to the database.
func (d *UserDirectory) Invalidate(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if err := d.cache.Clear(ctx); err != nil {
		d.logger.Warn("user cache clear failed", slog.Any("err", err))
	}
}
