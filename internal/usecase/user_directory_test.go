package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
)

func TestUserDirectoryServesFreshCache(t *testing.T) {
	dbCalls := 0
	userRepo := &MockUserRepository{
		ListFunc: func(ctx context.Context) ([]entity.User, error) {
			dbCalls++
			return nil, nil
		},
	}
	cache := &MockUserCache{
		LoadFunc: func(ctx context.Context) ([]entity.User, time.Time, error) {
			return []entity.User{
				{ID: "a", Status: entity.UserActive},
				{ID: "b", Status: entity.UserInactive},
			}, time.Now().Add(-time.Minute), nil
		},
	}

	d := NewUserDirectory(userRepo, cache, 5*time.Minute, discardLogger())
	users, err := d.ActiveUsers(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if dbCalls != 0 {
		t.Errorf("Expected cache hit, got %d db calls", dbCalls)
	}
	if len(users) != 1 || users[0].ID != "a" {
		t.Errorf("Expected only active users, got %+v", users)
	}
}

func TestUserDirectoryRefreshesStaleCache(t *testing.T) {
	tests := []struct {
		name    string
		savedAt time.Time
		loadErr error
	}{
		{name: "cold", savedAt: time.Time{}},
		{name: "stale", savedAt: time.Now().Add(-time.Hour)},
		{name: "unreadable", loadErr: errors.New("disk gone")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved []entity.User
			userRepo := &MockUserRepository{
				ListFunc: func(ctx context.Context) ([]entity.User, error) {
					return []entity.User{{ID: "fresh", Status: entity.UserActive}}, nil
				},
			}
			cache := &MockUserCache{
				LoadFunc: func(ctx context.Context) ([]entity.User, time.Time, error) {
					return []entity.User{{ID: "old", Status: entity.UserActive}}, tt.savedAt, tt.loadErr
				},
				SaveFunc: func(ctx context.Context, users []entity.User) error {
					saved = users
					return nil
				},
			}

			d := NewUserDirectory(userRepo, cache, 5*time.Minute, discardLogger())
			users, err := d.ActiveUsers(context.Background())
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(users) != 1 || users[0].ID != "fresh" {
				t.Errorf("Expected fresh users, got %+v", users)
			}
			if len(saved) != 1 {
				t.Errorf("Expected the cache to be refilled, got %+v", saved)
			}
		})
	}
}

func TestUserDirectoryDatabaseFailure(t *testing.T) {
	userRepo := &MockUserRepository{
		ListFunc: func(ctx context.Context) ([]entity.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	d := NewUserDirectory(userRepo, &MockUserCache{}, time.Minute, discardLogger())

	if _, err := d.ActiveUsers(context.Background()); err == nil {
		t.Error("Expected error when both cache and database are unavailable")
	}
}

func TestUserDirectoryInvalidate(t *testing.T) {
	cleared := false
	cache := &MockUserCache{
		ClearFunc: func(ctx context.Context) error {
			cleared = true
			return nil
		},
	}
	d := NewUserDirectory(&MockUserRepository{}, cache, time.Minute, discardLogger())

	d.Invalidate(context.Background())
	if !cleared {
		t.Error("Expected cache to be cleared")
	}
}

func TestUserDirectoryInvalidateDuringRefreshSkipsSave(t *testing.T) {
	var d *UserDirectory
	lists := 0
	userRepo := &MockUserRepository{
		ListFunc: func(ctx context.Context) ([]entity.User, error) {
			lists++
			if lists == 1 {
				// a user is deactivated while the first refresh is reading
				d.Invalidate(ctx)
				return []entity.User{{ID: "u1", Status: entity.UserActive}}, nil
			}
			return []entity.User{{ID: "u1", Status: entity.UserInactive}}, nil
		},
	}
	var saved [][]entity.User
	cache := &MockUserCache{
		SaveFunc: func(ctx context.Context, users []entity.User) error {
			saved = append(saved, users)
			return nil
		},
	}
	d = NewUserDirectory(userRepo, cache, time.Minute, discardLogger())

	users, err := d.ActiveUsers(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(users) != 1 {
		t.Errorf("Expected the read to still return its result, got %+v", users)
	}
	if len(saved) != 0 {
		t.Fatalf("Expected the pre-invalidation snapshot not to be cached, got %+v", saved)
	}

	users, err = d.ActiveUsers(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(users) != 0 {
		t.Errorf("Expected no active users after refresh, got %+v", users)
	}
	if len(saved) != 1 || saved[0][0].Status != entity.UserInactive {
		t.Errorf("Expected the fresh snapshot to be cached, got %+v", saved)
	}
}
