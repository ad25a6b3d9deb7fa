package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

type UserService struct {
	userRepo  repository.IUserRepository
	identity  IdentityProvider
	directory UserDirectoryReader
	logger    *slog.Logger
}

func NewUserService(
	userRepo repository.IUserRepository,
	identity IdentityProvider,
	directory UserDirectoryReader,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		identity:  identity,
		directory: directory,
		logger:    logger,
	}
}

// CreateUser registers the identity first, then the user record under the
// identity's uid. If the record cannot be written the identity is removed
// again so the email is not left half-registered.
func (s *UserService) CreateUser(ctx context.Context, session *entity.Session, req *entity.CreateUserRequest) (*entity.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !session.Role.CanCreate(req.Role) {
		return nil, entity.ErrForbidden
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if existing != nil {
		return nil, entity.ErrEmailAlreadyRegistered
	}

	uid, err := s.identity.CreateIdentity(ctx, &entity.IdentityRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
	})
	if err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("creating identity: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &entity.User{
		ID:            uid,
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Tier:          req.Tier,
		DepartmentID:  req.DepartmentID,
		DesignationID: req.DesignationID,
		Status:        entity.UserActive,
	})
	if err != nil {
		if delErr := s.identity.DeleteIdentity(ctx, uid); delErr != nil {
			s.logger.Error("orphaned identity after failed user write",
				slog.String("uid", uid), slog.Any("err", delErr))
		}
		if errors.Is(err, entity.ErrEmailAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("creating user record: %w", err)
	}

	s.directory.Invalidate(ctx)
	s.logger.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.String("by", session.UserID))
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.List(ctx)
}

// SetStatus activates or deactivates a user. Deactivation also revokes the
// user's sessions; a failed revoke is logged.
func (s *UserService) SetStatus(ctx context.Context, session *entity.Session, userID string, status entity.UserStatus) (*entity.User, error) {
	if session.Role != entity.RoleAdmin {
		return nil, entity.ErrForbidden
	}
	if _, err := entity.ParseUserStatus(string(status)); err != nil {
		return nil, err
	}
	if userID == session.UserID && status == entity.UserInactive {
		return nil, &entity.ValidationError{Field: "status", Message: "you cannot deactivate yourself"}
	}

	user, err := s.userRepo.SetStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	if status == entity.UserInactive {
		if err := s.identity.RevokeSessions(ctx, userID); err != nil {
			s.logger.Error("revoking sessions failed", slog.String("user_id", userID), slog.Any("err", err))
		}
	}
	s.directory.Invalidate(ctx)
	return user, nil
}
