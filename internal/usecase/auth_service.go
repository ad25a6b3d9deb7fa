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

type AuthService struct {
	userRepo repository.IUserRepository
	identity IdentityProvider
	emails   EmailPublisher
	logger   *slog.Logger
}

func NewAuthService(
	userRepo repository.IUserRepository,
	identity IdentityProvider,
	emails EmailPublisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		identity: identity,
		emails:   emails,
		logger:   logger,
	}
}

func (s *AuthService) SignIn(ctx context.Context, req *entity.SignInRequest) (*entity.SignInResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, &entity.ValidationError{Field: "email", Message: "email and password are required"}
	}

	token, err := s.identity.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetById(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, entity.ErrInvalidCredentials
	}
	if user.Status != entity.UserActive {
		return nil, entity.ErrUserInactive
	}

	return &entity.SignInResponse{
		User:        user,
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// Authenticate turns a bearer token into the request's Session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, entity.ErrUnauthorized
	}
	uid, err := s.identity.VerifyToken(ctx, token)
	if err != nil {
		return nil, entity.ErrUnauthorized
	}

	user, err := s.userRepo.GetById(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUnauthorized
	}
	if user.Status != entity.UserActive {
		return nil, entity.ErrUserInactive
	}

	return &entity.Session{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		Tier:   user.Tier,
	}, nil
}

func (s *AuthService) SignOut(ctx context.Context, session *entity.Session) error {
	return s.identity.RevokeSessions(ctx, session.UserID)
}

// RequestPasswordReset emails a reset link. Unknown addresses succeed
// silently so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *entity.PasswordResetRequest) error {
	email := strings.TrimSpace(req.Email)
	if !entity.IsBareEmail(email) {
		return &entity.ValidationError{Field: "email", Message: "email is malformed"}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || user.Status != entity.UserActive {
		s.logger.Info("password reset requested for unknown or inactive account")
		return nil
	}

	link, err := s.identity.PasswordResetLink(ctx, user.Email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("generating reset link: %w", err)
	}

	err = s.emails.PublishEmail(ctx, &entity.EmailMessage{
		To:       user.Email,
		Template: entity.TemplatePasswordReset,
		Params: map[string]string{
			"recipient_name": user.Name,
			"reset_link":     link,
		},
	})
	if err != nil {
		s.logger.Error("password reset email publish failed",
			slog.String("user_id", user.ID), slog.Any("err", err))
	}
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req *entity.PasswordResetConfirmRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	resetter, ok := s.identity.(PasswordResetter)
	if !ok {
		return entity.ErrSignInUnsupported
	}
	return resetter.ConfirmPasswordReset(ctx, req.Token, req.Password)
}
