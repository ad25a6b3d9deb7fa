package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
)

var authUsers = []entity.User{
	{ID: "u1", Name: "Bob", Email: "bob@example.com", Role: entity.RoleStaff, Tier: entity.TierAlpha, Status: entity.UserActive},
	{ID: "u2", Name: "Gone", Email: "gone@example.com", Role: entity.RoleStaff, Status: entity.UserInactive},
}

func authUserRepo() *MockUserRepository {
	return &MockUserRepository{
		GetByIdFunc: usersByID(authUsers...),
		GetByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			for i := range authUsers {
				if authUsers[i].Email == email {
					u := authUsers[i]
					return &u, nil
				}
			}
			return nil, nil
		},
	}
}

func TestSignIn(t *testing.T) {
	identity := &MockIdentityProvider{
		SignInFunc: func(ctx context.Context, email, password string) (*entity.IssuedToken, error) {
			switch email {
			case "bob@example.com":
				return &entity.IssuedToken{UserID: "u1", AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
			case "gone@example.com":
				return &entity.IssuedToken{UserID: "u2", AccessToken: "tok"}, nil
			default:
				return nil, entity.ErrInvalidCredentials
			}
		},
	}
	s := NewAuthService(authUserRepo(), identity, &MockEmailPublisher{}, discardLogger())
	ctx := context.Background()

	resp, err := s.SignIn(ctx, &entity.SignInRequest{Email: " bob@example.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.User.ID != "u1" || resp.AccessToken != "tok" {
		t.Errorf("unexpected response %+v", resp)
	}

	if _, err := s.SignIn(ctx, &entity.SignInRequest{Email: "gone@example.com", Password: "pw"}); !errors.Is(err, entity.ErrUserInactive) {
		t.Errorf("Expected ErrUserInactive, got %v", err)
	}
	if _, err := s.SignIn(ctx, &entity.SignInRequest{Email: "who@example.com", Password: "pw"}); !errors.Is(err, entity.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	identity := &MockIdentityProvider{
		VerifyTokenFunc: func(ctx context.Context, token string) (string, error) {
			switch token {
			case "good":
				return "u1", nil
			case "inactive":
				return "u2", nil
			case "orphan":
				return "u404", nil
			default:
				return "", errors.New("bad signature")
			}
		},
	}
	s := NewAuthService(authUserRepo(), identity, &MockEmailPublisher{}, discardLogger())
	ctx := context.Background()

	session, err := s.Authenticate(ctx, "good")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if session.UserID != "u1" || session.Tier != entity.TierAlpha || session.Name != "Bob" {
		t.Errorf("unexpected session %+v", session)
	}

	tests := []struct {
		token   string
		wantErr error
	}{
		{token: "", wantErr: entity.ErrUnauthorized},
		{token: "forged", wantErr: entity.ErrUnauthorized},
		{token: "orphan", wantErr: entity.ErrUnauthorized},
		{token: "inactive", wantErr: entity.ErrUserInactive},
	}
	for _, tt := range tests {
		if _, err := s.Authenticate(ctx, tt.token); !errors.Is(err, tt.wantErr) {
			t.Errorf("token %q: expected %v, got %v", tt.token, tt.wantErr, err)
		}
	}
}

func TestRequestPasswordReset(t *testing.T) {
	identity := &MockIdentityProvider{
		PasswordResetLinkFunc: func(ctx context.Context, email string) (string, error) {
			return "https://portal.example.com/reset?token=abc", nil
		},
	}
	emails := &MockEmailPublisher{}
	s := NewAuthService(authUserRepo(), identity, emails, discardLogger())
	ctx := context.Background()

	if err := s.RequestPasswordReset(ctx, &entity.PasswordResetRequest{Email: "bob@example.com"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(emails.Sent) != 1 {
		t.Fatalf("Expected one email, got %d", len(emails.Sent))
	}
	if msg := emails.Sent[0]; msg.Template != entity.TemplatePasswordReset || msg.Params["reset_link"] == "" {
		t.Errorf("unexpected email %+v", msg)
	}

	if err := s.RequestPasswordReset(ctx, &entity.PasswordResetRequest{Email: "nobody@example.com"}); err != nil {
		t.Errorf("Expected unknown email to succeed silently, got %v", err)
	}
	if len(emails.Sent) != 1 {
		t.Errorf("Expected no email for unknown address, got %d", len(emails.Sent))
	}

	var ve *entity.ValidationError
	if err := s.RequestPasswordReset(ctx, &entity.PasswordResetRequest{Email: "nope"}); !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
	if err := s.RequestPasswordReset(ctx, &entity.PasswordResetRequest{Email: "Bob <bob@example.com>"}); !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError for display-name address, got %v", err)
	}
}

func TestRequestPasswordResetEmailFailureIsLogged(t *testing.T) {
	identity := &MockIdentityProvider{
		PasswordResetLinkFunc: func(ctx context.Context, email string) (string, error) { return "link", nil },
	}
	emails := &MockEmailPublisher{
		PublishEmailFunc: func(ctx context.Context, message *entity.EmailMessage) error {
			return errors.New("channel closed")
		},
	}
	s := NewAuthService(authUserRepo(), identity, emails, discardLogger())

	if err := s.RequestPasswordReset(context.Background(), &entity.PasswordResetRequest{Email: "bob@example.com"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

type resettingIdentity struct {
	MockIdentityProvider
	gotToken string
}

func (r *resettingIdentity) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	r.gotToken = token
	return nil
}

func TestConfirmPasswordReset(t *testing.T) {
	ctx := context.Background()

	hosted := NewAuthService(authUserRepo(), &MockIdentityProvider{}, &MockEmailPublisher{}, discardLogger())
	err := hosted.ConfirmPasswordReset(ctx, &entity.PasswordResetConfirmRequest{Token: "t", Password: "long-enough"})
	if !errors.Is(err, entity.ErrSignInUnsupported) {
		t.Errorf("Expected ErrSignInUnsupported, got %v", err)
	}

	identity := &resettingIdentity{}
	local := NewAuthService(authUserRepo(), identity, &MockEmailPublisher{}, discardLogger())
	if err := local.ConfirmPasswordReset(ctx, &entity.PasswordResetConfirmRequest{Token: "t", Password: "long-enough"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if identity.gotToken != "t" {
		t.Errorf("Expected token to be forwarded, got %q", identity.gotToken)
	}

	var ve *entity.ValidationError
	if err := local.ConfirmPasswordReset(ctx, &entity.PasswordResetConfirmRequest{Token: "t", Password: "short"}); !errors.As(err, &ve) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}
