package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/repository"
)

// LocalProvider keeps identities in the credentials table: bcrypt password
// hashes, HS256 access tokens, and a per-user revocation timestamp.
type LocalProvider struct {
	creds     repository.ICredentialRepository
	passwords *PasswordManager
	tokens    *JWTManager
	resetURL  string
	now       func() time.Time
}

func NewLocalProvider(creds repository.ICredentialRepository, passwords *PasswordManager, tokens *JWTManager, resetURL string) *LocalProvider {
	return &LocalProvider{
		creds:     creds,
		passwords: passwords,
		tokens:    tokens,
		resetURL:  resetURL,
		now:       time.Now,
	}
}

func (p *LocalProvider) CreateIdentity(ctx context.Context, req *entity.IdentityRequest) (string, error) {
	existing, err := p.creds.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", fmt.Errorf("checking existing credential: %w", err)
	}
	if existing != nil {
		return "", entity.ErrEmailAlreadyRegistered
	}

	hash, err := p.passwords.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	uid := uuid.NewString()
	if err := p.creds.Create(ctx, &entity.Credential{
		UserID:       uid,
		Email:        req.Email,
		PasswordHash: hash,
	}); err != nil {
		return "", err
	}
	return uid, nil
}

func (p *LocalProvider) DeleteIdentity(ctx context.Context, uid string) error {
	return p.creds.Delete(ctx, uid)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*entity.IssuedToken, error) {
	cred, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil || !p.passwords.VerifyPassword(cred.PasswordHash, password) {
		return nil, entity.ErrInvalidCredentials
	}

	token, expiresAt, err := p.tokens.GenerateAccessToken(cred.UserID, cred.Email)
	if err != nil {
		return nil, err
	}
	return &entity.IssuedToken{
		UserID:      cred.UserID,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// revoked - токен, выпущенный в ту же миллисекунду, что и отзыв, отклоняется
func revoked(issuedAt time.Time, revokedBefore *time.Time) bool {
	return revokedBefore != nil && issuedAt.UnixMilli() <= revokedBefore.UnixMilli()
}

func (p *LocalProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	claims, err := p.tokens.ValidateAccessToken(token)
	if err != nil {
		return "", entity.ErrUnauthorized
	}

	cred, err := p.creds.GetByUserId(ctx, claims.UserID)
	if err != nil {
		return "", fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil || revoked(claims.IssuedAt, cred.RevokedBefore) {
		return "", entity.ErrUnauthorized
	}
	return claims.UserID, nil
}

func (p *LocalProvider) RevokeSessions(ctx context.Context, uid string) error {
	return p.creds.RevokeBefore(ctx, uid, p.now().UTC())
}

func (p *LocalProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	cred, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil {
		return "", entity.ErrUserNotFound
	}

	token, err := p.tokens.GenerateResetToken(cred.UserID, cred.Email)
	if err != nil {
		return "", err
	}

	link, err := url.Parse(p.resetURL)
	if err != nil {
		return "", fmt.Errorf("invalid reset url: %w", err)
	}
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()
	return link.String(), nil
}

// ConfirmPasswordReset sets a new password from a reset token. Existing
// sessions are revoked along with the old password.
func (p *LocalProvider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := p.tokens.ValidateResetToken(token)
	if err != nil {
		return entity.ErrUnauthorized
	}

	cred, err := p.creds.GetByUserId(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("loading credential: %w", err)
	}
	// токен сброса умирает с первой сменой пароля после его выпуска
	if cred == nil || revoked(claims.IssuedAt, cred.RevokedBefore) {
		return entity.ErrUnauthorized
	}

	hash, err := p.passwords.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := p.creds.SetPasswordHash(ctx, claims.UserID, hash); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return entity.ErrUnauthorized
		}
		return err
	}
	return nil
}
