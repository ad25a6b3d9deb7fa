package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/St1cky1/task-portal/internal/entity"
)

// firebaseClient is the part of *auth.Client the provider uses.
type firebaseClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// FirebaseProvider delegates identities to Firebase Authentication. Clients
// sign in with the Firebase SDK and present the resulting ID token.
type FirebaseProvider struct {
	client firebaseClient
}

// NewFirebaseProvider initialises the Firebase app from a service account file.
func NewFirebaseProvider(ctx context.Context, credentialsFile string) (*FirebaseProvider, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("firebase credentials file is not configured")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialising firebase: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firebase auth client: %w", err)
	}
	return &FirebaseProvider{client: client}, nil
}

func (p *FirebaseProvider) CreateIdentity(ctx context.Context, req *entity.IdentityRequest) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(req.Email).
		EmailVerified(false).
		Password(req.Password).
		DisplayName(req.DisplayName).
		Disabled(false)

	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", entity.ErrEmailAlreadyRegistered
		}
		return "", fmt.Errorf("creating firebase user: %w", err)
	}
	return record.UID, nil
}

func (p *FirebaseProvider) DeleteIdentity(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil && !fbauth.IsUserNotFound(err) {
		return fmt.Errorf("deleting firebase user: %w", err)
	}
	return nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*entity.IssuedToken, error) {
	return nil, entity.ErrSignInUnsupported
}

func (p *FirebaseProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	verified, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return "", entity.ErrUnauthorized
	}
	return verified.UID, nil
}

func (p *FirebaseProvider) RevokeSessions(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoking firebase tokens: %w", err)
	}
	return nil
}

func (p *FirebaseProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.PasswordResetLink(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return "", entity.ErrUserNotFound
		}
		return "", fmt.Errorf("generating firebase reset link: %w", err)
	}
	return link, nil
}
