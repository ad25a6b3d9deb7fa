package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/St1cky1/task-portal/internal/entity"
)

// MockAuthUsecase - mock for handlers.AuthUsecase
type MockAuthUsecase struct {
	AuthenticateFunc func(ctx context.Context, token string) (*entity.Session, error)
}

func (m *MockAuthUsecase) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	return m.AuthenticateFunc(ctx, token)
}

func (m *MockAuthUsecase) SignIn(ctx context.Context, req *entity.SignInRequest) (*entity.SignInResponse, error) {
	return nil, entity.ErrInvalidCredentials
}

func (m *MockAuthUsecase) SignOut(ctx context.Context, session *entity.Session) error {
	return nil
}

func (m *MockAuthUsecase) RequestPasswordReset(ctx context.Context, req *entity.PasswordResetRequest) error {
	return nil
}

func (m *MockAuthUsecase) ConfirmPasswordReset(ctx context.Context, req *entity.PasswordResetConfirmRequest) error {
	return nil
}

func newTestRouter() http.Handler {
	auth := &MockAuthUsecase{AuthenticateFunc: func(ctx context.Context, token string) (*entity.Session, error) {
		if token == "valid" {
			return &entity.Session{UserID: "u1", Name: "Una", Role: entity.RoleStaff, Tier: entity.TierStandard}, nil
		}
		return nil, entity.ErrUnauthorized
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Services{Auth: auth}, []string{"https://portal.example.com"}, logger)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/api/v1/tasks", "/api/v1/users", "/api/v1/notifications", "/api/v1/events?topic=user:u1"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestSignInIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", nil)
	newTestRouter().ServeHTTP(rec, req)

	// reaches the handler, which rejects the empty body
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 from handler, got %d", rec.Code)
	}
}

func TestMeReturnsSession(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid")
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	newTestRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://portal.example.com" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q", got)
	}
}
