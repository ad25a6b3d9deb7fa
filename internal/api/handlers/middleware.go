package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/St1cky1/task-portal/internal/entity"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *entity.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (*entity.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*entity.Session)
	return s, ok && s != nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	// EventSource cannot set headers
	return r.URL.Query().Get("access_token")
}

// RequireSession resolves the bearer token into a Session for downstream handlers.
func RequireSession(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				writeError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func mustSession(r *http.Request) *entity.Session {
	s, ok := SessionFrom(r.Context())
	if !ok {
		// routes using this are always mounted behind RequireSession
		panic("handlers: no session in request context")
	}
	return s
}
