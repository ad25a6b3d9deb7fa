package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/St1cky1/task-portal/internal/entity"
)

type AuthUsecase interface {
	Authenticator
	SignIn(ctx context.Context, req *entity.SignInRequest) (*entity.SignInResponse, error)
	SignOut(ctx context.Context, session *entity.Session) error
	RequestPasswordReset(ctx context.Context, req *entity.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req *entity.PasswordResetConfirmRequest) error
}

type AuthHandler struct {
	authService AuthUsecase
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req entity.SignInRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.authService.SignIn(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context(), mustSession(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset answers 202 whether or not the email is known.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req entity.PasswordResetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req entity.PasswordResetConfirmRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.authService.ConfirmPasswordReset(r.Context(), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mustSession(r))
}
