package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/St1cky1/task-portal/internal/entity"
)

type UserUsecase interface {
	CreateUser(ctx context.Context, session *entity.Session, req *entity.CreateUserRequest) (*entity.User, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	SetStatus(ctx context.Context, session *entity.Session, userID string, status entity.UserStatus) (*entity.User, error)
}

type UserHandler struct {
	userService UserUsecase
	logger      *slog.Logger
}

func NewUserHandler(userService UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateUserRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), mustSession(r), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if users == nil {
		users = []entity.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	status, err := entity.ParseUserStatus(req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.SetStatus(r.Context(), mustSession(r), chi.URLParam(r, "id"), status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
