package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/St1cky1/task-portal/internal/entity"
)

type SubtaskUsecase interface {
	CreateSubtask(ctx context.Context, session *entity.Session, taskID string, req *entity.CreateSubtaskRequest) (*entity.Subtask, error)
	ToggleSubtask(ctx context.Context, session *entity.Session, taskID, subtaskID string, completed *bool) (*entity.Subtask, error)
	DeleteSubtask(ctx context.Context, session *entity.Session, taskID, subtaskID string) error
	ListSubtasks(ctx context.Context, session *entity.Session, taskID string) ([]entity.Subtask, error)
}

type SubtaskHandler struct {
	subtaskService SubtaskUsecase
	logger         *slog.Logger
}

func NewSubtaskHandler(subtaskService SubtaskUsecase, logger *slog.Logger) *SubtaskHandler {
	return &SubtaskHandler{
		subtaskService: subtaskService,
		logger:         logger,
	}
}

func (h *SubtaskHandler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateSubtaskRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	st, err := h.subtaskService.CreateSubtask(r.Context(), mustSession(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

type toggleSubtaskRequest struct {
	Completed *bool `json:"completed"`
}

// ToggleSubtask - an empty body flips the flag
func (h *SubtaskHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	var req toggleSubtaskRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	st, err := h.subtaskService.ToggleSubtask(r.Context(), mustSession(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "subtaskID"), req.Completed)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *SubtaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	err := h.subtaskService.DeleteSubtask(r.Context(), mustSession(r), chi.URLParam(r, "id"), chi.URLParam(r, "subtaskID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubtaskHandler) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	subtasks, err := h.subtaskService.ListSubtasks(r.Context(), mustSession(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if subtasks == nil {
		subtasks = []entity.Subtask{}
	}
	writeJSON(w, http.StatusOK, subtasks)
}
