package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/St1cky1/task-portal/internal/entity"
)

type TaskUsecase interface {
	CreateTask(ctx context.Context, session *entity.Session, req *entity.CreateTaskRequest) (*entity.Task, error)
	GetTask(ctx context.Context, session *entity.Session, taskID string) (*entity.Task, error)
	UpdateTask(ctx context.Context, session *entity.Session, taskID string, req *entity.UpdateTaskRequest) (*entity.Task, error)
	DeleteTask(ctx context.Context, session *entity.Session, taskID string) error
	ListTasks(ctx context.Context, session *entity.Session, filter entity.TaskFilter) ([]entity.Task, error)
}

type TaskHandler struct {
	taskService TaskUsecase
	logger      *slog.Logger
}

func NewTaskHandler(taskService TaskUsecase, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), mustSession(r), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.GetTask(r.Context(), mustSession(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.UpdateTaskRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), mustSession(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.DeleteTask(r.Context(), mustSession(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.TaskFilter{
		Status:     entity.TaskStatus(q.Get("status")),
		AssigneeID: q.Get("assignee_id"),
		CreatedBy:  q.Get("created_by"),
	}

	tasks, err := h.taskService.ListTasks(r.Context(), mustSession(r), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []entity.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}
