package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/St1cky1/task-portal/internal/entity"
)

type CommentUsecase interface {
	PostComment(ctx context.Context, session *entity.Session, taskID string, req *entity.CommentRequest) (*entity.Comment, error)
	EditComment(ctx context.Context, session *entity.Session, taskID, commentID string, req *entity.CommentRequest) (*entity.Comment, error)
	DeleteComment(ctx context.Context, session *entity.Session, taskID, commentID string) (*entity.Comment, error)
	ListComments(ctx context.Context, session *entity.Session, taskID string) ([]entity.Comment, error)
}

type CommentHandler struct {
	commentService CommentUsecase
	logger         *slog.Logger
}

func NewCommentHandler(commentService CommentUsecase, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

func (h *CommentHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	var req entity.CommentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	comment, err := h.commentService.PostComment(r.Context(), mustSession(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	var req entity.CommentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	comment, err := h.commentService.EditComment(r.Context(), mustSession(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "commentID"), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// DeleteComment returns the tombstoned comment so clients can render it in place.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.commentService.DeleteComment(r.Context(), mustSession(r), chi.URLParam(r, "id"), chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListComments(r.Context(), mustSession(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if comments == nil {
		comments = []entity.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}
