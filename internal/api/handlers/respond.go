package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/St1cky1/task-portal/internal/entity"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

const duplicateEmailAdminHint = "email already registered. If this person had an account before, reactivate it from the user list instead of creating a new one"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON reads a JSON body into v. An empty body is accepted when
// allowEmpty is set.
func decodeJSON(r *http.Request, v interface{}, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return &entity.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	return nil
}

func statusFor(err error) int {
	var validationErr *entity.ValidationError
	switch {
	case errors.As(err, &validationErr), errors.Is(err, entity.ErrNoFieldsToUpdate):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrUnauthorized), errors.Is(err, entity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrForbidden), errors.Is(err, entity.ErrUserInactive):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrSubtaskNotFound),
		errors.Is(err, entity.ErrCommentNotFound),
		errors.Is(err, entity.ErrNotificationNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrEmailAlreadyRegistered), errors.Is(err, entity.ErrCommentDeleted):
		return http.StatusConflict
	case errors.Is(err, entity.ErrSignInUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps service errors to HTTP responses. Unknown errors are logged
// and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var validationErr *entity.ValidationError
	if errors.As(err, &validationErr) {
		resp = errorResponse{Error: validationErr.Message, Field: validationErr.Field}
	}

	switch status {
	case http.StatusInternalServerError:
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err))
		resp.Error = "internal server error"
	case http.StatusConflict:
		if s, ok := SessionFrom(r.Context()); ok && s.Role == entity.RoleAdmin && errors.Is(err, entity.ErrEmailAlreadyRegistered) {
			resp.Error = duplicateEmailAdminHint
		}
	}

	writeJSON(w, status, resp)
}
