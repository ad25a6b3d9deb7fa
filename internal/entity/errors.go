package entity

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden              = errors.New("forbidden: access denied")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrNoFieldsToUpdate       = errors.New("no fields to update")
	ErrTaskNotFound           = errors.New("task not found")
	ErrSubtaskNotFound        = errors.New("subtask not found")
	ErrCommentNotFound        = errors.New("comment not found")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserInactive           = errors.New("user is not active")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrSignInUnsupported      = errors.New("password sign-in is handled by the identity provider client")
	ErrCommentDeleted         = errors.New("comment has been deleted")
)

// ValidationError is returned before any external call is made.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
