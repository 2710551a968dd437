package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input; nothing was applied.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers absent sessions, sessions owned by someone else, and unknown users.
	ErrNotFound = errors.New("not found")
	// ErrNoContent is returned when a level has no questions to draw.
	ErrNoContent = errors.New("no quiz questions found for this level")
	// ErrConflict is returned when a session is no longer in progress.
	ErrConflict = errors.New("session is not in progress")
	// ErrForbidden is returned when a non-admin calls an admin operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized is returned when no valid identity accompanies a request.
	ErrUnauthorized = errors.New("unauthorized")
)

// ConflictError reports the status a session was found in.
type ConflictError struct {
	Status SessionStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("session already %s", e.Status)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Invalid wraps ErrValidation with a client-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
