// Package errs defines the error taxonomy shared by services and handlers.
// Callers classify with errors.Is against the four base errors.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation: user input malformed or incomplete. No mutation occurred.
	ErrValidation = errors.New("validation failed")
	// ErrConflict: a unique key already exists (duplicate CID, hood name, username).
	ErrConflict = errors.New("conflict")
	// ErrNotFound: the referenced bill/membership/employee no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrStore: persistence layer failure; not recoverable locally and never
	// silently swallowed into a success.
	ErrStore = errors.New("store failure")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Store wraps a driver/ORM error so it classifies as ErrStore while keeping
// the underlying cause in the message.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

// HTTPStatus maps a classified error to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
