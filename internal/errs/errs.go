// Package errs defines the error taxonomy for core operations. Each
// type maps to one HTTP status at the boundary; anything else is a 500.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NotFound(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func Forbidden(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// StateConflictError reports an operation against a resource that has
// already left the state the operation requires.
type StateConflictError struct {
	Resource string
	ID       int64
	State    string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s %d is already %s", e.Resource, e.ID, e.State)
}

func StateConflict(resource string, id int64, state string) *StateConflictError {
	return &StateConflictError{Resource: resource, ID: id, State: state}
}

// Status maps an error to the HTTP status the boundary writes. Typed
// errors survive fmt.Errorf %w wrapping.
func Status(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		ae *AuthorizationError
		sc *StateConflictError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ae):
		return http.StatusForbidden
	case errors.As(err, &sc):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
