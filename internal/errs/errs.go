// Package errs defines the error taxonomy shared by services and handlers.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation failed")
	ErrStore             = errors.New("store error")
)

// ValidationError reports malformed input. Fields maps a field name to its failure.
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e.Msg == "" {
		return ErrValidation.Error()
	}
	return e.Msg
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StoreError wraps an opaque backend failure. Op names the failed operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store error: %s", e.Op) }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

func Unauthorized(format string, args ...any) error { return wrap(ErrUnauthorized, format, args...) }

func Forbidden(format string, args ...any) error { return wrap(ErrForbidden, format, args...) }

func NotFound(format string, args ...any) error { return wrap(ErrNotFound, format, args...) }

func Conflict(format string, args ...any) error { return wrap(ErrConflict, format, args...) }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Fields builds a ValidationError carrying per-field messages.
func Fields(msg string, fields map[string]string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

func Store(op string, err error) error { return &StoreError{Op: op, Err: err} }

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// HTTPStatus maps an error to the status code a handler should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
