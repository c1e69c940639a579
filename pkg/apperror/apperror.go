package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable
	Field   string // form field, validation only
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, key any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, key),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource string, key any) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %v already exists", resource, key),
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// FieldErrors collects per-field messages from a validation failure so a form
// can be re-rendered next to its inputs. Non-validation errors yield nil.
func FieldErrors(err error) map[string]string {
	var appErr *AppError
	if !errors.As(err, &appErr) || !errors.Is(err, ErrValidation) {
		return nil
	}
	field := appErr.Field
	if field == "" {
		field = "__all__"
	}
	return map[string]string{field: appErr.Message}
}
