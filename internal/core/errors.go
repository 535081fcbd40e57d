package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrSubscriptionRequired = errors.New("an active subscription is required")
	ErrConflict             = errors.New("already exists")
	ErrLLMUnavailable       = errors.New("text generation is not configured")
)

// ValidationError names the offending field. It matches ErrValidation with
// errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
