package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes application errors so callers can map them to transport
// semantics without string matching.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindNotFound      Kind = "NOT_FOUND"
	KindUnavailable   Kind = "UNAVAILABLE"
	KindInvalidConfig Kind = "INVALID_CONFIG"
	KindConflict      Kind = "CONFLICT"
	KindInternal      Kind = "INTERNAL"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidation(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewNotFound(message string) error {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NewUnavailable marks a backing-store failure as retryable by the caller.
func NewUnavailable(message string, err error) error {
	return &AppError{Kind: KindUnavailable, Message: message, Err: err}
}

// NewInvalidConfig marks a programmer error in configuration. Never
// normalized away silently.
func NewInvalidConfig(message string) error {
	return &AppError{Kind: KindInvalidConfig, Message: message}
}

func NewConflict(message string) error {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewInternal(message string, err error) error {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// Wrap adds context while preserving the kind of an existing AppError.
// Plain errors become internal errors.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Kind:    appErr.Kind,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

func is(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func IsValidation(err error) bool    { return is(err, KindValidation) }
func IsNotFound(err error) bool      { return is(err, KindNotFound) }
func IsUnavailable(err error) bool   { return is(err, KindUnavailable) }
func IsInvalidConfig(err error) bool { return is(err, KindInvalidConfig) }
func IsConflict(err error) bool      { return is(err, KindConflict) }
