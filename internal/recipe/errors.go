package recipe

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the transport layer can map it to a status code.
type ErrorKind string

const (
	// KindValidation indicates malformed or invalid input.
	KindValidation ErrorKind = "VALIDATION"
	// KindNotFound indicates the referenced recipe does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindStorage indicates the underlying store failed.
	KindStorage ErrorKind = "STORAGE"
)

// Error is the typed error returned by the service.
type Error struct {
	Kind    ErrorKind
	Message string
	// Fields maps offending input fields to a description of the problem.
	Fields map[string]string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with optional per-field details.
func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Fields:  fields,
	}
}

func notFoundError(id int64) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("recipe %d not found", id),
	}
}

func storageError(op string, cause error) *Error {
	return &Error{
		Kind:    KindStorage,
		Message: op,
		Cause:   cause,
	}
}

// classify leaves typed errors untouched and wraps everything else as a storage failure.
func classify(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return storageError(op, err)
}

// KindOf reports the kind of err, or "" when err is not a typed recipe error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
