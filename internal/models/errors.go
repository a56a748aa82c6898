package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel for ids that do not resolve. Wrap it with the
// entity kind and id via NotFoundError so handlers can match errors.Is.
var ErrNotFound = errors.New("not found")

func NotFoundError(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// ValidationError means the caller must correct the input and resubmit.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError means the operation is not legal in the entity's current
// status. The current status is part of the message so the caller knows not
// to retry blindly.
type InvalidStateError struct {
	Entity  string
	Current string
	Want    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is %s, must be %s", e.Entity, e.Current, e.Want)
}

// PersistenceError wraps a failure of the document store. Surfaced as an
// internal failure, never retried automatically.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
