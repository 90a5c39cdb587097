package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a job id does not resolve.
	ErrJobNotFound = errors.New("job not found")

	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrJobAlreadyTaken is returned when the conditional accept write loses
	// the race: another translator holds the job already.
	ErrJobAlreadyTaken = errors.New("job already taken or not in pending status")
)

// ValidationError reports an invalid or missing booking field before any
// mutation happened. Field carries the offending field name for field-level
// UI feedback.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports an operation that is illegal in the job's current
// state: double booking, accept race lost, or a transition not in the table.
// No mutation has been performed.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a ConflictError.
func NewConflictError(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// RecipientError is a single failed delivery inside a dispatch fan-out.
type RecipientError struct {
	Recipient string
	Err       error
}

func (e *RecipientError) Error() string {
	return fmt.Sprintf("recipient %s: %v", e.Recipient, e.Err)
}

func (e *RecipientError) Unwrap() error {
	return e.Err
}

// DispatchError aggregates per-recipient delivery failures. The state
// transition that triggered the dispatch has already been committed, so a
// DispatchError is reported but never fails the use case.
type DispatchError struct {
	Failures []*RecipientError
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for %d recipient(s)", len(e.Failures))
}
