package domain

import "errors"

var (
	// ErrApplicationNotFound is returned when an event references an application
	// that is not in the store
	ErrApplicationNotFound = errors.New("application not found")

	// ErrInvalidEvent is returned when a message body is not a usable event
	ErrInvalidEvent = errors.New("invalid application event")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
