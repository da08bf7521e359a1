package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the parent of every ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable is returned when the store cannot be reached or
	// does not answer in time
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrJobNotFound is returned when a referenced job posting does not exist
	ErrJobNotFound = errors.New("job not found")
)

// ValidationError reports the first required field that failed validation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
	}
	return "missing required field: " + e.Field
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewMissingFieldError creates a ValidationError for an absent field
func NewMissingFieldError(field string) error {
	return &ValidationError{Field: field}
}

// StoreError keeps the underlying cause while classifying it as ErrStoreUnavailable
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return "store unavailable: " + e.Err.Error()
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps an infrastructure failure
func NewStoreError(err error) error {
	return &StoreError{Err: err}
}
