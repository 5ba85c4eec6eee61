package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput signals a request that failed domain validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable signals that the configured store cannot accept writes
	// (JSON-file fallback) or is not configured at all.
	ErrStoreUnavailable = errors.New("database not configured")
	// ErrUnauthorized signals a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals a valid credential without admin rights.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition signals a submission status change that is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrSummarizerDisabled signals that no summary provider is configured.
	ErrSummarizerDisabled = errors.New("summarizer not configured")
	// ErrSummarizerFailed signals an upstream summary provider failure.
	ErrSummarizerFailed = errors.New("summarizer provider error")
)

// ValidationError carries the offending field alongside ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a field-level validation error.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
