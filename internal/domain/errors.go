package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrOffline           = errors.New("offline")
	ErrCaptureInProgress = errors.New("capture already in progress")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// AnalysisErrorKind classifies a failed call to the analysis service.
type AnalysisErrorKind string

const (
	// AnalysisTransient covers network failures, timeouts, rate limits and 5xx.
	AnalysisTransient AnalysisErrorKind = "transient"
	// AnalysisPermanent covers malformed responses and auth failures.
	AnalysisPermanent AnalysisErrorKind = "permanent"
)

// AnalysisError wraps an analysis service failure with its kind.
// Both kinds leave the capture queued; the kind is informational.
type AnalysisError struct {
	Kind AnalysisErrorKind
	Op   string
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// NewTransientError wraps err as a transient analysis failure.
func NewTransientError(op string, err error) *AnalysisError {
	return &AnalysisError{Kind: AnalysisTransient, Op: op, Err: err}
}

// NewPermanentError wraps err as a permanent analysis failure.
func NewPermanentError(op string, err error) *AnalysisError {
	return &AnalysisError{Kind: AnalysisPermanent, Op: op, Err: err}
}

// IsTransient reports whether err carries a transient AnalysisError.
func IsTransient(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.Kind == AnalysisTransient
}
