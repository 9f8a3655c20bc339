package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when caller input fails validation before any
	// network call is made. It is usually wrapped by a *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyCandidateID is returned when an operation needs a candidate ID.
	ErrEmptyCandidateID = NewValidationError("id", "candidate ID cannot be empty")

	// ErrEmptyFile is returned when a file has no payload.
	ErrEmptyFile = NewValidationError("file", "file payload cannot be empty")

	// ErrMissingMediaType is returned when a file has no declared media type.
	ErrMissingMediaType = NewValidationError("file", "file media type is required")

	// ErrNoDocuments is returned when neither PAN nor Aadhaar is provided.
	ErrNoDocuments = NewValidationError("documents", "attach PAN and/or Aadhaar")
)

// ValidationError describes caller input that was rejected locally.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
