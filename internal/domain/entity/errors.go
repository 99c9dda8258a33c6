package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the summarization pipeline.
// Messages are user-facing and therefore Turkish.
var (
	// ErrEmptyInput indicates that segmentation produced no usable sentence.
	ErrEmptyInput = errors.New("metinde yeterli cümle bulunamadı")

	// ErrInsufficientContent indicates that every sentence was emptied by normalization.
	ErrInsufficientContent = errors.New("ön işleme sonrası yeterli içerik kalmadı")

	// ErrRankingFailure indicates that the vector space or graph could not be built.
	ErrRankingFailure = errors.New("sıralama başarısız")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")
)

// ValidationError represents a validation error with detailed field information.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match any validation failure.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
