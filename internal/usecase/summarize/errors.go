// Package summarize implements the summarization use case: sentence
// segmentation, normalization, extractive ranking or abstractive generation,
// and assembly of the result.
package summarize

import (
	"errors"

	"haberozet/internal/domain/entity"
)

var (
	// ErrBackendUnavailable is returned for the abstractive method when no
	// generation backend is configured or it has not been initialized.
	ErrBackendUnavailable = errors.New("abstractive özetleme kullanılamıyor")

	// ErrEmptyGeneration is returned when the backend produced only empty output.
	ErrEmptyGeneration = errors.New("model boş özet üretti")

	// errUnexpected replaces panics recovered from the pipeline.
	errUnexpected = errors.New("beklenmeyen özetleme hatası")
)

// userMessage turns a pipeline error into the message placed in SummaryResult.Error.
func userMessage(err error) string {
	for _, known := range []error{
		entity.ErrEmptyInput,
		entity.ErrInsufficientContent,
		entity.ErrRankingFailure,
		ErrBackendUnavailable,
		ErrEmptyGeneration,
		errUnexpected,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	var validationErr *entity.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return "özetleme hatası: " + err.Error()
}
