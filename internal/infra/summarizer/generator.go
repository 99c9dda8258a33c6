// Package summarizer provides the abstractive generation backends: OpenAI and
// Claude chat models, plus a lead-paragraph generator for development.
// Every backend implements summarize.Generator.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"haberozet/internal/resilience/circuitbreaker"
	"haberozet/internal/resilience/retry"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// maxInputRunes caps the text sent in one call. The chunker normally keeps
// inputs far below it.
const maxInputRunes = 10000

// completion performs one provider call for an already built prompt.
type completion func(ctx context.Context, prompt string) (string, error)

// caller holds what the chat backends share: timeout, retry, circuit breaker,
// prompt and metrics.
type caller struct {
	provider string
	breaker  *circuitbreaker.CircuitBreaker
	retry    retry.Config
	config   Config
	metrics  GenerationRecorder
}

func newCaller(provider string, config Config) caller {
	return caller{
		provider: provider,
		breaker:  circuitbreaker.New(circuitbreaker.GeneratorConfig(provider)),
		retry:    retry.GeneratorConfig(),
		config:   config,
		metrics:  defaultMetrics(),
	}
}

// buildPrompt asks for a Turkish summary that only uses facts from the text.
func buildPrompt(text string, limit int) string {
	return fmt.Sprintf("Aşağıdaki Türkçe haber metnini, yalnızca metindeki bilgileri kullanarak "+
		"en fazla %d karakterlik akıcı bir Türkçe özet halinde yaz. Sadece özeti döndür.\n\n%s", limit, text)
}

func truncateRunes(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	r := []rune(s)
	return string(r[:n]), true
}

func (c caller) generate(ctx context.Context, input string, complete completion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	result, err := retry.Do(ctx, c.retry, func() (string, error) {
		out, err := circuitbreaker.Do(c.breaker, func() (string, error) {
			return c.call(ctx, input, complete)
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.WarnContext(ctx, "generator circuit breaker open, request rejected",
				slog.String("provider", c.provider),
				slog.String("state", c.breaker.State().String()))
			return "", fmt.Errorf("%s api unavailable: circuit breaker open", c.provider)
		}
		return out, err
	})
	if err != nil {
		return "", fmt.Errorf("%s generate failed: %w", c.provider, err)
	}
	return result, nil
}

func (c caller) call(ctx context.Context, input string, complete completion) (string, error) {
	requestID := uuid.New().String()

	text, truncated := truncateRunes(input, maxInputRunes)
	if truncated {
		slog.WarnContext(ctx, "input truncated for generator",
			slog.String("request_id", requestID),
			slog.String("provider", c.provider),
			slog.Int("original_length", utf8.RuneCountInString(input)))
	}

	start := time.Now()
	summary, err := complete(ctx, buildPrompt(text, c.config.CharacterLimit))
	duration := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "generation failed",
			slog.String("request_id", requestID),
			slog.String("provider", c.provider),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return "", err
	}

	summary = strings.TrimSpace(summary)
	length := utf8.RuneCountInString(summary)
	withinLimit := length <= c.config.CharacterLimit

	slog.InfoContext(ctx, "generation completed",
		slog.String("request_id", requestID),
		slog.String("provider", c.provider),
		slog.Int("input_length", utf8.RuneCountInString(text)),
		slog.Int("summary_length", length),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	c.metrics.RecordGeneration(Generation{
		Provider:    c.provider,
		Length:      length,
		WithinLimit: withinLimit,
		Duration:    duration,
	})

	return summary, nil
}
