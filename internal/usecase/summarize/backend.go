package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"haberozet/internal/nlp/chunk"
	"haberozet/internal/observability/metrics"
)

// Generator produces an abstractive summary of one chunk of input.
type Generator interface {
	Generate(ctx context.Context, input string) (string, error)
}

// TokenCounter is implemented by generators that can measure input in their
// own tokens. Others are measured with chunk.EstimateTokens.
type TokenCounter interface {
	TokenLen(s string) int
}

// LoadFunc prepares a Generator, for example by validating credentials.
type LoadFunc func(ctx context.Context) (Generator, error)

// State is the lifecycle of a Backend.
type State int32

const (
	StateUnloaded State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	default:
		return "unloaded"
	}
}

// BackendConfig configures chunking of abstractive input.
type BackendConfig struct {
	// Prefix is prepended to every chunk, e.g. "summarize: " for T5-style models.
	Prefix string
	// TokenBudget is the input window in generator tokens.
	TokenBudget int
}

// Backend owns a Generator and its unloaded → ready lifecycle.
// Summarize fails with ErrBackendUnavailable until Init succeeds.
type Backend struct {
	mu     sync.RWMutex
	state  State
	gen    Generator
	load   LoadFunc
	config BackendConfig
}

// NewBackend creates an unloaded Backend.
func NewBackend(load LoadFunc, config BackendConfig) *Backend {
	if config.TokenBudget <= 0 {
		config.TokenBudget = chunk.DefaultBudget
	}
	return &Backend{load: load, config: config}
}

// NewReadyBackend wraps an already constructed generator.
func NewReadyBackend(gen Generator, config BackendConfig) *Backend {
	b := NewBackend(func(context.Context) (Generator, error) { return gen, nil }, config)
	b.gen = gen
	b.state = StateReady
	return b
}

// Init loads the generator. Calling Init on a ready backend is a no-op.
// On failure the backend stays unloaded and Init may be retried.
func (b *Backend) Init(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateReady {
		return nil
	}
	if b.load == nil {
		return ErrBackendUnavailable
	}

	start := time.Now()
	gen, err := b.load(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "abstractive backend failed to load",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return fmt.Errorf("load generator: %w", err)
	}

	b.gen = gen
	b.state = StateReady
	slog.InfoContext(ctx, "abstractive backend ready",
		slog.Duration("duration", time.Since(start)),
		slog.Int("token_budget", b.config.TokenBudget))
	return nil
}

// State returns the current lifecycle state.
func (b *Backend) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Summarize chunks text to the token budget and generates one summary per
// chunk. Empty outputs are dropped.
func (b *Backend) Summarize(ctx context.Context, text string, sentences []string) ([]string, error) {
	b.mu.RLock()
	gen, state := b.gen, b.state
	b.mu.RUnlock()

	if state != StateReady {
		return nil, ErrBackendUnavailable
	}

	opts := chunk.Options{Prefix: b.config.Prefix, Budget: b.config.TokenBudget}
	if tc, ok := gen.(TokenCounter); ok {
		opts.TokenLen = tc.TokenLen
	}
	chunks := chunk.ByTokenBudget(text, sentences, opts)
	metrics.RecordAbstractiveChunks(len(chunks))

	summaries := make([]string, 0, len(chunks))
	for i, c := range chunks {
		out, err := gen.Generate(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("generate chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if out = strings.TrimSpace(out); out != "" {
			summaries = append(summaries, out)
		}
	}
	if len(summaries) == 0 {
		return nil, ErrEmptyGeneration
	}
	return summaries, nil
}
