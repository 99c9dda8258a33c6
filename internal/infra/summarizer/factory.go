package summarizer

import (
	"context"
	"fmt"

	"haberozet/internal/nlp/chunk"
	"haberozet/internal/usecase/summarize"
)

// Loader returns the summarize.LoadFunc for the configured provider, or nil
// when the abstractive method is disabled. prefix is the chunk prefix used by
// the backend.
func Loader(config Config, prefix string) summarize.LoadFunc {
	switch config.Provider {
	case ProviderOpenAI:
		return func(context.Context) (summarize.Generator, error) {
			if err := config.Validate(); err != nil {
				return nil, err
			}
			return NewOpenAI(config), nil
		}
	case ProviderClaude:
		return func(context.Context) (summarize.Generator, error) {
			if err := config.Validate(); err != nil {
				return nil, err
			}
			return NewClaude(config), nil
		}
	case ProviderLead:
		return func(context.Context) (summarize.Generator, error) {
			return NewLead(prefix, config.CharacterLimit), nil
		}
	case ProviderNone, "":
		return nil
	default:
		return func(context.Context) (summarize.Generator, error) {
			return nil, fmt.Errorf("unknown abstractive provider %q", config.Provider)
		}
	}
}

// NewBackend returns an unloaded summarize.Backend for the configured
// provider, or nil when the abstractive method is disabled. Chunks carry
// chunk.DefaultPrefix.
func NewBackend(config Config, tokenBudget int) *summarize.Backend {
	load := Loader(config, chunk.DefaultPrefix)
	if load == nil {
		return nil
	}
	return summarize.NewBackend(load, summarize.BackendConfig{
		Prefix:      chunk.DefaultPrefix,
		TokenBudget: tokenBudget,
	})
}
