package summarizer

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "haberozet/pkg/config"
)

// Provider names accepted by ABSTRACTIVE_PROVIDER.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderLead   = "lead"
)

const (
	// minCharLimit is the minimum allowed character limit for summaries.
	minCharLimit = 100

	// maxCharLimit is the maximum allowed character limit for summaries.
	maxCharLimit = 5000
)

// Config configures an abstractive generation backend.
type Config struct {
	// Provider selects the backend: none, openai, claude or lead.
	Provider string

	// APIKey authenticates against the provider. Required for openai and claude.
	APIKey string

	// BaseURL overrides the provider endpoint (proxies, compatible servers, tests).
	BaseURL string

	// Model is the provider model identifier.
	Model string

	// CharacterLimit is the requested maximum summary length per chunk.
	// Valid range: 100-5000 characters. Default: 600.
	CharacterLimit int

	// MaxTokens caps the generated tokens per call.
	MaxTokens int

	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// Validate checks the configuration for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderNone, ProviderLead:
	case ProviderOpenAI, ProviderClaude:
		if c.APIKey == "" {
			return fmt.Errorf("%s provider requires an API key", c.Provider)
		}
		if c.Model == "" {
			return fmt.Errorf("model cannot be empty")
		}
		if c.MaxTokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
		}
		if c.Timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
		}
	default:
		return fmt.Errorf("unknown abstractive provider %q", c.Provider)
	}

	if err := ValidateCharacterLimit(c.CharacterLimit); err != nil {
		return fmt.Errorf("invalid character limit: %w", err)
	}
	return nil
}

// ValidateCharacterLimit validates that the character limit is within the valid range (100-5000).
//
// Example:
//
//	err := ValidateCharacterLimit(600)  // nil (valid)
//	err := ValidateCharacterLimit(50)   // error: "character limit 50 is below minimum 100"
//	err := ValidateCharacterLimit(6000) // error: "character limit 6000 exceeds maximum 5000"
func ValidateCharacterLimit(limit int) error {
	if limit < minCharLimit {
		return fmt.Errorf("character limit %d is below minimum %d", limit, minCharLimit)
	}
	if limit > maxCharLimit {
		return fmt.Errorf("character limit %d exceeds maximum %d", limit, maxCharLimit)
	}
	return nil
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderClaude:
		return "claude-haiku-4-5"
	default:
		return ""
	}
}

// LoadConfigFromEnv reads the backend configuration.
//
// Environment variables:
//   - ABSTRACTIVE_PROVIDER: none|openai|claude|lead (default: none)
//   - OPENAI_API_KEY / ANTHROPIC_API_KEY: credentials of the chosen provider
//   - OPENAI_BASE_URL / ANTHROPIC_BASE_URL: endpoint override
//   - ABSTRACTIVE_MODEL: model identifier (provider default)
//   - ABSTRACTIVE_CHAR_LIMIT: 100-5000 (default: 600)
//   - ABSTRACTIVE_MAX_TOKENS: default 1024
//   - ABSTRACTIVE_TIMEOUT: default 60s
func LoadConfigFromEnv() (Config, error) {
	provider := strings.ToLower(strings.TrimSpace(pkgconfig.GetEnvString("ABSTRACTIVE_PROVIDER", ProviderNone)))

	cfg := Config{
		Provider:       provider,
		Model:          pkgconfig.GetEnvString("ABSTRACTIVE_MODEL", defaultModel(provider)),
		CharacterLimit: pkgconfig.GetEnvInt("ABSTRACTIVE_CHAR_LIMIT", 600),
		MaxTokens:      pkgconfig.GetEnvInt("ABSTRACTIVE_MAX_TOKENS", 1024),
		Timeout:        pkgconfig.GetEnvDuration("ABSTRACTIVE_TIMEOUT", 60*time.Second),
	}

	switch provider {
	case ProviderOpenAI:
		cfg.APIKey = pkgconfig.GetEnvString("OPENAI_API_KEY", "")
		cfg.BaseURL = pkgconfig.GetEnvString("OPENAI_BASE_URL", "")
	case ProviderClaude:
		cfg.APIKey = pkgconfig.GetEnvString("ANTHROPIC_API_KEY", "")
		cfg.BaseURL = pkgconfig.GetEnvString("ANTHROPIC_BASE_URL", "")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid abstractive configuration: %w", err)
	}
	return cfg, nil
}
