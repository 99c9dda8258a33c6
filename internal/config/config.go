// Package config loads the settings of the API server and the CLI.
//
// Values come from the environment, optionally seeded from a .env file.
// Variables already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"haberozet/internal/domain/entity"
	"haberozet/pkg/config"
)

// AppConfig is the validated process configuration.
type AppConfig struct {
	Server      ServerConfig
	Summary     SummaryConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	DatabaseURL string // empty disables the digest store
	// TokenBudget is the abstractive chunk size in tokens.
	TokenBudget      int
	TraceSampleRatio float64
	Version          string
}

type ServerConfig struct {
	Addr           string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type SummaryConfig struct {
	DefaultSentences int
	DefaultMethod    entity.Method
	CacheSize        int // 0 disables the cache
	CacheTTL         time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

// Load reads envFiles (".env" when none is given, silently skipped if
// missing) and then the environment, and validates the result.
func Load(envFiles ...string) (*AppConfig, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &AppConfig{
		Server: ServerConfig{
			Addr:           config.GetEnvString("HTTP_ADDR", ":8080"),
			RequestTimeout: config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   int64(config.GetEnvInt("HTTP_MAX_BODY_BYTES", 1<<20)),
		},
		Summary: SummaryConfig{
			DefaultSentences: config.GetEnvInt("SUMMARY_DEFAULT_SENTENCES", 3),
			DefaultMethod:    entity.Method(strings.ToLower(config.GetEnvString("SUMMARY_DEFAULT_METHOD", string(entity.DefaultMethod)))),
			CacheSize:        config.GetEnvInt("SUMMARY_CACHE_SIZE", 256),
			CacheTTL:         config.GetEnvDuration("SUMMARY_CACHE_TTL", time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled: config.GetEnvBool("RATE_LIMIT_ENABLED", true),
			RPS:     config.GetEnvFloat("RATE_LIMIT_RPS", 5),
			Burst:   config.GetEnvInt("RATE_LIMIT_BURST", 10),
		},
		Log: LogConfig{
			Level:  config.GetEnvString("LOG_LEVEL", "info"),
			Format: strings.ToLower(config.GetEnvString("LOG_FORMAT", "json")),
		},
		DatabaseURL:      config.GetEnvString("DATABASE_URL", ""),
		TokenBudget:      config.GetEnvInt("ABSTRACTIVE_TOKEN_BUDGET", 512),
		TraceSampleRatio: config.GetEnvFloat("TRACE_SAMPLE_RATIO", 1),
		Version:          config.GetEnvString("VERSION", "dev"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("HTTP_ADDR cannot be empty"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.Server.MaxBodyBytes < 1024 {
		errs = append(errs, errors.New("HTTP_MAX_BODY_BYTES must be at least 1024"))
	}
	if c.Summary.DefaultSentences < 1 || c.Summary.DefaultSentences > 10 {
		errs = append(errs, errors.New("SUMMARY_DEFAULT_SENTENCES must be between 1 and 10"))
	}
	if _, ok := entity.LookupMethod(string(c.Summary.DefaultMethod)); !ok {
		errs = append(errs, fmt.Errorf("SUMMARY_DEFAULT_METHOD %q is not one of tfidf, textrank, abstractive", c.Summary.DefaultMethod))
	}
	if c.Summary.CacheSize < 0 {
		errs = append(errs, errors.New("SUMMARY_CACHE_SIZE cannot be negative"))
	}
	if c.Summary.CacheSize > 0 && c.Summary.CacheTTL <= 0 {
		errs = append(errs, errors.New("SUMMARY_CACHE_TTL must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or text", c.Log.Format))
	}
	if c.TokenBudget < 16 {
		errs = append(errs, errors.New("ABSTRACTIVE_TOKEN_BUDGET must be at least 16"))
	}
	if c.TraceSampleRatio <= 0 || c.TraceSampleRatio > 1 {
		errs = append(errs, errors.New("TRACE_SAMPLE_RATIO must be in (0, 1]"))
	}

	return errors.Join(errs...)
}
