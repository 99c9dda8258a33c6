// Package circuitbreaker provides circuit breakers for calls that leave the process:
// article downloads, feed reads, generation backends and the digest database.
// It uses the github.com/sony/gobreaker library to prevent cascading failures.
package circuitbreaker

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"haberozet/internal/observability/metrics"
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	// Name labels logs and the circuit_breaker_* metrics.
	Name string

	// MaxRequests is the number of trial calls let through while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts; zero never clears them.
	Interval time.Duration

	// Timeout is the time spent open before going half-open.
	Timeout time.Duration

	// The breaker trips once it has seen MinRequests calls in the current
	// interval and at least FailureThreshold of them failed.
	FailureThreshold float64
	MinRequests      uint32

	// IsSuccessful classifies errors that must not count as failures, such as
	// a caller's invalid input. Nil counts every error.
	IsSuccessful func(err error) bool
}

// DefaultConfig trips at 60% failures over at least 5 calls and stays open a minute.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// GeneratorConfig is the breaker of an abstractive generation backend.
func GeneratorConfig(provider string) Config {
	return DefaultConfig(provider + "-generator")
}

// FeedFetchConfig is shared by all feeds of a reader, so it tolerates more
// failures before opening than a single-endpoint breaker.
func FeedFetchConfig() Config {
	cfg := DefaultConfig("feed-fetch")
	cfg.MaxRequests = 5
	cfg.Interval = time.Minute
	cfg.Timeout = 2 * time.Minute
	cfg.FailureThreshold = 0.7
	cfg.MinRequests = 10
	return cfg
}

// ArticleFetchConfig is for news page downloads. News sites fail
// independently, so the breaker only opens on a high failure ratio.
func ArticleFetchConfig() Config {
	cfg := DefaultConfig("article-fetch")
	cfg.MaxRequests = 5
	cfg.Interval = time.Minute
	cfg.FailureThreshold = 0.8
	return cfg
}

// NotifyConfig is for a chat webhook. An open breaker drops notifications
// for five minutes, then lets a single probe through.
func NotifyConfig(channel string) Config {
	cfg := DefaultConfig("notify-" + channel)
	cfg.MaxRequests = 1
	cfg.Interval = 10 * time.Minute
	cfg.Timeout = 5 * time.Minute
	return cfg
}

// CircuitBreaker is a named gobreaker breaker that logs and exports its
// state changes.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= cfg.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: onStateChange,
	}
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

func onStateChange(name string, from, to gobreaker.State) {
	level := slog.LevelWarn
	if to == gobreaker.StateClosed {
		level = slog.LevelInfo
	}
	slog.Log(context.Background(), level, "circuit breaker state changed",
		slog.String("circuit", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
	metrics.RecordCircuitBreakerState(name, int(to), to.String())
}

// Do runs fn through the breaker. An open breaker fails fast with
// gobreaker.ErrOpenState, a saturated half-open one with ErrTooManyRequests.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var out T
	_, err := cb.breaker.Execute(func() (any, error) {
		v, err := fn()
		out = v
		return nil, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
