// Package retry retries transient failures of network collaborators with
// exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/sony/gobreaker"

	"haberozet/internal/observability/logging"
)

// Config is a backoff policy. Attempt n (1-based) waits
// min(InitialDelay * Multiplier^(n-1), MaxDelay) plus up to JitterFraction of
// that before attempt n+1.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

func policy(attempts int, initial, maxDelay time.Duration) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   initial,
		MaxDelay:       maxDelay,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// DefaultConfig: 3 attempts starting at 1s.
func DefaultConfig() Config { return policy(3, time.Second, 30*time.Second) }

// FeedFetchConfig retries RSS reads aggressively; a feed that is down for a
// few seconds should not cost a whole digest run.
func FeedFetchConfig() Config { return policy(5, time.Second, 30*time.Second) }

// GeneratorConfig retries abstractive generation calls. Each call is billed,
// so attempts are few.
func GeneratorConfig() Config { return policy(3, 2*time.Second, 10*time.Second) }

// DBConfig retries connection setup quickly.
func DBConfig() Config { return policy(3, 100*time.Millisecond, time.Second) }

// ArticleFetchConfig retries news page downloads.
func ArticleFetchConfig() Config { return policy(3, 500*time.Millisecond, 5*time.Second) }

// Backoff returns the wait after the given failed attempt, without jitter.
func (c Config) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1))
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. The wait between attempts honors ctx and, for
// HTTPError, a longer Retry-After.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	logger := logging.FromContext(ctx)
	attempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("operation succeeded after retry", "attempt", attempt)
			}
			return v, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			if attempt > 1 {
				logger.Warn("non-retryable error, aborting", "attempt", attempt, "error", err)
			}
			return zero, err
		}
		if attempt == attempts {
			break
		}

		delay := addJitter(cfg.Backoff(attempt), cfg.JitterFraction)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.RetryAfter > delay {
			delay = min(httpErr.RetryAfter, max(cfg.MaxDelay, delay))
		}
		logger.Warn("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}

	return zero, fmt.Errorf("max retry attempts (%d) exceeded: %w", attempts, lastErr)
}

// WithBackoff is Do for functions without a result.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	_, err := Do(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// IsRetryable reports whether err is transient: network timeouts, refused or
// reset connections, and HTTP 408, 429 and 5xx. Cancellation and an open
// circuit breaker are final.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ETIMEDOUT),
		errors.Is(err, syscall.ENETUNREACH):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code := httpErr.StatusCode
		return code >= 500 && code < 600 ||
			code == http.StatusTooManyRequests ||
			code == http.StatusRequestTimeout
	}
	return false
}

// HTTPError is a non-2xx response of an upstream service.
type HTTPError struct {
	StatusCode int
	Message    string
	// RetryAfter is the server-requested wait, zero if none was sent.
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError builds an HTTPError from resp, reading its Retry-After header.
func NewHTTPError(resp *http.Response) *HTTPError {
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
}

// ParseRetryAfter reads a Retry-After value in seconds or as an HTTP date.
// Anything else, or a date in the past, yields zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1.0)
	// #nosec G404 -- backoff jitter needs no cryptographic randomness.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
