package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haberozet/internal/observability/metrics"
)

var errBoom = errors.New("boom")

func testConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func fail(cb *CircuitBreaker, n int) {
	for range n {
		_, _ = Do(cb, func() (int, error) { return 0, errBoom })
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig("unit-new"))

	assert.Equal(t, "unit-new", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("unit-new")))
}

func TestDo(t *testing.T) {
	cb := New(testConfig("unit-do"))

	v, err := Do(cb, func() (string, error) { return "haber", nil })
	require.NoError(t, err)
	assert.Equal(t, "haber", v)

	v, err = Do(cb, func() (string, error) { return "partial", errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, v, "result is dropped on error")
}

func TestDo_NilInterfaceResult(t *testing.T) {
	cb := New(testConfig("unit-nil"))

	v, err := Do(cb, func() (error, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTripsOpenAndRecovers(t *testing.T) {
	cb := New(testConfig("unit-trip"))

	fail(cb, 4)
	assert.Equal(t, gobreaker.StateClosed, cb.State(), "below MinRequests")

	fail(cb, 1)
	require.True(t, cb.IsOpen())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("unit-trip")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CircuitBreakerTransitions.WithLabelValues("unit-trip", "open")))

	calls := 0
	_, err := Do(cb, func() (int, error) { calls++; return 1, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Zero(t, calls, "open breaker fails fast")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, cb.State())

	_, err = Do(cb, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("unit-trip")))
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(testConfig("unit-reopen"))
	fail(cb, 5)
	require.True(t, cb.IsOpen())

	time.Sleep(80 * time.Millisecond)
	fail(cb, 1)
	assert.True(t, cb.IsOpen())
}

func TestFailureRatioBelowThreshold(t *testing.T) {
	cb := New(testConfig("unit-ratio"))

	for i := range 10 {
		_, _ = Do(cb, func() (int, error) {
			if i%2 == 1 {
				return 0, errBoom
			}
			return i, nil
		})
	}
	// Success first keeps every running ratio at or below 50%.
	assert.Equal(t, gobreaker.StateClosed, cb.State(), "50% failures stay under 60%")
}

func TestIsSuccessful_ExcludedErrorsDoNotTrip(t *testing.T) {
	invalid := errors.New("invalid input")
	cfg := testConfig("unit-excluded")
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, invalid) }
	cb := New(cfg)

	for range 10 {
		_, err := Do(cb, func() (int, error) { return 0, invalid })
		assert.ErrorIs(t, err, invalid)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestPresets(t *testing.T) {
	tests := []struct {
		cfg       Config
		name      string
		threshold float64
		minReq    uint32
		timeout   time.Duration
	}{
		{DefaultConfig("x"), "x", 0.6, 5, time.Minute},
		{GeneratorConfig("openai"), "openai-generator", 0.6, 5, time.Minute},
		{FeedFetchConfig(), "feed-fetch", 0.7, 10, 2 * time.Minute},
		{ArticleFetchConfig(), "article-fetch", 0.8, 5, time.Minute},
		{NotifyConfig("slack"), "notify-slack", 0.6, 5, 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.cfg.Name)
			assert.InDelta(t, tt.threshold, tt.cfg.FailureThreshold, 1e-9)
			assert.Equal(t, tt.minReq, tt.cfg.MinRequests)
			assert.Equal(t, tt.timeout, tt.cfg.Timeout)
		})
	}
	assert.Equal(t, uint32(1), NotifyConfig("discord").MaxRequests)
}
