package notify

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"haberozet/internal/domain/entity"
	"haberozet/internal/resilience/circuitbreaker"
)

const (
	workerPoolTimeout   = 5 * time.Second
	notificationTimeout = 30 * time.Second
)

// Service dispatches digest notifications asynchronously.
type Service interface {
	// NotifyNewDigest fans d out to every enabled channel in the background and
	// returns immediately. Failures are logged and counted, never returned.
	NotifyNewDigest(ctx context.Context, d *entity.Digest)

	// ChannelHealth reports the breaker state of each channel.
	ChannelHealth() []ChannelHealthStatus

	// Shutdown cancels in-flight sends and waits for them until ctx is done.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus is the health of one notification channel.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

type service struct {
	channels       []Channel
	breakers       map[string]*circuitbreaker.CircuitBreaker
	workerPool     chan struct{}
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	metrics        *serviceMetrics
}

// NewService creates a notification service bounded to maxConcurrent sends.
func NewService(channels []Channel, maxConcurrent int) Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
		metrics:        defaultServiceMetrics(),
	}

	enabled := 0
	for _, ch := range channels {
		cfg := circuitbreaker.NotifyConfig(ch.Name())
		cfg.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidDigest) || errors.Is(err, context.Canceled)
		}
		svc.breakers[ch.Name()] = circuitbreaker.New(cfg)
		if ch.IsEnabled() {
			enabled++
		}
	}
	svc.metrics.enabled.Set(float64(enabled))

	return svc
}

func (s *service) NotifyNewDigest(ctx context.Context, d *entity.Digest) {
	if d == nil {
		return
	}
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		s.wg.Add(1)
		go s.notifyChannel(ctx, ch, d)
	}
}

func (s *service) notifyChannel(parent context.Context, channel Channel, d *entity.Digest) {
	defer s.wg.Done()

	s.metrics.active.Inc()
	defer s.metrics.active.Dec()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in notification channel",
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("notification dropped: worker pool full",
			slog.String("channel", channel.Name()))
		s.metrics.recordDropped(channel.Name(), dropPoolFull)
		return
	}

	// The send outlives the caller's request; only Shutdown cancels it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), notificationTimeout)
	defer cancel()
	stop := context.AfterFunc(s.shutdownCtx, cancel)
	defer stop()

	start := time.Now()
	s.metrics.dispatched.WithLabelValues(channel.Name()).Inc()

	_, err := circuitbreaker.Do(s.breakers[channel.Name()], func() (struct{}, error) {
		return struct{}{}, channel.Send(ctx, d)
	})
	duration := time.Since(start)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		slog.WarnContext(ctx, "channel temporarily disabled by circuit breaker",
			slog.String("channel", channel.Name()))
		s.metrics.recordDropped(channel.Name(), dropCircuitOpen)
		return
	}

	s.metrics.recordResult(channel.Name(), duration, err)
	if err != nil {
		slog.WarnContext(ctx, "channel notification failed",
			slog.String("channel", channel.Name()),
			slog.String("url", d.URL),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}
	slog.InfoContext(ctx, "channel notification sent",
		slog.String("channel", channel.Name()),
		slog.Int64("digest_id", d.ID),
		slog.String("title", d.Title),
		slog.Duration("send_duration", duration))
}

func (s *service) ChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: s.breakers[ch.Name()].IsOpen(),
		})
	}
	return statuses
}

func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("shutting down notification service")
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("notification service shutdown timeout")
		return ctx.Err()
	}
}
