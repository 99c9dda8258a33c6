package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haberozet/internal/domain/entity"
)

type fakeChannel struct {
	name    string
	enabled bool
	err     error
	calls   atomic.Int32
	block   chan struct{}

	mu   sync.Mutex
	seen []string
}

func (f *fakeChannel) Name() string    { return f.name }
func (f *fakeChannel) IsEnabled() bool { return f.enabled }

func (f *fakeChannel) Send(ctx context.Context, d *entity.Digest) error {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	f.seen = append(f.seen, d.URL)
	f.mu.Unlock()
	return f.err
}

func digest() *entity.Digest {
	return &entity.Digest{ID: 3, URL: "https://haber.example/3", Title: "Başlık", Summary: "Özet."}
}

func waitShutdown(t *testing.T, svc Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))
}

func TestService_DispatchesToEnabledChannels(t *testing.T) {
	on := &fakeChannel{name: "discord", enabled: true}
	off := &fakeChannel{name: "slack", enabled: false}
	svc := NewService([]Channel{on, off}, 2)

	svc.NotifyNewDigest(context.Background(), digest())
	require.Eventually(t, func() bool { return on.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	waitShutdown(t, svc)
	assert.Equal(t, int32(0), off.calls.Load())
	assert.Equal(t, []string{"https://haber.example/3"}, on.seen)
}

func TestService_NilDigestIgnored(t *testing.T) {
	ch := &fakeChannel{name: "discord", enabled: true}
	svc := NewService([]Channel{ch}, 1)

	svc.NotifyNewDigest(context.Background(), nil)
	waitShutdown(t, svc)

	assert.Equal(t, int32(0), ch.calls.Load())
}

func TestService_SurvivesCallerCancellation(t *testing.T) {
	ch := &fakeChannel{name: "discord", enabled: true}
	svc := NewService([]Channel{ch}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	svc.NotifyNewDigest(ctx, digest())
	cancel()

	waitShutdown(t, svc)
	assert.Equal(t, int32(1), ch.calls.Load())
}

func TestService_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	ch := &fakeChannel{name: "slack", enabled: true, err: errors.New("webhook down")}
	svc := NewService([]Channel{ch}, 1)

	for i := 0; i < 5; i++ {
		svc.NotifyNewDigest(context.Background(), digest())
		want := int32(i + 1)
		require.Eventually(t, func() bool { return ch.calls.Load() == want }, time.Second, 5*time.Millisecond)
	}
	require.Eventually(t, func() bool {
		return svc.ChannelHealth()[0].CircuitBreakerOpen
	}, time.Second, 5*time.Millisecond)

	svc.NotifyNewDigest(context.Background(), digest())
	waitShutdown(t, svc)

	assert.Equal(t, int32(5), ch.calls.Load())
}

func TestService_ShutdownCancelsInFlight(t *testing.T) {
	ch := &fakeChannel{name: "discord", enabled: true, block: make(chan struct{})}
	svc := NewService([]Channel{ch}, 1)

	svc.NotifyNewDigest(context.Background(), digest())
	require.Eventually(t, func() bool { return ch.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	waitShutdown(t, svc)
}

func TestService_ChannelHealth(t *testing.T) {
	svc := NewService([]Channel{
		&fakeChannel{name: "discord", enabled: true},
		&fakeChannel{name: "slack"},
	}, 1)

	assert.Equal(t, []ChannelHealthStatus{
		{Name: "discord", Enabled: true},
		{Name: "slack", Enabled: false},
	}, svc.ChannelHealth())
}
