// Package notify dispatches notifications about newly stored digests to the
// configured chat channels without blocking the digest run.
package notify

import (
	"context"

	"haberozet/internal/domain/entity"
	"haberozet/internal/infra/notifier"
)

// Channel is a notification destination. Implementations must be safe for
// concurrent use and respect ctx cancellation.
type Channel interface {
	Name() string
	IsEnabled() bool
	Send(ctx context.Context, digest *entity.Digest) error
}

// NotifierChannel adapts an infra notifier to Channel.
type NotifierChannel struct {
	name     string
	notifier notifier.Notifier
	enabled  bool
}

// NewNotifierChannel wraps n. A disabled channel never calls n.
func NewNotifierChannel(name string, n notifier.Notifier, enabled bool) *NotifierChannel {
	if n == nil || !enabled {
		n = notifier.NewNoOpNotifier()
	}
	return &NotifierChannel{name: name, notifier: n, enabled: enabled}
}

// NewDiscordChannel builds the "discord" channel from its webhook config.
func NewDiscordChannel(config notifier.DiscordConfig) *NotifierChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	return NewNotifierChannel("discord", n, config.Enabled)
}

// NewSlackChannel builds the "slack" channel from its webhook config.
func NewSlackChannel(config notifier.SlackConfig) *NotifierChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	}
	return NewNotifierChannel("slack", n, config.Enabled)
}

func (c *NotifierChannel) Name() string { return c.name }

func (c *NotifierChannel) IsEnabled() bool { return c.enabled }

func (c *NotifierChannel) Send(ctx context.Context, d *entity.Digest) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if d == nil || d.URL == "" || d.Title == "" {
		return ErrInvalidDigest
	}
	return c.notifier.NotifyDigest(ctx, d)
}
