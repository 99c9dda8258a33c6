// Package notifier posts newly stored digests to chat webhooks.
//
// Discord and Slack share one webhook client that applies rate limiting,
// honors 429 retry hints and retries server errors once.
package notifier

import (
	"context"

	"haberozet/internal/domain/entity"
)

// Notifier announces a stored digest.
type Notifier interface {
	NotifyDigest(ctx context.Context, digest *entity.Digest) error
}

// NoOpNotifier is used for disabled channels.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) NotifyDigest(context.Context, *entity.Digest) error {
	return nil
}
