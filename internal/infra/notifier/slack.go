package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"haberozet/internal/domain/entity"
)

// SlackConfig contains configuration for Slack incoming webhook notifications.
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// SlackNotifier sends digest notifications to a Slack incoming webhook.
type SlackNotifier struct {
	webhook *webhook
}

// NewSlackNotifier limits posts to Slack's one message per second.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		webhook: &webhook{
			service:     "Slack",
			url:         config.WebhookURL,
			httpClient:  &http.Client{Timeout: config.Timeout},
			limiter:     rate.NewLimiter(1.0, 1),
			maxAttempts: 2,
			baseDelay:   5 * time.Second,
			retryAfter: func(resp *http.Response, _ []byte) time.Duration {
				if d, ok := retryAfterHeader(resp); ok {
					return d
				}
				return 30 * time.Second
			},
		},
	}
}

// SlackWebhookPayload is a Block Kit message with fallback text.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150
)

func buildBlockKitPayload(d *entity.Digest) SlackWebhookPayload {
	fallback := truncateRunes(fmt.Sprintf("%s - %s", d.Title, footerText(d)), maxFallbackLength, truncationSuffix)

	section := truncateRunes(
		fmt.Sprintf("*<%s|%s>*\n\n%s", d.URL, d.Title, d.Summary),
		maxSectionTextLength, truncationSuffix)

	meta := footerText(d)
	if !d.PublishedAt.IsZero() {
		meta += " • " + d.PublishedAt.Format(time.RFC3339)
	}

	return SlackWebhookPayload{
		Text: fallback,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: section}},
			{Type: "context", Elements: []SlackTextObject{
				{Type: "mrkdwn", Text: truncateRunes(meta, maxContextTextLength, truncationSuffix)},
			}},
		},
	}
}

func (n *SlackNotifier) NotifyDigest(ctx context.Context, d *entity.Digest) error {
	return n.webhook.send(ctx, d.URL, buildBlockKitPayload(d))
}

// footerText names the feed and summarization method of a digest.
func footerText(d *entity.Digest) string {
	if d.FeedURL == "" {
		return string(d.Method)
	}
	return fmt.Sprintf("%s · %s", d.FeedURL, d.Method)
}
