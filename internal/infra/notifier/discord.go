package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"haberozet/internal/domain/entity"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// DiscordNotifier sends digest notifications to a Discord webhook.
type DiscordNotifier struct {
	webhook *webhook
}

// NewDiscordNotifier limits posts to 0.5 req/s with a burst of 3,
// Discord's 30 requests per minute webhook quota.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		webhook: &webhook{
			service:     "Discord",
			url:         config.WebhookURL,
			httpClient:  &http.Client{Timeout: config.Timeout},
			limiter:     rate.NewLimiter(0.5, 3),
			maxAttempts: 2,
			baseDelay:   5 * time.Second,
			retryAfter:  discordRetryAfter,
		},
	}
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp,omitempty"`
}

type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

type discordErrorResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"`
}

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	// #5865F2
	discordBlueColor = 5793266
)

func buildEmbedPayload(d *entity.Digest) DiscordWebhookPayload {
	embed := DiscordEmbed{
		Title:       truncateRunes(d.Title, maxTitleLength, ""),
		Description: truncateRunes(d.Summary, maxDescriptionLength, truncationSuffix),
		URL:         d.URL,
		Color:       discordBlueColor,
		Footer:      DiscordEmbedFooter{Text: footerText(d)},
	}
	if !d.PublishedAt.IsZero() {
		embed.Timestamp = d.PublishedAt.Format(time.RFC3339)
	}
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// discordRetryAfter prefers the JSON retry_after field, then the header, then 5s.
func discordRetryAfter(resp *http.Response, body []byte) time.Duration {
	var discordErr discordErrorResponse
	if err := json.Unmarshal(body, &discordErr); err == nil && discordErr.RetryAfter > 0 {
		return time.Duration(discordErr.RetryAfter * float64(time.Second))
	}
	if d, ok := retryAfterHeader(resp); ok {
		return d
	}
	return 5 * time.Second
}

func (n *DiscordNotifier) NotifyDigest(ctx context.Context, d *entity.Digest) error {
	return n.webhook.send(ctx, d.URL, buildEmbedPayload(d))
}
