package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"haberozet/internal/resilience/retry"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude generates summaries with an Anthropic Claude model.
type Claude struct {
	client anthropic.Client
	caller
}

// NewClaude creates a Claude generator. The SDK's own retries are disabled;
// retries go through the shared backoff policy.
func NewClaude(config Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	slog.Info("initialized claude generator",
		slog.String("model", config.Model),
		slog.Int("character_limit", config.CharacterLimit))

	return &Claude{
		client: anthropic.NewClient(opts...),
		caller: newCaller(ProviderClaude, config),
	}
}

// Generate summarizes one chunk of input.
func (c *Claude) Generate(ctx context.Context, input string) (string, error) {
	return c.generate(ctx, input, c.complete)
}

func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("claude api error: %w", &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()})
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("claude api returned empty response")
	}
	return b.String(), nil
}
