package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"haberozet/internal/resilience/retry"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI generates summaries with an OpenAI chat model.
type OpenAI struct {
	client *openai.Client
	caller
}

// NewOpenAI creates an OpenAI generator. config.BaseURL, when set, must
// include the API version path (e.g. "https://proxy.example.com/v1").
func NewOpenAI(config Config) *OpenAI {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	slog.Info("initialized openai generator",
		slog.String("model", config.Model),
		slog.Int("character_limit", config.CharacterLimit))

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		caller: newCaller(ProviderOpenAI, config),
	}
}

// Generate summarizes one chunk of input.
func (o *OpenAI) Generate(ctx context.Context, input string) (string, error) {
	return o.generate(ctx, input, o.complete)
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError exposes the HTTP status so that 429 and 5xx are retried.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Errorf("openai api error: %w", &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message})
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return fmt.Errorf("openai api error: %w", &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()})
	}
	return fmt.Errorf("openai api error: %w", err)
}
