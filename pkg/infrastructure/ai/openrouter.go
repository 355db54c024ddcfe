package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openrouter "github.com/revrost/go-openrouter"
)

// OpenRouterClient sends prompts to a chat model hosted on OpenRouter
type OpenRouterClient struct {
	client  *openrouter.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

// NewOpenRouterClient creates an OpenRouter chat client
func NewOpenRouterClient(apiKey, model string, timeout time.Duration, logger *slog.Logger) *OpenRouterClient {
	client := openrouter.NewClient(apiKey,
		openrouter.WithXTitle("Supply Advisor"),
		openrouter.WithHTTPReferer("https://supplyadvisor.local"),
	)
	return &OpenRouterClient{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     logger.With(slog.String("component", "openrouter"), slog.String("model", model)),
	}
}

// GenerateExplanation returns the model's answer to a single user message
func (c *OpenRouterClient) GenerateExplanation(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model: c.model,
		Messages: []openrouter.ChatCompletionMessage{
			openrouter.UserMessage(prompt),
		},
		MaxTokens:   4096,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter returned no choices")
	}

	text := resp.Choices[0].Message.Content.Text
	if text == "" {
		return "", errors.New("openrouter returned empty content")
	}

	c.log.Debug("chat completion received", slog.Duration("duration", time.Since(start)), slog.Int("chars", len(text)))
	return text, nil
}
