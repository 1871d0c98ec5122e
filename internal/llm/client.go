package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUpstreamUnavailable indicates the completion service could not be
// reached, timed out, or returned a non-success status.
var ErrUpstreamUnavailable = errors.New("completion service unavailable")

// Client wraps an OpenAI-compatible chat completion API. It issues
// exactly one request per call and never retries: retry policy belongs
// to the caller, since repeated upstream calls have cost and latency
// implications better decided there.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewClient creates a completion client. baseURL may point at any
// OpenAI-compatible endpoint; an empty string keeps the library default.
func NewClient(baseURL, apiKey, model string, maxTokens int, temperature float32, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Complete sends one system+user prompt pair and returns the raw text
// of the first choice. The call is bounded by the configured timeout
// and honors caller cancellation through ctx.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, apiErr.HTTPStatusCode)
		}
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		// An empty completion is not a transport failure; the parser
		// rejects it and the pipeline falls back to synthesis.
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
