package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/zerolog/log"
)

type ClaudeClient struct {
	client *anthropic.Client
	opts   Options
}

func NewClaudeClient(opts Options) *ClaudeClient {
	clientOpts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(opts.BaseURL))
	}

	return &ClaudeClient{
		client: anthropic.NewClient(opts.APIKey, clientOpts...),
		opts:   opts,
	}
}

func (c *ClaudeClient) Model() string { return c.opts.Model }

func (c *ClaudeClient) Complete(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	temperature := c.opts.Temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(c.opts.Model),
		System: c.opts.SystemPrompt,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(question),
		},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		logClaudeError(err)
		return "", unavailable("claude request failed: %v", err)
	}

	var b strings.Builder
	for _, part := range resp.Content {
		if part.Type == anthropic.MessagesContentTypeText && part.Text != nil {
			b.WriteString(*part.Text)
		}
	}
	if text := strings.TrimSpace(b.String()); text != "" {
		return text, nil
	}
	return "", unavailable("claude returned no text content")
}

// logClaudeError mirrors logCompletionError. API errors carry the status only
// in the wrapping error text, so the full error is logged alongside the body.
func logClaudeError(err error) {
	var apiErr *anthropic.APIError
	var reqErr *anthropic.RequestError
	switch {
	case errors.As(err, &reqErr):
		log.Error().
			Str("provider", "claude").
			Int("status", reqErr.StatusCode).
			Bytes("body", reqErr.Body).
			Err(reqErr.Err).
			Msg("completion request error")
	case errors.As(err, &apiErr):
		log.Error().
			Str("provider", "claude").
			Str("type", string(apiErr.Type)).
			Str("body", apiErr.Message).
			Err(err).
			Msg("completion API error")
	default:
		log.Error().Str("provider", "claude").Err(err).Msg("completion transport error")
	}
}
