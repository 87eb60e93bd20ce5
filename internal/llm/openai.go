package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint,
// OpenRouter included.
type OpenAIClient struct {
	client *openai.Client
	opts   Options
}

func NewOpenAIClient(opts Options) *OpenAIClient {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	config.HTTPClient = &http.Client{
		Timeout:   opts.Timeout,
		Transport: &headerTransport{headers: opts.Headers, base: http.DefaultTransport},
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		opts:   opts,
	}
}

func (c *OpenAIClient) Model() string { return c.opts.Model }

func (c *OpenAIClient) Complete(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.opts.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: question,
			},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		logCompletionError(c.opts.Provider, err)
		return "", unavailable("%s request failed: %v", c.opts.Provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", unavailable("%s returned no choices", c.opts.Provider)
	}
	text := strings.TrimSpace(messageText(resp.Choices[0].Message))
	if text == "" {
		return "", unavailable("%s returned empty message", c.opts.Provider)
	}
	return text, nil
}

func messageText(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" || len(msg.MultiContent) == 0 {
		return msg.Content
	}
	var b strings.Builder
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// logCompletionError records the HTTP status and body of a failed call for operators.
func logCompletionError(provider string, err error) {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		log.Error().
			Str("provider", provider).
			Int("status", apiErr.HTTPStatusCode).
			Str("type", apiErr.Type).
			Str("body", apiErr.Message).
			Msg("completion API error")
	case errors.As(err, &reqErr):
		log.Error().
			Str("provider", provider).
			Int("status", reqErr.HTTPStatusCode).
			Bytes("body", reqErr.Body).
			Err(reqErr.Err).
			Msg("completion request error")
	default:
		log.Error().Str("provider", provider).Err(err).Msg("completion transport error")
	}
}

// headerTransport adds fixed headers, such as OpenRouter's attribution
// headers, to every outgoing request.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}
