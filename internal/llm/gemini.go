package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	opts   Options
}

func NewGeminiClient(ctx context.Context, opts Options) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		opts:   opts,
	}, nil
}

func (c *GeminiClient) Model() string { return c.opts.Model }

func (c *GeminiClient) Complete(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.opts.Model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(c.opts.SystemPrompt))
	model.SetTemperature(c.opts.Temperature)
	model.SetMaxOutputTokens(int32(c.opts.MaxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(question))
	if err != nil {
		log.Error().Str("provider", "gemini").Err(err).Msg("completion request error")
		return "", unavailable("gemini request failed: %v", err)
	}

	return geminiText(resp)
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].Content != nil {
		var b strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return text, nil
		}
	}
	return "", unavailable("gemini returned no candidates or content")
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
