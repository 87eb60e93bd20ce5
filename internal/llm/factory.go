package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/askbot/internal/config"
)

const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 200
)

var defaultModels = map[string]string{
	"openrouter": "openai/gpt-3.5-turbo",
	"openai":     "gpt-3.5-turbo",
	"claude":     "claude-3-5-haiku-latest",
	"gemini":     "gemini-1.5-flash",
}

// Options is the provider-neutral request setup shared by every Completer.
type Options struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
	Timeout      time.Duration
	Headers      map[string]string
}

// OptionsFromConfig fills in provider defaults for anything cfg leaves blank.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = "openrouter"
	}

	opts := Options{
		Provider:     provider,
		Model:        cfg.Model,
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		Timeout:      cfg.Timeout(),
	}
	if opts.Model == "" {
		opts.Model = defaultModels[provider]
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = config.DefaultSystemPrompt
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if provider == "openrouter" {
		if opts.BaseURL == "" {
			opts.BaseURL = OpenRouterBaseURL
		}
		opts.Headers = map[string]string{
			"HTTP-Referer": cfg.Referer,
			"X-Title":      cfg.Title,
		}
	}
	return opts
}

// NewCompleter builds the Completer for cfg.Provider. Without an API key it
// returns a Completer that always fails with ErrRemoteUnavailable.
func NewCompleter(ctx context.Context, cfg config.LLMConfig) (Completer, error) {
	opts := OptionsFromConfig(cfg)

	if _, ok := defaultModels[opts.Provider]; !ok {
		return nil, fmt.Errorf("unsupported llm provider: %s", opts.Provider)
	}
	if opts.APIKey == "" {
		return noCredentials{provider: opts.Provider, model: opts.Model}, nil
	}

	switch opts.Provider {
	case "openrouter", "openai":
		return NewOpenAIClient(opts), nil
	case "claude":
		return NewClaudeClient(opts), nil
	case "gemini":
		return NewGeminiClient(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", opts.Provider)
	}
}
