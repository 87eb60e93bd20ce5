package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const DefaultSystemPrompt = "You are a helpful professional assistant that answers questions about productivity, remote work, startups, and business topics. Provide concise, professional responses."

type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LLMConfig struct {
	Provider     string  `toml:"provider"`
	Model        string  `toml:"model"`
	APIKey       string  `toml:"api_key"`
	BaseURL      string  `toml:"base_url"`
	SystemPrompt string  `toml:"system_prompt"`
	MaxTokens    int     `toml:"max_tokens"`
	Temperature  float32 `toml:"temperature"`
	TimeoutSecs  int     `toml:"timeout_seconds"`
	Referer      string  `toml:"referer"`
	Title        string  `toml:"title"`
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

type StorageConfig struct {
	KnowledgeBase string `toml:"knowledge_base"`
	History       string `toml:"history"`
}

type MatchingConfig struct {
	Cutoff float64 `toml:"cutoff"`
}

type HistoryConfig struct {
	Limit int `toml:"limit"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json or console
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
	Matching MatchingConfig `toml:"matching"`
	History  HistoryConfig  `toml:"history"`
	Log      LogConfig      `toml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		LLM: LLMConfig{
			Provider:     "openrouter",
			SystemPrompt: DefaultSystemPrompt,
			MaxTokens:    200,
			Temperature:  0.7,
			TimeoutSecs:  30,
			Referer:      "http://localhost:3000",
			Title:        "Professional AI Chatbot",
		},
		Storage: StorageConfig{
			KnowledgeBase: "knowledge_base.json",
			History:       "chat_history.json",
		},
		Matching: MatchingConfig{Cutoff: 0.6},
		History:  HistoryConfig{Limit: 10},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a TOML file on top of the defaults, so a partial file only
// overrides the keys it sets.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault falls back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides file settings with environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	// OPENROUTER_API_KEY is the historical name; LLM_API_KEY wins when both are set.
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("KNOWLEDGE_BASE_PATH"); v != "" {
		c.Storage.KnowledgeBase = v
	}
	if v := os.Getenv("CHAT_HISTORY_PATH"); v != "" {
		c.Storage.History = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

var providers = map[string]bool{
	"openrouter": true,
	"openai":     true,
	"claude":     true,
	"gemini":     true,
}

func (c *Config) Validate() error {
	if !providers[strings.ToLower(c.LLM.Provider)] {
		return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	if c.Matching.Cutoff <= 0 || c.Matching.Cutoff > 1 {
		return fmt.Errorf("matching.cutoff must be in (0, 1], got %v", c.Matching.Cutoff)
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be at least 1, got %d", c.History.Limit)
	}
	if c.LLM.TimeoutSecs <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSecs)
	}
	if c.Storage.KnowledgeBase == "" || c.Storage.History == "" {
		return errors.New("storage paths must not be empty")
	}
	return nil
}
