package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/askbot/internal/config"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func newFakeCompletionServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, req chatRequest)) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		handler(w, r, req)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testLLMConfig(baseURL string) config.LLMConfig {
	cfg := config.Default().LLM
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	return cfg
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got chatRequest
	var headers http.Header
	srv, hits := newFakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		got = req
		headers = r.Header.Clone()
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  Use time blocking.\n"}}]}`))
	})

	c, err := NewCompleter(context.Background(), testLLMConfig(srv.URL))
	require.NoError(t, err)

	answer, err := c.Complete(context.Background(), "How do I plan my week?")
	require.NoError(t, err)
	assert.Equal(t, "Use time blocking.", answer)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	assert.Equal(t, "openai/gpt-3.5-turbo", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, config.DefaultSystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "How do I plan my week?", got.Messages[1].Content)
	assert.Equal(t, float32(0.7), got.Temperature)
	assert.Equal(t, 200, got.MaxTokens)

	assert.Equal(t, "Bearer test-key", headers.Get("Authorization"))
	assert.Equal(t, "http://localhost:3000", headers.Get("HTTP-Referer"))
	assert.Equal(t, "Professional AI Chatbot", headers.Get("X-Title"))
}

func TestOpenAIClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request, req chatRequest)
	}{
		{"error status with api error", func(w http.ResponseWriter, r *http.Request, req chatRequest) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"auth"}}`))
		}},
		{"error status with plain body", func(w http.ResponseWriter, r *http.Request, req chatRequest) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream down`))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request, req chatRequest) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}},
		{"choice without message", func(w http.ResponseWriter, r *http.Request, req chatRequest) {
			_, _ = w.Write([]byte(`{"choices":[{"index":0}]}`))
		}},
		{"null message", func(w http.ResponseWriter, r *http.Request, req chatRequest) {
			_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":null}]}`))
		}},
		{"blank content", func(w http.ResponseWriter, r *http.Request, req chatRequest) {
			_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  \n"}}]}`))
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request, req chatRequest) {
			_, _ = w.Write([]byte(`{"choices": [`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := newFakeCompletionServer(t, tt.handler)
			c, err := NewCompleter(context.Background(), testLLMConfig(srv.URL))
			require.NoError(t, err)

			_, err = c.Complete(context.Background(), "anything")
			assert.ErrorIs(t, err, ErrRemoteUnavailable)
			assert.Equal(t, int32(1), atomic.LoadInt32(hits), "no retries")
		})
	}
}

func TestOpenAIClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newFakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request, req chatRequest) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	opts := OptionsFromConfig(testLLMConfig(srv.URL))
	opts.Timeout = 50 * time.Millisecond
	c := NewOpenAIClient(opts)

	start := time.Now()
	_, err := c.Complete(context.Background(), "slow question")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOpenAIClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewCompleter(context.Background(), testLLMConfig(url))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "anyone there?")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}
