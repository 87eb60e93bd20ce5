package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/askbot/internal/config"
	"github.com/agenthands/askbot/internal/core"
	"github.com/agenthands/askbot/internal/core/fallback"
	"github.com/agenthands/askbot/internal/core/match"
	"github.com/agenthands/askbot/internal/core/model"
	"github.com/agenthands/askbot/internal/llm"
	"github.com/agenthands/askbot/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the real pipeline with no remote credentials, so
// misses always land on the fallback rules.
func newTestRouter(t *testing.T) (*gin.Engine, *store.HistoryStore) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.LLM.APIKey = ""
	remote, err := llm.NewCompleter(context.Background(), cfg.LLM)
	require.NoError(t, err)

	history := store.NewHistoryStore(filepath.Join(dir, "chat_history.json"), cfg.History.Limit)
	resolver := core.NewResolver(
		store.NewKnowledgeStore(filepath.Join(dir, "knowledge_base.json")),
		match.NewMatcher(cfg.Matching.Cutoff),
		remote,
		fallback.NewResponder(),
		history,
	)
	return NewServer(resolver, history, cfg.Server).SetupRouter(), history
}

func ask(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, AskResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp AskResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestRoot(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Mini AI Chatbot API is running"}`, w.Body.String())
}

func TestAsk_KnowledgeBaseHit(t *testing.T) {
	r, _ := newTestRouter(t)

	w, resp := ask(t, r, `{"question": "how can i improve my productivity"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.SourceKnowledgeBase, resp.Source)
	assert.Equal(t, "How can I improve my productivity?", resp.MatchedQuestion)
	assert.Contains(t, resp.Answer, "time blocking")
}

func TestAsk_FallbackWithoutCredentials(t *testing.T) {
	r, _ := newTestRouter(t)

	w, resp := ask(t, r, `{"question": "thanks"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, "remote", raw["source"])
	assert.Equal(t, "", raw["matched_question"])
	assert.Equal(t, "You're welcome! Is there anything else you'd like to know?", resp.Answer)
}

func TestAsk_Idempotent(t *testing.T) {
	r, _ := newTestRouter(t)

	_, first := ask(t, r, `{"question": "What is the best way to manage a remote team"}`)
	for i := 0; i < 3; i++ {
		_, again := ask(t, r, `{"question": "What is the best way to manage a remote team"}`)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, model.SourceKnowledgeBase, first.Source)
}

func TestAsk_BadRequests(t *testing.T) {
	r, history := newTestRouter(t)

	for _, body := range []string{``, `not json`, `{}`, `{"question": null}`, `{"question": 42}`} {
		w, _ := ask(t, r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Contains(t, w.Body.String(), "error")
	}
	assert.Empty(t, history.Load())
}

func TestAsk_BlankQuestionGetsFallback(t *testing.T) {
	r, history := newTestRouter(t)

	for _, body := range []string{`{"question": ""}`, `{"question": "   "}`} {
		w, resp := ask(t, r, body)
		require.Equal(t, http.StatusOK, w.Code, "body %q", body)
		assert.Equal(t, fallback.UnknownReply, resp.Answer)
		assert.Equal(t, model.SourceRemote, resp.Source)
		assert.Empty(t, resp.MatchedQuestion)
	}
	assert.Len(t, history.Load(), 2)
}

func TestHistory_LastTenOldestFirst(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"history": []}`, w.Body.String())

	questions := []string{"hello", "thanks", "bye", "How do I start a startup?"}
	for i := 0; i < 3; i++ {
		for _, q := range questions {
			w, _ := ask(t, r, `{"question": "`+q+`"}`)
			require.Equal(t, http.StatusOK, w.Code)
		}
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.History, 10)
	assert.Equal(t, "bye", resp.History[0].Question)
	last := resp.History[9]
	assert.Equal(t, "How do I start a startup?", last.Question)
	assert.Equal(t, "How do I start a startup?", last.MatchedQuestion)
	assert.Equal(t, model.SourceKnowledgeBase, last.Source)
}

func TestCORS(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "content-type", w.Header().Get("Access-Control-Allow-Headers"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
