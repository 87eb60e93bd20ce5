package core

import (
	"context"
	"sync"

	"github.com/agenthands/askbot/internal/core/model"
	"github.com/agenthands/askbot/internal/llm"
	"github.com/agenthands/askbot/internal/store"
)

type MockKnowledge struct {
	KB    *store.KnowledgeBase
	Loads int
}

func (m *MockKnowledge) Load() *store.KnowledgeBase {
	m.Loads++
	return m.KB
}

type MockCompleter struct {
	Response string
	Err      error
	Calls    []string
}

func (m *MockCompleter) Complete(ctx context.Context, question string) (string, error) {
	m.Calls = append(m.Calls, question)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockCompleter) Model() string { return "mock-model" }

type MockHistory struct {
	mu      sync.Mutex
	Records []model.ChatRecord
	Err     error
}

func (m *MockHistory) Append(rec model.ChatRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, rec)
	return nil
}

var _ llm.Completer = (*MockCompleter)(nil)
