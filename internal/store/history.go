package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/agenthands/askbot/internal/core/model"
)

// DefaultHistoryLimit is how many records survive each save.
const DefaultHistoryLimit = 10

// HistoryStore persists the most recent chat records as a JSON array.
// Append serializes the load-modify-save cycle so concurrent requests in
// one process cannot drop each other's records.
type HistoryStore struct {
	Path  string
	Limit int

	mu sync.Mutex
}

func NewHistoryStore(path string, limit int) *HistoryStore {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{Path: path, Limit: limit}
}

// Load returns the stored records oldest first, or an empty slice when the
// document is missing or unreadable.
func (s *HistoryStore) Load() []model.ChatRecord {
	records, err := s.read()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.Path).Msg("chat history unavailable, starting empty")
		}
		return []model.ChatRecord{}
	}
	return records
}

// Recent returns at most Limit of the newest records, oldest first.
func (s *HistoryStore) Recent() []model.ChatRecord {
	return tail(s.Load(), s.limit())
}

func (s *HistoryStore) Append(rec model.ChatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := append(s.Load(), rec)
	return s.write(tail(records, s.limit()))
}

func (s *HistoryStore) limit() int {
	if s.Limit < 1 {
		return DefaultHistoryLimit
	}
	return s.Limit
}

func (s *HistoryStore) read() ([]model.ChatRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var records []model.ChatRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse chat history: %w", err)
	}
	if records == nil {
		records = []model.ChatRecord{}
	}
	return records, nil
}

// write replaces the document atomically via a temp file in the same directory.
func (s *HistoryStore) write(records []model.ChatRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chat history: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write chat history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write chat history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to save chat history: %w", err)
	}
	return nil
}

func tail(records []model.ChatRecord, n int) []model.ChatRecord {
	if len(records) <= n {
		return records
	}
	out := make([]model.ChatRecord, n)
	copy(out, records[len(records)-n:])
	return out
}
