package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/agenthands/askbot/internal/core/match"
	"github.com/agenthands/askbot/internal/core/model"
)

// KnowledgeBase is an ordered set of canonical questions and their answers.
// Order follows the source document and decides match tie-breaks.
type KnowledgeBase struct {
	entries []model.KnowledgeEntry
	index   map[string]int
}

func NewKnowledgeBase(entries ...model.KnowledgeEntry) *KnowledgeBase {
	kb := &KnowledgeBase{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		kb.put(e.Question, e.Answer)
	}
	return kb
}

// put keeps the position of the first occurrence of a question and the
// answer of the last one, the way a JSON object with duplicate keys decodes.
func (kb *KnowledgeBase) put(question, answer string) {
	if i, ok := kb.index[question]; ok {
		kb.entries[i].Answer = answer
		return
	}
	kb.index[question] = len(kb.entries)
	kb.entries = append(kb.entries, model.KnowledgeEntry{Question: question, Answer: answer})
}

func (kb *KnowledgeBase) Len() int {
	return len(kb.entries)
}

func (kb *KnowledgeBase) Entries() []model.KnowledgeEntry {
	out := make([]model.KnowledgeEntry, len(kb.entries))
	copy(out, kb.entries)
	return out
}

// Questions lists the canonical questions in document order.
func (kb *KnowledgeBase) Questions() []string {
	out := make([]string, len(kb.entries))
	for i, e := range kb.entries {
		out[i] = e.Question
	}
	return out
}

// Answer returns the answer of the first entry whose question normalizes to
// the same text as question. It is an exact lookup, not a fuzzy one.
func (kb *KnowledgeBase) Answer(question string) (string, bool) {
	e, ok := kb.lookup(question)
	return e.Answer, ok
}

// Canonical returns the stored question text equal to question after normalization.
func (kb *KnowledgeBase) Canonical(question string) (string, bool) {
	e, ok := kb.lookup(question)
	return e.Question, ok
}

func (kb *KnowledgeBase) lookup(question string) (model.KnowledgeEntry, bool) {
	want := match.Normalize(question)
	for _, e := range kb.entries {
		if match.Normalize(e.Question) == want {
			return e, true
		}
	}
	return model.KnowledgeEntry{}, false
}

// DefaultKnowledgeBase is served whenever the knowledge base document cannot be used.
func DefaultKnowledgeBase() *KnowledgeBase {
	return NewKnowledgeBase(
		model.KnowledgeEntry{
			Question: "How can I improve my productivity?",
			Answer:   "To improve productivity, try techniques like time blocking, prioritizing tasks with the Eisenhower Matrix, minimizing distractions, and taking regular breaks using the Pomodoro technique.",
		},
		model.KnowledgeEntry{
			Question: "What are the benefits of remote work?",
			Answer:   "Remote work offers benefits like flexibility, no commute, better work-life balance, and access to a global talent pool. However, it requires discipline and good communication practices.",
		},
		model.KnowledgeEntry{
			Question: "How do I start a startup?",
			Answer:   "Starting a startup involves identifying a problem, validating your idea, creating a business plan, building a minimum viable product (MVP), seeking funding, and iterating based on customer feedback.",
		},
		model.KnowledgeEntry{
			Question: "What is the best way to manage a remote team?",
			Answer:   "Effective remote team management requires clear communication, regular check-ins, trust, the right tools (like Slack, Zoom, Asana), and setting clear expectations and goals.",
		},
		model.KnowledgeEntry{
			Question: "How can I stay focused while working from home?",
			Answer:   "Create a dedicated workspace, establish a routine, set boundaries with family, use time management techniques, and take regular breaks to maintain focus while working from home.",
		},
	)
}

// KnowledgeStore reads the knowledge base document from disk on every Load.
type KnowledgeStore struct {
	Path string
}

func NewKnowledgeStore(path string) *KnowledgeStore {
	return &KnowledgeStore{Path: path}
}

// Load never fails: a missing, corrupt or empty document yields the defaults.
func (s *KnowledgeStore) Load() *KnowledgeBase {
	kb, err := s.read()
	if err != nil {
		log.Warn().Err(err).Str("path", s.Path).Msg("knowledge base unavailable, using defaults")
		return DefaultKnowledgeBase()
	}
	if kb.Len() == 0 {
		log.Warn().Str("path", s.Path).Msg("knowledge base is empty, using defaults")
		return DefaultKnowledgeBase()
	}
	return kb
}

func (s *KnowledgeStore) read() (*KnowledgeBase, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	kb, err := decodeKnowledgeBase(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	return kb, nil
}

// decodeKnowledgeBase walks the JSON object token by token so document order survives.
func decodeKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object of question to answer")
	}

	kb := NewKnowledgeBase()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		question, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", keyTok)
		}
		var answer *string
		if err := dec.Decode(&answer); err != nil {
			return nil, fmt.Errorf("answer for %q: %w", question, err)
		}
		if answer == nil {
			return nil, fmt.Errorf("answer for %q is null", question)
		}
		kb.put(question, *answer)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after knowledge base object")
	}
	return kb, nil
}
