// Package match implements the lexical question matching used to look up
// knowledge base entries.
//
// Scores are the difflib SequenceMatcher ratio (2*M/T over runes), so a
// knowledge base tuned against difflib's close-match behaviour keeps the
// same boundary cases here.
package match

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultCutoff is the minimum similarity ratio for a candidate to count as a match.
const DefaultCutoff = 0.6

type Matcher struct {
	Cutoff float64
}

func NewMatcher(cutoff float64) *Matcher {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	return &Matcher{Cutoff: cutoff}
}

// BestMatch returns the candidate closest to query, as originally written,
// provided its score reaches the cutoff. Ties keep the earliest candidate.
func (m *Matcher) BestMatch(query string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	// The query is the fixed sequence, as in difflib.get_close_matches,
	// so its index is built once.
	sm := difflib.NewMatcher(nil, runes(Normalize(query)))

	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		sm.SetSeq1(runes(Normalize(c)))
		if sm.RealQuickRatio() < m.Cutoff || sm.QuickRatio() < m.Cutoff {
			continue
		}
		score := sm.Ratio()
		if score < m.Cutoff {
			continue
		}
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}

	if best == -1 {
		return "", false
	}
	return candidates[best], true
}

// Score is the similarity ratio between the normalized forms of a and b.
func Score(a, b string) float64 {
	return difflib.NewMatcher(runes(Normalize(a)), runes(Normalize(b))).Ratio()
}

// runes splits s into one element per code point, the unit difflib compares.
func runes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}
