package model

// Origin records which tier of the resolution chain produced an answer.
// Unlike Source it keeps fallback replies apart from genuine remote ones.
type Origin int

const (
	OriginKnowledgeBase Origin = iota
	OriginRemote
	OriginFallback
)

func (o Origin) String() string {
	switch o {
	case OriginKnowledgeBase:
		return "knowledge_base"
	case OriginRemote:
		return "remote"
	case OriginFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Source collapses the origin to the tag exposed over the API.
// Fallback replies are reported as remote.
func (o Origin) Source() Source {
	if o == OriginKnowledgeBase {
		return SourceKnowledgeBase
	}
	return SourceRemote
}

// Result is the outcome of resolving a single question.
type Result struct {
	Answer          string
	MatchedQuestion string
	Origin          Origin
}

func (r Result) Source() Source {
	return r.Origin.Source()
}

// Record folds the result into the history entry for question.
func (r Result) Record(question string) ChatRecord {
	return ChatRecord{
		Question:        question,
		Answer:          r.Answer,
		MatchedQuestion: r.MatchedQuestion,
		Source:          r.Source(),
	}
}
