package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/agenthands/askbot/internal/core/fallback"
	"github.com/agenthands/askbot/internal/core/match"
	"github.com/agenthands/askbot/internal/core/model"
	"github.com/agenthands/askbot/internal/llm"
	"github.com/agenthands/askbot/internal/store"
)

// KnowledgeSource yields the knowledge base for one resolution. It is loaded
// fresh for every question.
type KnowledgeSource interface {
	Load() *store.KnowledgeBase
}

type HistoryRecorder interface {
	Append(rec model.ChatRecord) error
}

// Resolver answers a question from the knowledge base, then the remote
// model, then the canned fallback rules, and records the outcome.
type Resolver struct {
	Knowledge KnowledgeSource
	Matcher   *match.Matcher
	Remote    llm.Completer
	Fallback  *fallback.Responder
	History   HistoryRecorder
}

func NewResolver(knowledge KnowledgeSource, matcher *match.Matcher, remote llm.Completer, responder *fallback.Responder, history HistoryRecorder) *Resolver {
	if matcher == nil {
		matcher = match.NewMatcher(match.DefaultCutoff)
	}
	if responder == nil {
		responder = fallback.NewResponder()
	}
	return &Resolver{
		Knowledge: knowledge,
		Matcher:   matcher,
		Remote:    remote,
		Fallback:  responder,
		History:   history,
	}
}

// Resolve always produces an answer. Blank questions go through the same
// chain and usually end on the fallback reply.
func (r *Resolver) Resolve(ctx context.Context, question string) (model.Result, error) {
	result, ok := r.fromKnowledgeBase(question)
	if !ok {
		result = r.fromRemote(ctx, question)
	}

	if r.History != nil {
		if err := r.History.Append(result.Record(question)); err != nil {
			log.Error().Err(err).Msg("failed to save chat history")
		}
	}

	log.Debug().
		Str("origin", result.Origin.String()).
		Str("matched_question", result.MatchedQuestion).
		Msg("question resolved")

	return result, nil
}

func (r *Resolver) fromKnowledgeBase(question string) (model.Result, bool) {
	var kb *store.KnowledgeBase
	if r.Knowledge != nil {
		kb = r.Knowledge.Load()
	}
	if kb == nil || kb.Len() == 0 {
		kb = store.DefaultKnowledgeBase()
	}

	matched, ok := r.Matcher.BestMatch(question, kb.Questions())
	if !ok {
		return model.Result{}, false
	}

	answer, ok := kb.Answer(matched)
	if !ok {
		return model.Result{}, false
	}
	canonical, _ := kb.Canonical(matched)

	return model.Result{
		Answer:          answer,
		MatchedQuestion: canonical,
		Origin:          model.OriginKnowledgeBase,
	}, true
}

func (r *Resolver) fromRemote(ctx context.Context, question string) model.Result {
	if r.Remote != nil {
		answer, err := r.Remote.Complete(ctx, question)
		if err == nil {
			return model.Result{Answer: answer, Origin: model.OriginRemote}
		}
		log.Warn().Err(err).Str("model", r.Remote.Model()).Msg("remote completion failed, using fallback")
	}

	return model.Result{
		Answer: r.Fallback.Respond(question),
		Origin: model.OriginFallback,
	}
}
