// Package fallback answers common conversational questions with canned
// replies when neither the knowledge base nor the remote model can.
package fallback

import "strings"

type Intent string

const (
	IntentGreeting  Intent = "greeting"
	IntentStatus    Intent = "status"
	IntentIdentity  Intent = "identity"
	IntentGratitude Intent = "gratitude"
	IntentFarewell  Intent = "farewell"
	IntentUnknown   Intent = "unknown"
)

// Rule maps an intent to the keywords that trigger it. Keywords are matched
// as substrings of the lowercased question.
type Rule struct {
	Intent   Intent
	Keywords []string
	Reply    string
}

const UnknownReply = "I'm not sure how to answer that specific question. Could you try asking about productivity, remote work, or startups?"

// DefaultRules are checked in order; the first rule with a keyword hit wins.
var DefaultRules = []Rule{
	{
		Intent:   IntentGreeting,
		Keywords: []string{"hello", "hi", "hey", "greeting"},
		Reply:    "Hello! I'm your professional AI assistant. How can I help you today?",
	},
	{
		Intent:   IntentStatus,
		Keywords: []string{"how are you", "how do you do"},
		Reply:    "I'm functioning well, thank you for asking! I'm here to help with your professional questions.",
	},
	{
		Intent:   IntentIdentity,
		Keywords: []string{"name", "who are you"},
		Reply:    "I'm a professional AI chatbot designed to answer questions about productivity, remote work, startups, and related topics.",
	},
	{
		Intent:   IntentGratitude,
		Keywords: []string{"thank", "thanks", "appreciate"},
		Reply:    "You're welcome! Is there anything else you'd like to know?",
	},
	{
		Intent:   IntentFarewell,
		Keywords: []string{"bye", "goodbye", "see you"},
		Reply:    "Goodbye! Feel free to return if you have more questions.",
	},
}

type Responder struct {
	Rules   []Rule
	Unknown string
}

func NewResponder() *Responder {
	return &Responder{
		Rules:   DefaultRules,
		Unknown: UnknownReply,
	}
}

// Classify returns the intent of the first rule whose keywords appear in question.
func (r *Responder) Classify(question string) Intent {
	rule, ok := r.match(question)
	if !ok {
		return IntentUnknown
	}
	return rule.Intent
}

// Respond never returns an empty string.
func (r *Responder) Respond(question string) string {
	if rule, ok := r.match(question); ok && rule.Reply != "" {
		return rule.Reply
	}
	if r.Unknown == "" {
		return UnknownReply
	}
	return r.Unknown
}

func (r *Responder) match(question string) (Rule, bool) {
	lowered := strings.ToLower(question)
	for _, rule := range r.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}
