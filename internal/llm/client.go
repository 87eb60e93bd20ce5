package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrRemoteUnavailable is wrapped by every Completer failure: missing
// credentials, transport errors, timeouts, error statuses and responses
// without a usable completion.
var ErrRemoteUnavailable = errors.New("remote completion unavailable")

// Completer answers a single question with a remote chat-completion model.
type Completer interface {
	Complete(ctx context.Context, question string) (string, error)
	Model() string
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRemoteUnavailable, fmt.Sprintf(format, args...))
}

// noCredentials stands in for a provider without an API key; it never
// touches the network.
type noCredentials struct {
	provider string
	model    string
}

func (n noCredentials) Complete(ctx context.Context, question string) (string, error) {
	return "", unavailable("no api key configured for %s", n.provider)
}

func (n noCredentials) Model() string { return n.model }
