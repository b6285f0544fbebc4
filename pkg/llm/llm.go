// Package llm defines the chat-completion transport boundary and an
// OpenRouter client for it.
package llm

import (
	"context"

	"github.com/okonma/valet/pkg/chats/message"
)

// Request is one chat-completion call: the model, the full ordered message
// sequence, and opaque call parameters forwarded verbatim to the API.
type Request struct {
	Model    string
	Messages []message.Message
	Params   map[string]any
}

// Completer sends a conversation to a chat-completion API and returns the
// assistant's reply text. Implementations make a single attempt: failures
// are returned to the caller without retry.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
