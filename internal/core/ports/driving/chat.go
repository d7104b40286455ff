package driving

import (
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
)

// ChatService conducts retrieval-augmented conversations.
type ChatService interface {
	// Chat sends a user message and returns the assistant reply.
	// An empty SessionID creates a new session titled from the message.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a single user turn.
type ChatRequest struct {
	// Message is the user's message text.
	Message string

	// SessionID continues an existing session. Empty starts a new one.
	SessionID string

	// UseContext enables document retrieval for this turn.
	UseContext bool

	// TopK overrides the configured number of retrieved chunks.
	// Zero uses the configured default.
	TopK int
}

// ChatResponse is the assistant's reply to a user turn.
type ChatResponse struct {
	// Reply is the generated assistant message.
	Reply string

	// SessionID identifies the session the turn was recorded in.
	SessionID string

	// Citations lists the distinct sources that informed the reply.
	Citations []domain.Citation
}
