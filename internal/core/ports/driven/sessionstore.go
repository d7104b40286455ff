package driven

import (
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
)

// SessionStore persists conversation sessions and their messages.
// Messages are append-only; deleting a session removes its messages.
type SessionStore interface {
	// SaveSession stores or updates a session.
	SaveSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by ID.
	// Returns domain.ErrNotFound when the session does not exist.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// ListSessions returns all sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]domain.Session, error)

	// DeleteSession removes a session and its messages.
	// Returns domain.ErrNotFound when the session does not exist.
	DeleteSession(ctx context.Context, id string) error

	// AppendMessage adds a message to a session and bumps the
	// session's UpdatedAt.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// ListMessages returns a session's messages in insertion order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// CountSessions returns the number of stored sessions.
	CountSessions(ctx context.Context) (int, error)
}
