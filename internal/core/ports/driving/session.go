package driving

import (
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
)

// SessionService manages conversation sessions.
type SessionService interface {
	// ListSessions returns all sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]domain.Session, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// ListMessages returns a session's messages in insertion order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// DeleteSession removes a session and its messages.
	DeleteSession(ctx context.Context, id string) error
}
