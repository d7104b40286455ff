package services

import (
	"context"
	"fmt"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
	"github.com/positron-labs/positron/internal/core/ports/driving"
	"github.com/positron-labs/positron/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService manages conversation sessions.
type SessionService struct {
	sessions driven.SessionStore
}

// NewSessionService creates a new session service.
func NewSessionService(sessions driven.SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

// ListSessions returns all sessions, most recently updated first.
func (s *SessionService) ListSessions(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetSession retrieves a session by ID.
func (s *SessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ListMessages returns a session's messages in insertion order.
func (s *SessionService) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	messages, err := s.sessions.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// DeleteSession removes a session and its messages.
func (s *SessionService) DeleteSession(ctx context.Context, id string) error {
	if err := s.sessions.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	logger.Info("Deleted session %s", id)
	return nil
}
