package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xiaot623/gogo/callbot/internal/domain"
	"github.com/xiaot623/gogo/callbot/internal/tools"
)

// GetSession returns one day's session for a caller, or nil when there is none.
func (s *Service) GetSession(ctx context.Context, callerID, date string) (*domain.Session, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidRequest)
	}
	session, err := s.store.GetSession(ctx, domain.SessionKey{CallerID: callerID, Date: date})
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessions returns a caller's most recent sessions.
func (s *Service) ListSessions(ctx context.Context, callerID string, limit int) ([]domain.Session, error) {
	sessions, err := s.store.ListSessions(ctx, callerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return sessions, nil
}

// ToolDefinitions lists the tools offered to sessions in mode.
func (s *Service) ToolDefinitions(mode domain.InputMode) []tools.Definition {
	return s.registry.Definitions(mode)
}
