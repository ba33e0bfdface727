// Package store defines the session storage interface and its backends.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// Store persists one session record per caller per calendar day.
type Store interface {
	// GetSession returns the session for key, or nil, nil when there is none.
	GetSession(ctx context.Context, key domain.SessionKey) (*domain.Session, error)
	// SaveSession replaces the whole record. Concurrent writers: last one wins.
	SaveSession(ctx context.Context, session *domain.Session) error
	// ListSessions returns a caller's most recent sessions, newest first.
	ListSessions(ctx context.Context, callerID string, limit int) ([]domain.Session, error)

	Close() error
}

// DefaultListLimit caps ListSessions when the caller passes a non-positive limit.
const DefaultListLimit = 20

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return DefaultListLimit
	}
	return limit
}

func encodeTurns(turns []domain.Turn) (string, error) {
	if turns == nil {
		turns = []domain.Turn{}
	}
	b, err := json.Marshal(turns)
	if err != nil {
		return "", fmt.Errorf("failed to encode turns: %w", err)
	}
	return string(b), nil
}

func decodeTurns(raw string) ([]domain.Turn, error) {
	turns := []domain.Turn{}
	if raw == "" {
		return turns, nil
	}
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("failed to decode turns: %w", err)
	}
	return turns, nil
}

func storeErr(op string, key domain.SessionKey, err error) error {
	return &domain.StoreError{Op: op, Key: key, Err: err}
}
