package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			caller_id TEXT NOT NULL,
			date TEXT NOT NULL,
			input_mode TEXT NOT NULL,
			counter INTEGER NOT NULL DEFAULT 0,
			blank_count INTEGER NOT NULL DEFAULT 0,
			turns TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (caller_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(caller_id, updated_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetSession retrieves a session by caller and date.
func (s *SQLiteStore) GetSession(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT caller_id, date, input_mode, counter, blank_count, turns, created_at, updated_at
		 FROM sessions WHERE caller_id = ? AND date = ?`,
		key.CallerID, key.Date)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get", key, err)
	}
	return session, nil
}

// SaveSession inserts or replaces a session.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *domain.Session) error {
	turns, err := encodeTurns(session.Turns)
	if err != nil {
		return storeErr("save", session.Key(), err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (caller_id, date, input_mode, counter, blank_count, turns, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(caller_id, date) DO UPDATE SET
			input_mode = excluded.input_mode,
			counter = excluded.counter,
			blank_count = excluded.blank_count,
			turns = excluded.turns,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		session.CallerID, session.Date, string(session.InputMode), session.Counter, session.BlankCount,
		turns, session.CreatedAt.UTC(), session.UpdatedAt.UTC())
	if err != nil {
		return storeErr("save", session.Key(), err)
	}
	return nil
}

// ListSessions lists a caller's sessions, newest day first.
func (s *SQLiteStore) ListSessions(ctx context.Context, callerID string, limit int) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT caller_id, date, input_mode, counter, blank_count, turns, created_at, updated_at
		 FROM sessions WHERE caller_id = ? ORDER BY date DESC LIMIT ?`,
		callerID, normalizeLimit(limit))
	if err != nil {
		return nil, storeErr("list", domain.SessionKey{CallerID: callerID}, err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, storeErr("list", domain.SessionKey{CallerID: callerID}, err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", domain.SessionKey{CallerID: callerID}, err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var mode, turns string
	if err := row.Scan(&session.CallerID, &session.Date, &mode, &session.Counter, &session.BlankCount,
		&turns, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, err
	}
	session.InputMode = domain.InputMode(mode)
	decoded, err := decodeTurns(turns)
	if err != nil {
		return nil, err
	}
	session.Turns = decoded
	return &session, nil
}
