package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// sessionRow is the call_sessions table layout.
type sessionRow struct {
	CallerID   string `gorm:"primaryKey;size:100"`
	Date       string `gorm:"primaryKey;size:10"`
	InputMode  string `gorm:"size:16;not null"`
	Counter    int    `gorm:"not null;default:0"`
	BlankCount int    `gorm:"not null;default:0"`
	Turns      string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false;index"`
}

func (sessionRow) TableName() string { return "call_sessions" }

// PostgresStore implements Store on Postgres through gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to dsn and migrates the call_sessions table.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&sessionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetSession retrieves a session by caller and date.
func (s *PostgresStore) GetSession(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	var rows []sessionRow
	err := s.db.WithContext(ctx).
		Where("caller_id = ? AND date = ?", key.CallerID, key.Date).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, storeErr("get", key, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	session, err := rows[0].toSession()
	if err != nil {
		return nil, storeErr("get", key, err)
	}
	return session, nil
}

// SaveSession upserts the whole record.
func (s *PostgresStore) SaveSession(ctx context.Context, session *domain.Session) error {
	row, err := rowFromSession(session)
	if err != nil {
		return storeErr("save", session.Key(), err)
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return storeErr("save", session.Key(), err)
	}
	return nil
}

// ListSessions lists a caller's sessions, newest day first.
func (s *PostgresStore) ListSessions(ctx context.Context, callerID string, limit int) ([]domain.Session, error) {
	var rows []sessionRow
	err := s.db.WithContext(ctx).
		Where("caller_id = ?", callerID).
		Order("date DESC").
		Limit(normalizeLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, storeErr("list", domain.SessionKey{CallerID: callerID}, err)
	}

	sessions := make([]domain.Session, 0, len(rows))
	for _, r := range rows {
		session, err := r.toSession()
		if err != nil {
			return nil, storeErr("list", domain.SessionKey{CallerID: callerID}, err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

func rowFromSession(session *domain.Session) (*sessionRow, error) {
	turns, err := encodeTurns(session.Turns)
	if err != nil {
		return nil, err
	}
	return &sessionRow{
		CallerID:   session.CallerID,
		Date:       session.Date,
		InputMode:  string(session.InputMode),
		Counter:    session.Counter,
		BlankCount: session.BlankCount,
		Turns:      turns,
		CreatedAt:  session.CreatedAt.UTC(),
		UpdatedAt:  session.UpdatedAt.UTC(),
	}, nil
}

func (r sessionRow) toSession() (*domain.Session, error) {
	turns, err := decodeTurns(r.Turns)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		CallerID:   r.CallerID,
		Date:       r.Date,
		InputMode:  domain.InputMode(r.InputMode),
		Counter:    r.Counter,
		BlankCount: r.BlankCount,
		Turns:      turns,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}
