package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// ProcessTurn runs one caller utterance to completion and returns the single
// outcome for the front-end. The error return is reserved for requests that
// cannot be processed at all; runtime failures are folded into the outcome.
func (s *Service) ProcessTurn(ctx context.Context, req domain.TurnRequest) (*domain.TurnOutcome, error) {
	if strings.TrimSpace(req.CallerID) == "" {
		return nil, fmt.Errorf("%w: caller id is required", domain.ErrInvalidRequest)
	}
	if !req.InputMode.Valid() {
		return nil, fmt.Errorf("%w: unknown input mode %q", domain.ErrInvalidRequest, req.InputMode)
	}

	attrs := req.Attributes.Clone()
	logger := slog.With("turn_id", "turn_"+uuid.New().String()[:8], "caller_id", req.CallerID)

	if strings.TrimSpace(req.Utterance) == "" {
		return s.handleBlank(logger, attrs), nil
	}
	attrs[domain.AttrBlankCounter] = "0"

	startTime := time.Now()
	now := s.now()
	key := domain.KeyFor(req.CallerID, now, s.loc)

	session, err := s.store.GetSession(ctx, key)
	if err != nil {
		return s.unhandled(logger, fmt.Errorf("failed to load session: %w", err), attrs), nil
	}
	if session == nil {
		session = domain.NewSession(key, req.InputMode, now)
		logger.Info("session created", "date", key.Date, "input_mode", req.InputMode)
	}
	session.AddUser(req.Utterance)

	res, err := s.runToolLoop(ctx, logger, session)

	var outcome *domain.TurnOutcome
	var execErr *domain.ToolExecutionError
	switch {
	case err == nil:
		outcome = s.shapeOutcome(session, res, attrs)
	case errors.Is(err, domain.ErrBackendTimeout):
		logger.Warn("model backend timed out", "error", err)
		if res.signaled() {
			res.reply = TimeoutReply
			outcome = s.shapeOutcome(session, res, attrs)
		} else {
			outcome = domain.Continue(TimeoutReply, attrs)
		}
	case errors.As(err, &execErr):
		logger.Error("tool execution failed", "tool", execErr.Tool, "error", execErr.Err)
		outcome = domain.Continue(fmt.Sprintf(toolFailureReply, execErr.Tool), attrs)
	default:
		return s.unhandled(logger, err, attrs), nil
	}

	if err := s.commit(ctx, session, now); err != nil {
		return s.unhandled(logger, fmt.Errorf("failed to save session: %w", err), attrs), nil
	}

	logger.Info("turn processed",
		"date", session.Date,
		"outcome", outcome.Kind,
		"counter", session.Counter,
		"turns", len(session.Turns),
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	return outcome, nil
}

// handleBlank applies the silence policy. It never touches the store or the model.
func (s *Service) handleBlank(logger *slog.Logger, attrs domain.Attributes) *domain.TurnOutcome {
	count, err := strconv.Atoi(strings.TrimSpace(attrs[domain.AttrBlankCounter]))
	if err != nil || count < 0 {
		count = 0
	}
	count++
	attrs[domain.AttrBlankCounter] = strconv.Itoa(count)

	if count > s.config.BlankInputLimit {
		logger.Info("ending call after repeated blank input", "blank_count", count, "reason", domain.ErrBlankInputExceeded)
		return domain.End(attrs)
	}
	logger.Info("blank input", "blank_count", count)
	return domain.Continue(RepromptReply, attrs)
}

// unhandled logs err and returns the generic apology. Nothing from the turn
// is persisted.
func (s *Service) unhandled(logger *slog.Logger, err error, attrs domain.Attributes) *domain.TurnOutcome {
	logger.Error("turn failed", "error", err)
	return domain.Continue(UnhandledReply, attrs)
}

func (s *Service) commit(ctx context.Context, session *domain.Session, now time.Time) error {
	session.Counter++
	session.BlankCount = 0
	session.UpdatedAt = now
	return s.store.SaveSession(ctx, session)
}
