package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xiaot623/gogo/callbot/internal/domain"
	"github.com/xiaot623/gogo/callbot/internal/tools"
	"github.com/xiaot623/gogo/callbot/policy"
)

type loopResult struct {
	reply      string
	transferTo string
	hangup     bool
}

// signaled reports whether a transfer or hangup was recorded.
func (r loopResult) signaled() bool {
	return r.transferTo != "" || r.hangup
}

// runToolLoop asks the model, runs the tool it requests, feeds the result
// back and repeats until the model answers without a tool call.
func (s *Service) runToolLoop(ctx context.Context, logger *slog.Logger, session *domain.Session) (loopResult, error) {
	var res loopResult
	for i := 0; i < s.config.MaxToolIterations; i++ {
		msg, err := s.complete(ctx, logger, session)
		if err != nil {
			return res, err
		}

		call := firstToolCall(msg)
		session.AddAssistant(msg.Content, call)
		if call == nil {
			res.reply = msg.Content
			return res, nil
		}

		// The hangup signal follows the reserved name; its arguments carry nothing.
		if call.Name == domain.ToolHangupCall {
			res.hangup = true
		}

		out, err := s.dispatch(ctx, session, call)
		if err != nil {
			session.AddToolResult(call, "Error: "+err.Error())
			if domain.IsRecoverableToolError(err) {
				logger.Warn("tool call rejected", "tool", call.Name, "error", err)
				continue
			}
			return res, err
		}
		session.AddToolResult(call, out)
		logger.Info("tool executed", "tool", call.Name)

		if call.Name == domain.ToolTransferCall {
			var args tools.TransferArgs
			if err := tools.DecodeArgs(call.Name, call.Arguments, &args); err == nil {
				res.transferTo = args.PhoneNumber
			}
		}
	}
	return res, fmt.Errorf("%w (%d)", domain.ErrMaxIterations, s.config.MaxToolIterations)
}

// dispatch resolves the call for the session's input mode, consults the tool
// policy, then decodes and executes.
func (s *Service) dispatch(ctx context.Context, session *domain.Session, call *domain.ToolCall) (string, error) {
	if _, ok := s.registry.Lookup(call.Name, session.InputMode); !ok {
		return "", &domain.ToolNotFoundError{Name: call.Name}
	}

	if s.policyEngine != nil {
		decision, reason, err := s.policyEngine.Evaluate(ctx, policy.Input{
			ToolName:  call.Name,
			Args:      call.Arguments,
			CallerID:  session.CallerID,
			InputMode: string(session.InputMode),
		})
		if err != nil {
			return "", &domain.ToolExecutionError{Tool: call.Name, Err: fmt.Errorf("policy evaluation failed: %w", err)}
		}
		if decision == policy.DecisionBlock {
			return "", &domain.PolicyBlockedError{Tool: call.Name, Reason: reason}
		}
	}

	return s.registry.Execute(ctx, tools.Call{
		ID:        call.ID,
		Name:      call.Name,
		Arguments: call.Arguments,
		CallerID:  session.CallerID,
		InputMode: session.InputMode,
	})
}
