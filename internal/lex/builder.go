package lex

import (
	"context"
	"fmt"
	"strings"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// TurnRequestFromEvent extracts the turn request carried by a Lex event. The
// Lex session id identifies the caller; Connect sets it to the caller's number.
func TurnRequestFromEvent(event *Event) (domain.TurnRequest, error) {
	if event == nil || strings.TrimSpace(event.SessionID) == "" {
		return domain.TurnRequest{}, fmt.Errorf("%w: sessionId is required", domain.ErrInvalidRequest)
	}
	mode := domain.InputModeVoice
	if strings.EqualFold(event.InputMode, InputModeText) {
		mode = domain.InputModeText
	}
	return domain.TurnRequest{
		CallerID:   event.SessionID,
		Utterance:  event.InputTranscript,
		InputMode:  mode,
		Attributes: domain.Attributes(event.SessionState.SessionAttributes).Clone(),
	}, nil
}

// Build maps an outcome onto the Lex response for event. It has no side effects.
func Build(event *Event, outcome *domain.TurnOutcome) *Response {
	attrs := outcome.Attributes.Clone()
	state := SessionState{SessionAttributes: attrs}
	if event != nil {
		state.OriginatingRequestID = event.SessionState.OriginatingRequestID
	}

	switch outcome.Kind {
	case domain.OutcomeTransfer:
		attrs[domain.AttrTransferNumber] = outcome.TransferNumber
		if outcome.Note != "" {
			attrs[domain.AttrBotResponse] = outcome.Note
		}
		state.DialogAction = &DialogAction{Type: ActionDelegate}
		state.Intent = &Intent{Name: IntentTransfer, State: StateReadyForFulfillment}
		return &Response{SessionState: state}
	case domain.OutcomeEnd:
		state.DialogAction = &DialogAction{Type: ActionDelegate}
		state.Intent = &Intent{Name: IntentQuit, State: StateReadyForFulfillment}
		return &Response{SessionState: state}
	}

	state.DialogAction = &DialogAction{Type: ActionElicitIntent}
	return &Response{
		SessionState: state,
		Messages:     []Message{{ContentType: ContentTypePlainText, Content: outcome.Reply}},
	}
}

// TurnProcessor runs one turn.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, req domain.TurnRequest) (*domain.TurnOutcome, error)
}

// Handle runs the turn carried by event through p and builds the Lex response.
func Handle(ctx context.Context, p TurnProcessor, event *Event) (*Response, error) {
	req, err := TurnRequestFromEvent(event)
	if err != nil {
		return nil, err
	}
	outcome, err := p.ProcessTurn(ctx, req)
	if err != nil {
		return nil, err
	}
	return Build(event, outcome), nil
}
