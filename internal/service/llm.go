package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xiaot623/gogo/callbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// complete submits the session history to the model backend under the
// configured deadline and returns the first choice's message.
func (s *Service) complete(ctx context.Context, logger *slog.Logger, session *domain.Session) (*llm.ChatMessage, error) {
	req := s.buildRequest(session)

	callCtx, cancel := context.WithTimeout(ctx, s.config.LLMTimeout)
	defer cancel()

	startTime := time.Now()
	resp, err := s.llmClient.CreateChatCompletion(callCtx, req)
	latencyMs := time.Since(startTime).Milliseconds()
	if err != nil {
		if !errors.Is(err, domain.ErrBackendTimeout) && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", domain.ErrBackendTimeout, err)
		}
		logger.Warn("model call failed", "latency_ms", latencyMs, "error", err)
		return nil, err
	}

	msg := resp.FirstMessage()
	if msg == nil {
		return nil, fmt.Errorf("model backend returned no message")
	}

	attrs := []any{"model", resp.Model, "latency_ms", latencyMs, "tool_calls", len(msg.ToolCalls)}
	if resp.Usage != nil {
		attrs = append(attrs, "total_tokens", resp.Usage.TotalTokens)
	}
	logger.Debug("model call done", attrs...)
	return msg, nil
}

func (s *Service) buildRequest(session *domain.Session) *llm.ChatCompletionRequest {
	messages := make([]llm.ChatMessage, 0, len(session.Turns)+1)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: s.systemPrompt(session.InputMode)})
	for _, turn := range session.Turns {
		messages = append(messages, toChatMessage(turn))
	}

	req := &llm.ChatCompletionRequest{
		Model:       s.config.LLMModel,
		Messages:    messages,
		Temperature: llm.Float64(s.config.LLMTemperature),
		MaxTokens:   llm.Int(s.config.LLMMaxTokens),
		N:           llm.Int(1),
	}

	defs := s.registry.Definitions(session.InputMode)
	if len(defs) > 0 {
		req.Tools = make([]llm.Tool, 0, len(defs))
		for _, d := range defs {
			req.Tools = append(req.Tools, llm.Tool{
				Type: "function",
				Function: llm.ToolFunction{
					Name:        d.Name,
					Description: d.Description,
					Parameters:  d.Parameters,
				},
			})
		}
		req.ToolChoice = "auto"
		req.ParallelToolCalls = llm.Bool(false)
	}
	return req
}

// systemPrompt is rebuilt on every call and never stored with the session.
func (s *Service) systemPrompt(mode domain.InputMode) string {
	var b strings.Builder
	b.WriteString(s.config.SystemPrompt)
	b.WriteString("\n\nToday is ")
	b.WriteString(s.now().In(s.loc).Format("Monday, January 2, 2006"))
	b.WriteString(".")
	if mode == domain.InputModeVoice {
		b.WriteString(" The caller is on the phone and hears your answers read aloud. Keep them short and do not use links or formatting.")
	} else {
		b.WriteString(" The caller is chatting by text. Keep answers short; links are fine.")
	}
	return b.String()
}

func toChatMessage(turn domain.Turn) llm.ChatMessage {
	switch turn.Role {
	case domain.RoleAssistant:
		msg := llm.ChatMessage{Role: "assistant", Content: turn.Content}
		if turn.ToolCall != nil {
			args := string(turn.ToolCall.Arguments)
			if args == "" {
				args = "{}"
			}
			msg.ToolCalls = []llm.ToolCall{{
				ID:       turn.ToolCall.ID,
				Type:     "function",
				Function: llm.ToolCallFunction{Name: turn.ToolCall.Name, Arguments: args},
			}}
		}
		return msg
	case domain.RoleTool:
		return llm.ChatMessage{Role: "tool", Content: turn.Content, ToolCallID: turn.ToolCallID, Name: turn.Name}
	}
	return llm.ChatMessage{Role: "user", Content: turn.Content}
}

// firstToolCall converts the first requested tool call, if any. Only one call
// per step is honored.
func firstToolCall(msg *llm.ChatMessage) *domain.ToolCall {
	if len(msg.ToolCalls) == 0 {
		return nil
	}
	tc := msg.ToolCalls[0]
	args := json.RawMessage(strings.TrimSpace(tc.Function.Arguments))
	switch {
	case len(args) == 0:
		args = json.RawMessage(`{}`)
	case !json.Valid(args):
		// Keep the record encodable; decoding will report the mismatch.
		quoted, _ := json.Marshal(tc.Function.Arguments)
		args = quoted
	}
	return &domain.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args}
}
