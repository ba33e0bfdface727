package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockTransferNumber is the number the mock client transfers callers to.
const MockTransferNumber = "+13205550100"

// MockClient is a scripted implementation of LLMClient. Queued replies are
// returned in order; once the queue is empty it falls back to keyword rules
// over the last user message.
type MockClient struct {
	mu       sync.Mutex
	script   []mockStep
	requests []*ChatCompletionRequest
}

type mockStep struct {
	msg   *ChatMessage
	err   error
	delay time.Duration
}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// QueueText queues a plain assistant reply.
func (m *MockClient) QueueText(content string) *MockClient {
	return m.push(mockStep{msg: &ChatMessage{Role: "assistant", Content: content}})
}

// QueueToolCall queues an assistant reply that requests one tool.
func (m *MockClient) QueueToolCall(content, name, arguments string) *MockClient {
	m.mu.Lock()
	id := fmt.Sprintf("call_%d", len(m.script)+len(m.requests)+1)
	m.mu.Unlock()
	return m.push(mockStep{msg: &ChatMessage{
		Role:    "assistant",
		Content: content,
		ToolCalls: []ToolCall{{
			ID:       id,
			Type:     "function",
			Function: ToolCallFunction{Name: name, Arguments: arguments},
		}},
	}})
}

// QueueMessage queues an arbitrary assistant message.
func (m *MockClient) QueueMessage(msg ChatMessage) *MockClient {
	return m.push(mockStep{msg: &msg})
}

// QueueError queues a backend failure.
func (m *MockClient) QueueError(err error) *MockClient {
	return m.push(mockStep{err: err})
}

// QueueDelay queues a reply that only arrives after d, or the context error if
// the caller gives up first.
func (m *MockClient) QueueDelay(d time.Duration, content string) *MockClient {
	return m.push(mockStep{delay: d, msg: &ChatMessage{Role: "assistant", Content: content}})
}

func (m *MockClient) push(s mockStep) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, s)
	return m
}

// Requests returns the requests received so far.
func (m *MockClient) Requests() []*ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ChatCompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CreateChatCompletion returns the next scripted reply.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, cloneRequest(req))
	var step mockStep
	if len(m.script) > 0 {
		step = m.script[0]
		m.script = m.script[1:]
	} else {
		step = mockStep{msg: fallbackReply(req)}
	}
	m.mu.Unlock()

	if step.delay > 0 {
		select {
		case <-time.After(step.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if step.err != nil {
		return nil, step.err
	}

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{{Index: 0, Message: step.msg, FinishReason: finishReason(step.msg)}},
	}, nil
}

func finishReason(msg *ChatMessage) string {
	if len(msg.ToolCalls) > 0 {
		return "tool_calls"
	}
	return "stop"
}

// fallbackReply answers without a script. A tool result is acknowledged,
// otherwise the last user message drives the reply.
func fallbackReply(req *ChatCompletionRequest) *ChatMessage {
	if n := len(req.Messages); n > 0 && req.Messages[n-1].Role == "tool" {
		return &ChatMessage{Role: "assistant", Content: "[MOCK] " + req.Messages[n-1].Content}
	}

	var lastUserMessage string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastUserMessage = req.Messages[i].Content
			break
		}
	}
	lower := strings.ToLower(lastUserMessage)

	switch {
	case hasTool(req, "transfer_call") && (strings.Contains(lower, "person") || strings.Contains(lower, "transfer")):
		args, _ := json.Marshal(map[string]string{"phone_number": MockTransferNumber})
		return &ChatMessage{
			Role:    "assistant",
			Content: "I'll transfer you now.",
			ToolCalls: []ToolCall{{
				ID:       fmt.Sprintf("mock-call-%d", time.Now().UnixNano()),
				Type:     "function",
				Function: ToolCallFunction{Name: "transfer_call", Arguments: string(args)},
			}},
		}
	case hasTool(req, "hangup_call") && (strings.Contains(lower, "bye") || strings.Contains(lower, "that's all")):
		return &ChatMessage{
			Role:    "assistant",
			Content: "Thanks for calling, good bye.",
			ToolCalls: []ToolCall{{
				ID:       fmt.Sprintf("mock-call-%d", time.Now().UnixNano()),
				Type:     "function",
				Function: ToolCallFunction{Name: "hangup_call", Arguments: "{}"},
			}},
		}
	case lastUserMessage == "":
		return &ChatMessage{Role: "assistant", Content: "[MOCK] This is a mock response from the LLM client."}
	}
	return &ChatMessage{
		Role:    "assistant",
		Content: fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(lastUserMessage, 100)),
	}
}

func hasTool(req *ChatCompletionRequest, name string) bool {
	for _, t := range req.Tools {
		if t.Function.Name == name {
			return true
		}
	}
	return false
}

func cloneRequest(req *ChatCompletionRequest) *ChatCompletionRequest {
	cp := *req
	cp.Messages = append([]ChatMessage(nil), req.Messages...)
	cp.Tools = append([]Tool(nil), req.Tools...)
	return &cp
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
