package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMockClientScript(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockClient().
		QueueToolCall("One moment.", "store_hours", "{}").
		QueueText("We are open until 5.").
		QueueError(boom)
	ctx := context.Background()
	req := &ChatCompletionRequest{Model: "gpt", Messages: []ChatMessage{{Role: "user", Content: "hours?"}}}

	resp, err := m.CreateChatCompletion(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg := resp.FirstMessage(); len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Function.Name != "store_hours" {
		t.Fatalf("expected tool call, got %+v", msg)
	}
	if resp.Choices[0].FinishReason != "tool_calls" {
		t.Fatalf("unexpected finish reason %q", resp.Choices[0].FinishReason)
	}

	resp, err = m.CreateChatCompletion(ctx, req)
	if err != nil || resp.FirstMessage().Content != "We are open until 5." {
		t.Fatalf("unexpected reply: %+v, %v", resp, err)
	}

	if _, err := m.CreateChatCompletion(ctx, req); !errors.Is(err, boom) {
		t.Fatalf("expected scripted error, got %v", err)
	}
	if got := len(m.Requests()); got != 3 {
		t.Fatalf("expected 3 recorded requests, got %d", got)
	}
}

func TestMockClientDelayHonorsContext(t *testing.T) {
	m := NewMockClient().QueueDelay(time.Second, "late")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.CreateChatCompletion(ctx, &ChatCompletionRequest{Model: "gpt"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestMockClientFallback(t *testing.T) {
	m := NewMockClient()
	tools := []Tool{
		{Type: "function", Function: ToolFunction{Name: "transfer_call"}},
		{Type: "function", Function: ToolFunction{Name: "hangup_call"}},
	}

	resp, _ := m.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Tools:    tools,
		Messages: []ChatMessage{{Role: "user", Content: "can I talk to a person"}},
	})
	msg := resp.FirstMessage()
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Function.Name != "transfer_call" {
		t.Fatalf("expected transfer_call, got %+v", msg)
	}

	resp, _ = m.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Tools:    tools,
		Messages: []ChatMessage{{Role: "user", Content: "ok bye"}},
	})
	if msg := resp.FirstMessage(); len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Function.Name != "hangup_call" {
		t.Fatalf("expected hangup_call, got %+v", msg)
	}

	resp, _ = m.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Messages: []ChatMessage{{Role: "user", Content: "hello"}},
	})
	if msg := resp.FirstMessage(); len(msg.ToolCalls) != 0 || msg.Content == "" {
		t.Fatalf("expected echo reply, got %+v", msg)
	}
}
