package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

func TestClientCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ParallelToolCalls == nil || *req.ParallelToolCalls {
			t.Fatalf("expected parallel_tool_calls=false, got %+v", req.ParallelToolCalls)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "hangup_call" {
			t.Fatalf("unexpected tools: %+v", req.Tools)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt","choices":[{"index":0,"message":{"role":"assistant","content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"hangup_call","arguments":"{}"}}]},"finish_reason":"tool_calls"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "sk-test", time.Second)
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:             "gpt",
		Messages:          []ChatMessage{{Role: "user", Content: "bye"}},
		Tools:             []Tool{{Type: "function", Function: ToolFunction{Name: "hangup_call"}}},
		ToolChoice:        "auto",
		ParallelToolCalls: Bool(false),
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion failed: %v", err)
	}
	msg := resp.FirstMessage()
	if msg == nil || len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Function.Name != "hangup_call" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if msg.Content != "" {
		t.Fatalf("expected empty content, got %q", msg.Content)
	}
}

func TestClientCreateChatCompletionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "gpt",
		Messages: []ChatMessage{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, domain.ErrBackendTimeout) {
		t.Fatalf("API error must not be reported as timeout: %v", err)
	}
}

func TestClientCreateChatCompletionTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 50*time.Millisecond)
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "gpt",
		Messages: []ChatMessage{{Role: "user", Content: "hello"}},
	})
	if !errors.Is(err, domain.ErrBackendTimeout) {
		t.Fatalf("expected ErrBackendTimeout, got %v", err)
	}
}

func TestClientContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL, "", time.Minute)
	_, err := client.CreateChatCompletion(ctx, &ChatCompletionRequest{Model: "gpt"})
	if !errors.Is(err, domain.ErrBackendTimeout) {
		t.Fatalf("expected ErrBackendTimeout, got %v", err)
	}
}

func TestClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"c1","choices":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	if _, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "gpt"}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
