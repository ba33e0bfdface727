// Package llm provides an abstraction for the chat-completion model backend.
package llm

import "context"

// LLMClient defines the interface for model backend operations.
type LLMClient interface {
	// CreateChatCompletion sends a chat completion request (non-streaming).
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Ensure Client implements LLMClient interface.
var _ LLMClient = (*Client)(nil)
