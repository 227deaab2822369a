// Package provider implements the chat-completion gateway: request shaping,
// retry/backoff, structured-output healing, sanitization, and speed-tier
// failover with a per-provider circuit breaker.
package provider

import (
	"context"
	"time"
)

// Mode selects how a completion request is shaped.
type Mode int

const (
	ModeChat Mode = iota
	ModeJSONSchema
	ModeJSONObject
	ModePromptCached
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition describes one callable tool in provider-neutral shape.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolCall is one tool invocation requested by the assistant.
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// UsageMetadata reports token accounting for one completion.
type UsageMetadata struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// JSONSchema is a strict-mode structured-output schema.
type JSONSchema struct {
	Name   string
	Schema map[string]interface{}
}

// CompletionRequest is the provider-neutral request shape; Client
// implementations translate it to their wire format.
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	ToolChoice   string // "" (auto), "none", or a specific tool name
	Mode         Mode
	Schema       *JSONSchema
	Temperature  float64
	MaxTokens    int
	Stream       bool
}

// StreamDelta is one incremental chunk from a streaming completion.
type StreamDelta struct {
	Content   string
	Reasoning string
	ToolCalls []ToolCall
	Done      bool
}

// CompletionResponse is the provider-neutral response shape.
type CompletionResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        UsageMetadata
}

// Client is a single chat-completion backend.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	CompleteStream(ctx context.Context, req CompletionRequest) (<-chan StreamDelta, <-chan error)
	Slug() string
}

// Config configures one provider backend.
type Config struct {
	Slug    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}
