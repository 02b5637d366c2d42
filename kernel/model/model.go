package model

import (
	"context"
	"iter"
)

// Role identifies message author type.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolDefinition describes a callable tool for model planning.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a model-emitted tool invocation request.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResponse is a tool execution result returned to model context.
type ToolResponse struct {
	ID     string
	Name   string
	Result map[string]any
}

// Message is a single turn element in model context.
type Message struct {
	Role         Role
	Text         string
	ToolCalls    []ToolCall
	ToolResponse *ToolResponse
}

// Request is a provider-agnostic model request.
type Request struct {
	Messages []Message
	Tools    []ToolDefinition
	Stream   bool
}

// Usage reports model token usage (best-effort).
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is a provider-agnostic model response chunk. A streaming turn
// yields zero or more Partial responses followed by one final response
// with TurnComplete set.
type Response struct {
	Message      Message
	Partial      bool
	TurnComplete bool
	Usage        Usage
	Model        string
	Provider     string
}

// LLM is the model abstraction used by agents.
type LLM interface {
	Name() string
	Generate(context.Context, *Request) iter.Seq2[*Response, error]
}
