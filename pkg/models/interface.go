// Package models wraps the language-model provider behind a small chat
// interface consumed by the dispatch bridge.
package models

import (
	"context"

	genai "github.com/google/generative-ai-go/genai"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// ToolCall is a model-issued request to execute a named capability.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult carries one executed tool call's outcome back to the model.
// IsError marks results synthesized from component or lookup failures; the
// conversation continues either way.
type ToolResult struct {
	Name    string
	Content string
	IsError bool
}

// Message is one turn in the append-only conversation history.
type Message struct {
	Role    Role
	Text    string
	Calls   []ToolCall
	Results []ToolResult
}

// Reply is the model's answer to one submission: plain text, one or more
// tool calls, or both.
type Reply struct {
	Text  string
	Calls []ToolCall
}

// ChatModel is the outbound surface to the provider. Implementations submit
// the full history plus the advertised toolset and decode the reply.
type ChatModel interface {
	Chat(ctx context.Context, history []Message, toolset []*genai.Tool) (Reply, error)
}
