// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package llm is the completion service used by the map, query and reduce agents.
// It hides the provider SDKs behind one small request/response model: a system
// preamble, a running message history, optional tool declarations and an optional
// JSON output mode. Providers translate that model to their own wire types.
package llm

import (
	"context"
	"encoding/json"
	"time"
)

// Role identifies the author of a message in the history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleTool marks the result of a tool call requested by the assistant.
	RoleTool Role = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Message is one entry of the conversation history.
type Message struct {
	Role    Role
	Content string
	// ToolCalls is set on assistant messages that request tool calls.
	ToolCalls []ToolCall
	// ToolCallID and IsError are set on tool messages.
	ToolCallID string
	IsError    bool
}

// ToolSpec declares a tool the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request is a single completion request.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
	// NoToolCalls keeps the tools declared but forbids the model from calling them.
	NoToolCalls bool
	// JSON asks the provider to constrain the output to a JSON object.
	JSON      bool
	MaxTokens int
}

// Response is the model's reply. A reply may carry text, tool calls, or both.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Client performs completions against a provider.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Model() string
}

// DefaultMaxTokens bounds a single completion when the request does not.
const DefaultMaxTokens = 4096

// UserMessage builds a user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage records a model reply in the history.
func AssistantMessage(resp *Response) Message {
	return Message{Role: RoleAssistant, Content: resp.Text, ToolCalls: resp.ToolCalls}
}

// ToolResult records the output of a tool call in the history.
func ToolResult(callID, output string, isError bool) Message {
	return Message{Role: RoleTool, Content: output, ToolCallID: callID, IsError: isError}
}

type timeoutClient struct {
	Client
	timeout time.Duration
}

// WithTimeout bounds every completion of c by d. A non-positive d returns c unchanged.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return &timeoutClient{Client: c, timeout: d}
}

func (t *timeoutClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Client.Complete(ctx, req)
}

func maxTokens(req *Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}
