package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"seedfast/dataorch/internal/gateway"
	"seedfast/dataorch/internal/llm"
)

// scriptedClient replays responses in order and records every request.
type scriptedClient struct {
	mu        sync.Mutex
	responses []any // *llm.Response or error
	requests  []llm.Request
}

func script(responses ...any) *scriptedClient {
	return &scriptedClient{responses: responses}
}

func (c *scriptedClient) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := *req
	r.Messages = append([]llm.Message(nil), req.Messages...)
	c.requests = append(c.requests, r)

	if len(c.responses) == 0 {
		return nil, fmt.Errorf("unexpected completion %d", len(c.requests))
	}
	next := c.responses[0]
	c.responses = c.responses[1:]
	switch v := next.(type) {
	case error:
		return nil, v
	case *llm.Response:
		return v, nil
	default:
		panic(fmt.Sprintf("bad script entry %T", next))
	}
}

func (c *scriptedClient) Model() string { return "scripted" }

func (c *scriptedClient) calls() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.Request(nil), c.requests...)
}

func text(s string) *llm.Response { return &llm.Response{Text: s} }

func toolCall(id, name, args string) *llm.Response {
	return &llm.Response{ToolCalls: []llm.ToolCall{{ID: id, Name: name, Arguments: json.RawMessage(args)}}}
}

// echoTool is a minimal tool that echoes its argument.
type echoTool struct {
	name string
	mu   sync.Mutex
	seen []string
	fail bool
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "echoes " + t.name }
func (t *echoTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *echoTool) Call(_ context.Context, args json.RawMessage) (string, error) {
	t.mu.Lock()
	t.seen = append(t.seen, string(args))
	t.mu.Unlock()
	if t.fail {
		return "", fmt.Errorf("table does not exist")
	}
	return "echo " + string(args), nil
}

var testDialect = gateway.Dialect{
	Name:     "SurrealQL",
	Contains: "CONTAINS",
	Docs:     []string{"https://surrealdb.com/docs/surrealql/statements/select"},
}
