package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seedfast/dataorch/internal/errors"
)

func TestToAnthropicMessages_GroupsToolResults(t *testing.T) {
	history := []Message{
		UserMessage("question"),
		{
			Role:    RoleAssistant,
			Content: "Checking both tables.",
			ToolCalls: []ToolCall{
				{ID: "tu_1", Name: "table_schema", Arguments: json.RawMessage(`{"table_name":"customers"}`)},
				{ID: "tu_2", Name: "select_query"},
			},
		},
		ToolResult("tu_1", "{...}", false),
		ToolResult("tu_2", "Tool select_query failed: boom", true),
		{Role: RoleAssistant, Content: "Done."},
	}

	out := toAnthropicMessages(history)
	require.Len(t, out, 4)

	assert.Equal(t, anthropic.MessageParamRoleUser, out[0].Role)

	assert.Equal(t, anthropic.MessageParamRoleAssistant, out[1].Role)
	require.Len(t, out[1].Content, 3)
	require.NotNil(t, out[1].Content[0].OfText)
	require.NotNil(t, out[1].Content[1].OfToolUse)
	assert.Equal(t, "tu_1", out[1].Content[1].OfToolUse.ID)
	assert.Equal(t, json.RawMessage("{}"), out[1].Content[2].OfToolUse.Input)

	assert.Equal(t, anthropic.MessageParamRoleUser, out[2].Role)
	require.Len(t, out[2].Content, 2)
	require.NotNil(t, out[2].Content[0].OfToolResult)
	assert.Equal(t, "tu_1", out[2].Content[0].OfToolResult.ToolUseID)
	assert.Equal(t, "tu_2", out[2].Content[1].OfToolResult.ToolUseID)
	assert.True(t, out[2].Content[1].OfToolResult.IsError.Value)

	assert.Equal(t, anthropic.MessageParamRoleAssistant, out[3].Role)
}

func TestToAnthropicTool_Required(t *testing.T) {
	spec := selectSpec()
	tool := toAnthropicTool(spec)
	require.NotNil(t, tool.OfTool)
	assert.Equal(t, "select_query", tool.OfTool.Name)
	assert.Equal(t, []string{"query"}, tool.OfTool.InputSchema.Required)

	spec.Parameters["required"] = []any{"query", 7}
	tool = toAnthropicTool(spec)
	assert.Equal(t, []string{"query"}, tool.OfTool.InputSchema.Required)
}

func TestAnthropic_CompleteOverHTTP(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 10, "output_tokens": 5},
			"content": [
				{"type": "text", "text": "Looking up customers."},
				{"type": "tool_use", "id": "tu_7", "name": "select_query", "input": {"query": "SELECT * FROM customers"}}
			]
		}`)
	}))
	defer srv.Close()

	a := NewAnthropic("claude-sonnet-4-5", "sk-ant-test", srv.URL, option.WithMaxRetries(0))
	resp, err := a.Complete(context.Background(), &Request{
		System:   "preamble",
		Messages: []Message{UserMessage("hi")},
		Tools:    []ToolSpec{selectSpec()},
		JSON:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Looking up customers.", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "tu_7", resp.ToolCalls[0].ID)
	assert.Equal(t, "select_query", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"SELECT * FROM customers"}`, string(resp.ToolCalls[0].Arguments))

	assert.Equal(t, "claude-sonnet-4-5", body["model"])
	assert.EqualValues(t, DefaultMaxTokens, body["max_tokens"])
	system, _ := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Contains(t, system[0].(map[string]any)["text"], jsonInstruction)
	tools, _ := body["tools"].([]any)
	require.Len(t, tools, 1)
	assert.Equal(t, "select_query", tools[0].(map[string]any)["name"])
}

func TestAnthropic_CompleteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	}))
	defer srv.Close()

	a := NewAnthropic("claude-sonnet-4-5", "sk-ant-test", srv.URL, option.WithMaxRetries(0))
	_, err := a.Complete(context.Background(), &Request{Messages: []Message{UserMessage("hi")}})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.CompletionFailed))
}

func TestToAnthropicMessages_UserAfterToolResults(t *testing.T) {
	history := append(toolHistory(), UserMessage("Answer now."))

	out := toAnthropicMessages(history)
	require.Len(t, out, 3)
	last := out[2]
	assert.Equal(t, anthropic.MessageParamRoleUser, last.Role)
	require.Len(t, last.Content, 2)
	require.NotNil(t, last.Content[0].OfToolResult)
	require.NotNil(t, last.Content[1].OfText)
	assert.Equal(t, "Answer now.", last.Content[1].OfText.Text)
}

func TestAnthropic_ToParamsNoToolCalls(t *testing.T) {
	a := NewAnthropic("claude-sonnet-4-5", "sk-ant-test", "")
	params := a.toParams(&Request{Messages: toolHistory(), Tools: []ToolSpec{selectSpec()}, NoToolCalls: true})
	assert.NotNil(t, params.ToolChoice.OfNone)
	assert.Len(t, params.Tools, 1)

	params = a.toParams(&Request{Messages: toolHistory(), NoToolCalls: true})
	assert.Nil(t, params.ToolChoice.OfNone)
	assert.Empty(t, params.System)
}
