// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"seedfast/dataorch/internal/errors"
)

const jsonInstruction = "Respond with a single JSON object and nothing else."

// Anthropic is a client for the Anthropic Messages API.
type Anthropic struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewAnthropic creates a client. Extra request options are appended after the
// API key and base URL.
func NewAnthropic(model, apiKey, baseURL string, opts ...option.RequestOption) *Anthropic {
	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)

	return &Anthropic{
		inner: anthropic.NewClient(all...),
		model: anthropic.Model(model),
	}
}

func (a *Anthropic) Model() string { return string(a.model) }

// Complete sends one Messages API request.
func (a *Anthropic) Complete(ctx context.Context, req *Request) (*Response, error) {
	resp, err := a.inner.Messages.New(ctx, a.toParams(req))
	if err != nil {
		return nil, errors.Wrap(errors.CompletionFailed, "messages API call", err)
	}
	return fromAnthropicContent(resp.Content), nil
}

func (a *Anthropic) toParams(req *Request) anthropic.MessageNewParams {
	system := req.System
	if req.JSON {
		system = strings.TrimSpace(system + "\n\n" + jsonInstruction)
	}

	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: int64(maxTokens(req)),
		Messages:  toAnthropicMessages(req.Messages),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, t := range req.Tools {
		params.Tools = append(params.Tools, toAnthropicTool(t))
	}
	if req.NoToolCalls && len(params.Tools) > 0 {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	}
	return params
}

// toAnthropicMessages converts the history. Consecutive tool results are grouped
// into one user message, as the API expects them right after the tool use turn;
// a user message that follows tool results joins that group.
func toAnthropicMessages(history []Message) []anthropic.MessageParam {
	var (
		out     []anthropic.MessageParam
		results []anthropic.ContentBlockParamUnion
	)
	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, m := range history {
		switch m.Role {
		case RoleTool:
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError))
		case RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := tc.Arguments
				if len(strings.TrimSpace(string(args))) == 0 {
					args = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, args, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		default:
			if len(results) > 0 {
				results = append(results, anthropic.NewTextBlock(m.Content))
				flush()
				continue
			}
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	flush()
	return out
}

func toAnthropicTool(t ToolSpec) anthropic.ToolUnionParam {
	schema := anthropic.ToolInputSchemaParam{Properties: t.Parameters["properties"]}
	switch req := t.Parameters["required"].(type) {
	case []string:
		schema.Required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		},
	}
}

func fromAnthropicContent(content []anthropic.ContentBlockUnion) *Response {
	var (
		text []string
		out  Response
	)
	for _, block := range content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text = append(text, variant.Text)
		case anthropic.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: variant.Input,
			})
		}
	}
	out.Text = strings.Join(text, "\n")
	return &out
}
