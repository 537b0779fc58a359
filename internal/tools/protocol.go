// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package tools implements the two model-callable tools of a domain agent:
// table_schema, which introspects one table, and select_query, which runs a
// validated read-only statement and renders its rows as text.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tool is a model-callable operation with a JSON-Schema parameter declaration.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns a JSON-Schema object describing the call arguments.
	Parameters() map[string]any
	// Call runs the tool. Recoverable problems are reported in the returned
	// text; a non-nil error means the call itself failed.
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Set dispatches tool calls by name.
type Set struct {
	tools  []Tool
	byName map[string]Tool
}

// NewSet creates a set; later tools with a duplicate name are ignored.
func NewSet(tools ...Tool) *Set {
	s := &Set{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, dup := s.byName[t.Name()]; dup {
			continue
		}
		s.tools = append(s.tools, t)
		s.byName[t.Name()] = t
	}
	return s
}

// Tools returns the tools in registration order.
func (s *Set) Tools() []Tool {
	return s.tools
}

// Get returns the tool with the given name.
func (s *Set) Get(name string) (Tool, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Dispatch calls the named tool and always produces text for the model.
// isError reports whether the text describes a failed call rather than a result.
func (s *Set) Dispatch(ctx context.Context, name string, args json.RawMessage) (output string, isError bool) {
	t, ok := s.byName[name]
	if !ok {
		names := make([]string, 0, len(s.byName))
		for n := range s.byName {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Sprintf("Unknown tool %q. Available tools: %s", name, strings.Join(names, ", ")), true
	}

	out, err := t.Call(ctx, args)
	if err != nil {
		return fmt.Sprintf("Tool %s failed: %v", name, err), true
	}
	return out, false
}

// stringParam builds the parameter schema of a tool with one required string field.
func stringParam(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{name},
	}
}

// decodeArgs unmarshals tool arguments; an empty payload decodes to the zero value.
func decodeArgs(args json.RawMessage, v any) error {
	if len(strings.TrimSpace(string(args))) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("malformed arguments: %w", err)
	}
	return nil
}
