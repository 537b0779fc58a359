// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pterm/pterm"

	"seedfast/dataorch/internal/errors"
	"seedfast/dataorch/internal/gateway"
	"seedfast/dataorch/internal/logging"
)

// SelectToolName is the name the model calls the select tool by.
const SelectToolName = "select_query"

// ForbiddenKeywords are rejected anywhere in a statement, in this order.
var ForbiddenKeywords = []string{"drop", "delete", "update", "insert", "create", "alter", "truncate"}

// SelectTool runs validated SELECT statements and renders the rows as text.
type SelectTool struct {
	gw     gateway.Gateway
	logger *pterm.Logger
}

// NewSelectTool creates a select tool over gw. logger may be nil.
func NewSelectTool(gw gateway.Gateway, logger *pterm.Logger) *SelectTool {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SelectTool{gw: gw, logger: logger}
}

func (t *SelectTool) Name() string { return SelectToolName }

func (t *SelectTool) Description() string {
	return "Execute a " + t.gw.Dialect().Name + " SELECT statement against the database and return formatted text results. " +
		"Only SELECT queries are allowed for security. Returns human-readable text output of the query results. " +
		"If there are syntax errors or other query issues, returns the error message so you can correct the query and try again."
}

func (t *SelectTool) Parameters() map[string]any {
	return stringParam("query", "The SELECT statement to execute (e.g., 'SELECT * FROM users WHERE age > 18')")
}

// ValidateQuery accepts only statements that start with SELECT and contain
// none of the forbidden keywords. Matching is by substring, so a keyword
// inside a literal or an identifier is rejected too.
func ValidateQuery(query string) error {
	q := strings.ToLower(strings.TrimSpace(query))

	if q == "" {
		return errors.New(errors.InvalidInput, "Query cannot be empty")
	}
	if !strings.HasPrefix(q, "select") {
		return errors.New(errors.InvalidInput, "Only SELECT statements are allowed")
	}
	for _, kw := range ForbiddenKeywords {
		if strings.Contains(q, kw) {
			return errors.New(errors.InvalidInput, "Query contains forbidden keyword: "+kw)
		}
	}
	return nil
}

// Run validates and executes query. Validation and execution failures come
// back as advisory text so the model can revise its statement.
func (t *SelectTool) Run(ctx context.Context, query string) string {
	if err := ValidateQuery(query); err != nil {
		return "Query validation error: " + errors.MessageOf(err)
	}

	t.logger.Info("Executing query", t.logger.Args("statement", query))

	result, err := t.gw.Execute(ctx, query)
	if err != nil {
		return "Query execution error: " + err.Error() + "\n\nPlease check your query syntax and try again."
	}
	return FormatResult(result)
}

func (t *SelectTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "Query validation error: " + err.Error(), nil
	}
	return t.Run(ctx, in.Query), nil
}
