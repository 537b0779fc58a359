package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seedfast/dataorch/internal/errors"
	"seedfast/dataorch/internal/logging"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{name: "plain select", query: "SELECT * FROM customers"},
		{name: "lowercase with whitespace", query: "   select name from customers  "},
		{name: "contains operator", query: "SELECT * FROM feature_requests WHERE message CONTAINS 'export'"},
		{name: "empty", query: "", wantErr: "Query cannot be empty"},
		{name: "whitespace only", query: " \t\n ", wantErr: "Query cannot be empty"},
		{name: "not a select", query: "INFO FOR TABLE customers", wantErr: "Only SELECT statements are allowed"},
		{name: "leading mutation", query: "DELETE customers", wantErr: "Only SELECT statements are allowed"},
		{name: "stacked drop", query: "SELECT * FROM users; DROP TABLE users", wantErr: "Query contains forbidden keyword: drop"},
		{name: "uppercase update", query: "SELECT * FROM x; UPDATE x SET a = 1", wantErr: "Query contains forbidden keyword: update"},
		{name: "keyword inside identifier", query: "SELECT created_at FROM customers", wantErr: "Query contains forbidden keyword: create"},
		{name: "keyword inside literal", query: "SELECT * FROM t WHERE note = 'please delete me'", wantErr: "Query contains forbidden keyword: delete"},
		{name: "first keyword in list order wins", query: "select truncate, drop from t", wantErr: "Query contains forbidden keyword: drop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.InvalidInput))
			assert.Equal(t, tt.wantErr, errors.MessageOf(err))
		})
	}
}

func TestSelectTool_ForbiddenKeywordsAnyPositionAnyCase(t *testing.T) {
	for _, kw := range ForbiddenKeywords {
		for _, q := range []string{
			"SELECT " + strings.ToUpper(kw) + " FROM t",
			"select * from t where a = '" + kw + "'",
			"SeLeCt * FROM t_" + strings.ToUpper(kw[:1]) + kw[1:],
		} {
			gw := &fakeGateway{}
			out := NewSelectTool(gw, nil).Run(context.Background(), q)
			assert.True(t, strings.HasPrefix(out, "Query validation error: "), q)
			assert.Contains(t, out, "forbidden keyword: ")
			assert.Zero(t, gw.calls(), "gateway must not be called for %q", q)
		}
	}
}

func TestSelectTool_ValidationSkipsGateway(t *testing.T) {
	gw := &fakeGateway{result: []any{}}
	tool := NewSelectTool(gw, nil)

	out := tool.Run(context.Background(), "  ")
	assert.Equal(t, "Query validation error: Query cannot be empty", out)

	out = tool.Run(context.Background(), "INFO FOR TABLE customers")
	assert.Equal(t, "Query validation error: Only SELECT statements are allowed", out)

	assert.Zero(t, gw.calls())
}

func TestSelectTool_ExecutionErrorIsAdvisoryText(t *testing.T) {
	gw := &fakeGateway{err: errors.New(errors.QueryFailed, "Parse error: unexpected token")}
	tool := NewSelectTool(gw, nil)

	out, err := tool.Call(context.Background(), json.RawMessage(`{"query":"SELECT * FROM customers WHERE"}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Query execution error: "))
	assert.Contains(t, out, "Parse error: unexpected token")
	assert.True(t, strings.HasSuffix(out, "\n\nPlease check your query syntax and try again."))
	assert.Equal(t, []string{"SELECT * FROM customers WHERE"}, gw.executed)
}

func TestSelectTool_EmptyResult(t *testing.T) {
	tool := NewSelectTool(&fakeGateway{result: []any{}}, nil)

	out, err := tool.Call(context.Background(), json.RawMessage(`{"query":"SELECT * FROM customers WHERE arr > 1000000000"}`))
	require.NoError(t, err)
	assert.Equal(t, "No results found.", out)
}

func TestSelectTool_MalformedArguments(t *testing.T) {
	gw := &fakeGateway{}
	out, err := NewSelectTool(gw, nil).Call(context.Background(), json.RawMessage(`{"query":`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Query validation error: "))
	assert.Zero(t, gw.calls())
}

func TestSelectTool_Definition(t *testing.T) {
	tool := NewSelectTool(&fakeGateway{}, nil)

	assert.Equal(t, "select_query", tool.Name())
	assert.Contains(t, tool.Description(), "SurrealQL")
	params := tool.Parameters()
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, []string{"query"}, params["required"])
}

func TestSelectTool_EchoesStatementAtInfo(t *testing.T) {
	var buf bytes.Buffer
	tool := NewSelectTool(&fakeGateway{result: []any{}}, logging.New("info", &buf))

	tool.Run(context.Background(), "SELECT name FROM customers")
	assert.Contains(t, buf.String(), "SELECT name FROM customers")

	buf.Reset()
	tool.Run(context.Background(), "DELETE customers")
	assert.Empty(t, buf.String())
}
