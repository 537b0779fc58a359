package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_Dispatch(t *testing.T) {
	gw := &fakeGateway{result: []any{map[string]any{"id": "customers:acme"}}}
	set := NewSet(NewSchemaTool(gw, nil), NewSelectTool(gw, nil), NewSelectTool(gw, nil))

	assert.Len(t, set.Tools(), 2)
	_, ok := set.Get("select_query")
	assert.True(t, ok)

	out, isErr := set.Dispatch(context.Background(), "select_query", json.RawMessage(`{"query":"SELECT * FROM customers"}`))
	assert.False(t, isErr)
	assert.Equal(t, "Found 1 record(s):\n\nRecord 1:\n  id: customers:acme\n\n", out)

	out, isErr = set.Dispatch(context.Background(), "drop_everything", nil)
	assert.True(t, isErr)
	assert.Equal(t, `Unknown tool "drop_everything". Available tools: select_query, table_schema`, out)

	out, isErr = set.Dispatch(context.Background(), "table_schema", json.RawMessage(`{"table_name":" "}`))
	assert.True(t, isErr)
	assert.Contains(t, out, "Table name cannot be empty")
}
