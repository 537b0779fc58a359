package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seedfast/dataorch/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestParseTableInfo(t *testing.T) {
	info := map[string]any{
		"fields": map[string]any{
			"name":     map[string]any{"type": "string", "nullable": false},
			"tags":     map[string]any{"type": map[string]any{"kind": "array", "items": "string"}},
			"history":  map[string]any{"type": map[string]any{"kind": "array"}},
			"address":  map[string]any{"type": map[string]any{"kind": "object", "fields": map[string]any{}}},
			"location": map[string]any{"type": map[string]any{"kind": "geometry"}},
			"blob":     map[string]any{"type": map[string]any{"items": "x"}},
			"mystery":  map[string]any{},
			"arr":      map[string]any{"type": "number", "default": json.Number("0")},
			"active":   map[string]any{"type": "bool", "default": true},
			"segment":  map[string]any{"type": "string", "default": "smb"},
			"note":     map[string]any{"type": "string", "default": nil},
			"extra":    map[string]any{"type": "object", "default": map[string]any{"a": 1}},
		},
	}

	schema, err := ParseTableInfo("customers", info)
	require.NoError(t, err)
	assert.Equal(t, "customers", schema.TableName)

	want := []TableColumn{
		{Name: "active", DataType: "bool", Nullable: true, DefaultValue: strPtr("true")},
		{Name: "address", DataType: "object", Nullable: true},
		{Name: "arr", DataType: "number", Nullable: true, DefaultValue: strPtr("0")},
		{Name: "blob", DataType: "complex", Nullable: true},
		{Name: "extra", DataType: "object", Nullable: true},
		{Name: "history", DataType: "array", Nullable: true},
		{Name: "location", DataType: "geometry", Nullable: true},
		{Name: "mystery", DataType: "unknown", Nullable: true},
		{Name: "name", DataType: "string", Nullable: false},
		{Name: "note", DataType: "string", Nullable: true, DefaultValue: strPtr("null")},
		{Name: "segment", DataType: "string", Nullable: true, DefaultValue: strPtr("smb")},
		{Name: "tags", DataType: "array<string>", Nullable: true},
	}
	assert.Equal(t, want, schema.Columns)
}

func TestParseTableInfo_DefineFieldStatements(t *testing.T) {
	info := map[string]any{
		"fields": map[string]any{
			"name":    "DEFINE FIELD name ON customers TYPE string PERMISSIONS FULL",
			"arr":     "DEFINE FIELD arr ON customers TYPE number DEFAULT 0 ASSERT $value >= 0 PERMISSIONS FULL",
			"contact": "DEFINE FIELD contact ON customers TYPE option<string> PERMISSIONS FULL",
			"tags":    "DEFINE FIELD tags ON customers TYPE array<string>",
			"free":    "DEFINE FIELD free ON customers PERMISSIONS FULL",
			"type":    "DEFINE FIELD type ON customers TYPE string PERMISSIONS FULL",
			"default": "DEFINE FIELD default ON TABLE customers TYPE option<bool> PERMISSIONS FULL",
			"value":   "DEFINE FIELD value ON customers TYPE number DEFAULT 1 PERMISSIONS FULL",
		},
	}

	schema, err := ParseTableInfo("customers", info)
	require.NoError(t, err)

	want := []TableColumn{
		{Name: "arr", DataType: "number", Nullable: false, DefaultValue: strPtr("0")},
		{Name: "contact", DataType: "option<string>", Nullable: true},
		{Name: "default", DataType: "option<bool>", Nullable: true},
		{Name: "free", DataType: "unknown", Nullable: true},
		{Name: "name", DataType: "string", Nullable: false},
		{Name: "tags", DataType: "array<string>", Nullable: false},
		{Name: "type", DataType: "string", Nullable: false},
		{Name: "value", DataType: "number", Nullable: false, DefaultValue: strPtr("1")},
	}
	assert.Equal(t, want, schema.Columns)
}

func TestParseTableInfo_MissingFields(t *testing.T) {
	for _, info := range []any{map[string]any{"events": map[string]any{}}, nil, []any{}, "text"} {
		_, err := ParseTableInfo("customers", info)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.QueryFailed))
		assert.Equal(t, "No fields found in table info", errors.MessageOf(err))
	}
}

func TestParseTableInfo_EmptyFields(t *testing.T) {
	schema, err := ParseTableInfo("customers", map[string]any{"fields": map[string]any{}})
	require.NoError(t, err)
	assert.Empty(t, schema.Columns)
}

func TestTableSchema_RoundTrip(t *testing.T) {
	info := map[string]any{
		"fields": map[string]any{
			"z_last":  map[string]any{"type": map[string]any{"kind": "array", "items": "int"}, "nullable": false},
			"a_first": map[string]any{"type": "string", "default": "x"},
			"middle":  "DEFINE FIELD middle ON t TYPE option<datetime> DEFAULT time::now()",
			"nulled":  map[string]any{"type": "any", "default": nil},
		},
	}

	first, err := ParseTableInfo("t", info)
	require.NoError(t, err)

	// Through JSON as well, the way a caller would persist it.
	raw, err := json.Marshal(first.Info())
	require.NoError(t, err)
	var decoded any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	second, err := ParseTableInfo("t", decoded)
	require.NoError(t, err)
	assert.Equal(t, first.Columns, second.Columns)

	names := make([]string, len(second.Columns))
	for i, c := range second.Columns {
		names[i] = c.Name
	}
	assert.IsIncreasing(t, names)
}

func TestSchemaTool_BlankNameRejectedBeforeGateway(t *testing.T) {
	for _, name := range []string{"", " ", "\t\n"} {
		gw := &fakeGateway{}
		tool := NewSchemaTool(gw, nil)

		_, err := tool.GetSchema(context.Background(), name)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.InvalidInput))
		assert.Equal(t, "Table name cannot be empty", errors.MessageOf(err))

		_, err = tool.Call(context.Background(), json.RawMessage(`{"table_name":"`+name+`"}`))
		require.Error(t, err)
		assert.Zero(t, gw.calls())
	}
}

func TestSchemaTool_GatewayErrorPropagates(t *testing.T) {
	cause := errors.New(errors.ConnectionFailed, "signin")
	tool := NewSchemaTool(&fakeGateway{err: cause}, nil)

	_, err := tool.GetSchema(context.Background(), "customers")
	assert.Same(t, cause, err)
}

func TestSchemaTool_CallReturnsStructuredJSON(t *testing.T) {
	gw := &fakeGateway{result: map[string]any{
		"fields": map[string]any{
			"name": map[string]any{"type": "string", "nullable": false},
			"arr":  map[string]any{"type": "number"},
		},
	}}
	tool := NewSchemaTool(gw, nil)

	out, err := tool.Call(context.Background(), json.RawMessage(`{"table_name":"customers"}`))
	require.NoError(t, err)

	var got TableSchema
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "customers", got.TableName)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, "arr", got.Columns[0].Name)
	assert.Equal(t, []string{"customers"}, gw.described)
	assert.Contains(t, out, "\n  \"table_name\": \"customers\"")
}
