package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "null", value: nil, want: "No results found."},
		{name: "empty array", value: []any{}, want: "No results found."},
		{
			name:  "single object",
			value: map[string]any{"name": "Bob", "id": json.Number("2")},
			want:  "Found 1 record:\n\nRecord 1:\n  id: 2\n  name: Bob\n",
		},
		{
			name: "array of records",
			value: []any{
				map[string]any{"id": "customers:acme", "arr": json.Number("120000")},
				map[string]any{"id": "customers:globex", "arr": json.Number("98000.5")},
			},
			want: "Found 2 record(s):\n\n" +
				"Record 1:\n  arr: 120000\n  id: customers:acme\n\n" +
				"Record 2:\n  arr: 98000.5\n  id: customers:globex\n\n",
		},
		{
			name:  "array of scalars",
			value: []any{"a", json.Number("1")},
			want:  "Found 2 record(s):\n\nRecord 1:\n  a\n\nRecord 2:\n  1\n\n",
		},
		{
			name:  "nested values",
			value: map[string]any{"tags": []any{"a", "b"}, "active": true},
			want:  "Found 1 record:\n\nRecord 1:\n  active: true\n  tags: [a, b]\n",
		},
		{
			name: "empty containers and null",
			value: map[string]any{
				"list":  []any{},
				"meta":  map[string]any{},
				"owner": nil,
				"addr":  map[string]any{"zip": "10115", "city": "Berlin"},
			},
			want: "Found 1 record:\n\nRecord 1:\n  addr: {city: Berlin, zip: 10115}\n  list: []\n  meta: {}\n  owner: null\n",
		},
		{name: "number scalar", value: json.Number("42"), want: "Result: 42"},
		{name: "bool scalar", value: false, want: "Result: false"},
		{name: "string scalar", value: "ok", want: `Result: "ok"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatResult(tt.value))
		})
	}
}

func TestFormatResult_Idempotent(t *testing.T) {
	v := []any{
		map[string]any{"z": json.Number("1"), "a": []any{map[string]any{"k2": "v", "k1": nil}}, "m": true},
		map[string]any{"b": "x"},
	}
	first := FormatResult(v)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FormatResult(v))
	}
}
