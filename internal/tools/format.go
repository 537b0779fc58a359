// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatResult renders a query result as text. It is a pure function of v.
func FormatResult(v any) string {
	switch r := v.(type) {
	case nil:
		return "No results found."
	case []any:
		if len(r) == 0 {
			return "No results found."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Found %d record(s):\n\n", len(r))
		for i, rec := range r {
			fmt.Fprintf(&b, "Record %d:\n", i+1)
			b.WriteString(formatRecord(rec))
			b.WriteString("\n")
		}
		return b.String()
	case map[string]any:
		return "Found 1 record:\n\nRecord 1:\n" + formatRecord(r)
	default:
		lit, err := json.Marshal(r)
		if err != nil {
			return "Result: " + formatValue(r)
		}
		return "Result: " + string(lit)
	}
}

func formatRecord(rec any) string {
	obj, ok := rec.(map[string]any)
	if !ok {
		return "  " + formatValue(rec) + "\n"
	}

	var b strings.Builder
	for _, k := range sortedKeys(obj) {
		fmt.Fprintf(&b, "  %s: %s\n", k, formatValue(obj[k]))
	}
	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		if len(x) == 0 {
			return "[]"
		}
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = formatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		if len(x) == 0 {
			return "{}"
		}
		keys := sortedKeys(x)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + ": " + formatValue(x[k])
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	default:
		return fmt.Sprint(x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
