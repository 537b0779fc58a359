// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package tools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"seedfast/dataorch/internal/errors"
)

// TableColumn describes one column of a table.
type TableColumn struct {
	Name         string  `json:"name"`
	DataType     string  `json:"data_type"`
	Nullable     bool    `json:"nullable"`
	DefaultValue *string `json:"default_value"`
}

// TableSchema is a table name plus its columns ordered by name.
type TableSchema struct {
	TableName string        `json:"table_name"`
	Columns   []TableColumn `json:"columns"`
}

var (
	// Clauses of a DEFINE FIELD statement, after the field and table names.
	reDefineClauses = regexp.MustCompile(`(?is)^\s*DEFINE\s+FIELD\s+(?:IF\s+NOT\s+EXISTS\s+|OVERWRITE\s+)?\S+\s+ON\s+(?:TABLE\s+)?\S+(.*)$`)
	// TYPE clause of a DEFINE FIELD statement, up to the next clause keyword.
	reDefineType = regexp.MustCompile(`(?i)\bTYPE\s+(.+?)(?:\s+(?:DEFAULT|VALUE|ASSERT|READONLY|PERMISSIONS|COMMENT|REFERENCE)\b|$)`)
	// DEFAULT clause of a DEFINE FIELD statement.
	reDefineDefault = regexp.MustCompile(`(?i)\bDEFAULT\s+(?:ALWAYS\s+)?(.+?)(?:\s+(?:VALUE|ASSERT|READONLY|PERMISSIONS|COMMENT|TYPE|REFERENCE)\b|$)`)
)

// ParseTableInfo turns an introspection result into a TableSchema.
//
// The result must hold a "fields" object. Each field is either a descriptor
// object with "type", "nullable" and "default" keys, or a DEFINE FIELD
// statement string as returned by newer SurrealDB servers.
func ParseTableInfo(table string, info any) (*TableSchema, error) {
	obj, _ := info.(map[string]any)
	fields, ok := obj["fields"]
	if !ok {
		return nil, errors.New(errors.QueryFailed, "No fields found in table info")
	}

	schema := &TableSchema{TableName: table, Columns: []TableColumn{}}

	fieldMap, _ := fields.(map[string]any)
	for name, raw := range fieldMap {
		var col TableColumn
		switch fi := raw.(type) {
		case map[string]any:
			col = parseFieldObject(name, fi)
		case string:
			col = parseDefineField(name, fi)
		default:
			col = TableColumn{Name: name, DataType: "unknown", Nullable: true}
		}
		schema.Columns = append(schema.Columns, col)
	}

	sort.Slice(schema.Columns, func(i, j int) bool {
		return schema.Columns[i].Name < schema.Columns[j].Name
	})
	return schema, nil
}

func parseFieldObject(name string, fi map[string]any) TableColumn {
	col := TableColumn{Name: name, Nullable: true}

	switch typ := fi["type"].(type) {
	case string:
		col.DataType = typ
	case map[string]any:
		kind, ok := typ["kind"].(string)
		switch {
		case !ok:
			col.DataType = "complex"
		case kind == "array":
			if items, ok := typ["items"].(string); ok {
				col.DataType = "array<" + items + ">"
			} else {
				col.DataType = "array"
			}
		case kind == "object":
			col.DataType = "object"
		default:
			col.DataType = kind
		}
	default:
		col.DataType = "unknown"
	}

	if n, ok := fi["nullable"].(bool); ok {
		col.Nullable = n
	}

	if def, present := fi["default"]; present {
		if text, ok := defaultText(def); ok {
			col.DefaultValue = &text
		}
	}
	return col
}

func defaultText(v any) (string, bool) {
	switch d := v.(type) {
	case nil:
		return "null", true
	case string:
		return d, true
	case json.Number:
		return d.String(), true
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64), true
	case int, int64:
		return fmt.Sprint(d), true
	case bool:
		return strconv.FormatBool(d), true
	default:
		return "", false
	}
}

func parseDefineField(name, stmt string) TableColumn {
	col := TableColumn{Name: name, DataType: "unknown", Nullable: true}

	if m := reDefineClauses.FindStringSubmatch(stmt); m != nil {
		stmt = m[1]
	}
	if m := reDefineType.FindStringSubmatch(stmt); m != nil {
		typ := strings.TrimSpace(m[1])
		col.DataType = typ
		col.Nullable = strings.HasPrefix(strings.ToLower(typ), "option<") || strings.EqualFold(typ, "any")
	}
	if m := reDefineDefault.FindStringSubmatch(stmt); m != nil {
		def := strings.TrimSpace(m[1])
		col.DefaultValue = &def
	}
	return col
}

// Info renders the schema back into the introspection shape ParseTableInfo reads.
func (s *TableSchema) Info() map[string]any {
	fields := make(map[string]any, len(s.Columns))
	for _, c := range s.Columns {
		f := map[string]any{
			"type":     c.DataType,
			"nullable": c.Nullable,
		}
		if c.DefaultValue != nil {
			f["default"] = *c.DefaultValue
		}
		fields[c.Name] = f
	}
	return map[string]any{"fields": fields}
}
