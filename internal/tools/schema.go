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

// SchemaToolName is the name the model calls the schema tool by.
const SchemaToolName = "table_schema"

// SchemaTool returns column information of one table.
type SchemaTool struct {
	gw     gateway.Gateway
	logger *pterm.Logger
}

// NewSchemaTool creates a schema tool over gw. logger may be nil.
func NewSchemaTool(gw gateway.Gateway, logger *pterm.Logger) *SchemaTool {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SchemaTool{gw: gw, logger: logger}
}

func (t *SchemaTool) Name() string { return SchemaToolName }

func (t *SchemaTool) Description() string {
	return "Get column information and types for a " + t.gw.Dialect().Name + " table. " +
		"Returns structured information about all columns including their names, data types, nullability, and default values."
}

func (t *SchemaTool) Parameters() map[string]any {
	return stringParam("table_name", "The name of the table to get schema information for")
}

// GetSchema introspects table and parses the result. Blank names are rejected
// before the gateway is contacted; gateway errors are returned unchanged.
func (t *SchemaTool) GetSchema(ctx context.Context, table string) (*TableSchema, error) {
	if strings.TrimSpace(table) == "" {
		return nil, errors.New(errors.InvalidInput, "Table name cannot be empty")
	}

	t.logger.Debug("Getting schema information for table", t.logger.Args("table", table))

	info, err := t.gw.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return ParseTableInfo(table, info)
}

// Call returns the table schema as indented JSON.
func (t *SchemaTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		TableName string `json:"table_name"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "", errors.Wrap(errors.InvalidInput, "table_schema arguments", err)
	}

	schema, err := t.GetSchema(ctx, in.TableName)
	if err != nil {
		return "", err
	}

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.SerializationFailed, "encode schema", err)
	}
	return string(b), nil
}
