// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"seedfast/dataorch/internal/errors"
)

// decodeValue converts raw JSON into the value tree, keeping numbers exact.
func decodeValue(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(errors.SerializationFailed, "decode result", err)
	}
	return v, nil
}

// toValueTree converts native driver values into the value tree.
func toValueTree(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.SerializationFailed, "encode result", err)
	}
	return decodeValue(raw)
}

// rowsToRecords zips column names with row values into one object per row.
// convert renders driver values JSON has no form for.
func rowsToRecords(columns []string, rows [][]any, convert func(any) any) []any {
	records := make([]any, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(row) {
				rec[col] = convert(row[i])
			}
		}
		records = append(records, rec)
	}
	return records
}

// blobValue shows byte slices as \x-prefixed hex.
func blobValue(val any) any {
	if v, ok := val.([]byte); ok {
		return fmt.Sprintf("\\x%x", v)
	}
	return val
}

// pgValue additionally formats pgx uuid values, which arrive as [16]byte.
func pgValue(val any) any {
	if v, ok := val.([16]byte); ok {
		return uuid.UUID(v).String()
	}
	return blobValue(val)
}
