// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/pterm/pterm"
	_ "modernc.org/sqlite"

	"seedfast/dataorch/internal/dsn"
	"seedfast/dataorch/internal/errors"
)

// SQLite opens the database file read-only for every call.
type SQLite struct {
	target dsn.Target
	logger *pterm.Logger
}

// NewSQLite creates a SQLite gateway. target.Endpoint is the database file path.
func NewSQLite(target dsn.Target, logger *pterm.Logger) *SQLite {
	return &SQLite{target: target, logger: orDiscard(logger)}
}

func (g *SQLite) Dialect() Dialect {
	return Dialect{
		Name:     "SQLite",
		Contains: "LIKE",
		Docs: []string{
			"https://www.sqlite.org/lang_select.html",
			"https://www.sqlite.org/lang_expr.html#like",
		},
	}
}

func (g *SQLite) Execute(ctx context.Context, query string) (result any, err error) {
	ctx, span := startSpan(ctx, "gateway.execute", "sqlite", query)
	defer func() { endSpan(span, err) }()

	db, err := g.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	columns, rows, err := scanAll(ctx, db, query)
	if err != nil {
		return nil, errors.Wrap(errors.QueryFailed, "execute query", err)
	}
	return toValueTree(rowsToRecords(columns, rows, blobValue))
}

// DescribeTable reads pragma_table_info and reshapes it into a field document.
func (g *SQLite) DescribeTable(ctx context.Context, table string) (result any, err error) {
	ctx, span := startSpan(ctx, "gateway.describe_table", "sqlite", "pragma_table_info "+table)
	defer func() { endSpan(span, err) }()

	db, err := g.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, errors.Wrap(errors.QueryFailed, "describe table", err)
	}
	defer rows.Close()

	fields := map[string]any{}
	for rows.Next() {
		var (
			name, colType string
			notNull, pk   int
			dflt          sql.NullString
		)
		if err := rows.Scan(&name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, errors.Wrap(errors.QueryFailed, "describe table", err)
		}

		field := map[string]any{"nullable": notNull == 0 && pk == 0}
		if colType != "" {
			field["type"] = colType
		}
		if dflt.Valid {
			field["default"] = dflt.String
		}
		fields[name] = field
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.QueryFailed, "describe table", err)
	}
	if len(fields) == 0 {
		return nil, errors.New(errors.QueryFailed, fmt.Sprintf("table %s does not exist", table))
	}

	return toValueTree(map[string]any{"fields": fields})
}

func (g *SQLite) open(ctx context.Context) (*sql.DB, error) {
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "query_only(1)")
	q.Add("_pragma", "busy_timeout(5000)")

	db, err := sql.Open("sqlite", "file:"+g.target.Endpoint+"?"+q.Encode())
	if err != nil {
		return nil, errors.Wrap(errors.ConnectionFailed, "open "+g.target.Endpoint, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ConnectionFailed, "open "+g.target.Endpoint, err)
	}
	g.logger.Trace("sqlite session ready", g.logger.Args("path", g.target.Endpoint))
	return db, nil
}

func scanAll(ctx context.Context, db *sql.DB, query string) ([]string, [][]any, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		out = append(out, vals)
	}
	return columns, out, rows.Err()
}
