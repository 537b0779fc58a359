// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pterm/pterm"

	"seedfast/dataorch/internal/dsn"
	"seedfast/dataorch/internal/errors"
)

// Postgres runs statements over a single pgx connection per call.
// The namespace selects the schema through search_path and every statement
// runs inside a read-only transaction that is rolled back afterwards.
type Postgres struct {
	target dsn.Target
	logger *pterm.Logger
}

// NewPostgres creates a PostgreSQL gateway. target.Endpoint must be a connection string.
func NewPostgres(target dsn.Target, logger *pterm.Logger) *Postgres {
	return &Postgres{target: target, logger: orDiscard(logger)}
}

func (g *Postgres) Dialect() Dialect {
	return Dialect{
		Name:     "PostgreSQL",
		Contains: "ILIKE",
		Docs: []string{
			"https://www.postgresql.org/docs/current/sql-select.html",
			"https://www.postgresql.org/docs/current/functions-matching.html",
		},
	}
}

func (g *Postgres) Execute(ctx context.Context, query string) (result any, err error) {
	ctx, span := startSpan(ctx, "gateway.execute", "postgresql", query)
	defer func() { endSpan(span, err) }()

	return g.withReadOnlyTx(ctx, func(tx pgx.Tx) (any, error) {
		columns, rows, err := collect(ctx, tx, query)
		if err != nil {
			return nil, errors.Wrap(errors.QueryFailed, "execute query", err)
		}
		return toValueTree(rowsToRecords(columns, rows, pgValue))
	})
}

// DescribeTable reads information_schema.columns and reshapes it into a field document.
func (g *Postgres) DescribeTable(ctx context.Context, table string) (result any, err error) {
	schema, name := splitTableName(table, g.target.Namespace)
	ctx, span := startSpan(ctx, "gateway.describe_table", "postgresql", "information_schema.columns "+schema+"."+name)
	defer func() { endSpan(span, err) }()

	const columnsQuery = `
		SELECT c.column_name, c.data_type, c.udt_name, c.is_nullable = 'YES', c.column_default
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`

	return g.withReadOnlyTx(ctx, func(tx pgx.Tx) (any, error) {
		rows, err := tx.Query(ctx, columnsQuery, schema, name)
		if err != nil {
			return nil, errors.Wrap(errors.QueryFailed, "describe table", err)
		}
		defer rows.Close()

		fields := map[string]any{}
		for rows.Next() {
			var (
				column, dataType, udtName string
				nullable                  bool
				columnDefault             *string
			)
			if err := rows.Scan(&column, &dataType, &udtName, &nullable, &columnDefault); err != nil {
				return nil, errors.Wrap(errors.QueryFailed, "describe table", err)
			}

			field := map[string]any{"nullable": nullable}
			if dataType == "ARRAY" {
				field["type"] = map[string]any{"kind": "array", "items": strings.TrimPrefix(udtName, "_")}
			} else {
				field["type"] = dataType
			}
			if columnDefault != nil {
				field["default"] = *columnDefault
			}
			fields[column] = field
		}
		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(errors.QueryFailed, "describe table", err)
		}
		if len(fields) == 0 {
			return nil, errors.New(errors.QueryFailed, fmt.Sprintf("table %s.%s does not exist", schema, name))
		}

		return toValueTree(map[string]any{"fields": fields})
	})
}

func (g *Postgres) withReadOnlyTx(ctx context.Context, fn func(pgx.Tx) (any, error)) (any, error) {
	cfg, err := pgx.ParseConfig(g.target.Endpoint)
	if err != nil {
		return nil, errors.Wrap(errors.ConnectionFailed, "parse connection string", err)
	}
	if g.target.Namespace != "" {
		cfg.RuntimeParams["search_path"] = g.target.Namespace
	}
	cfg.RuntimeParams["application_name"] = "dataorch"

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ConnectionFailed, "connect", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, errors.Wrap(errors.ConnectionFailed, "begin read-only transaction", err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	g.logger.Trace("postgres session ready", g.logger.Args("schema", g.target.Namespace))
	return fn(tx)
}

func collect(ctx context.Context, tx pgx.Tx, query string) ([]string, [][]any, error) {
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = fd.Name
	}

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		out = append(out, vals)
	}
	return columns, out, rows.Err()
}

// splitTableName splits "schema.table"; unqualified names use fallback, then public.
func splitTableName(table, fallback string) (schema, name string) {
	if s, n, ok := strings.Cut(table, "."); ok {
		return s, n
	}
	if fallback == "" {
		fallback = "public"
	}
	return fallback, table
}
