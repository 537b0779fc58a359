// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package gateway runs read statements against the configured datastore.
// Every call opens a fresh session, authenticates, selects the namespace and
// database, executes one statement and closes the session again. There is no
// pooling and no retry. Results come back as a JSON value tree built from
// map[string]any, []any, string, json.Number, bool and nil.
//
// Three drivers implement the same contract: SurrealDB over its websocket
// RPC protocol, PostgreSQL through pgx and SQLite through the pure Go
// modernc driver. Introspection results of the SQL drivers are reshaped into
// the {"fields": {...}} document SurrealDB returns for INFO FOR TABLE, so a
// single parser serves all of them.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"seedfast/dataorch/internal/dsn"
	"seedfast/dataorch/internal/errors"
	"seedfast/dataorch/internal/logging"
)

const tracerName = "seedfast/dataorch/gateway"

// Gateway executes statements and table introspection against one target.
type Gateway interface {
	// Execute runs query and returns the result of its first statement.
	Execute(ctx context.Context, query string) (any, error)
	// DescribeTable returns the field document of table.
	DescribeTable(ctx context.Context, table string) (any, error)
	// Dialect describes the query language the target speaks.
	Dialect() Dialect
}

// Dialect describes a query language for prompt construction.
type Dialect struct {
	Name string
	// Contains is the operator for substring matching on string fields.
	Contains string
	Docs     []string
}

// Option configures a gateway.
type Option func(*options)

type options struct {
	logger  *pterm.Logger
	timeout time.Duration
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *pterm.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout bounds every Execute and DescribeTable call by d. A
// non-positive d leaves calls bounded only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Open returns the gateway for target's driver. Nothing is dialed until the
// first call.
func Open(target dsn.Target, opts ...Option) (Gateway, error) {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	var gw Gateway
	switch target.Driver {
	case dsn.DriverSurreal:
		gw = NewSurreal(target, o.logger)
	case dsn.DriverPostgres:
		gw = NewPostgres(target, o.logger)
	case dsn.DriverSQLite:
		gw = NewSQLite(target, o.logger)
	default:
		return nil, errors.New(errors.InvalidInput, fmt.Sprintf("unsupported database driver %q", target.Driver))
	}

	if o.timeout > 0 {
		gw = &timeoutGateway{Gateway: gw, timeout: o.timeout}
	}
	return gw, nil
}

type timeoutGateway struct {
	Gateway
	timeout time.Duration
}

func (t *timeoutGateway) Execute(ctx context.Context, query string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Gateway.Execute(ctx, query)
}

func (t *timeoutGateway) DescribeTable(ctx context.Context, table string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Gateway.DescribeTable(ctx, table)
}

func orDiscard(l *pterm.Logger) *pterm.Logger {
	if l == nil {
		return logging.Discard()
	}
	return l
}

func startSpan(ctx context.Context, name, system, statement string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.statement", statement),
		))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
