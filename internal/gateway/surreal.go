// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"

	"seedfast/dataorch/internal/dsn"
	"seedfast/dataorch/internal/errors"
)

var surrealIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Surreal talks to SurrealDB through its JSON-RPC websocket endpoint.
type Surreal struct {
	target dsn.Target
	dialer *websocket.Dialer
	logger *pterm.Logger
}

// NewSurreal creates a SurrealDB gateway. target.Endpoint must be a ws(s) RPC URL.
func NewSurreal(target dsn.Target, logger *pterm.Logger) *Surreal {
	return &Surreal{
		target: target,
		dialer: &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
		logger: orDiscard(logger),
	}
}

func (g *Surreal) Dialect() Dialect {
	return Dialect{
		Name:     "SurrealQL",
		Contains: "CONTAINS",
		Docs: []string{
			"https://surrealdb.com/docs/surrealql/statements/select",
			"https://surrealdb.com/docs/surrealql/operators",
			"https://surrealdb.com/docs/surrealql/functions/database/string",
		},
	}
}

func (g *Surreal) Execute(ctx context.Context, query string) (result any, err error) {
	ctx, span := startSpan(ctx, "gateway.execute", "surrealdb", query)
	defer func() { endSpan(span, err) }()

	sess, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.close()

	raw, err := sess.call(ctx, "query", query, map[string]any{})
	if err != nil {
		return nil, errors.Wrap(errors.QueryFailed, "execute query", err)
	}
	return firstStatement(raw)
}

func (g *Surreal) DescribeTable(ctx context.Context, table string) (any, error) {
	if !surrealIdent.MatchString(table) {
		return nil, errors.New(errors.InvalidInput, fmt.Sprintf("Table name %q is not a plain identifier", table))
	}
	return g.Execute(ctx, "INFO FOR TABLE "+table)
}

// connect dials, signs in as a root user and selects namespace and database.
func (g *Surreal) connect(ctx context.Context) (*surrealSession, error) {
	conn, _, err := g.dialer.DialContext(ctx, g.target.Endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ConnectionFailed, "connect to "+g.target.Endpoint, err)
	}
	sess := &surrealSession{conn: conn}
	sess.stop = context.AfterFunc(ctx, func() { _ = conn.Close() })

	if _, err := sess.call(ctx, "signin", map[string]string{
		"user": g.target.Username,
		"pass": g.target.Password,
	}); err != nil {
		sess.close()
		return nil, errors.Wrap(errors.ConnectionFailed, "signin", err)
	}

	if _, err := sess.call(ctx, "use", g.target.Namespace, g.target.Database); err != nil {
		sess.close()
		return nil, errors.Wrap(errors.ConnectionFailed, fmt.Sprintf("use %s/%s", g.target.Namespace, g.target.Database), err)
	}

	g.logger.Trace("surreal session ready", g.logger.Args("namespace", g.target.Namespace, "database", g.target.Database))
	return sess, nil
}

type rpcRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

type statementResult struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Time   string          `json:"time"`
}

type surrealSession struct {
	conn   *websocket.Conn
	stop   func() bool
	nextID int
}

// call sends one request and waits for the response with the same id.
// Messages without a matching id (live query notifications) are skipped.
func (s *surrealSession) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	s.nextID++
	id := fmt.Sprintf("%d", s.nextID)

	deadline, _ := ctx.Deadline()
	_ = s.conn.SetWriteDeadline(deadline)
	_ = s.conn.SetReadDeadline(deadline)

	if err := s.conn.WriteJSON(rpcRequest{ID: id, Method: method, Params: params}); err != nil {
		return nil, s.ctxErr(ctx, err)
	}

	for {
		var resp rpcResponse
		if err := s.conn.ReadJSON(&resp); err != nil {
			return nil, s.ctxErr(ctx, err)
		}
		if strings.Trim(string(resp.ID), `"`) != id {
			continue
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	}
}

// ctxErr reports the context error for I/O that failed because ctx ended.
// The connection deadline can fire just before the context timer does.
func (s *surrealSession) ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var ne net.Error
	if _, ok := ctx.Deadline(); ok && stderrors.As(err, &ne) && ne.Timeout() {
		return context.DeadlineExceeded
	}
	return err
}

func (s *surrealSession) close() {
	if s.stop != nil {
		s.stop()
	}
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = s.conn.Close()
}

// firstStatement extracts the first statement result of a query response.
func firstStatement(raw json.RawMessage) (any, error) {
	var statements []statementResult
	if err := json.Unmarshal(raw, &statements); err != nil {
		return nil, errors.Wrap(errors.SerializationFailed, "decode query response", err)
	}
	if len(statements) == 0 {
		return nil, nil
	}

	first := statements[0]
	if strings.EqualFold(first.Status, "ERR") {
		var msg string
		if err := json.Unmarshal(first.Result, &msg); err != nil {
			msg = string(first.Result)
		}
		return nil, errors.New(errors.QueryFailed, msg)
	}
	return decodeValue(first.Result)
}
