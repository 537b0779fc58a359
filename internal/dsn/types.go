// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"fmt"
	"net/url"
)

// Driver identifies which gateway implementation serves a target
type Driver string

const (
	DriverSurreal  Driver = "surreal"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverUnknown  Driver = "unknown"
)

// Target is everything needed to open one scoped datastore session.
// Endpoint is driver specific: a websocket RPC URL for surreal, a normalized
// connection string for postgres and a file path for sqlite.
type Target struct {
	Driver    Driver
	Endpoint  string
	Username  string
	Password  string
	Namespace string
	Database  string
}

// String renders the target without its password.
func (t Target) String() string {
	endpoint := t.Endpoint
	if u, err := url.Parse(t.Endpoint); err == nil && u.User != nil {
		endpoint = u.Redacted()
	}
	switch t.Driver {
	case DriverSQLite:
		return fmt.Sprintf("%s %s", t.Driver, endpoint)
	default:
		return fmt.Sprintf("%s %s (%s/%s)", t.Driver, endpoint, t.Namespace, t.Database)
	}
}

// PostgresInfo is a decomposed postgres connection string.
type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
}

// ParseError represents an error that occurred while resolving an endpoint
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid endpoint: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid endpoint: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
