// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DetectDriver detects the gateway driver from an endpoint string.
// A bare host without a scheme is a SurrealDB server.
func DetectDriver(endpoint string) Driver {
	lower := strings.ToLower(strings.TrimSpace(endpoint))

	switch {
	case lower == "":
		return DriverUnknown
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(lower, "sqlite:") || strings.HasPrefix(lower, "file:"):
		return DriverSQLite
	case strings.HasPrefix(lower, "ws://") || strings.HasPrefix(lower, "wss://") ||
		strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return DriverSurreal
	case strings.Contains(lower, "://"):
		return DriverUnknown
	}

	return DriverSurreal
}

// Resolve detects the driver of raw.Endpoint and returns a copy of raw with
// a normalized endpoint. This is the main entry point for endpoint parsing.
func Resolve(raw Target) (*Target, error) {
	endpoint := strings.TrimSpace(raw.Endpoint)
	if endpoint == "" {
		return nil, NewParseError(endpoint, "empty endpoint", "set DATAORCH_DB_HOST to a SurrealDB host, a postgres:// DSN or a sqlite: path")
	}

	t := raw
	t.Endpoint = endpoint
	t.Namespace = strings.TrimSpace(raw.Namespace)
	t.Database = strings.TrimSpace(raw.Database)
	t.Driver = DetectDriver(endpoint)

	switch t.Driver {
	case DriverSurreal:
		normalized, err := NormalizeSurrealURL(endpoint)
		if err != nil {
			return nil, err
		}
		t.Endpoint = normalized
		if t.Namespace == "" {
			return nil, NewParseError(endpoint, "missing namespace", "set DATAORCH_DB_NAMESPACE")
		}
		if t.Database == "" {
			return nil, NewParseError(endpoint, "missing database", "set DATAORCH_DB_DATABASE")
		}
	case DriverPostgres:
		if err := resolvePostgres(&t); err != nil {
			return nil, err
		}
	case DriverSQLite:
		path, err := SQLitePath(endpoint)
		if err != nil {
			return nil, err
		}
		t.Endpoint = path
	default:
		return nil, NewParseError(endpoint, "unknown database type", "use wss://, postgres:// or sqlite:")
	}

	return &t, nil
}

// Validate validates an endpoint without returning the resolved target
func Validate(raw Target) error {
	_, err := Resolve(raw)
	return err
}
