// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net/url"
	"strings"
)

// NormalizeSurrealURL turns a configured SurrealDB host into its websocket RPC URL.
// Hosts without a scheme use wss, http(s) schemes are mapped to ws(s), and an
// empty path becomes /rpc.
func NormalizeSurrealURL(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", NewParseError(host, "empty host", "provide a SurrealDB host such as db.example.com")
	}
	if !strings.Contains(host, "://") {
		host = "wss://" + host
	}

	u, err := url.Parse(host)
	if err != nil {
		return "", NewParseError(host, err.Error(), "provide a SurrealDB host such as wss://db.example.com/rpc")
	}

	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
		u.Scheme = strings.ToLower(u.Scheme)
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", NewParseError(host, "unsupported scheme "+u.Scheme, "use ws:// or wss://")
	}

	if u.Host == "" {
		return "", NewParseError(host, "missing host", "provide a SurrealDB host such as wss://db.example.com/rpc")
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/rpc"
	}

	return u.String(), nil
}
