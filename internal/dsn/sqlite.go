// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import "strings"

// SQLitePath extracts the database file path from sqlite:, sqlite:// and file: endpoints.
func SQLitePath(endpoint string) (string, error) {
	path := strings.TrimSpace(endpoint)
	for _, prefix := range []string{"sqlite://", "sqlite:", "file://", "file:"} {
		if len(path) >= len(prefix) && strings.EqualFold(path[:len(prefix)], prefix) {
			path = path[len(prefix):]
			break
		}
	}
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if strings.TrimSpace(path) == "" {
		return "", NewParseError(endpoint, "missing database file", "use sqlite:/path/to/file.db")
	}
	return path, nil
}
