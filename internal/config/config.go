// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets come from the environment
// or the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"seedfast/dataorch/internal/xdg"
)

const (
	DefaultProvider       = "xai"
	DefaultMaxTurns       = 10
	DefaultLogLevel       = "info"
	DefaultRequestTimeout = 2 * time.Minute
)

// Settings holds non-sensitive CLI settings.
type Settings struct {
	Provider       string `json:"provider"`
	Model          string `json:"model,omitempty"`
	MaxTurns       int    `json:"max_turns"`
	LogLevel       string `json:"log_level"`
	CatalogPath    string `json:"catalog_path,omitempty"`
	RequestTimeout string `json:"request_timeout"`
}

// Defaults returns the settings used when no config file exists.
func Defaults() Settings {
	return Settings{
		Provider:       DefaultProvider,
		MaxTurns:       DefaultMaxTurns,
		LogLevel:       DefaultLogLevel,
		RequestTimeout: DefaultRequestTimeout.String(),
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads settings; missing file returns defaults. Fields absent from the
// file keep their default values.
func Load() (Settings, error) {
	s := Defaults()
	p, err := path()
	if err != nil {
		return s, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes settings with 0600 permissions.
func Save(s Settings) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
