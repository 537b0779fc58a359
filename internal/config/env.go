// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"seedfast/dataorch/internal/dsn"
	"seedfast/dataorch/internal/errors"
)

// Provider names accepted in settings and DATAORCH_PROVIDER.
const (
	ProviderXAI       = "xai"
	ProviderAnthropic = "anthropic"
)

// DotEnvFiles are loaded in order; values already in the environment win,
// so .env.local overrides .env.
var DotEnvFiles = []string{".env.local", ".env"}

// ConfigError reports one missing or malformed configuration value.
type ConfigError struct {
	Var    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %s", e.Var, e.Reason)
}

// SecretStore supplies secrets that are not present in the environment.
type SecretStore interface {
	LoadAPIKey(provider string) (string, error)
	LoadDBPassword() (string, error)
}

// Config is the fully resolved runtime configuration.
type Config struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	MaxTurns       int
	LogLevel       string
	CatalogPath    string
	RequestTimeout time.Duration
	DB             dsn.Target
}

// LoadDotEnv loads the dotenv files that exist and ignores the rest.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = DotEnvFiles
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Resolve combines settings, environment variables and the secret store into
// a validated Config. secrets may be nil.
func Resolve(s Settings, secrets SecretStore) (*Config, error) {
	c := &Config{
		Provider:    strings.ToLower(firstEnv(s.Provider, "DATAORCH_PROVIDER")),
		Model:       firstEnv(s.Model, "DATAORCH_MODEL"),
		BaseURL:     env("DATAORCH_LLM_BASE_URL"),
		LogLevel:    firstEnv(s.LogLevel, "DATAORCH_LOG_LEVEL"),
		CatalogPath: firstEnv(s.CatalogPath, "DATAORCH_CATALOG"),
		MaxTurns:    s.MaxTurns,
	}
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	keyVar, keyPrefix, defaultModel, err := providerInfo(c.Provider)
	if err != nil {
		return nil, invalid(err)
	}
	if c.Model == "" {
		c.Model = defaultModel
	}

	if v := env("DATAORCH_MAX_TURNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalid(&ConfigError{Var: "DATAORCH_MAX_TURNS", Reason: "must be a whole number"})
		}
		c.MaxTurns = n
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.MaxTurns < 1 {
		return nil, invalid(&ConfigError{Var: "max_turns", Reason: "must be at least 1"})
	}

	if c.RequestTimeout, err = RequestTimeout(s); err != nil {
		return nil, err
	}

	c.APIKey = env(keyVar)
	if c.APIKey == "" && secrets != nil {
		if v, err := secrets.LoadAPIKey(c.Provider); err == nil {
			c.APIKey = strings.TrimSpace(v)
		}
	}
	if c.APIKey == "" {
		return nil, invalid(&ConfigError{Var: keyVar, Reason: "is not set"})
	}
	if !strings.HasPrefix(c.APIKey, keyPrefix) {
		return nil, invalid(&ConfigError{Var: keyVar, Reason: fmt.Sprintf("must start with %q", keyPrefix)})
	}

	db, err := resolveDB(secrets)
	if err != nil {
		return nil, invalid(err)
	}
	c.DB = *db

	return c, nil
}

// ResolveDatabase resolves only the database target, for commands that never
// talk to the completion service.
func ResolveDatabase(secrets SecretStore) (*dsn.Target, error) {
	db, err := resolveDB(secrets)
	if err != nil {
		return nil, invalid(err)
	}
	return db, nil
}

// RequestTimeout returns the per-call timeout for completions and datastore
// calls. DATAORCH_REQUEST_TIMEOUT wins over the saved setting.
func RequestTimeout(s Settings) (time.Duration, error) {
	raw := firstEnv(s.RequestTimeout, "DATAORCH_REQUEST_TIMEOUT")
	if raw == "" {
		return DefaultRequestTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, invalid(&ConfigError{Var: "request_timeout", Reason: "must be a positive duration such as 2m"})
	}
	return d, nil
}

func resolveDB(secrets SecretStore) (*dsn.Target, error) {
	host := env("DATAORCH_DB_HOST", "SURREAL_HOST")
	if host == "" {
		return nil, &ConfigError{Var: "DATAORCH_DB_HOST", Reason: "is not set"}
	}

	raw := dsn.Target{
		Endpoint:  host,
		Username:  env("DATAORCH_DB_USERNAME", "SURREAL_USERNAME"),
		Password:  env("DATAORCH_DB_PASSWORD", "SURREAL_PASSWORD"),
		Namespace: env("DATAORCH_DB_NAMESPACE", "SURREAL_NAMESPACE"),
		Database:  "main",
	}
	if v, ok := lookup("DATAORCH_DB_DATABASE", "SURREAL_DATABASE"); ok {
		if strings.TrimSpace(v) == "" {
			return nil, &ConfigError{Var: "DATAORCH_DB_DATABASE", Reason: "must not be blank"}
		}
		raw.Database = strings.TrimSpace(v)
	}
	if raw.Password == "" && secrets != nil {
		if v, err := secrets.LoadDBPassword(); err == nil {
			raw.Password = v
		}
	}

	if dsn.DetectDriver(host) == dsn.DriverSurreal {
		if raw.Username == "" {
			return nil, &ConfigError{Var: "DATAORCH_DB_USERNAME", Reason: "is not set"}
		}
		if raw.Password == "" {
			return nil, &ConfigError{Var: "DATAORCH_DB_PASSWORD", Reason: "is not set"}
		}
		if raw.Namespace == "" {
			return nil, &ConfigError{Var: "DATAORCH_DB_NAMESPACE", Reason: "is not set"}
		}
	}

	target, err := dsn.Resolve(raw)
	if err != nil {
		var perr *dsn.ParseError
		if stderrors.As(err, &perr) {
			reason := perr.Reason
			if perr.Hint != "" {
				reason += " (" + perr.Hint + ")"
			}
			return nil, &ConfigError{Var: "DATAORCH_DB_HOST", Reason: "is invalid: " + reason}
		}
		return nil, err
	}
	return target, nil
}

func providerInfo(provider string) (keyVar, prefix, model string, err error) {
	switch provider {
	case ProviderXAI:
		return "XAI_API_KEY", "xai-", "grok-3-mini", nil
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY", "sk-ant-", "claude-sonnet-4-5", nil
	default:
		return "", "", "", &ConfigError{Var: "DATAORCH_PROVIDER", Reason: fmt.Sprintf("has unsupported value %q (use xai or anthropic)", provider)}
	}
}

// APIKeyVar returns the environment variable holding the provider's API key.
func APIKeyVar(provider string) string {
	v, _, _, _ := providerInfo(strings.ToLower(provider))
	return v
}

func invalid(err error) error {
	return errors.Wrap(errors.ConfigInvalid, "configuration", err)
}

// lookup returns the first non-empty variable among names.
func lookup(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := os.LookupEnv(n); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func env(names ...string) string {
	v, _ := lookup(names...)
	return strings.TrimSpace(v)
}

func firstEnv(fallback string, name string) string {
	if v := env(name); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}
