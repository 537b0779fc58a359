package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seedfast/dataorch/internal/dsn"
	"seedfast/dataorch/internal/errors"
)

var managedVars = []string{
	"DATAORCH_PROVIDER", "DATAORCH_MODEL", "DATAORCH_LLM_BASE_URL", "DATAORCH_LOG_LEVEL",
	"DATAORCH_CATALOG", "DATAORCH_MAX_TURNS", "DATAORCH_REQUEST_TIMEOUT",
	"XAI_API_KEY", "ANTHROPIC_API_KEY",
	"DATAORCH_DB_HOST", "DATAORCH_DB_USERNAME", "DATAORCH_DB_PASSWORD", "DATAORCH_DB_NAMESPACE", "DATAORCH_DB_DATABASE",
	"SURREAL_HOST", "SURREAL_USERNAME", "SURREAL_PASSWORD", "SURREAL_NAMESPACE", "SURREAL_DATABASE",
}

// clearEnv blanks every variable Resolve reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range managedVars {
		t.Setenv(v, "")
	}
}

func setSurrealEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XAI_API_KEY", "xai-test-key")
	t.Setenv("SURREAL_HOST", "db.example.com")
	t.Setenv("SURREAL_USERNAME", "root")
	t.Setenv("SURREAL_PASSWORD", "root")
	t.Setenv("SURREAL_NAMESPACE", "acme")
}

type fakeSecrets struct {
	apiKey     string
	dbPassword string
}

func (f fakeSecrets) LoadAPIKey(string) (string, error) {
	if f.apiKey == "" {
		return "", stderrors.New("not found")
	}
	return f.apiKey, nil
}

func (f fakeSecrets) LoadDBPassword() (string, error) {
	if f.dbPassword == "" {
		return "", stderrors.New("not found")
	}
	return f.dbPassword, nil
}

func requireConfigError(t *testing.T, err error, wantVar string) *ConfigError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ConfigInvalid))
	var cerr *ConfigError
	require.True(t, stderrors.As(err, &cerr), "want ConfigError, got %v", err)
	assert.Equal(t, wantVar, cerr.Var)
	return cerr
}

func TestResolve_SurrealDefaults(t *testing.T) {
	clearEnv(t)
	setSurrealEnv(t)

	c, err := Resolve(Defaults(), nil)
	require.NoError(t, err)

	assert.Equal(t, "xai", c.Provider)
	assert.Equal(t, "grok-3-mini", c.Model)
	assert.Equal(t, "xai-test-key", c.APIKey)
	assert.Equal(t, 10, c.MaxTurns)
	assert.Equal(t, 2*time.Minute, c.RequestTimeout)
	assert.Equal(t, dsn.DriverSurreal, c.DB.Driver)
	assert.Equal(t, "wss://db.example.com/rpc", c.DB.Endpoint)
	assert.Equal(t, "acme", c.DB.Namespace)
	assert.Equal(t, "main", c.DB.Database)
}

func TestResolve_PrimaryNamesWinOverFallbacks(t *testing.T) {
	clearEnv(t)
	setSurrealEnv(t)
	t.Setenv("DATAORCH_DB_NAMESPACE", "sales")
	t.Setenv("DATAORCH_DB_DATABASE", "crm")

	c, err := Resolve(Defaults(), nil)
	require.NoError(t, err)
	assert.Equal(t, "sales", c.DB.Namespace)
	assert.Equal(t, "crm", c.DB.Database)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantVar string
	}{
		{"missing api key", map[string]string{"XAI_API_KEY": ""}, "XAI_API_KEY"},
		{"bad api key prefix", map[string]string{"XAI_API_KEY": "sk-123"}, "XAI_API_KEY"},
		{"missing host", map[string]string{"SURREAL_HOST": ""}, "DATAORCH_DB_HOST"},
		{"missing username", map[string]string{"SURREAL_USERNAME": ""}, "DATAORCH_DB_USERNAME"},
		{"missing password", map[string]string{"SURREAL_PASSWORD": ""}, "DATAORCH_DB_PASSWORD"},
		{"missing namespace", map[string]string{"SURREAL_NAMESPACE": ""}, "DATAORCH_DB_NAMESPACE"},
		{"blank database", map[string]string{"SURREAL_DATABASE": "   "}, "DATAORCH_DB_DATABASE"},
		{"unknown provider", map[string]string{"DATAORCH_PROVIDER": "cohere"}, "DATAORCH_PROVIDER"},
		{"bad max turns", map[string]string{"DATAORCH_MAX_TURNS": "many"}, "DATAORCH_MAX_TURNS"},
		{"negative max turns", map[string]string{"DATAORCH_MAX_TURNS": "-2"}, "max_turns"},
		{"bad timeout", map[string]string{"DATAORCH_REQUEST_TIMEOUT": "soon"}, "request_timeout"},
		{"unknown db scheme", map[string]string{"SURREAL_HOST": "mongodb://localhost/db"}, "DATAORCH_DB_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setSurrealEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Resolve(Defaults(), nil)
			requireConfigError(t, err, tt.wantVar)
		})
	}
}

func TestResolve_SecretsFromStore(t *testing.T) {
	clearEnv(t)
	setSurrealEnv(t)
	t.Setenv("XAI_API_KEY", "")
	t.Setenv("SURREAL_PASSWORD", "")

	c, err := Resolve(Defaults(), fakeSecrets{apiKey: "xai-from-keychain", dbPassword: "pw-from-keychain"})
	require.NoError(t, err)
	assert.Equal(t, "xai-from-keychain", c.APIKey)
	assert.Equal(t, "pw-from-keychain", c.DB.Password)
}

func TestResolve_Anthropic(t *testing.T) {
	clearEnv(t)
	setSurrealEnv(t)
	t.Setenv("DATAORCH_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	c, err := Resolve(Defaults(), nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", c.Provider)
	assert.Equal(t, "claude-sonnet-4-5", c.Model)
	assert.Equal(t, "sk-ant-test", c.APIKey)
}

func TestResolve_SQLiteNeedsNoCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("XAI_API_KEY", "xai-test-key")
	t.Setenv("DATAORCH_DB_HOST", "sqlite:/tmp/crm.db")

	c, err := Resolve(Defaults(), nil)
	require.NoError(t, err)
	assert.Equal(t, dsn.DriverSQLite, c.DB.Driver)
	assert.Equal(t, "/tmp/crm.db", c.DB.Endpoint)
}

func TestResolve_SettingsOverriddenByEnv(t *testing.T) {
	clearEnv(t)
	setSurrealEnv(t)
	t.Setenv("DATAORCH_MODEL", "grok-3")
	t.Setenv("DATAORCH_MAX_TURNS", "4")

	s := Defaults()
	s.Model = "grok-2"
	s.MaxTurns = 7
	s.RequestTimeout = "30s"

	c, err := Resolve(s, nil)
	require.NoError(t, err)
	assert.Equal(t, "grok-3", c.Model)
	assert.Equal(t, 4, c.MaxTurns)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	base := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("SURREAL_NAMESPACE=from-local\n"), 0o600))
	require.NoError(t, os.WriteFile(base, []byte("SURREAL_NAMESPACE=from-base\nSURREAL_DATABASE=from-base\n"), 0o600))

	// godotenv does not override variables that are already set, even to "".
	require.NoError(t, os.Unsetenv("SURREAL_NAMESPACE"))
	require.NoError(t, os.Unsetenv("SURREAL_DATABASE"))

	require.NoError(t, LoadDotEnv(local, filepath.Join(dir, "missing.env"), base))
	assert.Equal(t, "from-local", os.Getenv("SURREAL_NAMESPACE"))
	assert.Equal(t, "from-base", os.Getenv("SURREAL_DATABASE"))
}

func TestAPIKeyVar(t *testing.T) {
	assert.Equal(t, "XAI_API_KEY", APIKeyVar("xai"))
	assert.Equal(t, "ANTHROPIC_API_KEY", APIKeyVar("ANTHROPIC"))
	assert.Equal(t, "", APIKeyVar("other"))
}

func TestResolveDatabase_NeedsNoAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATAORCH_DB_HOST", "sqlite:/tmp/crm.db")

	target, err := ResolveDatabase(nil)
	require.NoError(t, err)
	assert.Equal(t, dsn.DriverSQLite, target.Driver)

	clearEnv(t)
	_, err = ResolveDatabase(nil)
	requireConfigError(t, err, "DATAORCH_DB_HOST")
}

func TestRequestTimeout(t *testing.T) {
	clearEnv(t)

	d, err := RequestTimeout(Settings{})
	require.NoError(t, err)
	assert.Equal(t, DefaultRequestTimeout, d)

	d, err = RequestTimeout(Settings{RequestTimeout: "45s"})
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	t.Setenv("DATAORCH_REQUEST_TIMEOUT", "5s")
	d, err = RequestTimeout(Settings{RequestTimeout: "45s"})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	t.Setenv("DATAORCH_REQUEST_TIMEOUT", "-1s")
	_, err = RequestTimeout(Settings{})
	requireConfigError(t, err, "request_timeout")
}
