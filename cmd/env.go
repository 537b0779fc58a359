// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"seedfast/dataorch/internal/config"
	"seedfast/dataorch/internal/dsn"
	"seedfast/dataorch/internal/errors"
	"seedfast/dataorch/internal/gateway"
	"seedfast/dataorch/internal/keychain"
	"seedfast/dataorch/internal/logging"
)

// secretStore returns the OS keychain, or nil when none is available.
func secretStore() config.SecretStore {
	km, err := keychain.GetManager()
	if err != nil {
		return nil
	}
	return km
}

// loadSettings reads .env files and the settings file.
func loadSettings() (config.Settings, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Defaults(), errors.Wrap(errors.ConfigInvalid, "dotenv", err)
	}
	s, err := config.Load()
	if err != nil {
		return s, errors.Wrap(errors.ConfigInvalid, "settings file", err)
	}
	return s, nil
}

// loadConfig resolves the full configuration used by ask.
func loadConfig() (*config.Config, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return config.Resolve(s, secretStore())
}

// loadTarget resolves only the database target.
func loadTarget() (*dsn.Target, config.Settings, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, s, err
	}
	target, err := config.ResolveDatabase(secretStore())
	return target, s, err
}

// openGateway opens the datastore gateway with the configured per-call timeout.
func openGateway(target *dsn.Target, s config.Settings, logger *pterm.Logger) (gateway.Gateway, error) {
	timeout, err := config.RequestTimeout(s)
	if err != nil {
		return nil, reportConfigError(err)
	}
	return gateway.Open(*target, gateway.WithLogger(logger), gateway.WithTimeout(timeout))
}

// newLogger builds the diagnostics logger. --verbose wins over --log-level,
// which wins over the configured level.
func newLogger(configured string) *pterm.Logger {
	level := configured
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	return logging.New(level, os.Stderr)
}

// reportConfigError prints a configuration problem with the steps that fix it.
func reportConfigError(err error) error {
	var cerr *config.ConfigError
	if !stderrors.As(err, &cerr) {
		if errors.IsKind(err, errors.ConfigInvalid) {
			pterm.Println("❌ " + logging.PresentError("Invalid configuration", err))
			return errReported
		}
		return err
	}

	pterm.Println(fmt.Sprintf("❌ Configuration problem: %s", cerr.Error()))
	pterm.Println("   Copy .env.example to .env and fill in the missing values,")
	pterm.Println("   or store secrets in the OS keychain with: dataorch key set")
	return errReported
}

// printTarget shows which datastore a command talks to, with credentials masked.
func printTarget(t *dsn.Target) {
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Database:   ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(t.Database))
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Connection: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(logging.Mask(t.String())))
	pterm.Println()
}
