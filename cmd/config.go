// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"seedfast/dataorch/internal/config"
	"seedfast/dataorch/internal/logging"
)

// configCmd shows the effective configuration with secrets masked.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `The config command resolves the configuration the same way ask does (environment,
.env files, settings file and OS keychain) and prints it with every secret masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return reportConfigError(err)
		}

		catalogPath := cfg.CatalogPath
		if catalogPath == "" {
			catalogPath = "(built-in)"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "(provider default)"
		}

		lines := []string{
			row("Provider", cfg.Provider),
			row("Model", cfg.Model),
			row("API key", logging.Secret(cfg.APIKey)),
			row("Base URL", baseURL),
			row("Max turns", strconv.Itoa(cfg.MaxTurns)),
			row("Timeout", cfg.RequestTimeout.String()),
			row("Log level", cfg.LogLevel),
			row("Catalog", catalogPath),
			row("Database", logging.Mask(cfg.DB.String())),
			row("DB user", cfg.DB.Username),
			row("DB password", logging.Secret(cfg.DB.Password)),
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Configuration")).
			WithPadding(1).
			Println(strings.Join(lines, "\n"))
		pterm.Println()
		pterm.Println("To change a setting, run: dataorch config set <key> <value>")
		return nil
	},
}

// configSetCmd updates one non-secret setting in the settings file.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Update a setting (provider, model, max_turns, log_level, catalog_path, request_timeout)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load()
		if err != nil {
			return err
		}
		if err := applySetting(&s, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(s); err != nil {
			return err
		}
		fmt.Printf("✅ %s updated\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
}

func row(label, value string) string {
	return pterm.NewStyle(pterm.FgLightCyan).Sprintf("%-12s", label) + value
}

// applySetting validates value and stores it under key.
func applySetting(s *config.Settings, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "provider":
		if config.APIKeyVar(value) == "" {
			return fmt.Errorf("unsupported provider %q (use xai or anthropic)", value)
		}
		s.Provider = strings.ToLower(value)
	case "model":
		s.Model = value
	case "max_turns":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("max_turns must be a whole number of at least 1")
		}
		s.MaxTurns = n
	case "log_level":
		s.LogLevel = value
	case "catalog_path":
		s.CatalogPath = value
	case "request_timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("request_timeout must be a positive duration such as 2m")
		}
		s.RequestTimeout = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
