// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the dataorch CLI application.
// It implements subcommands for asking cross-domain questions, inspecting tables,
// running read-only queries, serving the query tools over MCP and managing
// configuration using the Cobra CLI framework. The package handles command parsing,
// execution, and provides a rich terminal UI with spinners and progress indicators.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
	verbose     bool
	logLevel    string
)

// errReported marks a failure that has already been shown to the user.
var errReported = errors.New("reported")

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the dataorch CLI application.
var rootCmd = &cobra.Command{
	Use:   "dataorch",
	Short: "Answer business questions across several databases with language-model agents",
	Long: `dataorch splits a business question into one sub-question per data domain, lets a
database-backed agent answer each of them with read-only queries, and combines the
answers into a single recommendation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("dataorch %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// Interrupt and terminate signals cancel the context of the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug diagnostics on stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostics level: trace, debug, info, warn, error or off")
}
