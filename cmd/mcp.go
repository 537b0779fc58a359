// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"seedfast/dataorch/internal/logging"
	"seedfast/dataorch/internal/mcpserver"
	"seedfast/dataorch/internal/tools"
)

// mcpCmd serves the table_schema and select_query tools over MCP stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the schema and select tools over MCP (stdio)",
	Long: `The mcp command starts a Model Context Protocol server on stdin/stdout that exposes
the table_schema and select_query tools against the configured datastore. Diagnostics
go to stderr so they never corrupt the protocol stream.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, settings, err := loadTarget()
		if err != nil {
			return reportConfigError(err)
		}
		logger := newLogger(settings.LogLevel)

		gw, err := openGateway(target, settings, logger)
		if err != nil {
			return err
		}
		set := tools.NewSet(
			tools.NewSchemaTool(gw, logger),
			tools.NewSelectTool(gw, logger),
		)

		s, err := mcpserver.New(set, Version, logger)
		if err != nil {
			return err
		}

		logger.Info("MCP server listening on stdio", logger.Args("target", logging.Mask(target.String())))
		if err := mcpserver.Serve(cmd.Context(), s, os.Stdin, os.Stdout); err != nil && cmd.Context().Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
