// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seedfast/dataorch/internal/tools"
)

// selectCmd runs the select tool directly.
var selectCmd = &cobra.Command{
	Use:   "select <query...>",
	Short: "Run a read-only SELECT statement",
	Long: `The select command runs one SELECT statement against the configured datastore and
prints the rows the way the query agents see them. Statements that are not plain
SELECTs are rejected before they reach the database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		target, settings, err := loadTarget()
		if err != nil {
			return reportConfigError(err)
		}
		logger := newLogger(settings.LogLevel)

		gw, err := openGateway(target, settings, logger)
		if err != nil {
			return err
		}

		var out string
		_ = withSpinner("querying", func() error {
			out = tools.NewSelectTool(gw, logger).Run(cmd.Context(), query)
			return nil
		})

		fmt.Fprintln(cmd.OutOrStdout(), out)
		if strings.HasPrefix(out, "Query validation error") || strings.HasPrefix(out, "Query execution error") {
			return errReported
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
}
