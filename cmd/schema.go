// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"seedfast/dataorch/internal/errors"
	"seedfast/dataorch/internal/httperrors"
	"seedfast/dataorch/internal/logging"
	"seedfast/dataorch/internal/tools"
)

var schemaJSON bool

// schemaCmd prints the columns of one table.
var schemaCmd = &cobra.Command{
	Use:   "schema <table>",
	Short: "Show the columns of a table",
	Long: `The schema command introspects one table of the configured datastore and prints
its columns with type, nullability and default value, ordered by column name.`,
	Args: cobra.ExactArgs(1),
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

		var schema *tools.TableSchema
		err = withSpinner("describing "+args[0], func() error {
			var err error
			schema, err = tools.NewSchemaTool(gw, logger).GetSchema(cmd.Context(), args[0])
			return err
		})
		if err != nil {
			if errors.IsKind(err, errors.ConnectionFailed) {
				host := httperrors.ExtractHostFromURL(target.Endpoint)
				pterm.Println(httperrors.FormatNetworkError(errors.New(errors.ConnectionFailed, logging.Mask(err.Error())), "describing "+args[0], host))
				return errReported
			}
			pterm.Println("❌ " + logging.PresentError("Schema lookup failed", err))
			return errReported
		}

		if schemaJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema)
		}
		return renderSchema(cmd.OutOrStdout(), schema)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "Print the schema as JSON")
}

// renderSchema prints the schema as a table.
func renderSchema(w io.Writer, schema *tools.TableSchema) error {
	if len(schema.Columns) == 0 {
		fmt.Fprintf(w, "Table %s has no defined fields.\n", schema.TableName)
		return nil
	}

	data := pterm.TableData{{"Column", "Type", "Nullable", "Default"}}
	for _, c := range schema.Columns {
		def := ""
		if c.DefaultValue != nil {
			def = *c.DefaultValue
		}
		nullable := "no"
		if c.Nullable {
			nullable = "yes"
		}
		data = append(data, []string{c.Name, c.DataType, nullable, def})
	}

	fmt.Fprintln(w, pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(schema.TableName))
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
