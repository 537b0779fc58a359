// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"seedfast/dataorch/internal/catalog"
	"seedfast/dataorch/internal/gateway"
	"seedfast/dataorch/internal/llm"
	"seedfast/dataorch/internal/logging"
	"seedfast/dataorch/internal/orchestrator"
	"seedfast/dataorch/internal/progress"
	"seedfast/dataorch/internal/telemetry"
	"seedfast/dataorch/internal/terminal"
)

var (
	askJSON     bool
	askTrace    string
	askMaxTurns int
	askCatalog  string
)

// askCmd runs the full map -> query -> reduce pipeline for one question.
var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Answer a business question across the configured data domains",
	Long: `The ask command splits the question into one sub-question per sub-agent of the
catalog, lets each sub-agent answer its sub-question by querying its table, and
combines the answers into a single recommendation.

Progress is shown on stderr while the agents run. With --json the full result,
including sub-questions and sub-answers, is printed as JSON on stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))

		cfg, err := loadConfig()
		if err != nil {
			return reportConfigError(err)
		}
		if askCatalog != "" {
			cfg.CatalogPath = askCatalog
		}
		if askMaxTurns > 0 {
			cfg.MaxTurns = askMaxTurns
		}
		logger := newLogger(cfg.LogLevel)

		traceOut, closeTrace, err := openTraceOutput(askTrace)
		if err != nil {
			return err
		}
		defer closeTrace()
		shutdown, err := telemetry.Setup(traceOut, "dataorch", Version)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("Flushing trace spans failed", logger.Args("error", err.Error()))
			}
		}()

		cat, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return reportConfigError(err)
		}
		gw, err := gateway.Open(cfg.DB, gateway.WithLogger(logger), gateway.WithTimeout(cfg.RequestTimeout))
		if err != nil {
			return err
		}
		client, err := llm.New(cfg)
		if err != nil {
			return reportConfigError(err)
		}

		interactive := !askJSON && terminal.IsInteractive()
		var (
			sink     progress.Sink = progress.LogSink(logger)
			renderer *progress.Renderer
		)
		if interactive {
			renderer = progress.NewRenderer(os.Stderr)
			sink = renderer
			printTarget(&cfg.DB)
		}

		// Info lines would tear the live area; the renderer shows the same progress.
		agentLogger := logger
		if interactive && logger.Level == pterm.LogLevelInfo {
			agentLogger = logger.WithLevel(pterm.LogLevelWarn)
		}

		orch := orchestrator.New(client, cat, gw,
			orchestrator.WithMaxTurns(cfg.MaxTurns),
			orchestrator.WithLogger(agentLogger),
			orchestrator.WithSink(sink),
		)

		logger.Debug("Starting run", logger.Args("provider", cfg.Provider, "model", client.Model(), "agents", strings.Join(cat.Names(), ",")))
		res, err := orch.Run(cmd.Context(), question)
		if renderer != nil {
			renderer.Stop()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, logging.FormatRunError(err))
			return errReported
		}

		if askJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full result as JSON")
	askCmd.Flags().StringVar(&askTrace, "trace", "", "Write OpenTelemetry spans to a file (\"-\" or no value for stderr)")
	askCmd.Flags().Lookup("trace").NoOptDefVal = "-"
	askCmd.Flags().IntVar(&askMaxTurns, "max-turns", 0, "Turn budget of every query agent (default from configuration)")
	askCmd.Flags().StringVar(&askCatalog, "catalog", "", "Path to a sub-agent catalog YAML file")
}

// openTraceOutput resolves the --trace destination. An empty value disables tracing.
func openTraceOutput(dest string) (io.Writer, func(), error) {
	switch dest {
	case "":
		return nil, func() {}, nil
	case "-":
		return os.Stderr, func() {}, nil
	}
	f, err := os.Create(dest)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// printResult renders sub-questions, sub-answers and the final answer.
func printResult(w io.Writer, res *orchestrator.Result) {
	titleStyle := pterm.NewStyle(pterm.FgCyan, pterm.Bold)

	for _, sub := range res.SubAnswers {
		title := titleStyle.Sprint(sub.Agent)
		if sub.Partial {
			title += pterm.NewStyle(pterm.FgYellow).Sprint(" (partial)")
		}
		body := pterm.NewStyle(pterm.FgLightCyan).Sprint("Q: ") + sub.Question + "\n\n" + sub.Answer
		fmt.Fprintln(w, pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(body))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Answer")).
		WithPadding(1).
		Sprint(res.Answer))
	fmt.Fprintln(w)
	fmt.Fprintln(w, pterm.NewStyle(pterm.FgGray).Sprintf("run %s · %s", res.RunID, res.Duration.Round(time.Millisecond)))
}
