// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"errors"
	"strings"

	apperrors "seedfast/dataorch/internal/errors"

	"github.com/pterm/pterm"
)

// RunErrorType represents the category of a fatal run error
type RunErrorType int

const (
	RunErrorUnknown RunErrorType = iota
	RunErrorNetwork
	RunErrorAuth
	RunErrorTimeout
	RunErrorUnavailable
	RunErrorDecomposition
	RunErrorConfig
)

// ClassifyRunError categorizes an error that aborted a run
func ClassifyRunError(err error) RunErrorType {
	if err == nil {
		return RunErrorUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return RunErrorTimeout
	}
	switch apperrors.KindOf(err) {
	case apperrors.DecompositionFailed:
		return RunErrorDecomposition
	case apperrors.ConfigInvalid:
		return RunErrorConfig
	}

	lower := strings.ToLower(err.Error())

	if strings.Contains(lower, "401") || strings.Contains(lower, "403") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "authentication") {
		return RunErrorAuth
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout") {
		return RunErrorTimeout
	}
	if strings.Contains(lower, "429") || strings.Contains(lower, "503") || strings.Contains(lower, "529") ||
		strings.Contains(lower, "overloaded") || strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "rate limit") {
		return RunErrorUnavailable
	}
	if strings.Contains(lower, "connection reset") || strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") || strings.Contains(lower, "broken pipe") ||
		apperrors.IsKind(err, apperrors.ConnectionFailed) {
		return RunErrorNetwork
	}

	return RunErrorUnknown
}

// FormatRunError formats a fatal run error in a user-friendly way
func FormatRunError(err error) string {
	errType := ClassifyRunError(err)

	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Run Failed"))
	builder.WriteString("\n\n")

	switch errType {
	case RunErrorNetwork:
		builder.WriteString("A network connection failed during the run.\n")
		builder.WriteString("This usually happens when:\n")
		builder.WriteString("  • The database host is unreachable or the endpoint is wrong\n")
		builder.WriteString("  • Your internet connection was disrupted\n")
		builder.WriteString("  • A firewall or proxy closed the connection\n")

	case RunErrorAuth:
		builder.WriteString("Authentication was rejected.\n")
		builder.WriteString("To fix this:\n")
		builder.WriteString("  • Check the API key of the configured provider\n")
		builder.WriteString("  • Check the database username and password\n")

	case RunErrorTimeout:
		builder.WriteString("A request took longer than the configured timeout.\n")
		builder.WriteString("This could be due to:\n")
		builder.WriteString("  • A slow or overloaded completion service\n")
		builder.WriteString("  • A long-running database query\n")

	case RunErrorUnavailable:
		builder.WriteString("The completion service is currently unavailable or rate limited.\n")
		builder.WriteString("Possible reasons:\n")
		builder.WriteString("  • Too many requests in a short time\n")
		builder.WriteString("  • The service is under maintenance\n")

	case RunErrorDecomposition:
		builder.WriteString("The question could not be split into sub-questions.\n")
		builder.WriteString("The model's answer did not match the sub-agent catalog:\n")
		builder.WriteString("  • Every sub-agent needs exactly one non-empty sub-question\n")
		builder.WriteString("  • Rephrasing the question often helps\n")

	case RunErrorConfig:
		builder.WriteString("The configuration is incomplete or invalid.\n")

	default:
		builder.WriteString("The run was interrupted by an unexpected error.\n")
	}

	builder.WriteString("\n")

	switch errType {
	case RunErrorAuth, RunErrorConfig:
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'dataorch config' to review your settings"))
	default:
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please try running 'dataorch ask' again"))
	}

	builder.WriteString("\n")

	if msg := strings.TrimSpace(Mask(err.Error())); msg != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + msg))
	}

	return builder.String()
}
