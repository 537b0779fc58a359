// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package agents holds the three language-model stages of a run: the map agent
// that splits a question into one sub-question per sub-agent, the query agent
// that answers a sub-question with the table_schema and select_query tools, and
// the reduce agent that turns the sub-answers into a recommendation.
package agents

import (
	"github.com/pterm/pterm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"seedfast/dataorch/internal/llm"
	"seedfast/dataorch/internal/logging"
	"seedfast/dataorch/internal/tools"
)

const tracerName = "seedfast/dataorch/agents"

func tracer() trace.Tracer { return otel.Tracer(tracerName) }

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func orDiscard(l *pterm.Logger) *pterm.Logger {
	if l == nil {
		return logging.Discard()
	}
	return l
}

// toolSpecs declares the tools of a set to the completion service.
func toolSpecs(set *tools.Set) []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(set.Tools()))
	for _, t := range set.Tools() {
		specs = append(specs, llm.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return specs
}
