// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package agents

import (
	"context"

	"github.com/pterm/pterm"
	"go.opentelemetry.io/otel/attribute"

	"seedfast/dataorch/internal/catalog"
	"seedfast/dataorch/internal/llm"
)

// MapAgent decomposes a question into one sub-question per sub-agent.
type MapAgent struct {
	client  llm.Client
	catalog *catalog.Catalog
	logger  *pterm.Logger
}

func NewMapAgent(client llm.Client, c *catalog.Catalog, logger *pterm.Logger) *MapAgent {
	return &MapAgent{client: client, catalog: c, logger: orDiscard(logger)}
}

// Decompose asks the model for a decomposition in a single completion. Output
// that does not match the catalog is a DecompositionFailed error; there is no retry.
func (a *MapAgent) Decompose(ctx context.Context, question string) (d catalog.Decomposition, err error) {
	ctx, span := tracer().Start(ctx, "agents.map")
	span.SetAttributes(attribute.Int("catalog.size", len(a.catalog.Agents)))
	defer func() { endSpan(span, err) }()

	resp, err := a.client.Complete(ctx, &llm.Request{
		System:   mapPreamble(a.catalog),
		Messages: []llm.Message{llm.UserMessage(question)},
		JSON:     true,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Decomposition received", a.logger.Args("response", resp.Text))
	return a.catalog.Decode(resp.Text)
}
