// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package agents

import (
	"context"
	"strings"

	"github.com/pterm/pterm"
	"go.opentelemetry.io/otel/attribute"

	"seedfast/dataorch/internal/llm"
)

// ReduceAgent synthesizes the final answer from the sub-answers.
type ReduceAgent struct {
	client llm.Client
	logger *pterm.Logger
}

func NewReduceAgent(client llm.Client, logger *pterm.Logger) *ReduceAgent {
	return &ReduceAgent{client: client, logger: orDiscard(logger)}
}

// Synthesize answers question from answers, which are embedded in the preamble
// in the given order.
func (a *ReduceAgent) Synthesize(ctx context.Context, question string, answers []string) (answer string, err error) {
	ctx, span := tracer().Start(ctx, "agents.reduce")
	span.SetAttributes(attribute.Int("answers", len(answers)))
	defer func() { endSpan(span, err) }()

	resp, err := a.client.Complete(ctx, &llm.Request{
		System:   reducePreamble(answers),
		Messages: []llm.Message{llm.UserMessage(question)},
	})
	if err != nil {
		return "", err
	}
	a.logger.Debug("Final answer received", a.logger.Args("length", len(resp.Text)))
	return strings.TrimSpace(resp.Text), nil
}
