// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package orchestrator wires the stages of a run: the map agent splits the
// question, one query agent per sub-agent answers its sub-question in catalog
// order, and the reduce agent combines the sub-answers. Query agents run one
// after another and each owns its conversation; only the catalog and the
// gateway are shared, and neither is mutated during a run.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"seedfast/dataorch/internal/agents"
	"seedfast/dataorch/internal/catalog"
	"seedfast/dataorch/internal/errors"
	"seedfast/dataorch/internal/gateway"
	"seedfast/dataorch/internal/llm"
	"seedfast/dataorch/internal/logging"
	"seedfast/dataorch/internal/progress"
	"seedfast/dataorch/internal/tools"
)

const partialNote = "(This answer is partial: the agent ran out of turns before finishing.)"

// SubAnswer is the outcome of one query agent.
type SubAnswer struct {
	Agent    string `json:"agent"`
	Table    string `json:"table"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Partial  bool   `json:"partial"`
	Turns    int    `json:"turns"`
}

// Result is the outcome of a run.
type Result struct {
	RunID        string                `json:"run_id"`
	Question     string                `json:"question"`
	SubQuestions catalog.Decomposition `json:"sub_questions"`
	SubAnswers   []SubAnswer           `json:"sub_answers"`
	Answer       string                `json:"answer"`
	Duration     time.Duration         `json:"duration_ns"`
}

// Option configures an orchestrator.
type Option func(*Orchestrator)

// WithMaxTurns sets the turn budget of every query agent.
func WithMaxTurns(n int) Option {
	return func(o *Orchestrator) { o.maxTurns = n }
}

// WithLogger sets the diagnostics logger shared by every stage.
func WithLogger(l *pterm.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSink sets the receiver of progress events.
func WithSink(s progress.Sink) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sink = s
		}
	}
}

// Orchestrator runs map, query and reduce for one question at a time.
type Orchestrator struct {
	client   llm.Client
	catalog  *catalog.Catalog
	gateway  gateway.Gateway
	maxTurns int
	logger   *pterm.Logger
	sink     progress.Sink
	newRunID func() string
}

func New(client llm.Client, c *catalog.Catalog, gw gateway.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		catalog:  c,
		gateway:  gw,
		maxTurns: agents.DefaultMaxTurns,
		logger:   logging.Discard(),
		sink:     progress.Discard,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run answers question. A decomposition that does not match the catalog, a
// failed completion or a canceled context aborts the run.
func (o *Orchestrator) Run(ctx context.Context, question string) (res *Result, err error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New(errors.InvalidInput, "Question cannot be empty")
	}

	start := time.Now()
	runID := o.newRunID()
	ctx, span := otel.Tracer("seedfast/dataorch/orchestrator").Start(ctx, "orchestrator.run")
	span.SetAttributes(attribute.String("run_id", runID), attribute.Int("agents", len(o.catalog.Agents)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger := o.logger
	logger.Debug("Run started", logger.Args("run_id", runID))

	// Map
	o.emit(progress.Event{Type: progress.EventStage, RunID: runID, Stage: progress.StageMap})
	decomposition, err := agents.NewMapAgent(o.client, o.catalog, logger).Decompose(ctx, question)
	if err != nil {
		return nil, err
	}
	o.emit(progress.Event{Type: progress.EventPlan, RunID: runID, Agents: o.catalog.Names()})

	// Query, strictly in catalog order
	o.emit(progress.Event{Type: progress.EventStage, RunID: runID, Stage: progress.StageQuery})
	set := tools.NewSet(
		tools.NewSchemaTool(o.gateway, logger),
		tools.NewSelectTool(o.gateway, logger),
	)
	dialect := o.gateway.Dialect()

	subAnswers := make([]SubAnswer, 0, len(o.catalog.Agents))
	for _, sub := range o.catalog.Agents {
		subQuestion := decomposition[sub.Name]
		o.emit(progress.Event{Type: progress.EventAgentStarted, RunID: runID, Agent: sub.Name})

		agent := agents.NewQueryAgent(o.client, sub, dialect, set,
			agents.WithMaxTurns(o.maxTurns),
			agents.WithLogger(logger),
			agents.WithStepHook(func(s agents.Step) {
				o.emit(progress.Event{
					Type:    progress.EventToolCall,
					RunID:   runID,
					Agent:   s.Agent,
					Tool:    s.Tool,
					Turn:    s.Turn,
					IsError: s.IsError,
				})
			}),
		)

		ans, err := agent.Ask(ctx, subQuestion)
		if err != nil {
			o.emit(progress.Event{Type: progress.EventAgentFailed, RunID: runID, Agent: sub.Name, Reason: logging.Mask(err.Error())})
			return nil, fmt.Errorf("query agent %s: %w", sub.Name, err)
		}

		o.emit(progress.Event{Type: progress.EventAgentDone, RunID: runID, Agent: sub.Name, Partial: ans.Partial})
		subAnswers = append(subAnswers, SubAnswer{
			Agent:    sub.Name,
			Table:    sub.Table,
			Question: subQuestion,
			Answer:   ans.Text,
			Partial:  ans.Partial,
			Turns:    ans.Turns,
		})
	}

	// Reduce
	o.emit(progress.Event{Type: progress.EventStage, RunID: runID, Stage: progress.StageReduce})
	answer, err := agents.NewReduceAgent(o.client, logger).Synthesize(ctx, question, reduceInput(subAnswers))
	if err != nil {
		return nil, err
	}

	res = &Result{
		RunID:        runID,
		Question:     question,
		SubQuestions: decomposition,
		SubAnswers:   subAnswers,
		Answer:       answer,
		Duration:     time.Since(start),
	}
	o.emit(progress.Event{Type: progress.EventCompleted, RunID: runID})
	logger.Debug("Run completed", logger.Args("run_id", runID, "duration", res.Duration.String()))
	return res, nil
}

// reduceInput returns the sub-answer texts in order; partial answers carry a note.
func reduceInput(subAnswers []SubAnswer) []string {
	out := make([]string, len(subAnswers))
	for i, s := range subAnswers {
		out[i] = s.Answer
		if s.Partial {
			out[i] += "\n" + partialNote
		}
	}
	return out
}

func (o *Orchestrator) emit(ev progress.Event) {
	o.sink.Emit(ev)
}
