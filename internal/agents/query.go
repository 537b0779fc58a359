// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"go.opentelemetry.io/otel/attribute"

	"seedfast/dataorch/internal/catalog"
	"seedfast/dataorch/internal/gateway"
	"seedfast/dataorch/internal/llm"
	"seedfast/dataorch/internal/tools"
)

// DefaultMaxTurns bounds the model turns of one query agent.
const DefaultMaxTurns = 10

// State is a state of the query agent loop.
type State int

const (
	StateAwaitingModel State = iota
	StateDispatchingTool
	StateTerminalAnswer
	StateBudgetExhausted
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting-model"
	case StateDispatchingTool:
		return "dispatching-tool"
	case StateTerminalAnswer:
		return "terminal-answer"
	case StateBudgetExhausted:
		return "budget-exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Answer is the outcome of a query agent.
type Answer struct {
	Text string `json:"text"`
	// Partial is set when the turn budget ran out before a final answer.
	Partial bool `json:"partial"`
	// Turns counts model completions, including a wrap-up completion.
	Turns int `json:"turns"`
}

// Step describes one dispatched tool call.
type Step struct {
	Agent   string
	Turn    int
	Tool    string
	Args    string
	IsError bool
}

// QueryOption configures a query agent.
type QueryOption func(*QueryAgent)

// WithMaxTurns sets the turn budget. Values below one are ignored.
func WithMaxTurns(n int) QueryOption {
	return func(a *QueryAgent) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *pterm.Logger) QueryOption {
	return func(a *QueryAgent) { a.logger = orDiscard(l) }
}

// WithStepHook registers a callback invoked after every tool call.
func WithStepHook(fn func(Step)) QueryOption {
	return func(a *QueryAgent) { a.onStep = fn }
}

// QueryAgent answers one sub-question about one table in a bounded tool loop.
type QueryAgent struct {
	client   llm.Client
	sub      catalog.SubAgent
	dialect  gateway.Dialect
	tools    *tools.Set
	maxTurns int
	logger   *pterm.Logger
	onStep   func(Step)
}

// NewQueryAgent binds a sub-agent to the tool set. The dialect shapes the
// preamble and should be the one of the gateway behind the tools.
func NewQueryAgent(client llm.Client, sub catalog.SubAgent, dialect gateway.Dialect, set *tools.Set, opts ...QueryOption) *QueryAgent {
	a := &QueryAgent{
		client:   client,
		sub:      sub,
		dialect:  dialect,
		tools:    set,
		maxTurns: DefaultMaxTurns,
		logger:   orDiscard(nil),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask runs the loop: awaiting-model -> dispatching-tool -> awaiting-model ...
// until the model answers without tool calls or the turn budget is spent.
// On budget exhaustion a tool-less wrap-up completion produces a partial answer.
// Completion errors abort the agent.
func (a *QueryAgent) Ask(ctx context.Context, question string) (ans *Answer, err error) {
	ctx, span := tracer().Start(ctx, "agents.query")
	span.SetAttributes(
		attribute.String("agent", a.sub.Name),
		attribute.String("table", a.sub.Table),
		attribute.Int("max_turns", a.maxTurns),
	)
	defer func() {
		if ans != nil {
			span.SetAttributes(attribute.Int("turns", ans.Turns), attribute.Bool("partial", ans.Partial))
		}
		endSpan(span, err)
	}()

	system := queryPreamble(a.sub, a.dialect, a.tools)
	specs := toolSpecs(a.tools)
	history := []llm.Message{llm.UserMessage(question)}

	var (
		state    = StateAwaitingModel
		turns    int
		reply    *llm.Response
		lastText string
	)

	for {
		switch state {
		case StateAwaitingModel:
			if turns >= a.maxTurns {
				state = StateBudgetExhausted
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			turns++
			reply, err = a.client.Complete(ctx, &llm.Request{
				System:   system,
				Messages: history,
				Tools:    specs,
			})
			if err != nil {
				return nil, err
			}
			history = append(history, llm.AssistantMessage(reply))
			if text := strings.TrimSpace(reply.Text); text != "" {
				lastText = text
			}

			a.logger.Debug("Model turn",
				a.logger.Args("agent", a.sub.Name, "turn", turns, "tool_calls", len(reply.ToolCalls)))

			if len(reply.ToolCalls) == 0 {
				state = StateTerminalAnswer
			} else {
				state = StateDispatchingTool
			}

		case StateDispatchingTool:
			for _, call := range reply.ToolCalls {
				out, isError := a.tools.Dispatch(ctx, call.Name, call.Arguments)
				history = append(history, llm.ToolResult(call.ID, out, isError))
				if a.onStep != nil {
					a.onStep(Step{
						Agent:   a.sub.Name,
						Turn:    turns,
						Tool:    call.Name,
						Args:    string(call.Arguments),
						IsError: isError,
					})
				}
			}
			state = StateAwaitingModel

		case StateTerminalAnswer:
			text := strings.TrimSpace(reply.Text)
			if text == "" {
				text = lastText
			}
			return &Answer{Text: text, Turns: turns}, nil

		case StateBudgetExhausted:
			return a.wrapUp(ctx, system, specs, history, turns, lastText)
		}
	}
}

// wrapUp asks for a final answer without further tool calls. If that fails the
// last assistant text, or a fixed notice, becomes the partial answer.
func (a *QueryAgent) wrapUp(ctx context.Context, system string, specs []llm.ToolSpec, history []llm.Message, turns int, lastText string) (*Answer, error) {
	a.logger.Warn("Turn budget exhausted, requesting a partial answer",
		a.logger.Args("agent", a.sub.Name, "turns", turns))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msgs := append(history[:len(history):len(history)], llm.UserMessage(wrapUpPrompt))
	resp, err := a.client.Complete(ctx, &llm.Request{
		System:      system,
		Messages:    msgs,
		Tools:       specs,
		NoToolCalls: true,
	})
	if err == nil && strings.TrimSpace(resp.Text) != "" {
		return &Answer{Text: strings.TrimSpace(resp.Text), Partial: true, Turns: turns + 1}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		a.logger.Warn("Wrap-up completion failed", a.logger.Args("agent", a.sub.Name, "error", err.Error()))
	}

	text := lastText
	if text == "" {
		text = fmt.Sprintf("No answer was produced for %s within %d turns.", a.sub.Name, turns)
	}
	return &Answer{Text: text, Partial: true, Turns: turns + 1}, nil
}
