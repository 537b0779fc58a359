// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package progress defines the events a run emits while it moves through the
// map, query and reduce stages, the per-agent progress state built from them,
// and a terminal renderer that shows one spinner line per sub-agent.
package progress

// EventType enumerates known run event kinds.
type EventType string

const (
	// EventStage announces that a stage (map, query or reduce) has started.
	EventStage EventType = "stage"
	// EventPlan carries the sub-agents the question was split across.
	EventPlan EventType = "plan"
	// EventAgentStarted marks a query agent as running.
	EventAgentStarted EventType = "agent_started"
	// EventToolCall reports a tool call made by a query agent.
	EventToolCall EventType = "tool_call"
	// EventAgentDone marks a query agent as finished.
	EventAgentDone EventType = "agent_done"
	// EventAgentFailed marks a query agent as failed.
	EventAgentFailed EventType = "agent_failed"
	// EventCompleted is emitted once the final answer is available.
	EventCompleted EventType = "completed"
)

// Stage names.
const (
	StageMap    = "map"
	StageQuery  = "query"
	StageReduce = "reduce"
)

// Event is a generic container for run progress events.
// Only a subset of fields is set depending on Type.
type Event struct {
	Type  EventType `json:"type"`
	RunID string    `json:"run_id,omitempty"`

	// Stage
	Stage string `json:"stage,omitempty"`

	// Plan
	Agents []string `json:"agents,omitempty"`

	// Agent events
	Agent   string `json:"agent,omitempty"`
	Tool    string `json:"tool,omitempty"`
	Turn    int    `json:"turn,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Partial bool   `json:"partial,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Sink receives run events. Implementations must be safe to call from the
// goroutine running the pipeline.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(ev Event) { f(ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans an event out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ev Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(ev)
			}
		}
	})
}
