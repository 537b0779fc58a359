// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package progress

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// ProgressState tracks the query agents of the current run.
type ProgressState struct {
	// Stage is the stage currently running
	Stage string
	// Active maps running agents to the number of tool calls made so far
	Active map[string]int
	// Completed contains agents that produced an answer
	Completed map[string]struct{}
	// Partial contains completed agents whose answer is partial
	Partial map[string]struct{}
	// Failed maps agents to failure reasons
	Failed map[string]string
	// Order preserves the plan order, then the order agents were started
	Order []string
	// ToolErrors counts tool calls that returned an error to the model
	ToolErrors map[string]int
	mu         sync.Mutex
}

// NewProgressState creates a new ProgressState with initialized maps.
func NewProgressState() *ProgressState {
	return &ProgressState{
		Active:     make(map[string]int),
		Completed:  make(map[string]struct{}),
		Partial:    make(map[string]struct{}),
		Failed:     make(map[string]string),
		ToolErrors: make(map[string]int),
	}
}

// Apply updates the state from an event.
func (ps *ProgressState) Apply(ev Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	switch ev.Type {
	case EventStage:
		ps.Stage = ev.Stage
	case EventPlan:
		for _, name := range ev.Agents {
			ps.addOrder(name)
		}
	case EventAgentStarted:
		ps.addOrder(ev.Agent)
		ps.Active[ev.Agent] = 0
	case EventToolCall:
		ps.Active[ev.Agent]++
		if ev.IsError {
			ps.ToolErrors[ev.Agent]++
		}
	case EventAgentDone:
		delete(ps.Active, ev.Agent)
		ps.Completed[ev.Agent] = struct{}{}
		if ev.Partial {
			ps.Partial[ev.Agent] = struct{}{}
		}
	case EventAgentFailed:
		delete(ps.Active, ev.Agent)
		ps.Failed[ev.Agent] = ev.Reason
	case EventCompleted:
		ps.Stage = ""
	}
}

func (ps *ProgressState) addOrder(name string) {
	for _, n := range ps.Order {
		if n == name {
			return
		}
	}
	ps.Order = append(ps.Order, name)
}

// CompletedCount returns the number of agents that produced an answer.
func (ps *ProgressState) CompletedCount() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.Completed)
}

// HasFailures returns true if any agent has failed.
func (ps *ProgressState) HasFailures() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.Failed) > 0
}

// Lines renders one line per agent in plan order, preceded by the stage line.
// spin is the spinner frame used for running entries.
func (ps *ProgressState) Lines(spin string) []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	var lines []string
	switch ps.Stage {
	case StageMap:
		lines = append(lines, spin+" splitting question")
	case StageReduce:
		lines = append(lines, spin+" combining answers")
	}

	for _, name := range ps.Order {
		if calls, ok := ps.Active[name]; ok {
			line := spin + " querying " + name
			if calls > 0 {
				line += " (" + plural(calls, "tool call") + ")"
			}
			lines = append(lines, line)
			continue
		}
		if _, ok := ps.Completed[name]; ok {
			if _, partial := ps.Partial[name]; partial {
				lines = append(lines, "~ partial "+name)
			} else {
				lines = append(lines, "✓ answered "+name)
			}
			continue
		}
		if _, ok := ps.Failed[name]; ok {
			lines = append(lines, "✗ failed "+name)
			continue
		}
		lines = append(lines, "· pending "+name)
	}
	return lines
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// RenderState holds the UI rendering state for the progress display.
// It tracks animation frames, display width, and cached rendering output.
type RenderState struct {
	// FrameIdx is the current animation frame index for spinners
	FrameIdx int
	// MaxLineLen tracks the maximum line length to prevent flickering
	MaxLineLen int
	// LastRendered caches the last rendered content to avoid unnecessary updates
	LastRendered string
	mu           sync.Mutex
}

// NewRenderState creates a new RenderState with default values.
func NewRenderState() *RenderState {
	return &RenderState{}
}

// IncrementFrame advances the animation frame index.
func (rs *RenderState) IncrementFrame() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.FrameIdx++
}

// GetFrameIdx returns the current frame index.
func (rs *RenderState) GetFrameIdx() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.FrameIdx
}

// Compose pads every line to the widest line seen so far and joins them.
// It reports false when the result equals the last rendered text.
func (rs *RenderState) Compose(lines []string) (string, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > rs.MaxLineLen {
			rs.MaxLineLen = n
		}
	}
	padded := make([]string, len(lines))
	for i, l := range lines {
		padded[i] = l
		if pad := rs.MaxLineLen - utf8.RuneCountInString(l); pad > 0 {
			padded[i] += strings.Repeat(" ", pad)
		}
	}

	text := strings.Join(padded, "\n")
	if text == rs.LastRendered {
		return text, false
	}
	rs.LastRendered = text
	return text, true
}

// Reset clears the rendering state for a new run.
func (rs *RenderState) Reset() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.MaxLineLen = 0
	rs.LastRendered = ""
}
