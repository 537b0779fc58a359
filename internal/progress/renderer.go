// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package progress

import (
	"io"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// Frames are braille spinner frames similar to the docker CLI.
var Frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Renderer shows run progress as a live area with docker-compose-like lines.
// The area is removed when the run completes, so only the final output stays.
type Renderer struct {
	state    *ProgressState
	render   *RenderState
	writer   io.Writer
	interval time.Duration

	mu   sync.Mutex
	area *pterm.AreaPrinter
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewRenderer creates a renderer that draws on w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		state:    NewProgressState(),
		render:   NewRenderState(),
		writer:   w,
		interval: 120 * time.Millisecond,
	}
}

// State exposes the progress state built from the rendered events.
func (r *Renderer) State() *ProgressState { return r.state }

// Emit applies an event and redraws. EventCompleted stops the area.
func (r *Renderer) Emit(ev Event) {
	r.state.Apply(ev)
	if ev.Type == EventCompleted {
		r.Stop()
		return
	}
	r.start()
	r.update()
}

func (r *Renderer) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.area != nil {
		return
	}

	cursor.Hide()
	area := pterm.DefaultArea.WithRemoveWhenDone(true)
	area.SetWriter(r.writer)
	r.area, _ = area.Start()
	r.stop = make(chan struct{})

	r.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer r.wg.Done()
		t := time.NewTicker(r.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				r.render.IncrementFrame()
				r.update()
			case <-stop:
				return
			}
		}
	}(r.stop)
}

func (r *Renderer) update() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.area == nil {
		return
	}
	spin := Frames[r.render.GetFrameIdx()%len(Frames)]
	if text, changed := r.render.Compose(r.state.Lines(spin)); changed {
		r.area.Update(text)
	}
}

// Stop removes the area and restores the cursor. It is safe to call twice.
func (r *Renderer) Stop() {
	r.mu.Lock()
	if r.area == nil {
		r.mu.Unlock()
		return
	}
	close(r.stop)
	r.mu.Unlock()
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.area.Stop()
	r.area = nil
	r.render.Reset()
	cursor.Show()
}

// LogSink reports events as log lines, for output that is not a terminal.
func LogSink(logger *pterm.Logger) Sink {
	return SinkFunc(func(ev Event) {
		switch ev.Type {
		case EventStage:
			logger.Info("Stage started", logger.Args("stage", ev.Stage))
		case EventPlan:
			logger.Info("Question split", logger.Args("agents", ev.Agents))
		case EventAgentStarted:
			logger.Info("Querying", logger.Args("agent", ev.Agent))
		case EventToolCall:
			logger.Debug("Tool call", logger.Args("agent", ev.Agent, "tool", ev.Tool, "turn", ev.Turn, "is_error", ev.IsError))
		case EventAgentDone:
			logger.Info("Answered", logger.Args("agent", ev.Agent, "partial", ev.Partial))
		case EventAgentFailed:
			logger.Error("Agent failed", logger.Args("agent", ev.Agent, "reason", ev.Reason))
		case EventCompleted:
			logger.Info("Run completed", logger.Args("run_id", ev.RunID))
		}
	})
}
