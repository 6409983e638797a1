package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/internal/host"
	"github.com/jwebster45206/vn-engine/pkg/scene"
)

var ErrTimeBudget = errors.New("scene did not finish within the time budget")

type runOptions struct {
	Frame    time.Duration
	Budget   time.Duration // simulated time allowed before giving up
	Refuse   bool          // answer no at the decision prompt
	Choice   int           // 1-based option picked at every choice point
	Realtime bool
	Width    int
}

// transcript records what a player would have read.
type transcript struct {
	mu    sync.Mutex
	lines []dialogue.Event
	diags []dialogue.Event
}

var _ dialogue.Observer = (*transcript)(nil)

func (t *transcript) Publish(_ context.Context, e dialogue.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch e.Type {
	case dialogue.EventLineShown:
		t.lines = append(t.lines, e)
	case dialogue.EventDiagnostic:
		t.diags = append(t.diags, e)
	}
	return nil
}

func (t *transcript) write(w io.Writer, width int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.lines {
		text := e.Text
		if e.Speaker != "" {
			text = e.Speaker + ": " + text
		}
		if _, err := fmt.Fprintln(w, wordwrap.String(text, width)); err != nil {
			return err
		}
	}
	for _, d := range t.diags {
		if _, err := fmt.Fprintf(w, "! %s %s: %s\n", d.Severity, d.Directive, d.Message); err != nil {
			return err
		}
	}
	return nil
}

// director answers the prompts a player would, on every frame.
type director struct {
	engine   *host.Engine
	opts     runOptions
	done     context.CancelFunc
	finished bool
	err      error
	chosen   []string
}

// fail stops the run with err.
func (d *director) fail(err error) {
	d.err = err
	d.finished = true
	d.done()
}

func (d *director) step() {
	ctrl := d.engine.Controller

	if d.engine.Widgets.Decision.Visible() {
		var err error
		if d.opts.Refuse {
			err = ctrl.RefuseDecision()
		} else {
			err = ctrl.AcceptDecision(nil)
		}
		if err != nil {
			d.engine.Widgets.Decision.SetVisible(false)
			d.fail(fmt.Errorf("failed to answer the decision prompt: %w", err))
		}
		return
	}

	if choices := d.engine.Choices(); len(choices) > 0 {
		i := d.opts.Choice - 1
		if i < 0 || i >= len(choices) {
			i = 0
		}
		if err := d.engine.Choose(i); err != nil {
			d.fail(fmt.Errorf("failed to choose %q: %w", choices[i].Text, err))
			return
		}
		d.chosen = append(d.chosen, choices[i].Text)
		return
	}

	if !ctrl.IsSessionActive() {
		d.finished = true
		d.done()
	}
}

// run plays sc from the decision prompt to the end with auto-skip on and
// writes the transcript to out.
func run(parent context.Context, engine *host.Engine, sc *scene.Scene, tr *transcript, opts runOptions, out io.Writer) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	d := &director{engine: engine, opts: opts, done: cancel}
	if err := engine.Controller.StartDecisionPrompt(sc); err != nil {
		return fmt.Errorf("failed to start %s: %w", sc.FileName, err)
	}
	engine.Scheduler.Every("autoplay", opts.Frame, d.step)
	engine.Scheduler.Every("auto-skip-guard", opts.Frame, func() {
		// Every new session starts with auto-skip off.
		if !engine.Controller.AutoSkip() {
			engine.Controller.SetAutoSkip(true)
		}
	})

	var err error
	if opts.Realtime {
		err = engine.Scheduler.Run(ctx, opts.Frame)
	} else {
		err = simulate(ctx, engine, opts)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if d.err != nil {
		return d.err
	}
	if !d.finished {
		if err := parent.Err(); err != nil {
			return err
		}
		return ErrTimeBudget
	}

	if err := tr.write(out, opts.Width); err != nil {
		return err
	}
	if len(d.chosen) > 0 {
		_, err := fmt.Fprintf(out, "choices: %s\n", strings.Join(d.chosen, " > "))
		return err
	}
	return nil
}

func simulate(ctx context.Context, engine *host.Engine, opts runOptions) error {
	var elapsed time.Duration
	for ctx.Err() == nil {
		if elapsed >= opts.Budget {
			return ErrTimeBudget
		}
		engine.Frame(opts.Frame)
		elapsed += opts.Frame
	}
	return nil
}
