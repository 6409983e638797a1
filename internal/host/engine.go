package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/jwebster45206/vn-engine/internal/ambience"
	"github.com/jwebster45206/vn-engine/internal/config"
	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/internal/schedule"
	"github.com/jwebster45206/vn-engine/internal/storage"
	"github.com/jwebster45206/vn-engine/pkg/script"
	"github.com/jwebster45206/vn-engine/pkg/textfilter"
)

// Deps are the services an Engine is wired to.
type Deps struct {
	Config   *config.Config
	Library  storage.Storage
	Logger   *slog.Logger
	Observer dialogue.Observer
	Tracer   trace.Tracer

	// RevealRate in runes per second; 0 reveals lines instantly.
	RevealRate float64
}

// Engine is a dialogue controller together with the widgets and scheduler
// it drives. Everything runs on the caller's goroutine.
type Engine struct {
	Controller *dialogue.Controller
	Widgets    *Widgets
	Scheduler  *schedule.Scheduler
	Ambience   *ambience.Loop
}

func NewEngine(ctx context.Context, deps Deps) (*Engine, error) {
	if deps.Config == nil || deps.Library == nil || deps.Logger == nil {
		return nil, errors.New("config, library and logger are required")
	}
	cfg := deps.Config

	filter, err := textfilter.ForRating(cfg.ContentRating)
	if err != nil {
		return nil, fmt.Errorf("invalid CONTENT_RATING: %w", err)
	}

	refuse, err := deps.Library.GetScene(ctx, cfg.RefuseScene)
	if err != nil {
		deps.Logger.Warn("Refusal scene unavailable, declining a scene will do nothing", "scene", cfg.RefuseScene, "error", err)
	}

	w := NewWidgets(deps.RevealRate)
	sched := schedule.New(deps.Logger)
	loop := ambience.NewLoop(ambience.NewPool(nil, nil), w.Clips, deps.Logger)

	ctrl, err := dialogue.New(dialogue.Options{
		Widgets:          w.Dialogue(),
		Scheduler:        sched,
		Logger:           deps.Logger,
		Scripts:          deps.Library,
		Ambience:         loop,
		Observer:         deps.Observer,
		Tracer:           deps.Tracer,
		Filter:           filter,
		Context:          ctx,
		AutoSkipInterval: cfg.AutoSkipInterval,
		DecisionScript:   cfg.DecisionScript,
		RefuseScene:      refuse,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{Controller: ctrl, Widgets: w, Scheduler: sched, Ambience: loop}, nil
}

// Frame advances the typewriter and the scheduler by dt.
func (e *Engine) Frame(dt time.Duration) {
	e.Widgets.Reveal.Step(dt)
	e.Scheduler.Tick(dt)
}

// Choices returns the options of a pending choice point, once the line
// that asks is fully revealed.
func (e *Engine) Choices() []script.Choice {
	story, ok := e.Controller.Interpreter().(*script.Story)
	if !ok || !story.HasPendingChoice() || !e.Widgets.Reveal.RevealComplete() {
		return nil
	}
	return story.Choices()
}

// Choose resolves the pending choice point and moves on to the next line.
func (e *Engine) Choose(i int) error {
	story, ok := e.Controller.Interpreter().(*script.Story)
	if !ok {
		return script.ErrNoChoice
	}
	if err := story.Choose(i); err != nil {
		return err
	}
	e.Controller.Advance()
	return nil
}
