// Package dialogue drives a narrative script and presents it: dialogue text,
// speaker name, scene backgrounds and the ambience loop cued from script tags.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jwebster45206/vn-engine/internal/ambience"
	"github.com/jwebster45206/vn-engine/internal/logger"
	"github.com/jwebster45206/vn-engine/internal/schedule"
	"github.com/jwebster45206/vn-engine/pkg/directive"
	"github.com/jwebster45206/vn-engine/pkg/scene"
)

const DefaultAutoSkipInterval = 100 * time.Millisecond

// Options configures a Controller. Widgets, Scheduler and Logger are required.
type Options struct {
	Widgets   Widgets
	Scheduler *schedule.Scheduler
	Logger    *slog.Logger

	Compiler Compiler     // defaults to CompileScript
	Scripts  ScriptSource // required by the scene entry points
	Ambience *ambience.Loop
	Observer Observer
	Tracer   trace.Tracer
	Filter   func(string) string
	Rand     *rand.Rand
	Context  context.Context

	AutoSkipInterval time.Duration
	DecisionScript   string       // script played before the yes/no decision
	RefuseScene      *scene.Scene // scene played when the player declines
}

type session struct {
	id      uuid.UUID
	script  string
	story   Interpreter
	speaker string
	onDone  func()
	bgm     string // track StartFullScene started for this session
	ctx     context.Context
	span    trace.Span
	log     *slog.Logger
	lines   int
}

// Controller owns at most one dialogue session at a time. It is driven from a
// single goroutine: the host's input handling and the scheduler tick.
type Controller struct {
	w        Widgets
	compile  Compiler
	scripts  ScriptSource
	sched    *schedule.Scheduler
	loop     *ambience.Loop
	observer Observer
	tracer   trace.Tracer
	filter   func(string) string
	rng      *rand.Rand
	logger   *slog.Logger
	ctx      context.Context

	autoSkipInterval time.Duration
	autoSkip         *schedule.Handle

	decisionScript string
	refuseScene    *scene.Scene

	scene   *scene.Scene
	bgIndex int
	sess    *session
}

func New(opts Options) (*Controller, error) {
	if err := opts.Widgets.validate(); err != nil {
		return nil, err
	}
	if opts.Scheduler == nil {
		return nil, errMissing("scheduler")
	}
	if opts.Logger == nil {
		return nil, errMissing("logger")
	}

	c := &Controller{
		w:                opts.Widgets,
		compile:          opts.Compiler,
		scripts:          opts.Scripts,
		sched:            opts.Scheduler,
		loop:             opts.Ambience,
		observer:         opts.Observer,
		tracer:           opts.Tracer,
		filter:           opts.Filter,
		rng:              opts.Rand,
		logger:           opts.Logger,
		ctx:              opts.Context,
		autoSkipInterval: opts.AutoSkipInterval,
		decisionScript:   opts.DecisionScript,
		refuseScene:      opts.RefuseScene,
	}
	if c.compile == nil {
		c.compile = CompileScript
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("dialogue")
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	if c.autoSkipInterval <= 0 {
		c.autoSkipInterval = DefaultAutoSkipInterval
	}
	return c, nil
}

// Start begins a session over s. onDone, if set, runs once when the script
// is exhausted and the player advances past the last line. A session that is
// still running is replaced: its onDone never runs, but the BGM track it
// started is stopped.
func (c *Controller) Start(s Script, onDone func()) {
	c.replace()
	c.start(s, onDone, "")
}

// replace drops a running session without firing its callback.
func (c *Controller) replace() {
	sess := c.sess
	if sess == nil {
		return
	}
	c.sess = nil
	sess.log.Warn("Dialogue session replaced before it finished")
	if sess.bgm != "" {
		c.w.Music.StopTrack(sess.bgm)
	}
	sess.span.SetStatus(codes.Error, "replaced")
	sess.span.End()
}

func (c *Controller) start(s Script, onDone func(), bgm string) {

	id := uuid.New()
	ctx, span := c.tracer.Start(c.ctx, "dialogue.session", trace.WithAttributes(
		attribute.String("dialogue.session_id", id.String()),
		attribute.String("dialogue.script", s.Name),
	))
	sess := &session{
		id:     id,
		script: s.Name,
		onDone: onDone,
		bgm:    bgm,
		ctx:    ctx,
		span:   span,
		log:    logger.WithSession(c.logger, id.String()).With("script", s.Name),
	}
	c.sess = sess
	c.SetAutoSkip(false)

	sess.log.Info("Dialogue session started")
	c.publish(ctx, Event{Type: EventSessionStarted, SessionID: id, Script: s.Name})

	story, err := c.compile(s)
	if err != nil {
		c.diagnose(SeverityError, "", fmt.Errorf("failed to compile script %s: %w", s.Name, err))
		c.end()
		return
	}
	sess.story = story
	c.next()
}

// Advance is the single player-facing transition: finish revealing the
// current line, show the next one, or end the session.
func (c *Controller) Advance() {
	if !c.w.Container.Visible() {
		return
	}
	if !c.w.Reveal.RevealComplete() {
		c.w.Reveal.ForceComplete()
		return
	}
	if c.sess == nil || c.sess.story == nil {
		return
	}

	story := c.sess.story
	choice := story.HasPendingChoice()
	switch {
	case story.CanContinue() && !choice:
		c.next()
	case !story.CanContinue() && !choice:
		c.end()
	}
}

// SetAutoSkip starts or stops the timer that calls Advance every interval.
func (c *Controller) SetAutoSkip(enabled bool) {
	if !enabled {
		c.autoSkip.Cancel()
		c.autoSkip = nil
		return
	}
	if c.autoSkip.Active() {
		return
	}
	c.autoSkip = c.sched.Every("auto-skip", c.autoSkipInterval, c.Advance)
}

func (c *Controller) AutoSkip() bool { return c.autoSkip.Active() }

// IsSessionActive reports whether dialogue is on screen or the player is
// being asked to decide.
func (c *Controller) IsSessionActive() bool {
	return c.w.Container.Visible() || c.w.Decision.Visible()
}

// Speaker returns the current speaker, "" when nobody is named.
func (c *Controller) Speaker() string {
	if c.sess == nil {
		return ""
	}
	return c.sess.speaker
}

func (c *Controller) BackgroundIndex() int { return c.bgIndex }

func (c *Controller) Scene() *scene.Scene { return c.scene }

// SessionID returns the running session's id, or uuid.Nil.
func (c *Controller) SessionID() uuid.UUID {
	if c.sess == nil {
		return uuid.Nil
	}
	return c.sess.id
}

// Interpreter returns the running session's interpreter, so a host can
// resolve choice points. It returns nil when no session is running.
func (c *Controller) Interpreter() Interpreter {
	if c.sess == nil {
		return nil
	}
	return c.sess.story
}

func (c *Controller) next() {
	line, err := c.sess.story.Continue()
	if err != nil {
		c.diagnose(SeverityError, "", fmt.Errorf("failed to continue script %s: %w", c.sess.script, err))
		c.end()
		return
	}
	c.displayLine(line.Text, line.Tags)
}

func (c *Controller) displayLine(text string, tags []string) {
	c.w.Container.SetVisible(true)
	c.w.NamePanel.SetVisible(false)

	for _, d := range directive.ParseAll(tags) {
		c.apply(d)
	}

	if c.filter != nil {
		text = c.filter(text)
	}
	c.w.Reveal.SetText(text)

	sess := c.sess
	if sess.speaker == "" {
		c.w.NamePanel.SetVisible(false)
	} else {
		c.w.NamePanel.SetVisible(true)
		c.w.NameLabel.SetText(sess.speaker)
	}

	sess.lines++
	sess.span.AddEvent("dialogue.line", trace.WithAttributes(
		attribute.Int("dialogue.line", sess.lines),
		attribute.String("dialogue.speaker", sess.speaker),
	))
	c.publish(sess.ctx, Event{
		Type:      EventLineShown,
		SessionID: sess.id,
		Script:    sess.script,
		Speaker:   sess.speaker,
		Text:      text,
		Line:      sess.lines,
	})
}

func (c *Controller) apply(d directive.Directive) {
	switch d.Kind {
	case directive.Speaker:
		c.sess.speaker = d.Speaker()

	case directive.Background:
		c.nextBackground(d)

	case directive.Ambience:
		on, err := d.Ambience()
		if err != nil {
			c.diagnose(SeverityError, d.Raw, err)
			return
		}
		if c.loop == nil {
			c.diagnose(SeverityError, d.Raw, ErrNoAmbience)
			return
		}
		if !on {
			c.loop.Stop()
			return
		}
		if c.loop.Active() {
			c.diagnose(SeverityWarning, d.Raw, ErrAmbienceActive)
			return
		}
		if !c.loop.Start(c.sched) {
			c.diagnose(SeverityError, d.Raw, ErrAmbienceSilent)
		}

	default:
		c.diagnose(SeverityError, d.Raw, fmt.Errorf("%w: %q", ErrUnknownDirective, d.Key))
	}
}

// nextBackground moves to the next image of the bound scene. An index past
// the end is reported and leaves the current image in place.
func (c *Controller) nextBackground(d directive.Directive) {
	if c.scene == nil {
		c.diagnose(SeverityError, d.Raw, ErrNoScene)
		return
	}
	img, err := c.scene.Background(c.bgIndex + 1)
	if err != nil {
		c.diagnose(SeverityError, d.Raw, err)
		return
	}
	c.bgIndex++
	c.w.SceneImage.SetImage(img)
}

// end tears the session down. Session state is cleared before onDone runs,
// so onDone may start another session.
func (c *Controller) end() {
	sess := c.sess
	if sess == nil {
		return
	}

	if c.loop != nil {
		c.loop.Stop()
	}
	c.w.Container.SetVisible(false)
	c.w.SceneImage.SetVisible(false)
	c.sess = nil

	sess.log.Info("Dialogue session ended", "lines", sess.lines)
	sess.span.SetAttributes(attribute.Int("dialogue.lines", sess.lines))
	c.publish(sess.ctx, Event{Type: EventSessionEnded, SessionID: sess.id, Script: sess.script, Line: sess.lines})
	sess.span.End()

	if sess.onDone != nil {
		sess.onDone()
	}
}

func (c *Controller) diagnose(sev Severity, raw string, err error) {
	sess := c.sess
	log := c.logger
	if sess != nil {
		log = sess.log
	}

	if sev == SeverityWarning {
		log.Warn("Dialogue directive ignored", "directive", raw, "error", err)
	} else {
		log.Error("Dialogue authoring error", "directive", raw, "error", err)
	}
	if sess == nil {
		return
	}

	sess.span.AddEvent("dialogue.diagnostic", trace.WithAttributes(
		attribute.String("dialogue.severity", string(sev)),
		attribute.String("dialogue.directive", raw),
		attribute.String("dialogue.error", err.Error()),
	))
	c.publish(sess.ctx, Event{
		Type:      EventDiagnostic,
		SessionID: sess.id,
		Script:    sess.script,
		Directive: raw,
		Severity:  sev,
		Message:   err.Error(),
	})
}

func (c *Controller) publish(ctx context.Context, e Event) {
	if c.observer == nil {
		return
	}
	if err := c.observer.Publish(ctx, e); err != nil {
		c.logger.Warn("Failed to publish dialogue event", "type", e.Type, "error", err)
	}
}
