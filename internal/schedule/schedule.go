// Package schedule provides a cooperative, frame-driven task scheduler.
//
// Nothing here runs on its own goroutine: the host calls Tick once per frame
// (or uses Run) and every due task runs on the caller's goroutine.
package schedule

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Task is invoked when it comes due. It returns the delay before it wants to
// run again, and whether it wants to run again at all.
type Task func() (delay time.Duration, again bool)

type entry struct {
	name      string
	due       time.Duration
	seq       uint64
	task      Task
	cancelled bool
	finished  bool
}

// Handle refers to a scheduled task.
type Handle struct {
	e *entry
}

// Cancel stops the task. It is safe to call more than once and from inside
// a running task.
func (h *Handle) Cancel() {
	if h == nil || h.e == nil {
		return
	}
	h.e.cancelled = true
}

// Active reports whether the task is still scheduled to run.
func (h *Handle) Active() bool {
	return h != nil && h.e != nil && !h.e.cancelled && !h.e.finished
}

// Scheduler keeps a virtual clock that only moves when Tick is called.
type Scheduler struct {
	now     time.Duration
	seq     uint64
	entries []*entry
	logger  *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger}
}

// Now returns the time elapsed on the scheduler's clock.
func (s *Scheduler) Now() time.Duration { return s.now }

// After runs task once delay has elapsed. Tasks scheduled while a tick is in
// progress run on a later tick even when delay is zero.
func (s *Scheduler) After(name string, delay time.Duration, task Task) *Handle {
	s.seq++
	e := &entry{name: name, due: s.now + delay, seq: s.seq, task: task}
	s.entries = append(s.entries, e)
	s.logger.Debug("Task scheduled", "task", name, "delay", delay)
	return &Handle{e: e}
}

// Every runs fn each time interval elapses until the handle is cancelled.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) *Handle {
	return s.After(name, interval, func() (time.Duration, bool) {
		fn()
		return interval, true
	})
}

// Len returns the number of tasks still scheduled.
func (s *Scheduler) Len() int {
	n := 0
	for _, e := range s.entries {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// Tick advances the clock by dt and runs every task that has come due, each
// at most once, in due order.
func (s *Scheduler) Tick(dt time.Duration) {
	s.now += dt

	var due, pending []*entry
	for _, e := range s.entries {
		switch {
		case e.cancelled:
		case e.due <= s.now:
			due = append(due, e)
		default:
			pending = append(pending, e)
		}
	}
	s.entries = pending

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	for _, e := range due {
		if e.cancelled {
			continue
		}
		delay, again := e.task()
		if !again || e.cancelled {
			e.finished = true
			continue
		}
		e.due = s.now + delay
		s.entries = append(s.entries, e)
	}
}

// Run ticks the scheduler with wall-clock deltas every frame until ctx ends.
func (s *Scheduler) Run(ctx context.Context, frame time.Duration) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(now.Sub(last))
			last = now
		}
	}
}
