package ambience

import (
	"log/slog"
	"time"

	"github.com/jwebster45206/vn-engine/internal/schedule"
)

// Player is the host's audio output for ambience clips.
type Player interface {
	// PlayClip starts c and returns how long it will play.
	PlayClip(c Clip) time.Duration
	Stop()
}

// Loop plays clips from a pool back to back while it is active.
type Loop struct {
	pool   *Pool
	player Player
	logger *slog.Logger

	active     bool
	generation uint64
	played     int
}

func NewLoop(pool *Pool, player Player, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{pool: pool, player: player, logger: logger}
}

func (l *Loop) Active() bool { return l.active }

// Played returns the number of clips started since the loop was created.
func (l *Loop) Played() int { return l.played }

// SetPool swaps the clip pool. A running loop draws from the new pool on its
// next iteration.
func (l *Loop) SetPool(p *Pool) { l.pool = p }

// Start plays the first clip immediately and keeps playing until Stop. It
// returns false, doing nothing, if the loop is already active, and false if
// there was nothing to play.
func (l *Loop) Start(s *schedule.Scheduler) bool {
	if l.active {
		return false
	}
	l.active = true
	l.generation++
	gen := l.generation

	delay, again := l.step(gen)
	if again {
		s.After("ambience", delay, func() (time.Duration, bool) {
			return l.step(gen)
		})
	}
	return l.active
}

// Stop clears the active flag and silences the player. A pending iteration
// sees the cleared flag when it next runs and exits.
func (l *Loop) Stop() {
	l.active = false
	if l.player != nil {
		l.player.Stop()
	}
}

func (l *Loop) step(gen uint64) (time.Duration, bool) {
	if !l.active || gen != l.generation {
		return 0, false
	}
	if l.pool == nil || l.player == nil {
		l.logger.Warn("Ambience loop has nothing to play")
		l.active = false
		return 0, false
	}
	clip, ok := l.pool.Next()
	if !ok {
		l.logger.Warn("Ambience pool is empty")
		l.active = false
		return 0, false
	}
	l.played++
	d := l.player.PlayClip(clip)
	l.logger.Debug("Ambience clip started", "clip", clip.Name, "length", d)
	return d, true
}
