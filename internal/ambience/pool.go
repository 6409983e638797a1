// Package ambience plays a looping bed of randomly chosen clips.
package ambience

import (
	"math/rand/v2"
	"time"
)

// Clip is a playable ambience sound.
type Clip struct {
	Name   string
	Length time.Duration
}

// Pool holds clips most-recently-played first. Each draw picks uniformly
// from the whole pool and moves the pick to the front.
type Pool struct {
	clips []Clip
	rng   *rand.Rand
}

// NewPool copies clips. rng may be nil, in which case a randomly seeded
// source is used.
func NewPool(clips []Clip, rng *rand.Rand) *Pool {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p := &Pool{clips: make([]Clip, len(clips)), rng: rng}
	copy(p.clips, clips)
	return p
}

// Next draws a clip and moves it to the front of the pool.
func (p *Pool) Next() (Clip, bool) {
	if len(p.clips) == 0 {
		return Clip{}, false
	}
	i := p.rng.IntN(len(p.clips))
	c := p.clips[i]
	copy(p.clips[1:i+1], p.clips[:i])
	p.clips[0] = c
	return c, true
}

func (p *Pool) Len() int { return len(p.clips) }

// Clips returns the pool in its current order.
func (p *Pool) Clips() []Clip {
	out := make([]Clip, len(p.clips))
	copy(out, p.clips)
	return out
}
