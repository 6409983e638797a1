package host

import "time"

// Typewriter reveals a line a few characters per frame.
type Typewriter struct {
	rate  float64 // runes per second
	full  []rune
	shown float64
}

func NewTypewriter(rate float64) *Typewriter {
	return &Typewriter{rate: rate}
}

// SetText starts revealing s from the beginning.
func (t *Typewriter) SetText(s string) {
	t.full = []rune(s)
	t.shown = 0
	if t.rate <= 0 {
		t.ForceComplete()
	}
}

func (t *Typewriter) RevealComplete() bool {
	return int(t.shown) >= len(t.full)
}

func (t *Typewriter) ForceComplete() {
	t.shown = float64(len(t.full))
}

// Step reveals rate*dt more characters.
func (t *Typewriter) Step(dt time.Duration) {
	if t.RevealComplete() {
		return
	}
	t.shown += t.rate * dt.Seconds()
	if n := float64(len(t.full)); t.shown > n {
		t.shown = n
	}
}

// Visible returns the revealed prefix.
func (t *Typewriter) Visible() string {
	return string(t.full[:int(t.shown)])
}

// Full returns the whole current line.
func (t *Typewriter) Full() string {
	return string(t.full)
}
