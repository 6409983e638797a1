package ambience

import (
	"log/slog"
	"math/rand/v2"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/vn-engine/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	played []string
	stops  int
}

func (f *fakePlayer) PlayClip(c Clip) time.Duration {
	f.played = append(f.played, c.Name)
	return c.Length
}

func (f *fakePlayer) Stop() { f.stops++ }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func clips(names ...string) []Clip {
	out := make([]Clip, len(names))
	for i, n := range names {
		out[i] = Clip{Name: n, Length: time.Second}
	}
	return out
}

func TestPool_NextMovesPickToFront(t *testing.T) {
	p := NewPool(clips("A", "B", "C"), rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 20; i++ {
		c, ok := p.Next()
		require.True(t, ok)
		assert.Equal(t, c, p.Clips()[0])
		assert.Equal(t, 3, p.Len())
	}
}

func TestPool_PreservesMembership(t *testing.T) {
	p := NewPool(clips("A", "B", "C", "D"), rand.New(rand.NewPCG(7, 7)))
	for i := 0; i < 50; i++ {
		p.Next()
	}
	names := map[string]bool{}
	for _, c := range p.Clips() {
		names[c.Name] = true
	}
	assert.Len(t, names, 4)
}

// Draws are random, so this checks the expected distribution rather than an
// exact sequence: with enough draws every clip should come up.
func TestPool_EveryClipEventuallyPlays(t *testing.T) {
	p := NewPool(clips("A", "B", "C"), rand.New(rand.NewPCG(42, 99)))
	counts := map[string]int{}
	const draws = 3000
	for i := 0; i < draws; i++ {
		c, _ := p.Next()
		counts[c.Name]++
	}
	for _, name := range []string{"A", "B", "C"} {
		assert.InDelta(t, draws/3, counts[name], draws/10, "clip %s drawn %d times", name, counts[name])
	}
}

func TestPool_SingleClipRepeats(t *testing.T) {
	p := NewPool(clips("only"), nil)
	a, _ := p.Next()
	b, _ := p.Next()
	assert.Equal(t, a, b)
}

func TestPool_Empty(t *testing.T) {
	p := NewPool(nil, nil)
	_, ok := p.Next()
	assert.False(t, ok)
}

func TestPool_DoesNotAliasInput(t *testing.T) {
	in := clips("A", "B")
	p := NewPool(in, rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 10; i++ {
		p.Next()
	}
	assert.Equal(t, "A", in[0].Name)
	assert.Equal(t, "B", in[1].Name)
}

func TestLoop_StartPlaysImmediatelyAndRepeats(t *testing.T) {
	s := schedule.New(testLogger())
	player := &fakePlayer{}
	l := NewLoop(NewPool(clips("A", "B", "C"), rand.New(rand.NewPCG(1, 1))), player, testLogger())

	assert.True(t, l.Start(s))
	assert.True(t, l.Active())
	assert.Len(t, player.played, 1)

	s.Tick(500 * time.Millisecond)
	assert.Len(t, player.played, 1)
	s.Tick(500 * time.Millisecond)
	assert.Len(t, player.played, 2)
	s.Tick(time.Second)
	assert.Len(t, player.played, 3)
}

func TestLoop_SecondStartIsNoop(t *testing.T) {
	s := schedule.New(testLogger())
	player := &fakePlayer{}
	l := NewLoop(NewPool(clips("A", "B"), nil), player, testLogger())

	require.True(t, l.Start(s))
	assert.False(t, l.Start(s))
	assert.Len(t, player.played, 1)
	assert.Equal(t, 1, s.Len())
}

func TestLoop_StopEndsLoop(t *testing.T) {
	s := schedule.New(testLogger())
	player := &fakePlayer{}
	l := NewLoop(NewPool(clips("A", "B"), nil), player, testLogger())

	l.Start(s)
	l.Stop()
	assert.False(t, l.Active())
	assert.Equal(t, 1, player.stops)

	s.Tick(time.Second)
	assert.Len(t, player.played, 1)
	assert.Equal(t, 0, s.Len())
}

func TestLoop_RestartBeforeStaleIterationKeepsOneLoop(t *testing.T) {
	s := schedule.New(testLogger())
	player := &fakePlayer{}
	l := NewLoop(NewPool(clips("A", "B", "C"), nil), player, testLogger())

	l.Start(s)
	l.Stop()
	l.Start(s)
	assert.Len(t, player.played, 2)

	// Both the stale and the new iteration come due; only the new one plays.
	s.Tick(time.Second)
	assert.Len(t, player.played, 3)
	assert.Equal(t, 1, s.Len())
}

func TestLoop_EmptyPoolDeactivates(t *testing.T) {
	s := schedule.New(testLogger())
	player := &fakePlayer{}
	l := NewLoop(NewPool(nil, nil), player, testLogger())

	assert.False(t, l.Start(s))
	assert.False(t, l.Active())
	assert.Empty(t, player.played)
	assert.Equal(t, 0, s.Len())

	l.SetPool(NewPool(clips("A"), nil))
	assert.True(t, l.Start(s), "an empty start leaves the loop free to start again")
	assert.Len(t, player.played, 1)
}

func TestLoop_NoPlayerDeactivates(t *testing.T) {
	s := schedule.New(testLogger())
	l := NewLoop(NewPool(clips("A"), nil), nil, testLogger())

	assert.False(t, l.Start(s))
	assert.False(t, l.Active())
}
