// Package host provides plain in-memory widgets for the dialogue controller.
// Terminal front ends render from them; headless runs only read them back.
package host

import (
	"time"

	"github.com/jwebster45206/vn-engine/internal/ambience"
	"github.com/jwebster45206/vn-engine/internal/dialogue"
)

type Panel struct {
	visible bool
}

func (p *Panel) SetVisible(v bool) { p.visible = v }
func (p *Panel) Visible() bool     { return p.visible }

type Label struct {
	text string
}

func (l *Label) SetText(s string) { l.text = s }
func (l *Label) Text() string     { return l.text }

// Image remembers which background is shown; terminals print its name.
type Image struct {
	Panel
	name string
}

func (i *Image) SetImage(name string) { i.name = name }
func (i *Image) Name() string         { return i.name }

// Music tracks the BGM that is playing.
type Music struct {
	track string
}

func (m *Music) PlayTrack(name string) { m.track = name }

func (m *Music) StopTrack(name string) {
	if m.track == name {
		m.track = ""
	}
}

func (m *Music) Track() string { return m.track }

// ClipPlayer stands in for an audio device: it records the clip that would be
// audible and reports the clip's own length.
type ClipPlayer struct {
	current string
	played  int
}

func (p *ClipPlayer) PlayClip(c ambience.Clip) time.Duration {
	p.current = c.Name
	p.played++
	return c.Length
}

func (p *ClipPlayer) Stop() { p.current = "" }

func (p *ClipPlayer) Current() string { return p.current }
func (p *ClipPlayer) Played() int     { return p.played }

// Widgets is the full widget set for one screen.
type Widgets struct {
	Container  *Panel
	NamePanel  *Panel
	NameLabel  *Label
	SceneImage *Image
	Decision   *Panel
	Music      *Music
	Reveal     *Typewriter
	Clips      *ClipPlayer
}

// NewWidgets builds a widget set whose typewriter reveals rate characters
// per second. rate <= 0 reveals instantly.
func NewWidgets(rate float64) *Widgets {
	return &Widgets{
		Container:  &Panel{},
		NamePanel:  &Panel{},
		NameLabel:  &Label{},
		SceneImage: &Image{},
		Decision:   &Panel{},
		Music:      &Music{},
		Reveal:     NewTypewriter(rate),
		Clips:      &ClipPlayer{},
	}
}

// Dialogue returns the controller's view of w.
func (w *Widgets) Dialogue() dialogue.Widgets {
	return dialogue.Widgets{
		Container:  w.Container,
		NamePanel:  w.NamePanel,
		NameLabel:  w.NameLabel,
		SceneImage: w.SceneImage,
		Decision:   w.Decision,
		Music:      w.Music,
		Reveal:     w.Reveal,
	}
}
