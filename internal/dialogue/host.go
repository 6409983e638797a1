package dialogue

import (
	"context"

	"github.com/jwebster45206/vn-engine/pkg/script"
)

// Panel is anything the host can show or hide.
type Panel interface {
	SetVisible(visible bool)
	Visible() bool
}

// Label displays a short string, such as the speaker name.
type Label interface {
	SetText(text string)
}

// Image is a panel that shows one named image at a time.
type Image interface {
	Panel
	SetImage(name string)
}

// Music plays named tracks, such as a scene's BGM.
type Music interface {
	PlayTrack(name string)
	StopTrack(name string)
}

// RevealSurface shows text progressively, typewriter style.
type RevealSurface interface {
	SetText(text string)
	RevealComplete() bool
	ForceComplete()
}

// Widgets are the host UI pieces the controller drives.
type Widgets struct {
	Container  Panel
	NamePanel  Panel
	NameLabel  Label
	SceneImage Image
	Decision   Panel
	Music      Music
	Reveal     RevealSurface
}

func (w Widgets) validate() error {
	switch {
	case w.Container == nil:
		return errMissing("container panel")
	case w.NamePanel == nil:
		return errMissing("name panel")
	case w.NameLabel == nil:
		return errMissing("name label")
	case w.SceneImage == nil:
		return errMissing("scene image")
	case w.Decision == nil:
		return errMissing("decision panel")
	case w.Music == nil:
		return errMissing("music player")
	case w.Reveal == nil:
		return errMissing("reveal surface")
	}
	return nil
}

// Interpreter is a running narrative script.
type Interpreter interface {
	Continue() (script.Line, error)
	CanContinue() bool
	HasPendingChoice() bool
}

// Script is a narrative script asset.
type Script struct {
	Name   string
	Source string
}

// Compiler builds a fresh interpreter over a script.
type Compiler func(s Script) (Interpreter, error)

// CompileScript is the default Compiler, backed by pkg/script.
func CompileScript(s Script) (Interpreter, error) {
	story, err := script.Parse(s.Name, s.Source)
	if err != nil {
		return nil, err
	}
	return story, nil
}

// ScriptSource resolves script names to script assets.
type ScriptSource interface {
	GetScript(ctx context.Context, name string) (Script, error)
}
