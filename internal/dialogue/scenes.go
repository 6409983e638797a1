package dialogue

import (
	"fmt"
	"time"

	"github.com/jwebster45206/vn-engine/internal/ambience"
	"github.com/jwebster45206/vn-engine/pkg/scene"
)

// StartDecisionPrompt binds sc, plays the decision script and shows the
// yes/no affordance once it finishes. The scene itself is entered later via
// AcceptDecision or abandoned via RefuseDecision.
func (c *Controller) StartDecisionPrompt(sc *scene.Scene) error {
	if sc == nil {
		return ErrNoScene
	}
	s, err := c.resolve(c.decisionScript)
	if err != nil {
		return err
	}
	c.bindScene(sc)
	c.Start(s, func() {
		c.w.Decision.SetVisible(true)
	})
	return nil
}

// AcceptDecision enters the scene bound by StartDecisionPrompt.
func (c *Controller) AcceptDecision(onDone func()) error {
	if c.scene == nil {
		return ErrNoScene
	}
	return c.StartFullScene(c.scene, onDone)
}

// RefuseDecision hides the decision affordance and plays the refusal scene.
func (c *Controller) RefuseDecision() error {
	c.w.Decision.SetVisible(false)
	if c.refuseScene == nil {
		return fmt.Errorf("%w: no refusal scene configured", ErrNoScene)
	}
	s, err := c.resolve(c.refuseScene.Script)
	if err != nil {
		return err
	}
	c.bindScene(c.refuseScene)
	c.showFirstBackground()
	c.Start(s, nil)
	return nil
}

// StartFullScene plays sc from its first background with its BGM running for
// the lifetime of the session. onDone runs after the BGM stops.
func (c *Controller) StartFullScene(sc *scene.Scene, onDone func()) error {
	if sc == nil {
		return ErrNoScene
	}
	s, err := c.resolve(sc.Script)
	if err != nil {
		return err
	}

	c.replace()
	c.bindScene(sc)
	if sc.BGM != "" {
		c.w.Music.PlayTrack(sc.BGM)
	}
	c.w.Decision.SetVisible(false)
	c.showFirstBackground()

	c.start(s, func() {
		if sc.BGM != "" {
			c.w.Music.StopTrack(sc.BGM)
		}
		if onDone != nil {
			onDone()
		}
	}, sc.BGM)
	return nil
}

// PlayGalleryScene replays sc outside the normal game flow.
func (c *Controller) PlayGalleryScene(sc *scene.Scene) error {
	return c.StartFullScene(sc, nil)
}

func (c *Controller) resolve(name string) (Script, error) {
	if c.scripts == nil {
		return Script{}, ErrNoScriptSource
	}
	s, err := c.scripts.GetScript(c.ctx, name)
	if err != nil {
		return Script{}, fmt.Errorf("failed to load script %q: %w", name, err)
	}
	return s, nil
}

// bindScene makes sc current. The ambience pool always comes from sc, so a
// scene without clips never plays another scene's.
func (c *Controller) bindScene(sc *scene.Scene) {
	c.scene = sc
	c.bgIndex = 0
	if c.loop == nil {
		return
	}
	clips := make([]ambience.Clip, 0, len(sc.Ambience))
	for _, clip := range sc.Ambience {
		clips = append(clips, ambience.Clip{Name: clip.Name, Length: time.Duration(clip.Length)})
	}
	c.loop.SetPool(ambience.NewPool(clips, c.rng))
}

func (c *Controller) showFirstBackground() {
	img, err := c.scene.Background(0)
	if err != nil {
		c.logger.Error("Scene has no first background", "scene", c.scene.Name, "error", err)
		return
	}
	c.w.SceneImage.SetVisible(true)
	c.w.SceneImage.SetImage(img)
}
