package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/vn-engine/internal/config"
	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/internal/storage"
	"github.com/jwebster45206/vn-engine/pkg/scene"
	"github.com/jwebster45206/vn-engine/pkg/script"
)

func testConfig() *config.Config {
	return &config.Config{
		AutoSkipInterval: 100 * time.Millisecond,
		ContentRating:    "PG13",
		DecisionScript:   "open_door",
		RefuseScene:      "walk_away.json",
	}
}

func testLibrary() *storage.MockStorage {
	lib := storage.NewMockStorage()
	lib.AddScene("house.json", &scene.Scene{
		Name:        "House",
		Script:      "house",
		Backgrounds: []string{"door.png", "hall.png"},
		BGM:         "house_theme",
		Ambience:    []scene.Clip{{Name: "creak", Length: scene.Duration(time.Second)}},
	})
	lib.AddScene("walk_away.json", &scene.Scene{Name: "Walk away", Script: "walk_away", Backgrounds: []string{"street.png"}})
	lib.AddScript("open_door", "The door is ajar.")
	lib.AddScript("walk_away", "You leave.")
	lib.AddScript("house", "Shit, it's dark. # MOANS ON # BACKGROUND\nWhich way?\n* [Left] -> left\n* [Right] -> END\n=== left ===\nA kitchen.")
	return lib
}

func newTestEngine(t *testing.T, rate float64) (*Engine, *storage.MockStorage) {
	t.Helper()
	lib := testLibrary()
	e, err := NewEngine(context.Background(), Deps{
		Config:     testConfig(),
		Library:    lib,
		Logger:     testLogger(),
		RevealRate: rate,
	})
	require.NoError(t, err)
	return e, lib
}

func TestEngine_FullScene(t *testing.T) {
	e, lib := newTestEngine(t, 0)
	ctx := context.Background()

	house, err := lib.GetScene(ctx, "house.json")
	require.NoError(t, err)

	require.NoError(t, e.Controller.StartDecisionPrompt(house))
	assert.Equal(t, "The door is ajar.", e.Widgets.Reveal.Visible())
	e.Controller.Advance()
	require.True(t, e.Widgets.Decision.Visible())

	done := false
	require.NoError(t, e.Controller.AcceptDecision(func() { done = true }))
	assert.Equal(t, "Shoot, it's dark.", e.Widgets.Reveal.Visible(), "content rating applies")
	assert.Equal(t, "hall.png", e.Widgets.SceneImage.Name())
	assert.Equal(t, "house_theme", e.Widgets.Music.Track())
	assert.Equal(t, "creak", e.Widgets.Clips.Current())

	e.Controller.Advance()
	assert.Equal(t, "Which way?", e.Widgets.Reveal.Visible())
	choices := e.Choices()
	require.Len(t, choices, 2)
	assert.Equal(t, "Left", choices[0].Text)

	e.Controller.Advance()
	assert.Equal(t, "Which way?", e.Widgets.Reveal.Visible(), "advance waits on the choice")

	require.NoError(t, e.Choose(0))
	assert.Equal(t, "A kitchen.", e.Widgets.Reveal.Visible())
	assert.Nil(t, e.Choices())

	e.Controller.Advance()
	assert.True(t, done)
	assert.Equal(t, "", e.Widgets.Music.Track())
	assert.False(t, e.Controller.IsSessionActive())
}

func TestEngine_Refuse(t *testing.T) {
	e, lib := newTestEngine(t, 0)
	house, err := lib.GetScene(context.Background(), "house.json")
	require.NoError(t, err)

	require.NoError(t, e.Controller.StartDecisionPrompt(house))
	e.Controller.Advance()
	require.NoError(t, e.Controller.RefuseDecision())
	assert.Equal(t, "You leave.", e.Widgets.Reveal.Visible())
	assert.Equal(t, "street.png", e.Widgets.SceneImage.Name())
}

func TestEngine_ChoicesWaitForReveal(t *testing.T) {
	e, _ := newTestEngine(t, 10)
	e.Controller.Start(dialogue.Script{Name: "pick", Source: "Pick one.\n* [A] -> END\n* [B] -> END"}, nil)

	assert.Nil(t, e.Choices())
	e.Frame(10 * time.Second)
	assert.Len(t, e.Choices(), 2)
}

func TestEngine_AutoSkipRunsOnFrames(t *testing.T) {
	e, _ := newTestEngine(t, 0)
	done := false
	e.Controller.Start(dialogue.Script{Name: "three", Source: "One.\nTwo.\nThree."}, func() { done = true })
	e.Controller.SetAutoSkip(true)

	for i := 0; i < 10 && !done; i++ {
		e.Frame(50 * time.Millisecond)
	}
	assert.True(t, done)
}

func TestEngine_ChooseWithoutStory(t *testing.T) {
	e, _ := newTestEngine(t, 0)
	assert.ErrorIs(t, e.Choose(0), script.ErrNoChoice)
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := NewEngine(context.Background(), Deps{})
	assert.Error(t, err)

	cfg := testConfig()
	cfg.ContentRating = "MA"
	_, err = NewEngine(context.Background(), Deps{Config: cfg, Library: testLibrary(), Logger: testLogger()})
	assert.ErrorContains(t, err, "CONTENT_RATING")
}

func TestNewEngine_MissingRefuseScene(t *testing.T) {
	cfg := testConfig()
	cfg.RefuseScene = "nowhere.json"
	e, err := NewEngine(context.Background(), Deps{Config: cfg, Library: testLibrary(), Logger: testLogger()})
	require.NoError(t, err)
	assert.Error(t, e.Controller.RefuseDecision())
}
