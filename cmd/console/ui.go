package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/vn-engine/internal/config"
	"github.com/jwebster45206/vn-engine/internal/host"
	"github.com/jwebster45206/vn-engine/internal/services"
	"github.com/jwebster45206/vn-engine/internal/storage"
)

const AppTitle = "VN ENGINE"

// ConsoleUI is the BubbleTea model that runs the player.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	cfg     *config.Config
	engine  *host.Engine
	library storage.Storage
	gallery *services.Gallery
	backlog *backlog
	logger  *slog.Logger
	ctx     context.Context

	width   int
	height  int
	help    help.Model
	logView viewport.Model
	err     error
	status  string

	// Scene picker state
	showScenePicker bool
	loadingScenes   bool
	scenes          []sceneEntry
	selectedScene   int

	// Playback state
	playing     bool
	current     string // file name of the scene being played
	showBacklog bool
	lastFrame   time.Time

	// Quit confirmation state
	showQuitModal bool
}

type sceneEntry struct {
	name     string
	file     string
	unlocked bool
}

type scenesLoadedMsg struct {
	scenes []sceneEntry
	err    error
}

type frameMsg time.Time

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	stageStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("60")).
			Foreground(lipgloss.Color("250")).
			Align(lipgloss.Center, lipgloss.Center)

	dialogueStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2)

	namePanelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("212")).
			Bold(true).
			Padding(0, 1)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

func NewConsoleUI(ctx context.Context, cfg *config.Config, engine *host.Engine, library storage.Storage, gallery *services.Gallery, bl *backlog, logger *slog.Logger) ConsoleUI {
	return ConsoleUI{
		cfg:             cfg,
		engine:          engine,
		library:         library,
		gallery:         gallery,
		backlog:         bl,
		logger:          logger,
		ctx:             ctx,
		help:            help.New(),
		logView:         viewport.New(60, 10),
		showScenePicker: true,
		loadingScenes:   true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.loadScenes(), frameTick(m.cfg.FrameInterval))
}

func frameTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m ConsoleUI) loadScenes() tea.Cmd {
	return func() tea.Msg {
		byName, err := m.library.ListScenes(m.ctx)
		if err != nil {
			return scenesLoadedMsg{err: err}
		}

		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)

		entries := make([]sceneEntry, 0, len(names))
		for _, name := range names {
			file := byName[name]
			if file == m.cfg.RefuseScene {
				continue
			}
			unlocked, err := m.gallery.IsUnlocked(m.ctx, file)
			if err != nil {
				m.logger.Warn("Failed to read gallery state", "scene", file, "error", err)
			}
			entries = append(entries, sceneEntry{name: name, file: file, unlocked: unlocked})
		}
		return scenesLoadedMsg{scenes: entries}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logView.Width = msg.Width - 4
		m.logView.Height = m.stageHeight()
		m.refreshBacklog()
		return m, nil

	case frameMsg:
		return m.updateFrame(time.Time(msg))

	case scenesLoadedMsg:
		m.loadingScenes = false
		m.err = msg.err
		m.scenes = msg.scenes
		if m.selectedScene >= len(m.scenes) {
			m.selectedScene = 0
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.showQuitModal = true
			return m, nil
		}
		if m.showScenePicker {
			return m.updateScenePicker(msg)
		}
		return m.updatePlaying(msg)
	}

	return m, nil
}

// updateFrame drives the typewriter and the scheduler, and returns to the
// picker once the scene is over.
func (m ConsoleUI) updateFrame(now time.Time) (tea.Model, tea.Cmd) {
	dt := m.cfg.FrameInterval
	if !m.lastFrame.IsZero() {
		dt = now.Sub(m.lastFrame)
	}
	m.lastFrame = now
	m.engine.Frame(dt)

	cmds := []tea.Cmd{frameTick(m.cfg.FrameInterval)}
	if m.playing && !m.engine.Controller.IsSessionActive() {
		m.playing = false
		m.showBacklog = false
		m.showScenePicker = true
		m.loadingScenes = true
		m.status = ""
		cmds = append(cmds, m.loadScenes())
	}
	return m, tea.Batch(cmds...)
}

func (m ConsoleUI) updateScenePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loadingScenes || m.err != nil || len(m.scenes) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.selectedScene > 0 {
			m.selectedScene--
		}
	case key.Matches(msg, keys.Down):
		if m.selectedScene < len(m.scenes)-1 {
			m.selectedScene++
		}
	case key.Matches(msg, keys.Select):
		return m.startScene(m.scenes[m.selectedScene], false)
	case key.Matches(msg, keys.Gallery):
		entry := m.scenes[m.selectedScene]
		if !entry.unlocked {
			m.status = "Finish this scene once to unlock its replay."
			return m, nil
		}
		return m.startScene(entry, true)
	}
	return m, nil
}

func (m ConsoleUI) startScene(entry sceneEntry, replay bool) (tea.Model, tea.Cmd) {
	sc, err := m.library.GetScene(m.ctx, entry.file)
	if err == nil {
		if replay {
			err = m.engine.Controller.PlayGalleryScene(sc)
		} else {
			err = m.engine.Controller.StartDecisionPrompt(sc)
		}
	}
	if err != nil {
		m.logger.Error("Failed to start scene", "scene", entry.file, "error", err)
		m.status = errorStyle.Render(fmt.Sprintf("Cannot play %s: %v", entry.name, err))
		return m, nil
	}

	m.logger.Info("Scene started", "scene", entry.file, "replay", replay)
	m.current = entry.file
	m.playing = true
	m.showScenePicker = false
	m.status = ""
	return m, nil
}

func (m ConsoleUI) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.engine.Controller

	if key.Matches(msg, keys.Backlog) {
		m.showBacklog = !m.showBacklog
		m.refreshBacklog()
		return m, nil
	}
	if m.showBacklog {
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	if m.engine.Widgets.Decision.Visible() {
		var err error
		switch {
		case key.Matches(msg, keys.Yes):
			err = ctrl.AcceptDecision(m.sceneFinished(m.current))
		case key.Matches(msg, keys.No):
			err = ctrl.RefuseDecision()
		}
		if err != nil {
			m.logger.Error("Decision failed", "scene", m.current, "error", err)
			m.status = errorStyle.Render(err.Error())
		}
		return m, nil
	}

	if choices := m.engine.Choices(); len(choices) > 0 {
		if key.Matches(msg, keys.Choose) {
			i := int(msg.String()[0] - '1')
			if i < len(choices) {
				if err := m.engine.Choose(i); err != nil {
					m.logger.Error("Choice failed", "choice", i, "error", err)
				}
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Advance):
		ctrl.Advance()
	case key.Matches(msg, keys.AutoSkip):
		ctrl.SetAutoSkip(!ctrl.AutoSkip())
	case key.Matches(msg, keys.Copy):
		if err := clipboard.WriteAll(m.engine.Widgets.Reveal.Full()); err != nil {
			m.logger.Warn("Failed to copy line", "error", err)
			m.status = errorStyle.Render("Clipboard unavailable")
		} else {
			m.status = "Line copied."
		}
	}
	return m, nil
}

// sceneFinished unlocks the scene's replay once it has been played through.
func (m ConsoleUI) sceneFinished(file string) func() {
	return func() {
		if err := m.gallery.Unlock(m.ctx, file); err != nil {
			m.logger.Error("Failed to unlock scene", "scene", file, "error", err)
		}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case frameMsg:
		// Keep the frame loop alive; the scene is paused while the modal is up.
		m.lastFrame = time.Time(msg)
		return m, frameTick(m.cfg.FrameInterval)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
			}
		}
	}

	return m, nil
}

func (m *ConsoleUI) refreshBacklog() {
	width := m.logView.Width - 2
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	for _, e := range m.backlog.snapshot() {
		switch {
		case e.divider:
			content.WriteString(promptStyle.Render(strings.Repeat("─", width)) + "\n")
		case e.speaker != "":
			content.WriteString(speakerStyle.Render(e.speaker+":") + " " + wordwrap.String(e.text, width-len(e.speaker)-2) + "\n")
		default:
			content.WriteString(narratorStyle.Render(wordwrap.String(e.text, width)) + "\n")
		}
	}
	m.logView.SetContent(content.String())
	m.logView.GotoBottom()
}

func (m ConsoleUI) stageHeight() int {
	h := m.height - 12
	if h < 3 {
		h = 3
	}
	return h
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showScenePicker {
		return m.renderScenePicker()
	}
	if m.width == 0 {
		return "\n  Initializing..."
	}
	return m.renderPlaying()
}

func (m ConsoleUI) renderPlaying() string {
	w := m.engine.Widgets
	width := m.width - 2

	header := titleStyle.Render(AppTitle) + promptStyle.Render("  "+m.statusLine())

	var stage string
	if m.showBacklog {
		stage = m.logView.View()
	} else {
		scene := ""
		if w.SceneImage.Visible() {
			scene = "[ " + w.SceneImage.Name() + " ]"
		}
		stage = stageStyle.Width(width - 2).Height(m.stageHeight()).Render(scene)
	}

	var box strings.Builder
	if w.Container.Visible() {
		if w.NamePanel.Visible() {
			box.WriteString(namePanelStyle.Render(w.NameLabel.Text()) + "\n")
		}
		box.WriteString(wordwrap.String(w.Reveal.Visible(), width-8))
		for i, c := range m.engine.Choices() {
			box.WriteString("\n" + choiceStyle.Render(fmt.Sprintf("%d. %s", i+1, c.Text)))
		}
	}
	if w.Decision.Visible() {
		sceneName := ""
		if sc := m.engine.Controller.Scene(); sc != nil {
			sceneName = sc.Name
		}
		box.WriteString(choiceStyle.Render(fmt.Sprintf("Enter %s? (y/n)", sceneName)))
	}
	dialogueBox := dialogueStyle.Width(width - 2).Render(box.String())

	helpView := m.help.View(playKeys{
		decision: w.Decision.Visible(),
		choice:   len(m.engine.Choices()) > 0,
	})

	return lipgloss.JoinVertical(lipgloss.Left, header, stage, dialogueBox, m.status, helpView)
}

func (m ConsoleUI) statusLine() string {
	w := m.engine.Widgets
	var parts []string
	if track := w.Music.Track(); track != "" {
		parts = append(parts, "♪ "+track)
	}
	if clip := w.Clips.Current(); clip != "" && m.engine.Ambience.Active() {
		parts = append(parts, "≈ "+clip)
	}
	if m.engine.Controller.AutoSkip() {
		parts = append(parts, "AUTO")
	}
	return strings.Join(parts, "   ")
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Progress inside a scene is not saved.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderScenePicker() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingScenes:
		content.WriteString(modalTitleStyle.Render("Loading Scenes..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Reading " + m.cfg.DataDir + "..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load scenes: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case len(m.scenes) == 0:
		content.WriteString(modalTitleStyle.Render("No Scenes"))
		content.WriteString("\n\n")
		content.WriteString("Add scene files under " + m.cfg.DataDir + "/scenes.")
	default:
		content.WriteString(modalTitleStyle.Render("Select a Scene"))
		content.WriteString("\n\n")

		for i, s := range m.scenes {
			mark := " "
			if s.unlocked {
				mark = "★"
			}
			line := fmt.Sprintf("%s %s", mark, s.name)
			if i == m.selectedScene {
				content.WriteString(modalSelectedItemStyle.Render("▶" + line))
			} else {
				content.WriteString(modalItemStyle.Render(" " + line))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(m.help.View(pickerKeys{}))
	}
	if m.status != "" {
		content.WriteString("\n\n" + m.status)
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}
