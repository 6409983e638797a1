package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Advance  key.Binding
	AutoSkip key.Binding
	Copy     key.Binding
	Backlog  key.Binding
	Yes      key.Binding
	No       key.Binding
	Choose   key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Gallery  key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Advance: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter/space", "advance"),
	),
	AutoSkip: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "auto-skip"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy line"),
	),
	Backlog: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "backlog"),
	),
	Yes: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "enter"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "walk away"),
	),
	Choose: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "choose"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "play"),
	),
	Gallery: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "replay"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// playKeys is the help shown while a scene is running.
type playKeys struct {
	decision bool
	choice   bool
}

func (p playKeys) ShortHelp() []key.Binding {
	switch {
	case p.decision:
		return []key.Binding{keys.Yes, keys.No, keys.Quit}
	case p.choice:
		return []key.Binding{keys.Choose, keys.Backlog, keys.Quit}
	default:
		return []key.Binding{keys.Advance, keys.AutoSkip, keys.Copy, keys.Backlog, keys.Quit}
	}
}

func (p playKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{p.ShortHelp()}
}

// pickerKeys is the help shown in the scene picker.
type pickerKeys struct{}

func (pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{keys.Up, keys.Down, keys.Select, keys.Gallery, keys.Quit}
}

func (k pickerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
