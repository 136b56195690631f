package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the play-screen key bindings
type KeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Place   key.Binding
	Unplace key.Binding
	Submit  key.Binding
	Discard key.Binding
	Switch  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous card"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next card"),
		),
		Place: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "place card"),
		),
		Unplace: key.NewBinding(
			key.WithKeys("backspace", "u"),
			key.WithHelp("bksp/u", "take back"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "submit"),
		),
		Discard: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "discard"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch player"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
