package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application-level key bindings
type KeyMap struct {
	Quit          key.Binding
	Help          key.Binding
	Search        key.Binding
	ClearQuery    key.Binding
	Filter        key.Binding
	Refresh       key.Binding
	TogglePolling key.Binding
	Open          key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ClearQuery: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		TogglePolling: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle polling"),
		),
		Open: key.NewBinding(
			key.WithKeys("o", "enter"),
			key.WithHelp("o", "open page"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()

// HelpBindings lists the bindings shown in the footer and help screen
func (k KeyMap) HelpBindings() []key.Binding {
	return []key.Binding{k.Search, k.Filter, k.ClearQuery, k.Refresh, k.TogglePolling, k.Open, k.Help, k.Quit}
}
