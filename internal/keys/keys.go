// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// BrowseKeyMap defines the keybindings for browse mode.
type BrowseKeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Search
	FocusSearch key.Binding
	Execute     key.Binding
	Blur        key.Binding
	HistPrev    key.Binding
	HistNext    key.Binding

	// Actions
	Inspect key.Binding
	Enrich  key.Binding
	Refresh key.Binding
	Submit  key.Binding
	Yank    key.Binding

	// General
	Help key.Binding
	Logs key.Binding
	Quit key.Binding
}

// DefaultBrowseKeyMap returns the default browse mode keybindings.
func DefaultBrowseKeyMap() BrowseKeyMap {
	return BrowseKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),

		FocusSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "focus search"),
		),
		Execute: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run search"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "blur input"),
		),
		HistPrev: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "older search"),
		),
		HistNext: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "newer search"),
		),

		Inspect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "inspect artifact"),
		),
		Enrich: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "fetch rating/cost"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh catalog"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "submit artifact"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy artifact ID"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "toggle logs"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k BrowseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusSearch, k.Inspect, k.Enrich, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k BrowseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},                                // Navigation
		{k.FocusSearch, k.Execute, k.Blur, k.HistPrev, k.HistNext}, // Search
		{k.Inspect, k.Enrich, k.Refresh, k.Submit, k.Yank},         // Actions
		{k.Help, k.Logs, k.Quit},                                   // General
	}
}

// InspectKeyMap defines the keybindings for inspect mode.
type InspectKeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding
	Back key.Binding

	// Actions
	Copy    key.Binding
	Update  key.Binding
	Delete  key.Binding
	Refresh key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// DefaultInspectKeyMap returns the default inspect mode keybindings.
func DefaultInspectKeyMap() InspectKeyMap {
	return InspectKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to catalog"),
		),

		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy download URL"),
		),
		Update: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "update artifact"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "delete artifact"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload artifact"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k InspectKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Update, k.Delete, k.Back, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k InspectKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back},               // Navigation
		{k.Copy, k.Update, k.Delete, k.Refresh}, // Actions
		{k.Help, k.Quit},                        // General
	}
}
