package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding

	// Filters
	Search    key.Binding
	MinTVL    key.Binding
	Chains    key.Binding
	Toggle    key.Binding
	Category  key.Binding
	ToggleEOL key.Binding

	// Sorting
	SortAPY   key.Binding
	SortDaily key.Binding
	SortTVL   key.Binding

	// Actions
	Refresh key.Binding
	Export  key.Binding
	Reset   key.Binding
	Logs    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		MinTVL: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "min tvl"),
		),
		Chains: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "chains"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Category: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "category"),
		),
		ToggleEOL: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "eol"),
		),

		SortAPY: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "sort apy"),
		),
		SortDaily: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "sort daily"),
		),
		SortTVL: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "sort tvl"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reset"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "logs"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.SortTVL, k.Enter, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Search, k.MinTVL, k.Chains, k.Category, k.ToggleEOL},
		{k.SortAPY, k.SortDaily, k.SortTVL},
		{k.Refresh, k.Export, k.Reset, k.Logs, k.Quit},
	}
}

// ContextualHelp returns help for specific contexts
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteVaultList:
		return []key.Binding{
			k.Search, k.MinTVL, k.Chains, k.Category, k.ToggleEOL,
			k.SortAPY, k.SortDaily, k.SortTVL,
			k.Enter, k.Refresh, k.Export, k.Reset, k.Logs, k.Quit,
		}
	case RouteVaultDetail:
		return []key.Binding{k.Back, k.Quit}
	default:
		return k.ShortHelp()
	}
}
