package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Task list filters
	FilterStatus   key.Binding
	FilterPriority key.Binding
	FilterMine     key.Binding
	FilterDue      key.Binding
	ClearFilters   key.Binding

	// Views
	Projects      key.Binding
	Notifications key.Binding
	Settings      key.Binding

	// Actions
	New        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Comment    key.Binding
	Transition key.Binding
	LogTime    key.Binding
	MarkRead   key.Binding
	MarkAll    key.Binding

	// Sort
	CycleSort key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		FilterStatus: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "cycle status"),
		),
		FilterPriority: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "cycle priority"),
		),
		FilterMine: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "my tasks"),
		),
		FilterDue: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "cycle due"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear filters"),
		),
		Projects: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "projects"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "notifications"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Transition: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "next status"),
		),
		LogTime: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "log time"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "mark read"),
		),
		MarkAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "mark all read"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.Help, k.Refresh, k.CycleSort},
		{k.FilterStatus, k.FilterPriority, k.FilterMine, k.FilterDue, k.ClearFilters},
		{k.Projects, k.Notifications, k.Settings, k.New, k.Edit, k.Delete},
		{k.Comment, k.Transition, k.LogTime, k.MarkRead, k.MarkAll},
	}
}
