package ui

import "github.com/charmbracelet/bubbles/key"

// Key bindings of the calendar surface. Help descriptions are i18n message IDs.
var keys = struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Month     key.Binding
	Week      key.Binding
	Day       key.Binding
	Prev      key.Binding
	Next      key.Binding
	Today     key.Binding
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	ScrollUp  key.Binding
	ScrollDn  key.Binding
	Select    key.Binding
	Open      key.Binding
	NextEvent key.Binding
	Schedule  key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Menu      key.Binding
	Refresh   key.Binding
	Cancel    key.Binding
}{
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "help.quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "help.quit"),
	),
	Month: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "help.month"),
	),
	Week: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "help.week"),
	),
	Day: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "help.day"),
	),
	Prev: key.NewBinding(
		key.WithKeys("[", "H"),
		key.WithHelp("[", "help.prev"),
	),
	Next: key.NewBinding(
		key.WithKeys("]", "L"),
		key.WithHelp("]", "help.next"),
	),
	Today: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "help.today"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "help.left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "help.right"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "help.up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "help.down"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "help.scroll"),
	),
	ScrollDn: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "help.scroll"),
	),
	Select: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "help.select"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "help.open"),
	),
	NextEvent: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "help.next_event"),
	),
	Schedule: key.NewBinding(
		key.WithKeys("a", "n"),
		key.WithHelp("a", "help.schedule"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "help.edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("delete", "x", "backspace"),
		key.WithHelp("x", "help.delete"),
	),
	Menu: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "help.menu"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "help.refresh"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "help.cancel"),
	),
}
