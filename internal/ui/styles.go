package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primary   = lipgloss.Color("#7C3AED")
	secondary = lipgloss.Color("#A78BFA")
	success   = lipgloss.Color("#10B981")
	warning   = lipgloss.Color("#F59E0B")
	danger    = lipgloss.Color("#EF4444")
	muted     = lipgloss.Color("#6B7280")
	text      = lipgloss.Color("#F9FAFB")
	textDim   = lipgloss.Color("#9CA3AF")
	bg        = lipgloss.Color("#1F2937")
	bgDark    = lipgloss.Color("#111827")
	highlight = lipgloss.Color("#374151")

	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text).
			Background(primary).
			Padding(0, 1)

	PeriodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text).
			Background(primary).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(muted).
				Background(bg).
				Padding(0, 1)

	PendingStyle = lipgloss.NewStyle().
			Foreground(warning).
			Italic(true)

	// Banner styles
	BannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text).
			Background(danger).
			Padding(0, 1)

	// Help styles
	HelpStyle = lipgloss.NewStyle().
			Foreground(muted)

	HelpKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondary)

	// Dialog styles
	DialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2)

	DangerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(danger).
			Padding(1, 2)

	DialogTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primary)

	DangerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(danger)

	LabelStyle = lipgloss.NewStyle().
			Width(16).
			Foreground(muted)

	FocusedLabelStyle = lipgloss.NewStyle().
				Width(16).
				Bold(true).
				Foreground(primary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(text)

	PickerFocusedStyle = lipgloss.NewStyle().
				Foreground(text).
				Background(primary)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(danger)
)

// tone is the look of one canvas cell
type tone int

const (
	toneNormal tone = iota
	toneMuted
	toneGutter
	toneHeader
	toneToday
	toneOtherMonth
	toneSlotSelected
	toneDropTarget
	toneDayHighlight
	toneEvent
	toneEventSelected
	toneEventDragging
	toneEventEdge
	toneCursor
	toneMenu
	toneMenuActive
)

var toneStyles = map[tone]lipgloss.Style{
	toneNormal:        lipgloss.NewStyle().Foreground(text),
	toneMuted:         lipgloss.NewStyle().Foreground(muted),
	toneGutter:        lipgloss.NewStyle().Foreground(textDim),
	toneHeader:        lipgloss.NewStyle().Bold(true).Foreground(secondary),
	toneToday:         lipgloss.NewStyle().Bold(true).Foreground(warning),
	toneOtherMonth:    lipgloss.NewStyle().Foreground(muted).Faint(true),
	toneSlotSelected:  lipgloss.NewStyle().Foreground(text).Background(highlight),
	toneDropTarget:    lipgloss.NewStyle().Foreground(bgDark).Background(success),
	toneDayHighlight:  lipgloss.NewStyle().Foreground(text).Background(bg).Underline(true),
	toneEvent:         lipgloss.NewStyle().Foreground(text).Background(secondary),
	toneEventSelected: lipgloss.NewStyle().Bold(true).Foreground(text).Background(primary),
	toneEventDragging: lipgloss.NewStyle().Bold(true).Foreground(bgDark).Background(warning),
	toneEventEdge:     lipgloss.NewStyle().Foreground(textDim).Background(secondary),
	toneCursor:        lipgloss.NewStyle().Reverse(true),
	toneMenu:          lipgloss.NewStyle().Foreground(text).Background(bg),
	toneMenuActive:    lipgloss.NewStyle().Bold(true).Foreground(text).Background(primary),
}
