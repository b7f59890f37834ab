package cli

import "github.com/charmbracelet/lipgloss"

// Palette shared with the calendar
var (
	accent     = lipgloss.Color("#7C3AED")
	accentSoft = lipgloss.Color("#A78BFA")
	okColor    = lipgloss.Color("#10B981")
	red        = lipgloss.Color("#EF4444")
	dim        = lipgloss.Color("#6B7280")
	panel      = lipgloss.Color("#374151")
	fg         = lipgloss.Color("#F9FAFB")
)

func button(bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(0, 2).MarginRight(1)
}

func box(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(1, 2)
}

// config editor
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentSoft).MarginTop(1).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(accentSoft).Width(22)
	valueStyle    = lipgloss.NewStyle().Foreground(fg)
	emptyStyle    = lipgloss.NewStyle().Foreground(dim).Italic(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(fg).Background(accent).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(red)

	buttonStyle         = button(panel)
	buttonSelectedStyle = button(accent).Bold(true)
	buttonDangerStyle   = button(red)
	buttonSuccessStyle  = button(okColor)

	boxStyle     = box(panel)
	editBoxStyle = box(accent)
	confirmStyle = box(red)
)

// selector
var (
	selectorTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentSoft)
	selectorItemStyle   = lipgloss.NewStyle().PaddingLeft(4)
	selectorCursorStyle = lipgloss.NewStyle().PaddingLeft(4).Bold(true).Foreground(fg).Background(accent)
	selectorHintStyle   = dimHint.MarginTop(1)
	dimHint             = lipgloss.NewStyle().Foreground(dim)
)
