package utils

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// TruncateStr truncates a string to maxLen visual width using unicode ellipsis
func TruncateStr(s string, maxLen int) string {
	width := lipgloss.Width(s)
	if width <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return "…"
	}
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		truncated := string(runes[:i]) + "…"
		if lipgloss.Width(truncated) <= maxLen {
			return truncated
		}
	}
	return "…"
}

// PadRight pads a string to targetWidth using visual width (handles double-width chars)
func PadRight(s string, targetWidth int) string {
	currentWidth := lipgloss.Width(s)
	if currentWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-currentWidth)
}

// FormatSpan renders an appointment's time span; open-ended appointments show only the start
func FormatSpan(start time.Time, end *time.Time) string {
	s := start.Format("Mon Jan 2 2006 15:04")
	if end == nil {
		return s
	}
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return s + " - " + end.Format("15:04")
	}
	return s + " - " + end.Format("Mon Jan 2 2006 15:04")
}
