// Package theme holds the terminal palette and shared lipgloss styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette, tuned for dark terminals.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Warning   = lipgloss.Color("#FB923C") // Orange
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// Typography
var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Body  = lipgloss.NewStyle().Foreground(Text)
	Hint  = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Label = lipgloss.NewStyle().Foreground(TextDim)
	Warn  = lipgloss.NewStyle().Foreground(Warning)
)

// Layout
var (
	Bar  = lipgloss.NewStyle().Background(BgCard).Border(lipgloss.RoundedBorder()).BorderForeground(Border)
	Card = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(1, 2)
)

// Answer states
var (
	Selected  = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// CategoryColor returns the badge color for a session category name.
func CategoryColor(category string) color.Color {
	switch category {
	case "due_for_review":
		return Secondary
	case "weak_spot":
		return Error
	case "at_risk":
		return Warning
	case "prerequisite":
		return Accent
	case "new_content":
		return Primary
	default:
		return TextDim
	}
}

// Badge renders a short colored tag.
func Badge(text string, c color.Color) string {
	return lipgloss.NewStyle().
		Foreground(c).
		Bold(true).
		Render("[" + text + "]")
}
