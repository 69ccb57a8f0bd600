package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Background gradients
	bgDark   = lipgloss.Color("#0F172A")
	bgMedium = lipgloss.Color("#1E293B")

	// Text colors
	textPrimary   = lipgloss.Color("#F8FAFC")
	textSecondary = lipgloss.Color("#CBD5E1")
	textMuted     = lipgloss.Color("#64748B")

	// Accents
	accentGreen  = lipgloss.Color("#34D399")
	accentYellow = lipgloss.Color("#FBBF24")
	accentRed    = lipgloss.Color("#F87171")
	accentViolet = lipgloss.Color("#8B5CF6")
)

// Styles for the dashboard components
var (
	appStyle = lipgloss.NewStyle().
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Background(accentViolet).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	statusBarStyle = lipgloss.NewStyle().
			Background(bgMedium).
			Foreground(textSecondary).
			Padding(0, 1).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(accentRed).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(accentGreen).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(textMuted)
)

// stateStyle picks a color for a diner state label.
func stateStyle(label string) lipgloss.Style {
	switch label {
	case "eating", "done":
		return lipgloss.NewStyle().Foreground(accentGreen)
	case "backoff":
		return lipgloss.NewStyle().Foreground(accentYellow)
	case "left":
		return lipgloss.NewStyle().Foreground(textPrimary)
	default:
		return lipgloss.NewStyle().Foreground(textMuted)
	}
}
