package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")

	// Headers above an analysis
	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	// Provider and model names
	AccentStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	// Currently selected provider or model in listings
	SelectedStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(dimColor)
)

// FormatFooter pairs keys with descriptions: FormatFooter("Ctrl+C", "Cancel")
// renders "Ctrl+C Cancel" with the description in the accent color.
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}

// FormatHeader renders the line printed above an analysis result.
func FormatHeader(title, provider, modelName string) string {
	if strings.TrimSpace(title) == "" {
		title = "Unknown"
	}
	return TitleStyle.Render("Dump: "+title) + "  " +
		DimStyle.Render("via ") + AccentStyle.Render(provider) +
		DimStyle.Render(" ("+modelName+")")
}

// FormatFailure renders a failed analysis message.
func FormatFailure(message string) string {
	return ErrorStyle.Render("Error: ") + message
}
