// Package render provides styled terminal output for the reconciliation
// reports using lipgloss.
package render

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#FF6B6B")
	// SuccessColor indicates clean reconciliations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates collected discrepancies.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates count-integrity problems.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent output.
	SubtleColor = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)
