package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared with the GTK stylesheet.
const (
	colorGreen  = lipgloss.Color("#2ec27e")
	colorYellow = lipgloss.Color("#e5a50a")
	colorRed    = lipgloss.Color("#e01b24")
	colorBlue   = lipgloss.Color("#3584e4")
	colorMuted  = lipgloss.Color("241")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Width(16)

	focusedLabelStyle = labelStyle.
				Foreground(colorBlue).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	settingsStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			PaddingLeft(1).
			PaddingRight(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	connectedStyle    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	disconnectedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	pendingStyle      = lipgloss.NewStyle().Foreground(colorYellow)
	stoppedStyle      = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)
