package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#5B9BD5")
	colorGreen  = lipgloss.Color("#50C878")
	colorRed    = lipgloss.Color("#FF6B6B")
	colorCyan   = lipgloss.Color("#88C0D0")
	colorWhite  = lipgloss.Color("#E6E6E6")
	colorSubtle = lipgloss.Color("#888888")
)

var (
	chatBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	inputBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)

	statusBar = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	userStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	toolStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)
