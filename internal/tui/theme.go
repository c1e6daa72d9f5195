package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, as used across the dashboard.
var (
	colorText     lipgloss.Color = "#cdd6f4"
	colorMuted    lipgloss.Color = "#a6adc8"
	colorBorder   lipgloss.Color = "#585b70"
	colorAccent   lipgloss.Color = "#94e2d5"
	colorSuccess  lipgloss.Color = "#a6e3a1"
	colorError    lipgloss.Color = "#f38ba8"
	colorWarning  lipgloss.Color = "#f9e2af"
	colorTabOff   lipgloss.Color = "#7f849c"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

var (
	appStyle         = lipgloss.NewStyle().Foreground(colorText)
	brandStyle       = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	headerBarStyle   = lipgloss.NewStyle().Background(colorMantle).Foreground(colorText)
	userStyle        = lipgloss.NewStyle().Foreground(colorMuted)
	sidebarStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(colorBorder).Padding(1, 1)
	navActiveStyle   = lipgloss.NewStyle().Background(colorSurface0).Foreground(colorAccent).Bold(true).Padding(0, 1)
	navInactiveStyle = lipgloss.NewStyle().Foreground(colorTabOff).Padding(0, 1)
	titleStyle       = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	errorBannerStyle = lipgloss.NewStyle().Foreground(colorError).Border(lipgloss.RoundedBorder()).BorderForeground(colorError).Padding(0, 1)
	hintStyle        = lipgloss.NewStyle().Foreground(colorWarning)
	successStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
	keyStyle         = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpDescStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)
