// Package theme holds the dashboard's colors and shared styles.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
)

// Bars.
var (
	HeaderStyle    = bar(ColorBlue).Bold(true)
	StatusBarStyle = bar(ColorSubtle)
	ErrorBarStyle  = bar(ColorRed).Bold(true)
)

func bar(bg lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWhite).Background(bg).Padding(0, 1)
}

// DetailPanelStyle frames the help overlay.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorSubtle)

// List rows.
var (
	ListItemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	SelectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Bold(true).
				Foreground(ColorBlue).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorBlue)
)

var (
	HelpStyle    = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
	DimmedStyle  = lipgloss.NewStyle().Foreground(ColorGray)
	OverdueStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	// PendingStyle marks entries the server has not confirmed yet.
	PendingStyle = lipgloss.NewStyle().Italic(true).Foreground(ColorGray)
	UnreadStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)
)

// Task and project statuses share one palette: not started, moving,
// waiting, done, dropped.
var statusColors = map[string]lipgloss.AdaptiveColor{
	"todo":        ColorBlue,
	"planning":    ColorBlue,
	"in_progress": ColorYellow,
	"active":      ColorYellow,
	"review":      ColorMagenta,
	"on_hold":     ColorMagenta,
	"completed":   ColorGreen,
	"cancelled":   ColorRed,
}

var priorityColors = map[string]lipgloss.AdaptiveColor{
	"high":   ColorRed,
	"medium": ColorOrange,
	"low":    ColorBlue,
}

var notificationColors = map[string]lipgloss.AdaptiveColor{
	"mention":        ColorMagenta,
	"comment":        ColorMagenta,
	"deadline":       ColorRed,
	"task_update":    ColorBlue,
	"project_update": ColorBlue,
	"member_added":   ColorGreen,
	"worklog_added":  ColorGreen,
}

func colorOr(m map[string]lipgloss.AdaptiveColor, k string) lipgloss.AdaptiveColor {
	if c, ok := m[k]; ok {
		return c
	}
	return ColorGray
}

// StatusStyle returns the badge style for a task or project status.
func StatusStyle(status string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(colorOr(statusColors, status))
}

// PriorityStyle returns the style for a task priority.
func PriorityStyle(priority string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorOr(priorityColors, priority))
}

// NotificationStyle returns the label style for a notification type.
func NotificationStyle(kind string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(colorOr(notificationColors, kind))
}

// ProgressBar draws percent (clamped to 0..100) as a bar of width cells.
func ProgressBar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	done := lipgloss.NewStyle().Foreground(ColorGreen).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(ColorSubtle).Render(strings.Repeat("░", width-filled))
	return done + rest
}
