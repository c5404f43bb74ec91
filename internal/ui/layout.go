// Package ui holds the frame shared by every dashboard view.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/theme"
)

// Layout splits the terminal into a one-line header, the content area and
// a one-line bar at the bottom.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for the terminal size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width given to views.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left between header and bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-2, 0)
}

// Header is what the top line shows.
type Header struct {
	Title  string
	Viewer string
	Unread int
	Sync   string
}

// RenderHeader lays out title, viewer and unread badge on the left and
// the sync summary on the right. The sync text is dropped first when
// the terminal is too narrow.
func (l Layout) RenderHeader(h Header) string {
	left := []string{h.Title}
	if h.Viewer != "" {
		left = append(left, h.Viewer)
	}
	leftText := strings.Join(left, " · ")
	if h.Unread > 0 {
		leftText += fmt.Sprintf(" [%d unread]", h.Unread)
	}

	leftRendered := theme.HeaderStyle.Render(leftText)
	right := ""
	if h.Sync != "" && lipgloss.Width(leftRendered)+lipgloss.Width(h.Sync)+2 < l.Width {
		right = theme.HeaderStyle.Render(h.Sync)
	}
	return l.fill(theme.HeaderStyle, leftRendered, right)
}

// RenderStatusBar renders key hints on the bottom line.
func (l Layout) RenderStatusBar(hints string) string {
	return l.fill(theme.StatusBarStyle, theme.StatusBarStyle.Render(truncate(hints, l.Width-2)), "")
}

// RenderErrorBar renders an unacknowledged error on the bottom line.
func (l Layout) RenderErrorBar(message string) string {
	return l.fill(theme.ErrorBarStyle, theme.ErrorBarStyle.Render(truncate(message, l.Width-2)), "")
}

// fill pads between left and right with the style's background so the
// bar spans the terminal.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	pad := lipgloss.NewStyle().Width(gap).Background(style.GetBackground()).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, pad, right)
}

// truncate shortens s to at most width cells.
func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// Frame stacks header, content and bottom bar.
func (l Layout) Frame(header, content, bar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, bar)
}
