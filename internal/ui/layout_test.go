package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestHeaderSegments(t *testing.T) {
	l := NewLayout(80, 24)
	out := l.RenderHeader(Header{Title: "Dash", Viewer: "Ada", Unread: 3, Sync: "synced 1m ago"})
	assert.Contains(t, out, "Dash · Ada [3 unread]")
	assert.Contains(t, out, "synced 1m ago")
	assert.Equal(t, 80, lipgloss.Width(out))

	out = l.RenderHeader(Header{Title: "Dash"})
	assert.NotContains(t, out, "unread")
	assert.NotContains(t, out, "·")
}

func TestHeaderDropsSyncWhenNarrow(t *testing.T) {
	l := NewLayout(20, 10)
	out := l.RenderHeader(Header{Title: "Project Dashboard", Sync: "syncing (2)"})
	assert.NotContains(t, out, "syncing")
}

func TestBarsTruncate(t *testing.T) {
	l := NewLayout(12, 10)
	out := l.RenderErrorBar("connection refused by server")
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, "server")
	assert.Equal(t, 8, l.ContentHeight())
}
