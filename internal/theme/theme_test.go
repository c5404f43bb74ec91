package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, 10, lipgloss.Width(ProgressBar(35, 10)))
	assert.Equal(t, "", ProgressBar(50, 0))
	assert.Equal(t, 4, lipgloss.Width(ProgressBar(250, 4)))
	assert.Equal(t, 4, lipgloss.Width(ProgressBar(-5, 4)))
}

func TestUnknownKeysFallBackToGray(t *testing.T) {
	assert.Equal(t, lipgloss.TerminalColor(ColorGray), StatusStyle("archived").GetForeground())
	assert.Equal(t, lipgloss.TerminalColor(ColorGreen), StatusStyle("completed").GetForeground())
	assert.Equal(t, lipgloss.TerminalColor(ColorOrange), PriorityStyle("medium").GetForeground())
	assert.Equal(t, lipgloss.TerminalColor(ColorGray), NotificationStyle("").GetForeground())
}
