// Package help renders the keyboard and command reference.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/theme"
	"github.com/nhle/project-dashboard/internal/ui/command"
)

// filterLegend explains the task list's filter keys.
var filterLegend = []string{
	"1  status: all, todo, in progress, review, completed, cancelled",
	"2  priority: all, high, medium, low",
	"3  only tasks assigned to you",
	"4  due: all, overdue, today, upcoming",
	"0  clear every filter except the sort",
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).MarginTop(1)

	m.help.Width = m.width - 4

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		sectionStyle.Render("Task filters"),
		theme.DimmedStyle.Render(strings.Join(filterLegend, "\n")),
		sectionStyle.Render("Commands (press :)"),
		theme.DimmedStyle.Render(wrapWords(command.Commands, max(m.width-8, 20))),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// wrapWords joins items with " · " and breaks lines before width.
func wrapWords(items []string, width int) string {
	var b strings.Builder
	line := 0
	for i, it := range items {
		sep := " · "
		if i == 0 {
			sep = ""
		}
		w := lipgloss.Width(sep) + lipgloss.Width(it)
		if line > 0 && line+w > width {
			b.WriteString("\n")
			line = 0
			sep = ""
			w = lipgloss.Width(it)
		}
		b.WriteString(sep)
		b.WriteString(it)
		line += w
	}
	return b.String()
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
