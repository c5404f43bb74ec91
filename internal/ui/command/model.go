package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/theme"
)

// CommandMsg is emitted when the user executes a command. Name is the
// first word, Args the rest.
type CommandMsg struct {
	Name string
	Args []string
}

// Commands lists the palette commands offered as completions.
var Commands = []string{
	"refresh",
	"projects",
	"notifications",
	"settings",
	"tasks",
	"mine",
	"overdue",
	"today",
	"upcoming",
	"clear",
	"new task",
	"read all",
	"logout",
	"quit",
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command, tab completes..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Parse splits a palette line into a CommandMsg.
func Parse(line string) (CommandMsg, bool) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return CommandMsg{}, false
	}
	// Two-word commands keep their full name.
	if len(fields) >= 2 {
		joined := fields[0] + " " + fields[1]
		for _, c := range Commands {
			if c == joined {
				return CommandMsg{Name: joined, Args: fields[2:]}, true
			}
		}
	}
	return CommandMsg{Name: fields[0], Args: fields[1:]}, true
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		line := m.input.Value()
		m.input.Reset()
		if cmd, ok := Parse(line); ok {
			return m, func() tea.Msg { return cmd }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	hint := theme.HelpStyle.Render(strings.Join(Commands, " · "))

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), "", hint)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}
