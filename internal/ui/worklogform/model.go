// Package worklogform records time spent on a task.
package worklogform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/theme"
)

const dateLayout = "2006-01-02"

// SubmittedMsg carries the entry to create, or to replace when LogID is
// set.
type SubmittedMsg struct {
	LogID string
	Input model.WorkLogInput
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

type formBindings struct {
	hours       string
	date        string
	description string
}

// Model is the work log form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	taskID    string
	taskTitle string
	logID     string
	width     int
	height    int
}

// New creates a work log form.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// StartCreate opens an empty entry for task dated today.
func (m *Model) StartCreate(task model.Task, today time.Time) tea.Cmd {
	m.taskID, m.taskTitle, m.logID = task.ID, task.Title, ""
	*m.fb = formBindings{date: today.Format(dateLayout)}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit opens an existing entry.
func (m *Model) StartEdit(task model.Task, l model.WorkLog) tea.Cmd {
	m.taskID, m.taskTitle, m.logID = task.ID, task.Title, l.ID
	*m.fb = formBindings{
		hours:       strconv.FormatFloat(l.Hours, 'f', -1, 64),
		date:        l.Date.Format(dateLayout),
		description: l.Description,
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		out := SubmittedMsg{LogID: m.logID, Input: m.Input()}
		return m, func() tea.Msg { return out }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// Input builds the payload from the current field values. Unparseable
// values yield zero fields, which the coordinator's validation rejects.
func (m Model) Input() model.WorkLogInput {
	hours, _ := parseHours(m.fb.hours)
	date, _ := time.Parse(dateLayout, strings.TrimSpace(m.fb.date))
	return model.WorkLogInput{
		TaskID:      m.taskID,
		Hours:       hours,
		Date:        date,
		Description: strings.TrimSpace(m.fb.description),
	}
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := "Log Time"
	if m.logID != "" {
		title = "Edit Time Entry"
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	content := titleStyle.Render(title) + "\n" +
		theme.DimmedStyle.Render(m.taskTitle) + "\n\n" +
		m.form.View()
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hours").
				Placeholder("1.5").
				Value(&m.fb.hours).
				Validate(validateHours),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.date).
				Validate(validateDate),
			huh.NewText().
				Title("Description").
				Placeholder("What did you work on?").
				Value(&m.fb.description),
		),
	).WithWidth(min(max(m.width-4, 40), 100)).WithHeight(max(m.height-4, 10))
}

// parseHours accepts "1.5", "1,5" and "90m".
func parseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "m") {
		mins, err := strconv.Atoi(strings.TrimSuffix(s, "m"))
		if err != nil {
			return 0, err
		}
		return float64(mins) / 60, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func validateHours(s string) error {
	h, err := parseHours(s)
	if err != nil {
		return fmt.Errorf("enter hours like 1.5 or minutes like 90m")
	}
	if h <= 0 {
		return fmt.Errorf("hours must be positive")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
