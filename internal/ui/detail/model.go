package detail

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/crossref"
	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/selector"
	"github.com/nhle/project-dashboard/internal/state"
	"github.com/nhle/project-dashboard/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// ActionMsg signals the parent to execute an action on the current task.
type ActionMsg struct {
	Action string // "edit", "delete", "transition" or "log"
	TaskID string
}

// CommentMsg carries a comment the viewer typed for a task.
type CommentMsg struct {
	TaskID  string
	Content string
}

// Model is the task detail view component. It shows whatever the task
// store's detail slot holds, falling back to the list copy while the
// detail fetch is in flight.
type Model struct {
	taskID   string
	viewport viewport.Model
	state    *state.AppState
	keys     *keys.KeyMap
	comment  textinput.Model
	writing  bool
	width    int
	height   int
}

// New creates a new detail view model.
func New(s *state.AppState, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	ci := textinput.New()
	ci.Placeholder = "write a comment, @name to mention"
	ci.Prompt = "> "
	ci.CharLimit = 5000
	ci.Width = width - 4

	return Model{
		viewport: vp,
		state:    s,
		keys:     keys,
		comment:  ci,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.writing {
			return m.handleCommentKeys(msg)
		}
		if m.taskID == "" {
			if key.Matches(msg, m.keys.Back) {
				return m, back
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Back):
			return m, back

		case key.Matches(msg, m.keys.Comment):
			m.writing = true
			m.comment.Reset()
			return m, m.comment.Focus()

		case key.Matches(msg, m.keys.Transition):
			return m, m.action("transition")

		case key.Matches(msg, m.keys.Edit):
			return m, m.action("edit")

		case key.Matches(msg, m.keys.Delete):
			return m, m.action("delete")

		case key.Matches(msg, m.keys.LogTime):
			return m, m.action("log")
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func back() tea.Msg { return BackMsg{} }

var nowFunc = time.Now

func (m Model) action(name string) tea.Cmd {
	id := m.taskID
	return func() tea.Msg {
		return ActionMsg{Action: name, TaskID: id}
	}
}

func (m Model) handleCommentKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.writing = false
		m.comment.Blur()
		return m, nil

	case "enter":
		content := strings.TrimSpace(m.comment.Value())
		m.writing = false
		m.comment.Blur()
		m.comment.Reset()
		if content == "" {
			return m, nil
		}
		id := m.taskID
		return m, func() tea.Msg {
			return CommentMsg{TaskID: id, Content: content}
		}
	}

	var cmd tea.Cmd
	m.comment, cmd = m.comment.Update(msg)
	return m, cmd
}

// Show points the view at a task and renders what is known about it.
func (m *Model) Show(taskID string) {
	m.taskID = taskID
	m.writing = false
	m.Refresh()
	m.viewport.GotoTop()
}

// TaskID returns the task being shown.
func (m Model) TaskID() string { return m.taskID }

// Writing reports whether the comment input has focus.
func (m Model) Writing() bool { return m.writing }

// Refresh re-renders from the current store contents, keeping the
// scroll position.
func (m *Model) Refresh() {
	m.viewport.SetContent(m.renderContent())
}

// task returns the freshest copy available: the detail slot when it is
// tracking this task, otherwise the list entry.
func (m Model) task() (model.Task, bool) {
	if t, ok := m.state.Tasks.Current(); ok && t.ID == m.taskID {
		return t, true
	}
	return m.state.Tasks.Get(m.taskID)
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if _, ok := m.task(); !ok {
		switch {
		case m.taskID == "":
			return placeholder.Render("No task selected")
		case m.state.Tasks.DetailStatus() == state.StatusLoading:
			return placeholder.Render("Loading task details...")
		default:
			return placeholder.Render("Task not available.\nPress esc to go back.")
		}
	}

	if m.writing {
		input := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.comment.View())
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), input)
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	task, ok := m.task()
	if !ok {
		return ""
	}

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(task.Title))

	statusBadge := theme.StatusStyle(string(task.Status)).Render(string(task.Status))
	priBadge := theme.PriorityStyle(string(task.Priority)).Render(priorityName(task.Priority))
	badges := []string{statusBadge, "  ", priBadge}
	if task.IsOverdue(nowFunc()) {
		badges = append(badges, "  ", theme.OverdueStyle.Render("OVERDUE"))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		sections = append(sections, fmt.Sprintf("%-10s %s", metaStyle.Render(label), valStyle.Render(value)))
	}

	if p := crossref.ResolveProject(task, m.state.Projects); p != nil {
		meta("Project:", p.Name)
	} else if task.ProjectID != "" {
		meta("Project:", metaStyle.Render("unavailable"))
	}

	assignees := crossref.ResolveAssignees(task, m.state.Users)
	if len(assignees) > 0 {
		names := make([]string, len(assignees))
		for i, a := range assignees {
			names[i] = a.Name
		}
		meta("Assignees:", strings.Join(names, ", "))
	}
	if task.StartDate != nil {
		meta("Start:", task.StartDate.Format("2006-01-02"))
	}
	if task.EndDate != nil {
		meta("Due:", task.EndDate.Format("2006-01-02"))
	}
	if !task.CreatedAt.IsZero() {
		meta("Created:", task.CreatedAt.Format("2006-01-02 15:04"))
	}
	if !task.UpdatedAt.IsZero() {
		meta("Updated:", task.UpdatedAt.Format("2006-01-02 15:04"))
	}

	logs := selector.FilterWorkLogs(m.state.WorkLogs.List(), nil, selector.WorkLogFilter{TaskID: task.ID})
	if len(logs) > 0 {
		meta("Logged:", fmt.Sprintf("%.1fh in %d entries", selector.TotalHours(logs), len(logs)))
		meta("", m.hoursByUser(logs))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	descHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sections = append(sections, descHeaderStyle.Render("Description"))

	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	sections = append(sections, m.renderComments(task, separator)...)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// hoursByUser lists logged hours per person, largest first.
func (m Model) hoursByUser(logs []model.WorkLog) string {
	type row struct {
		name  string
		hours float64
	}
	var rows []row
	for userID, h := range selector.HoursByUser(logs) {
		u := crossref.ResolveUser(model.UserRef{ID: userID}, m.state.Users)
		rows = append(rows, row{name: u.Name, hours: h})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].hours != rows[j].hours {
			return rows[i].hours > rows[j].hours
		}
		return rows[i].name < rows[j].name
	})
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprintf("%s %.1fh", r.name, r.hours)
	}
	return strings.Join(parts, ", ")
}

func (m Model) renderComments(task model.Task, separator string) []string {
	store := m.state.Comments(task.ID)
	comments := store.List()
	if len(comments) == 0 && store.Status() == state.StatusIdle {
		comments = task.Comments
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	out := []string{"", separator, ""}

	switch {
	case store.Status() == state.StatusLoading && len(comments) == 0:
		return append(out, headerStyle.Render("Comments"), theme.DimmedStyle.Render("Loading..."))
	case len(comments) == 0:
		return append(out, headerStyle.Render("Comments"), theme.DimmedStyle.Render("No comments yet. Press c to add one."))
	}

	out = append(out, headerStyle.Render(fmt.Sprintf("Comments (%d)", len(comments))), "")

	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	for _, c := range comments {
		author := crossref.ResolveAuthor(c, m.state.Users)
		header := fmt.Sprintf(
			"%s  %s",
			authorStyle.Render(author.Name),
			timeStyle.Render(c.CreatedAt.Format("2006-01-02 15:04")),
		)
		out = append(out, header, c.Content, "")
	}
	return out
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.comment.Width = width - 4
	m.Refresh()
}

// priorityName returns a human-readable name for the priority level.
func priorityName(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "High"
	case model.PriorityMedium:
		return "Medium"
	case model.PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// NextStatus returns the status a transition moves a task to. Completed
// and cancelled tasks reopen as todo.
func NextStatus(s model.TaskStatus) model.TaskStatus {
	switch s {
	case model.StatusTodo:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusReview
	case model.StatusReview:
		return model.StatusCompleted
	default:
		return model.StatusTodo
	}
}
