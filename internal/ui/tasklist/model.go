package tasklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/crossref"
	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/selector"
	"github.com/nhle/project-dashboard/internal/state"
	"github.com/nhle/project-dashboard/internal/theme"
)

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID string
}

// sortModes defines the available sort modes cycled by Tab. The empty
// mode keeps server order.
var sortModes = []string{"", "priority", "end_date", "created_at", "title"}

var dueModes = []string{selector.All, "overdue", "today", "upcoming"}

// Model is the main task list view component. It renders the task store
// through the selector package and never mutates state itself.
type Model struct {
	list        list.Model
	state       *state.AppState
	keys        *keys.KeyMap
	filter      selector.TaskFilter
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
	now         func() time.Time
}

// New creates a new task list model.
func New(s *state.AppState, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, TaskDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		state:       s,
		keys:        k,
		filter:      selector.TaskFilter{Status: selector.All, Priority: selector.All, Due: selector.All},
		searchInput: si,
		width:       width,
		height:      height,
		now:         time.Now,
	}
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Query = strings.TrimSpace(m.searchInput.Value())
		return m, m.Reload()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = ""
		return m, m.Reload()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: task.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		m.searchInput.SetValue(m.filter.Query)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterStatus):
		statuses := []string{selector.All}
		for _, s := range model.TaskStatuses {
			statuses = append(statuses, string(s))
		}
		m.filter.Status = cycle(statuses, m.filter.Status)
		return m, m.Reload()

	case key.Matches(msg, m.keys.FilterPriority):
		priorities := []string{selector.All}
		for _, p := range model.Priorities {
			priorities = append(priorities, string(p))
		}
		m.filter.Priority = cycle(priorities, m.filter.Priority)
		return m, m.Reload()

	case key.Matches(msg, m.keys.FilterMine):
		m.filter.Mine = !m.filter.Mine
		return m, m.Reload()

	case key.Matches(msg, m.keys.FilterDue):
		m.filter.Due = cycle(dueModes, m.filter.Due)
		return m, m.Reload()

	case key.Matches(msg, m.keys.ClearFilters):
		return m, m.ClearFilters()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		m.filter.SortBy = sortModes[m.sortIndex]
		m.filter.SortDesc = m.filter.SortBy == "priority" || m.filter.SortBy == "created_at"
		return m, m.Reload()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// cycle returns the value after current in values, wrapping around.
func cycle(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// Visible returns the tasks the current filter selects, in display order.
func (m Model) Visible() []model.Task {
	f := m.filter
	f.ViewerID = m.state.Viewer().ID
	f.Now = m.now()
	return selector.FilterTasks(m.state.Tasks.List(), f)
}

// Reload rebuilds the list from the task store.
func (m *Model) Reload() tea.Cmd {
	tasks := m.Visible()
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		item := TaskItem{Task: t, Overdue: t.IsOverdue(m.now())}
		if p := crossref.ResolveProject(t, m.state.Projects); p != nil {
			item.ProjectName = p.Name
		}
		items[i] = item
	}
	return m.list.SetItems(items)
}

// ClearFilters resets every filter but keeps the sort mode.
func (m *Model) ClearFilters() tea.Cmd {
	sortBy, desc := m.filter.SortBy, m.filter.SortDesc
	m.filter = selector.TaskFilter{
		Status:   selector.All,
		Priority: selector.All,
		Due:      selector.All,
		SortBy:   sortBy,
		SortDesc: desc,
	}
	m.searchInput.Reset()
	return m.Reload()
}

// SetProjectFilter narrows the list to one project; empty clears it.
func (m *Model) SetProjectFilter(projectID string) tea.Cmd {
	m.filter.ProjectID = projectID
	return m.Reload()
}

// SetDueFilter sets the due-date criterion: "overdue", "today",
// "upcoming" or selector.All.
func (m *Model) SetDueFilter(due string) tea.Cmd {
	m.filter.Due = due
	return m.Reload()
}

// SetMine restricts the list to the viewer's tasks.
func (m *Model) SetMine(mine bool) tea.Cmd {
	m.filter.Mine = mine
	return m.Reload()
}

// Filter returns the active filter.
func (m Model) Filter() selector.TaskFilter { return m.filter }

// SelectedTask returns the highlighted task.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	var parts []string
	if m.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("search %q", m.filter.Query))
	}
	if m.filter.Status != "" && m.filter.Status != selector.All {
		parts = append(parts, "status "+m.filter.Status)
	}
	if m.filter.Priority != "" && m.filter.Priority != selector.All {
		parts = append(parts, "priority "+m.filter.Priority)
	}
	if m.filter.Mine {
		parts = append(parts, "mine")
	}
	if m.filter.Due != "" && m.filter.Due != selector.All {
		parts = append(parts, m.filter.Due)
	}
	if m.filter.ProjectID != "" {
		name := m.filter.ProjectID
		if p, ok := m.state.Projects.Get(name); ok {
			name = p.Name
		}
		parts = append(parts, "project "+name)
	}
	if m.filter.SortBy != "" {
		parts = append(parts, "by "+m.filter.SortBy)
	}
	return strings.Join(parts, " | ")
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no tasks are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.state.Tasks.Status() == state.StatusLoading:
		return style.Render("Loading tasks...")
	case m.FilterSummary() != "" && m.state.Tasks.Len() > 0:
		return style.Render("No matching tasks.\nPress 0 to clear filters.")
	default:
		return style.Render("No tasks yet.\n\nPress n to create one or r to refresh.")
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
