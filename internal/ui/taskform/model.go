package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/theme"
)

const dateLayout = "2006-01-02"

// SubmittedMsg is dispatched when the form is completed. TaskID is empty
// for a new task.
type SubmittedMsg struct {
	TaskID string
	Input  model.TaskInput
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	status      model.TaskStatus
	priority    model.Priority
	projectID   string
	assigneeIDs []string
	startDate   string
	endDate     string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	projects []model.Project
	users    []model.User
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium, status: model.StatusTodo},
		width:  width,
		height: height,
	}
}

// SetOptions sets the projects and users offered by the selectors.
func (m *Model) SetOptions(projects []model.Project, users []model.User) {
	m.projects = projects
	m.users = users
}

// StartCreate initializes the form for a new task, preselecting
// projectID when it is not empty.
func (m *Model) StartCreate(projectID string) tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{
		status:    model.StatusTodo,
		priority:  model.PriorityMedium,
		projectID: projectID,
	}
	if m.fb.projectID == "" && len(m.projects) > 0 {
		m.fb.projectID = m.projects[0].ID
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editID = task.ID
	*m.fb = formBindings{
		title:       task.Title,
		description: task.Description,
		status:      task.Status,
		priority:    task.Priority,
		projectID:   task.ProjectID,
		startDate:   formatDate(task.StartDate),
		endDate:     formatDate(task.EndDate),
	}
	for _, a := range task.Assignees {
		m.fb.assigneeIDs = append(m.fb.assigneeIDs, a.ID)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		m.projectField(),
		huh.NewSelect[model.TaskStatus]().
			Title("Status").
			Options(statusOptions()...).
			Value(&m.fb.status),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("High", model.PriorityHigh),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
	}
	if f := m.assigneeField(); f != nil {
		fields = append(fields, f)
	}
	fields = append(fields,
		huh.NewInput().
			Title("Start Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.startDate).
			Validate(validateOptionalDate),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.endDate).
			Validate(validateOptionalDate),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func statusOptions() []huh.Option[model.TaskStatus] {
	opts := make([]huh.Option[model.TaskStatus], len(model.TaskStatuses))
	for i, s := range model.TaskStatuses {
		opts[i] = huh.NewOption(strings.ReplaceAll(string(s), "_", " "), s)
	}
	return opts
}

func (m *Model) projectField() huh.Field {
	opts := make([]huh.Option[string], 0, len(m.projects))
	for _, p := range m.projects {
		opts = append(opts, huh.NewOption(p.Name, p.ID))
	}
	if len(opts) == 0 {
		return huh.NewInput().
			Title("Project ID").
			Value(&m.fb.projectID).
			Validate(validateRequired("Project"))
	}
	return huh.NewSelect[string]().
		Title("Project").
		Options(opts...).
		Value(&m.fb.projectID)
}

func (m *Model) assigneeField() huh.Field {
	if len(m.users) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.users))
	for i, u := range m.users {
		opts[i] = huh.NewOption(u.Name, u.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Assignees").
		Options(opts...).
		Value(&m.fb.assigneeIDs)
}

// Input builds the payload from the current field values.
func (m Model) Input() model.TaskInput {
	return model.TaskInput{
		Title:       strings.TrimSpace(m.fb.title),
		Description: m.fb.description,
		Status:      m.fb.status,
		Priority:    m.fb.priority,
		ProjectID:   m.fb.projectID,
		AssigneeIDs: append([]string(nil), m.fb.assigneeIDs...),
		StartDate:   parseDate(m.fb.startDate),
		EndDate:     parseDate(m.fb.endDate),
	}
}

func (m Model) handleSubmit() tea.Cmd {
	msg := SubmittedMsg{Input: m.Input()}
	if m.editMode {
		msg.TaskID = m.editID
	}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
