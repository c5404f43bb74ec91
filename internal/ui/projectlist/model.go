package projectlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/crossref"
	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/selector"
	"github.com/nhle/project-dashboard/internal/state"
	"github.com/nhle/project-dashboard/internal/theme"
)

const dateLayout = "2006-01-02"

// CloseMsg signals the parent to close the project view.
type CloseMsg struct{}

// OpenTasksMsg asks the parent to show the task list narrowed to a project.
type OpenTasksMsg struct {
	ProjectID string
}

// ChangedMsg signals that projects were modified. Err is set when the
// mutation failed; the stores are unchanged in that case.
type ChangedMsg struct {
	Err error
}

// Projects is the part of the project coordinator this view drives.
type Projects interface {
	Create(ctx context.Context, in model.ProjectInput) (model.Project, error)
	Update(ctx context.Context, id string, in model.ProjectInput) (model.Project, error)
	Remove(ctx context.Context, id string) error
	AddMembers(ctx context.Context, projectID string, members []model.MemberInput) (model.Project, error)
	RemoveMember(ctx context.Context, projectID, userID string) (model.Project, error)
	Members(projectID string) []state.Tracked[model.Member]
}

type projectMode int

const (
	modeList projectMode = iota
	modeForm
	modeConfirmDelete
	modeMembers
	modeAddMember
)

type formBindings struct {
	name        string
	description string
	status      model.ProjectStatus
	startDate   string
	endDate     string
	confirm     bool
	memberID    string
	memberRole  model.MemberRole
}

var statusCycle = func() []string {
	out := []string{selector.All}
	for _, s := range model.ProjectStatuses {
		out = append(out, string(s))
	}
	return out
}()

// Model is the Bubble Tea model for project management.
type Model struct {
	mode        projectMode
	state       *state.AppState
	projects    Projects
	keys        *keys.KeyMap
	filter      selector.ProjectFilter
	selectedIdx int
	memberIdx   int
	editingID   string
	form        *huh.Form
	fb          *formBindings
	search      textinput.Model
	searching   bool
	statusMsg   string
	width       int
	height      int
}

// New creates a new project view model.
func New(s *state.AppState, p Projects, k *keys.KeyMap, width, height int) Model {
	si := textinput.New()
	si.Placeholder = "project name"
	si.Prompt = "/ "
	si.CharLimit = 200
	return Model{
		search:   si,
		mode:     modeList,
		state:    s,
		projects: p,
		keys:     k,
		filter:   selector.ProjectFilter{Status: selector.All, Sort: selector.NewestFirst},
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// Visible returns the projects the current filter selects.
func (m Model) Visible() []model.Project {
	return selector.FilterProjects(m.state.Projects.List(), m.filter)
}

func (m Model) selected() (model.Project, bool) {
	visible := m.Visible()
	if len(visible) == 0 {
		return model.Project{}, false
	}
	return visible[min(m.selectedIdx, len(visible)-1)], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg:
		if msg.Err != nil {
			m.statusMsg = "Error: " + apperr.Message(msg.Err)
		}
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateForm(msg)
}

func (m *Model) clampSelection() {
	n := len(m.Visible())
	if m.selectedIdx >= n {
		m.selectedIdx = max(n-1, 0)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeMembers:
		return m.handleMemberKey(msg)
	}
	return m.updateForm(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.Visible())

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if n > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if n > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = n - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return OpenTasksMsg{ProjectID: p.ID} }

	case key.Matches(msg, m.keys.FilterStatus):
		for i, s := range statusCycle {
			if s == m.filter.Status {
				m.filter.Status = statusCycle[(i+1)%len(statusCycle)]
				break
			}
		}
		m.selectedIdx = 0
		return m, nil

	case key.Matches(msg, m.keys.FilterMine):
		if m.filter.Member == "" {
			m.filter.Member = m.state.Viewer().ID
		} else {
			m.filter.Member = ""
		}
		m.selectedIdx = 0
		return m, nil

	case key.Matches(msg, m.keys.ClearFilters):
		m.filter = selector.ProjectFilter{Status: selector.All, Sort: m.filter.Sort}
		m.selectedIdx = 0
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		if m.filter.Sort == selector.NewestFirst {
			m.filter.Sort = selector.OldestFirst
		} else {
			m.filter.Sort = selector.NewestFirst
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		*m.fb = formBindings{status: model.ProjectPlanning}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editingID = p.ID
		*m.fb = formBindings{
			name:        p.Name,
			description: p.Description,
			status:      p.Status,
			startDate:   formatDate(p.StartDate),
			endDate:     formatDate(p.EndDate),
		}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editingID = p.ID
		m.fb.confirm = false
		m.form = m.buildConfirmForm(p.Name)
		m.mode = modeConfirmDelete
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.filter.Query)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case msg.String() == "m":
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.memberIdx = 0
		m.mode = modeMembers
		return m, nil
	}
	return m, nil
}

// handleSearchKey narrows the list as the viewer types. Enter keeps the
// query, esc drops it.
func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.filter.Query = ""
		m.selectedIdx = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Query = m.search.Value()
	m.selectedIdx = 0
	return m, cmd
}

func (m Model) handleMemberKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	p, ok := m.selected()
	if !ok {
		m.mode = modeList
		return m, nil
	}
	members := m.projects.Members(p.ID)

	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if len(members) > 0 {
			m.memberIdx = (m.memberIdx + 1) % len(members)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(members) > 0 {
			m.memberIdx = (m.memberIdx - 1 + len(members)) % len(members)
		}
		return m, nil

	case msg.String() == "a":
		*m.fb = formBindings{memberRole: model.RoleDeveloper}
		m.editingID = p.ID
		m.form = m.buildMemberForm(p)
		if m.form == nil {
			m.statusMsg = "Everyone is already a member"
			return m, nil
		}
		m.mode = modeAddMember
		return m, m.form.Init()

	case msg.String() == "x":
		if m.memberIdx >= len(members) || !members[m.memberIdx].Confirmed() {
			return m, nil
		}
		return m, m.removeMember(p.ID, members[m.memberIdx].Value.User.ID)
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	statusOpts := make([]huh.Option[model.ProjectStatus], len(model.ProjectStatuses))
	for i, s := range model.ProjectStatuses {
		statusOpts[i] = huh.NewOption(strings.ReplaceAll(string(s), "_", " "), s)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Project name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
			huh.NewSelect[model.ProjectStatus]().
				Title("Status").
				Options(statusOpts...).
				Value(&m.fb.status),
			huh.NewInput().
				Title("Start Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.startDate).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("End Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.endDate).
				Validate(validateOptionalDate),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(name string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete project %q?", name)).
				Description("Its tasks stay in the list but lose their project.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// buildMemberForm offers the users that are not members yet. It returns
// nil when there is nobody left to add.
func (m Model) buildMemberForm(p model.Project) *huh.Form {
	var userOpts []huh.Option[string]
	for _, u := range m.state.Users.List() {
		if !p.HasMember(u.ID) {
			userOpts = append(userOpts, huh.NewOption(u.Name, u.ID))
		}
	}
	if len(userOpts) == 0 {
		return nil
	}
	roleOpts := make([]huh.Option[model.MemberRole], len(model.MemberRoles))
	for i, r := range model.MemberRoles {
		roleOpts[i] = huh.NewOption(string(r), r)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("User").
				Options(userOpts...).
				Value(&m.fb.memberID),
			huh.NewSelect[model.MemberRole]().
				Title("Role").
				Options(roleOpts...).
				Value(&m.fb.memberRole),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.mode == modeList || m.mode == modeMembers {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = m.returnMode()
		return m, nil
	case huh.StateCompleted:
		mode := m.mode
		m.mode = m.returnMode()
		m.statusMsg = ""
		switch mode {
		case modeForm:
			return m, m.saveProject()
		case modeConfirmDelete:
			if m.fb.confirm {
				return m, m.deleteProject(m.editingID)
			}
		case modeAddMember:
			return m, m.addMember()
		}
		return m, nil
	}
	return m, cmd
}

func (m Model) returnMode() projectMode {
	if m.mode == modeAddMember {
		return modeMembers
	}
	return modeList
}

// View renders the project view.
func (m Model) View() string {
	switch m.mode {
	case modeForm, modeConfirmDelete, modeAddMember:
		if m.form == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	case modeMembers:
		return m.viewMembers()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Projects"))
	if s := m.filterSummary(); s != "" {
		b.WriteString("  ")
		b.WriteString(theme.DimmedStyle.Render(s))
	}
	b.WriteString("\n\n")
	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	projects := m.Visible()
	switch {
	case len(projects) == 0 && m.state.Projects.Status() == state.StatusLoading:
		b.WriteString(theme.DimmedStyle.Render("Loading projects..."))
	case len(projects) == 0 && m.state.Projects.Len() > 0:
		b.WriteString(theme.DimmedStyle.Render("No matching projects. Press 0 to clear filters."))
	case len(projects) == 0:
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No projects. Press 'n' to create one."))
	default:
		for i, p := range projects {
			status := theme.StatusStyle(string(p.Status)).Render(string(p.Status))
			label := fmt.Sprintf("%s %s  %s %s", status, p.Name,
				theme.ProgressBar(p.Progress, 10),
				theme.DimmedStyle.Render(fmt.Sprintf("%d%% (%d/%d tasks, %d members)",
					p.Progress, p.DoneTasks, p.TotalTasks, len(p.Members))))

			if i == min(m.selectedIdx, len(projects)-1) {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(
		"enter tasks | / search | n new | e edit | d delete | m members | 1 status | 3 mine | 0 clear | tab sort | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewMembers() string {
	p, ok := m.selected()
	if !ok {
		return ""
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render(p.Name + " members"))
	b.WriteString("\n\n")

	members := m.projects.Members(p.ID)
	if len(members) == 0 {
		b.WriteString(theme.DimmedStyle.Render("No members yet. Press 'a' to add one."))
	}
	for i, tm := range members {
		u := crossref.ResolveUser(tm.Value.User, m.state.Users)
		label := fmt.Sprintf("%s  %s", u.Name, theme.DimmedStyle.Render(string(tm.Value.Role)))
		if !tm.Confirmed() {
			label = theme.PendingStyle.Render(u.Name + "  adding...")
		}
		if i == m.memberIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("a add | x remove | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) filterSummary() string {
	var parts []string
	if m.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", m.filter.Query))
	}
	if m.filter.Status != selector.All {
		parts = append(parts, m.filter.Status)
	}
	if m.filter.Member != "" {
		parts = append(parts, "mine")
	}
	if m.filter.Sort == selector.OldestFirst {
		parts = append(parts, "oldest first")
	}
	return strings.Join(parts, " | ")
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Editing reports whether a form has focus.
func (m Model) Editing() bool {
	return m.searching || m.mode == modeForm || m.mode == modeConfirmDelete || m.mode == modeAddMember
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) saveProject() tea.Cmd {
	p := m.projects
	fb := *m.fb
	editID := m.editingID
	return func() tea.Msg {
		in := model.ProjectInput{
			Name:        strings.TrimSpace(fb.name),
			Description: fb.description,
			Status:      fb.status,
			StartDate:   parseDate(fb.startDate),
			EndDate:     parseDate(fb.endDate),
		}
		var err error
		if editID == "" {
			_, err = p.Create(context.Background(), in)
		} else {
			_, err = p.Update(context.Background(), editID, in)
		}
		return ChangedMsg{Err: err}
	}
}

func (m Model) deleteProject(id string) tea.Cmd {
	p := m.projects
	return func() tea.Msg {
		return ChangedMsg{Err: p.Remove(context.Background(), id)}
	}
}

func (m Model) addMember() tea.Cmd {
	p := m.projects
	projectID := m.editingID
	in := model.MemberInput{UserID: m.fb.memberID, Role: m.fb.memberRole}
	return func() tea.Msg {
		_, err := p.AddMembers(context.Background(), projectID, []model.MemberInput{in})
		return ChangedMsg{Err: err}
	}
}

func (m Model) removeMember(projectID, userID string) tea.Cmd {
	p := m.projects
	return func() tea.Msg {
		_, err := p.RemoveMember(context.Background(), projectID, userID)
		return ChangedMsg{Err: err}
	}
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

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
