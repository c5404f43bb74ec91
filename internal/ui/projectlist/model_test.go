package projectlist

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

type fakeProjects struct {
	st      *state.AppState
	removed []string
	err     error
}

func (f *fakeProjects) Create(context.Context, model.ProjectInput) (model.Project, error) {
	return model.Project{}, f.err
}

func (f *fakeProjects) Update(context.Context, string, model.ProjectInput) (model.Project, error) {
	return model.Project{}, f.err
}

func (f *fakeProjects) Remove(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, id)
	f.st.Projects.Remove(id)
	return nil
}

func (f *fakeProjects) AddMembers(context.Context, string, []model.MemberInput) (model.Project, error) {
	return model.Project{}, f.err
}

func (f *fakeProjects) RemoveMember(context.Context, string, string) (model.Project, error) {
	return model.Project{}, f.err
}

func (f *fakeProjects) Members(projectID string) []state.Tracked[model.Member] {
	var confirmed []model.Member
	if p, ok := f.st.Projects.Get(projectID); ok {
		confirmed = p.Members
	}
	return state.Merge(confirmed, f.st.PendingMembers.List(projectID))
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setup(t *testing.T) (Model, *fakeProjects, *state.AppState) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st := state.New()
	st.SetViewer(model.User{ID: "u1", Name: "Ada"})
	st.Users.PutAll([]model.User{{ID: "u1", Name: "Ada"}, {ID: "u2", Name: "Grace"}})
	st.Projects.ResolveList(st.Projects.BeginList(), []model.Project{
		{ID: "p1", Name: "Apollo", Status: model.ProjectActive, CreatedAt: base,
			Members: []model.Member{{User: model.UserRef{ID: "u1"}, Role: model.RoleLeader}}},
		{ID: "p2", Name: "Gemini", Status: model.ProjectPlanning, CreatedAt: base.AddDate(0, 1, 0)},
	})
	f := &fakeProjects{st: st}
	return New(st, f, keys.DefaultKeyMap(), 100, 30), f, st
}

func names(ps []model.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestListFiltersAndSorts(t *testing.T) {
	m, _, _ := setup(t)

	assert.Equal(t, []string{"Gemini", "Apollo"}, names(m.Visible()))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, []string{"Apollo", "Gemini"}, names(m.Visible()))

	m, _ = m.Update(press("1")) // planning
	assert.Equal(t, []string{"Gemini"}, names(m.Visible()))

	m, _ = m.Update(press("1")) // active
	m, _ = m.Update(press("3"))
	assert.Equal(t, []string{"Apollo"}, names(m.Visible()))
	assert.Contains(t, m.View(), "active | mine | oldest first")
}

func TestSearchNarrowsByName(t *testing.T) {
	m, _, _ := setup(t)

	m, _ = m.Update(press("/"))
	assert.True(t, m.Editing())
	for _, r := range "gem" {
		m, _ = m.Update(press(string(r)))
	}
	assert.Equal(t, []string{"Gemini"}, names(m.Visible()))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Editing())
	assert.Contains(t, m.View(), `"gem"`)

	m, _ = m.Update(press("/"))
	m, _ = m.Update(press("x"))
	assert.Empty(t, m.Visible())
	assert.Contains(t, m.View(), "No matching projects")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())
	assert.Len(t, m.Visible(), 2)
}

func TestClearFiltersKeepsSort(t *testing.T) {
	m, _, _ := setup(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(press("3"))
	require.Len(t, m.Visible(), 1)

	m, _ = m.Update(press("0"))
	assert.Equal(t, []string{"Apollo", "Gemini"}, names(m.Visible()))
}

func TestEnterOpensProjectTasks(t *testing.T) {
	m, _, _ := setup(t)

	m, _ = m.Update(press("j"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, OpenTasksMsg{ProjectID: "p1"}, cmd())
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m, f, _ := setup(t)

	m, _ = m.Update(press("d"))
	assert.True(t, m.Editing())
	assert.Contains(t, m.View(), `Delete project "Gemini"?`)

	m.fb.confirm = true
	cmd := m.deleteProject(m.editingID)
	msg := cmd()
	assert.Equal(t, ChangedMsg{}, msg)
	assert.Equal(t, []string{"p2"}, f.removed)

	m.mode = modeList
	m, _ = m.Update(msg)
	assert.Equal(t, []string{"Apollo"}, names(m.Visible()))
}

func TestMembersShowPendingAdditions(t *testing.T) {
	m, _, st := setup(t)
	m.filter.Sort = ""

	m, _ = m.Update(press("m"))
	require.Equal(t, modeMembers, m.mode)
	assert.Contains(t, m.View(), "Apollo members")
	assert.Contains(t, m.View(), "Ada")

	st.PendingMembers.Add("p1", model.Member{User: model.UserRef{ID: "u2", Name: "Grace"}, Role: model.RoleDeveloper})
	view := m.View()
	assert.Contains(t, view, "Grace  adding...")

	// Pending entries cannot be removed yet.
	m, _ = m.Update(press("j"))
	_, cmd := m.Update(press("x"))
	assert.Nil(t, cmd)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeList, m.mode)
}

func TestMutationErrorIsShown(t *testing.T) {
	m, _, _ := setup(t)

	m, _ = m.Update(ChangedMsg{Err: apperr.Wrap("delete", "project", "p9", apperr.NotFound("project not found"))})
	assert.Contains(t, m.View(), "Error: project not found")
}
