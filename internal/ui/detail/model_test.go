package detail

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

func seeded() *state.AppState {
	st := state.New()
	st.Users.ResolveList(st.Users.BeginList(), []model.User{{ID: "u1", Name: "Ada"}})
	st.Projects.ResolveList(st.Projects.BeginList(), []model.Project{{ID: "p1", Name: "Apollo"}})
	st.Tasks.ResolveList(st.Tasks.BeginList(), []model.Task{{
		ID:          "t1",
		Title:       "Write docs",
		Description: "Cover the API",
		Status:      model.StatusReview,
		Priority:    model.PriorityHigh,
		ProjectID:   "p1",
		Assignees:   []model.UserRef{{ID: "u1"}, {ID: "gone", Name: "Former Member"}},
	}})
	return st
}

func TestRendersResolvedReferences(t *testing.T) {
	st := seeded()
	st.Comments("t1").ResolveList(st.Comments("t1").BeginList(), []model.Comment{
		{ID: "c1", Author: model.UserRef{ID: "u1"}, Content: "first draft is up"},
		{ID: "c2", Author: model.UserRef{ID: "u9"}, Content: "anonymous note"},
	})
	st.WorkLogs.PutAll([]model.WorkLog{
		{ID: "w1", TaskID: "t1", UserID: "u1", Hours: 1.5},
		{ID: "w2", TaskID: "t1", UserID: "u1", Hours: 2},
		{ID: "w3", TaskID: "t9", Hours: 8},
	})

	m := New(st, keys.DefaultKeyMap(), 100, 60)
	m.Show("t1")
	view := m.View()

	assert.Contains(t, view, "Write docs")
	assert.Contains(t, view, "Apollo")
	assert.Contains(t, view, "Ada, Former Member")
	assert.Contains(t, view, "3.5h in 2 entries")
	assert.Contains(t, view, "Ada 3.5h")
	assert.Contains(t, view, "Comments (2)")
	assert.Contains(t, view, "first draft is up")
	assert.Contains(t, view, "Unknown user")
}

func TestPrefersDetailSlotOverListCopy(t *testing.T) {
	st := seeded()
	st.Tasks.Focus("t1")
	st.Tasks.ResolveDetail(model.Task{ID: "t1", Title: "Write better docs", ProjectID: "p1"})

	m := New(st, keys.DefaultKeyMap(), 100, 40)
	m.Show("t1")
	assert.Contains(t, m.View(), "Write better docs")
}

func TestMissingTaskStates(t *testing.T) {
	st := state.New()
	m := New(st, keys.DefaultKeyMap(), 80, 20)
	assert.Contains(t, m.View(), "No task selected")

	m.Show("t404")
	st.Tasks.Focus("t404")
	assert.Contains(t, m.View(), "Loading task details")

	st.Tasks.RejectDetail("t404", errors.New("not found"))
	assert.Contains(t, m.View(), "Task not available")

	st.Tasks.BeginList()
	assert.Contains(t, m.View(), "Task not available", "a list refresh is not a detail load")
}

func TestCommentInputEmitsTrimmedComment(t *testing.T) {
	m := New(seeded(), keys.DefaultKeyMap(), 100, 40)
	m.Show("t1")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.True(t, m.Writing())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("  ship it ")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.Writing())
	require.NotNil(t, cmd)
	assert.Equal(t, CommentMsg{TaskID: "t1", Content: "ship it"}, cmd())
}

func TestBlankCommentIsDropped(t *testing.T) {
	m := New(seeded(), keys.DefaultKeyMap(), 100, 40)
	m.Show("t1")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestActionKeys(t *testing.T) {
	m := New(seeded(), keys.DefaultKeyMap(), 100, 40)
	m.Show("t1")

	for k, action := range map[string]string{"t": "transition", "e": "edit", "d": "delete", "l": "log"} {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		require.NotNil(t, cmd, k)
		assert.Equal(t, ActionMsg{Action: action, TaskID: "t1"}, cmd())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestOverdueBadge(t *testing.T) {
	st := seeded()
	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.Tasks.Put(model.Task{ID: "t2", Title: "Late", Status: model.StatusTodo, EndDate: &past})

	nowFunc = func() time.Time { return past.AddDate(0, 0, 3) }
	t.Cleanup(func() { nowFunc = time.Now })

	m := New(st, keys.DefaultKeyMap(), 100, 40)
	m.Show("t2")
	assert.Contains(t, m.View(), "OVERDUE")
}

func TestNextStatus(t *testing.T) {
	assert.Equal(t, model.StatusInProgress, NextStatus(model.StatusTodo))
	assert.Equal(t, model.StatusReview, NextStatus(model.StatusInProgress))
	assert.Equal(t, model.StatusCompleted, NextStatus(model.StatusReview))
	assert.Equal(t, model.StatusTodo, NextStatus(model.StatusCompleted))
	assert.Equal(t, model.StatusTodo, NextStatus(model.StatusCancelled))
}
