package taskform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/model"
)

func TestStartEditLoadsTask(t *testing.T) {
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	m := New(100, 40)
	m.SetOptions(
		[]model.Project{{ID: "p1", Name: "Apollo"}},
		[]model.User{{ID: "u1", Name: "Ada"}, {ID: "u2", Name: "Grace"}},
	)

	m.StartEdit(model.Task{
		ID:        "t1",
		Title:     "Write docs",
		Status:    model.StatusReview,
		Priority:  model.PriorityHigh,
		ProjectID: "p1",
		Assignees: model.Refs("u2", "u1"),
		EndDate:   &end,
	})

	in := m.Input()
	assert.Equal(t, "Write docs", in.Title)
	assert.Equal(t, model.StatusReview, in.Status)
	assert.Equal(t, model.PriorityHigh, in.Priority)
	assert.Equal(t, "p1", in.ProjectID)
	assert.Equal(t, []string{"u2", "u1"}, in.AssigneeIDs)
	assert.Nil(t, in.StartDate)
	require.NotNil(t, in.EndDate)
	assert.True(t, end.Equal(*in.EndDate))
	assert.Contains(t, m.View(), "Edit Task")
}

func TestStartCreateDefaults(t *testing.T) {
	m := New(100, 40)
	m.SetOptions([]model.Project{{ID: "p1", Name: "Apollo"}, {ID: "p2", Name: "Gemini"}}, nil)

	m.StartCreate("")
	in := m.Input()
	assert.Equal(t, model.StatusTodo, in.Status)
	assert.Equal(t, model.PriorityMedium, in.Priority)
	assert.Equal(t, "p1", in.ProjectID)
	assert.Contains(t, m.View(), "New Task")

	m.StartCreate("p2")
	assert.Equal(t, "p2", m.Input().ProjectID)
}

func TestEditingResetsPreviousValues(t *testing.T) {
	m := New(100, 40)
	m.StartEdit(model.Task{ID: "t1", Title: "Old", Assignees: model.Refs("u1")})
	m.StartCreate("p1")

	in := m.Input()
	assert.Empty(t, in.Title)
	assert.Empty(t, in.AssigneeIDs)
}

func TestDateHelpers(t *testing.T) {
	assert.NoError(t, validateOptionalDate(""))
	assert.NoError(t, validateOptionalDate("2026-02-28"))
	assert.Error(t, validateOptionalDate("28/02/2026"))

	assert.Nil(t, parseDate("  "))
	assert.Nil(t, parseDate("not a date"))
	got := parseDate("2026-02-28")
	require.NotNil(t, got)
	assert.Equal(t, "2026-02-28", formatDate(got))

	assert.Error(t, validateRequired("Title")("   "))
	assert.NoError(t, validateRequired("Title")("x"))
}
