package worklogform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/model"
)

func TestStartCreateDefaultsToToday(t *testing.T) {
	today := time.Date(2026, 3, 9, 15, 4, 0, 0, time.UTC)
	m := New(100, 40)
	m.StartCreate(model.Task{ID: "t1", Title: "Write docs"}, today)

	m.fb.hours = "1,5"
	m.fb.description = "  drafting "
	in := m.Input()
	assert.Equal(t, "t1", in.TaskID)
	assert.Equal(t, 1.5, in.Hours)
	assert.Equal(t, "2026-03-09", in.Date.Format(dateLayout))
	assert.Equal(t, "drafting", in.Description)
	assert.NoError(t, in.Validate())
	assert.Contains(t, m.View(), "Log Time")
	assert.Contains(t, m.View(), "Write docs")
}

func TestStartEditLoadsEntry(t *testing.T) {
	m := New(100, 40)
	m.StartEdit(model.Task{ID: "t1"}, model.WorkLog{
		ID: "w1", TaskID: "t1", Hours: 2.25,
		Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Description: "review",
	})

	assert.Equal(t, "2.25", m.fb.hours)
	assert.Equal(t, "2026-02-01", m.fb.date)
	assert.Contains(t, m.View(), "Edit Time Entry")
}

func TestInvalidInputFailsModelValidation(t *testing.T) {
	m := New(100, 40)
	m.StartCreate(model.Task{ID: "t1"}, time.Now())
	m.fb.hours = "lots"

	in := m.Input()
	assert.Zero(t, in.Hours)
	assert.Error(t, in.Validate())
}

func TestParseHours(t *testing.T) {
	h, err := parseHours("90m")
	require.NoError(t, err)
	assert.Equal(t, 1.5, h)

	h, err = parseHours(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3.0, h)

	_, err = parseHours("xm")
	assert.Error(t, err)

	assert.NoError(t, validateHours("0.5"))
	assert.Error(t, validateHours("0"))
	assert.Error(t, validateHours(""))
	assert.NoError(t, validateDate("2026-01-31"))
	assert.Error(t, validateDate("31/01/2026"))
}
