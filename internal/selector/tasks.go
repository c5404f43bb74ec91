// Package selector derives filtered, sorted and aggregated views from
// store contents. Selectors are pure: they never modify their inputs and
// return the same output for the same input.
package selector

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/project-dashboard/internal/model"
)

// All is the filter value that disables a criterion.
const All = "all"

// TaskFilter narrows a task list. Criteria combine with AND; an empty or
// All value leaves that criterion out.
type TaskFilter struct {
	Query     string // case-insensitive substring of the title
	Status    string // task status or All
	Priority  string // priority or All
	ProjectID string // project id or All
	Mine      bool   // only tasks assigned to ViewerID
	ViewerID  string
	Due       string // "overdue", "today", "upcoming" (next 7 days) or All
	SortBy    string // "", "priority", "end_date", "created_at", "title"
	SortDesc  bool
	Now       time.Time // reference time for Due; zero means time.Now()
}

func active(v string) bool {
	return v != "" && v != All
}

// FilterTasks returns the tasks matching f in input order unless f.SortBy
// asks otherwise.
func FilterTasks(tasks []model.Task, f TaskFilter) []model.Task {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		if active(f.Status) && string(t.Status) != f.Status {
			continue
		}
		if active(f.Priority) && string(t.Priority) != f.Priority {
			continue
		}
		if active(f.ProjectID) && t.ProjectID != f.ProjectID {
			continue
		}
		if f.Mine && !t.AssignedTo(f.ViewerID) {
			continue
		}
		if active(f.Due) && !matchesDue(t, f.Due, now) {
			continue
		}
		out = append(out, t)
	}

	if f.SortBy != "" {
		sortTasks(out, f.SortBy, f.SortDesc)
	}
	return out
}

func matchesDue(t model.Task, due string, now time.Time) bool {
	if t.EndDate == nil {
		return false
	}
	today := startOfDay(now)
	end := startOfDay(*t.EndDate)
	switch due {
	case "overdue":
		return t.IsOverdue(today)
	case "today":
		return end.Equal(today)
	case "upcoming":
		return !end.Before(today) && end.Before(today.AddDate(0, 0, 7))
	default:
		return true
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sortTasks(tasks []model.Task, by string, desc bool) {
	less := func(a, b model.Task) bool {
		switch by {
		case "priority":
			return a.Priority.Rank() < b.Priority.Rank()
		case "end_date":
			return timeOrMax(a.EndDate).Before(timeOrMax(b.EndDate))
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
		return false
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if desc {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

// timeOrMax sorts tasks without an end date last.
func timeOrMax(t *time.Time) time.Time {
	if t == nil {
		return time.Unix(1<<62, 0)
	}
	return *t
}

// ByStatus is the single-criterion shorthand used by board columns.
func ByStatus(tasks []model.Task, status model.TaskStatus) []model.Task {
	return FilterTasks(tasks, TaskFilter{Status: string(status)})
}

// StatusColumn is one column of a task board.
type StatusColumn struct {
	Status model.TaskStatus
	Tasks  []model.Task
}

// GroupTasksByStatus splits tasks into one column per known status, in
// workflow order. Tasks with an unrecognised status are left out.
func GroupTasksByStatus(tasks []model.Task) []StatusColumn {
	cols := make([]StatusColumn, 0, len(model.TaskStatuses))
	idx := make(map[model.TaskStatus]int, len(model.TaskStatuses))
	for i, s := range model.TaskStatuses {
		cols = append(cols, StatusColumn{Status: s, Tasks: []model.Task{}})
		idx[s] = i
	}
	for _, t := range tasks {
		if i, ok := idx[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

// TasksForProject returns the tasks belonging to projectID.
func TasksForProject(tasks []model.Task, projectID string) []model.Task {
	if projectID == "" {
		return []model.Task{}
	}
	return FilterTasks(tasks, TaskFilter{ProjectID: projectID})
}
