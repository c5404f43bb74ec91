package selector

import (
	"time"

	"github.com/nhle/project-dashboard/internal/model"
)

// Summary is the dashboard landing view.
type Summary struct {
	TasksByStatus  map[model.TaskStatus]int
	MyOpenTasks    int
	OverdueTasks   int
	ActiveProjects int
	Unread         int
}

// DashboardSummary aggregates the stores for viewerID at time now.
func DashboardSummary(projects []model.Project, tasks []model.Task, ns []model.Notification, viewerID string, now time.Time) Summary {
	s := Summary{TasksByStatus: make(map[model.TaskStatus]int, len(model.TaskStatuses))}
	for _, st := range model.TaskStatuses {
		s.TasksByStatus[st] = 0
	}
	for _, t := range tasks {
		s.TasksByStatus[t.Status]++
		open := t.Status != model.StatusCompleted && t.Status != model.StatusCancelled
		if open && t.AssignedTo(viewerID) {
			s.MyOpenTasks++
		}
		if t.IsOverdue(now) {
			s.OverdueTasks++
		}
	}
	for _, p := range projects {
		if p.Status == model.ProjectActive {
			s.ActiveProjects++
		}
	}
	s.Unread = UnreadCount(ns)
	return s
}
