package selector

import (
	"sort"
	"time"

	"github.com/nhle/project-dashboard/internal/model"
)

// WorkLogFilter narrows work logs. ProjectID is resolved through the
// task each entry was logged against.
type WorkLogFilter struct {
	TaskID    string
	UserID    string
	ProjectID string
	From      *time.Time
	To        *time.Time
}

// FilterWorkLogs returns the entries matching f. tasks is only consulted
// for the project criterion; entries whose task is unknown never match a
// project.
func FilterWorkLogs(logs []model.WorkLog, tasks []model.Task, f WorkLogFilter) []model.WorkLog {
	var projectOf map[string]string
	if f.ProjectID != "" {
		projectOf = make(map[string]string, len(tasks))
		for _, t := range tasks {
			projectOf[t.ID] = t.ProjectID
		}
	}

	out := make([]model.WorkLog, 0, len(logs))
	for _, l := range logs {
		if f.TaskID != "" && l.TaskID != f.TaskID {
			continue
		}
		if f.UserID != "" && l.UserID != f.UserID {
			continue
		}
		if projectOf != nil && projectOf[l.TaskID] != f.ProjectID {
			continue
		}
		day := startOfDay(l.Date)
		if f.From != nil && day.Before(startOfDay(*f.From)) {
			continue
		}
		if f.To != nil && day.After(startOfDay(*f.To)) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// TotalHours sums the hours of logs.
func TotalHours(logs []model.WorkLog) float64 {
	var total float64
	for _, l := range logs {
		total += l.Hours
	}
	return total
}

// HoursByUser sums hours per user id.
func HoursByUser(logs []model.WorkLog) map[string]float64 {
	out := make(map[string]float64)
	for _, l := range logs {
		out[l.UserID] += l.Hours
	}
	return out
}

// DayTotal is the hours logged on one calendar day.
type DayTotal struct {
	Date  time.Time
	Hours float64
}

// HoursByDate sums hours per calendar day, oldest day first.
func HoursByDate(logs []model.WorkLog) []DayTotal {
	sums := make(map[time.Time]float64)
	for _, l := range logs {
		sums[startOfDay(l.Date)] += l.Hours
	}
	out := make([]DayTotal, 0, len(sums))
	for d, h := range sums {
		out = append(out, DayTotal{Date: d, Hours: h})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
