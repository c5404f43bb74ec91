package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task        model.Task
	ProjectName string
	Overdue     bool
}

func (i TaskItem) FilterValue() string { return i.Task.Title }

func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		string(i.Task.Status),
		string(i.Task.Priority),
		relativeTime(i.Task.UpdatedAt),
	}
	return strings.Join(parts, " | ")
}

// TaskDelegate implements list.ItemDelegate for rendering task rows.
type TaskDelegate struct{}

func (d TaskDelegate) Height() int { return 1 }

func (d TaskDelegate) Spacing() int { return 0 }

func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	task := ti.Task

	prefix := "○"
	if task.Status == model.StatusCompleted {
		prefix = "✓"
	}

	statusBadge := theme.StatusStyle(string(task.Status)).Render(statusLabel(task.Status))
	priBadge := theme.PriorityStyle(string(task.Priority)).Render(priorityLabel(task.Priority))

	projectBadge := ""
	if ti.ProjectName != "" {
		projectBadge = lipgloss.NewStyle().
			Foreground(theme.ColorBlue).
			Render(" [" + ti.ProjectName + "]")
	}

	dueStr := ""
	if task.EndDate != nil {
		dueStr = theme.DimmedStyle.Render(" " + task.EndDate.Format("Jan 02"))
	}

	overdueStr := ""
	if ti.Overdue {
		overdueStr = theme.OverdueStyle.Render(" OVERDUE")
	}

	line := fmt.Sprintf(
		"%s %s %s %s%s%s%s",
		prefix, statusBadge, priBadge, task.Title,
		projectBadge, dueStr, overdueStr,
	)

	if task.Status == model.StatusCompleted || task.Status == model.StatusCancelled {
		line = theme.DimmedStyle.Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "HI"
	case model.PriorityMedium:
		return "MD"
	case model.PriorityLow:
		return "LO"
	default:
		return "--"
	}
}

// statusLabel renders a status for display, e.g. "in progress".
func statusLabel(s model.TaskStatus) string {
	return strings.ReplaceAll(string(s), "_", " ")
}
