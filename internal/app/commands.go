package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/ui/command"
)

// opTimeout bounds a single user-triggered operation.
const opTimeout = 30 * time.Second

type viewerLoadedMsg struct{ err error }

type taskLoadedMsg struct {
	taskID string
	err    error
}

// mutationMsg reports a finished user-triggered mutation. done is the
// confirmation shown on success.
type mutationMsg struct {
	done        string
	err         error
	deletedTask string
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// loadViewer resolves the signed-in user so "my tasks" filters work.
func (m Model) loadViewer() tea.Cmd {
	users := m.coord.Users
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		_, err := users.FetchViewer(ctx)
		return viewerLoadedMsg{err: err}
	}
}

// loadTask fetches a task's detail and its comments. The detail store
// drops the response when the viewer has moved on to another task.
func (m Model) loadTask(taskID string) tea.Cmd {
	tasks, comments := m.coord.Tasks, m.coord.Comments
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		if _, err := tasks.FetchByID(ctx, taskID); err != nil {
			return taskLoadedMsg{taskID: taskID, err: err}
		}
		_, err := comments.FetchAll(ctx, taskID)
		return taskLoadedMsg{taskID: taskID, err: err}
	}
}

// refreshNow triggers every background job, plus the open task.
func (m Model) refreshNow() tea.Cmd {
	if m.poller != nil {
		m.poller.RefreshAll()
	}
	if m.currentView == ViewDetail && m.detail.TaskID() != "" {
		return m.loadTask(m.detail.TaskID())
	}
	return nil
}

func (m Model) saveTask(taskID string, in model.TaskInput) tea.Cmd {
	tasks := m.coord.Tasks
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		if taskID == "" {
			t, err := tasks.Create(ctx, in)
			return mutationMsg{done: "Created " + t.Title, err: err}
		}
		t, err := tasks.Update(ctx, taskID, in)
		return mutationMsg{done: "Saved " + t.Title, err: err}
	}
}

func (m Model) setStatus(taskID string, status model.TaskStatus) tea.Cmd {
	tasks := m.coord.Tasks
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		t, err := tasks.SetStatus(ctx, taskID, status)
		return mutationMsg{done: t.Title + " is now " + string(t.Status), err: err}
	}
}

func (m Model) removeTask(taskID string) tea.Cmd {
	tasks := m.coord.Tasks
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		if err := tasks.Remove(ctx, taskID); err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{done: "Task deleted", deletedTask: taskID}
	}
}

func (m Model) addComment(taskID, content string) tea.Cmd {
	comments := m.coord.Comments
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		_, err := comments.Add(ctx, taskID, model.CommentInput{Content: content})
		return mutationMsg{done: "Comment posted", err: err}
	}
}

func (m Model) saveWorkLog(logID string, in model.WorkLogInput) tea.Cmd {
	logs := m.coord.WorkLogs
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		var err error
		if logID == "" {
			_, err = logs.Create(ctx, in)
		} else {
			_, err = logs.Update(ctx, logID, in)
		}
		return mutationMsg{done: fmt.Sprintf("Logged %.1fh", in.Hours), err: err}
	}
}

func (m Model) markAllRead() tea.Cmd {
	n := m.coord.Notifications
	return func() tea.Msg {
		ctx, cancel := opContext()
		defer cancel()
		_, err := n.MarkAllAsRead(ctx)
		return mutationMsg{done: "All notifications read", err: err}
	}
}

// logoutAndQuit drops the session, in memory, on disk and in the
// credential store, then exits.
func (m Model) logoutAndQuit() tea.Cmd {
	coord, logout, poller, log := m.coord, m.logout, m.poller, m.log
	return func() tea.Msg {
		if poller != nil {
			poller.Stop()
		}
		ctx, cancel := opContext()
		defer cancel()
		coord.Logout(ctx)
		if logout != nil {
			if err := logout(ctx); err != nil {
				log.Warn().Err(err).Msg("clearing credentials")
			}
		}
		return tea.QuitMsg{}
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	switch cmd.Name {
	case "refresh", "sync":
		m.statusMsg = "Refreshing..."
		return m.refreshNow()
	case "quit", "q":
		return m.quit()
	case "logout":
		return m.logoutAndQuit()
	case "projects":
		m.currentView = ViewProjects
		return nil
	case "notifications", "inbox":
		m.currentView = ViewNotifications
		return nil
	case "settings", "profile":
		cmd := m.openSettings()
		m.previousView = ViewList
		return cmd
	case "tasks":
		m.currentView = ViewList
		return m.taskList.SetProjectFilter("")
	case "new task", "new":
		m.currentView = ViewList
		return m.startCreate()
	case "read all":
		return m.markAllRead()
	case "mine":
		m.currentView = ViewList
		return m.taskList.SetMine(true)
	case "overdue", "today", "upcoming":
		m.currentView = ViewList
		return m.taskList.SetDueFilter(cmd.Name)
	case "clear":
		m.currentView = ViewList
		return m.taskList.ClearFilters()
	default:
		m.lastErr = "Unknown command: " + cmd.Name
		return nil
	}
}
