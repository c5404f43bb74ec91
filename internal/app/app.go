package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/project-dashboard/internal/api"
	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/coordinator"
	"github.com/nhle/project-dashboard/internal/credential"
	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/selector"
	"github.com/nhle/project-dashboard/internal/state"
	appsync "github.com/nhle/project-dashboard/internal/sync"
	"github.com/nhle/project-dashboard/internal/ui"
	"github.com/nhle/project-dashboard/internal/ui/command"
	"github.com/nhle/project-dashboard/internal/ui/detail"
	helpview "github.com/nhle/project-dashboard/internal/ui/help"
	"github.com/nhle/project-dashboard/internal/ui/notifications"
	"github.com/nhle/project-dashboard/internal/ui/projectlist"
	"github.com/nhle/project-dashboard/internal/ui/settings"
	"github.com/nhle/project-dashboard/internal/ui/taskform"
	"github.com/nhle/project-dashboard/internal/ui/tasklist"
	"github.com/nhle/project-dashboard/internal/ui/worklogform"
)

// NotificationMsg is sent into the program after the live feed delivered
// a notification and the notification coordinator applied it.
type NotificationMsg struct {
	Notification model.Notification
}

// FeedStoppedMsg reports that the live feed gave up.
type FeedStoppedMsg struct {
	Err error
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewTaskForm
	ViewProjects
	ViewNotifications
	ViewSettings
	ViewWorkLogForm
)

// Deps are the collaborators the root model drives.
type Deps struct {
	State        *state.AppState
	Coordinators *coordinator.Set
	Poller       *appsync.Poller
	Logger       zerolog.Logger

	// Logout clears stored credentials; nil skips that step.
	Logout func(ctx context.Context) error

	// Connection settings shown in the settings view. Tokens and
	// SaveConfig may be nil.
	Config     model.APIConfig
	Tokens     credential.Store
	SaveConfig func(cfg model.APIConfig) error
}

// Model is the root Bubble Tea model that manages view routing and
// layout. Views read the stores directly; every change goes through a
// coordinator in a tea.Cmd.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	state        *state.AppState
	coord        *coordinator.Set
	poller       *appsync.Poller
	log          zerolog.Logger
	logout       func(ctx context.Context) error

	taskList      tasklist.Model
	detail        detail.Model
	helpView      helpview.Model
	commandView   command.Model
	taskForm      taskform.Model
	projectView   projectlist.Model
	notifications notifications.Model
	settingsView  settings.Model
	workLogForm   worklogform.Model

	ready            bool
	authErrorMessage string
	lastErr          string
	statusMsg        string
}

// New creates the root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView:   ViewList,
		keys:          k,
		state:         d.State,
		coord:         d.Coordinators,
		poller:        d.Poller,
		log:           d.Logger.With().Str("component", "ui").Logger(),
		logout:        d.Logout,
		taskList:      tasklist.New(d.State, k, 80, 24),
		detail:        detail.New(d.State, k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
		taskForm:      taskform.New(80, 24),
		workLogForm:   worklogform.New(80, 24),
		projectView:   projectlist.New(d.State, d.Coordinators.Projects, k, 80, 24),
		notifications: notifications.New(d.State, d.Coordinators.Notifications, k, 80, 24),
		settingsView: settings.New(d.State, settings.Deps{
			Profiles:   d.Coordinators.Profiles,
			Tokens:     d.Tokens,
			Verify:     d.Coordinators.Users.FetchViewer,
			Config:     d.Config,
			SaveConfig: d.SaveConfig,
		}, k, 80, 24),
	}
}

// Init resolves the viewer and starts the background refresh jobs.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadViewer(), m.taskList.Reload()}
	if m.poller != nil {
		cmds = append(cmds, m.poller.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.taskList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.projectView.SetSize(w, h)
		m.notifications.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.workLogForm.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case viewerLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		}
		return m, m.refreshViews()

	case appsync.SyncResultMsg:
		switch {
		case msg.AuthError != nil:
			m.authErrorMessage = msg.AuthError.Message
		case msg.Error != nil:
			m.setError(msg.Error)
		default:
			m.authErrorMessage = ""
		}
		return m, tea.Batch(m.refreshViews(), m.poller.WaitForNextResult())

	case NotificationMsg:
		m.statusMsg = "New: " + msg.Notification.Message
		return m, nil

	case FeedStoppedMsg:
		if msg.Err != nil && !api.IsCanceled(msg.Err) {
			m.lastErr = "Live updates stopped: " + apperr.Message(msg.Err)
		}
		return m, nil

	case tasklist.SelectedTaskMsg:
		return m, m.openTask(msg.TaskID)

	case taskLoadedMsg:
		if msg.err != nil && msg.taskID == m.detail.TaskID() {
			m.setError(msg.err)
		}
		m.detail.Refresh()
		return m, nil

	case detail.BackMsg:
		m.state.Tasks.Blur()
		m.currentView = ViewList
		return m, m.taskList.Reload()

	case detail.ActionMsg:
		return m, m.handleTaskAction(msg.Action, msg.TaskID)

	case detail.CommentMsg:
		return m, m.addComment(msg.TaskID, msg.Content)

	case taskform.SubmittedMsg:
		m.currentView = m.previousView
		return m, m.saveTask(msg.TaskID, msg.Input)

	case taskform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case worklogform.SubmittedMsg:
		m.currentView = m.previousView
		return m, m.saveWorkLog(msg.LogID, msg.Input)

	case worklogform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.lastErr = ""
			m.statusMsg = msg.done
		}
		if msg.deletedTask != "" && m.currentView == ViewDetail && m.detail.TaskID() == msg.deletedTask {
			m.currentView = ViewList
		}
		return m, m.refreshViews()

	case projectlist.CloseMsg:
		m.currentView = ViewList
		return m, m.taskList.Reload()

	case projectlist.OpenTasksMsg:
		m.currentView = ViewList
		return m, m.taskList.SetProjectFilter(msg.ProjectID)

	case projectlist.ChangedMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		}
		var cmd tea.Cmd
		m.projectView, cmd = m.projectView.Update(msg)
		return m, tea.Batch(cmd, m.refreshViews())

	case notifications.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case notifications.OpenMsg:
		switch msg.Target.Kind {
		case "task":
			return m, m.openTask(msg.Target.ID)
		case "project":
			m.currentView = ViewList
			return m, m.taskList.SetProjectFilter(msg.Target.ID)
		}
		return m, nil

	case notifications.ChangedMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		}
		var cmd tea.Cmd
		m.notifications, cmd = m.notifications.Update(msg)
		return m, cmd

	case settings.DoneMsg:
		m.currentView = ViewList
		return m, nil

	case settings.SavedMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		}
		var cmd tea.Cmd
		m.settingsView, cmd = m.settingsView.Update(msg)
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if !m.capturingInput() {
			if cmd, handled := m.handleGlobalKey(msg); handled {
				return m, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturingInput reports whether the active view is collecting text, in
// which case global single-letter keys must reach it untouched.
func (m Model) capturingInput() bool {
	switch m.currentView {
	case ViewTaskForm, ViewWorkLogForm, ViewCommand:
		return true
	case ViewList:
		return m.taskList.Searching()
	case ViewDetail:
		return m.detail.Writing()
	case ViewProjects:
		return m.projectView.Editing()
	case ViewSettings:
		return m.settingsView.Editing()
	}
	return false
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	// Any key acknowledges the last error.
	m.lastErr = ""

	switch {
	case key.Matches(msg, m.keys.Quit) && m.currentView == ViewList:
		return m.quit(), true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case msg.String() == ":":
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = "Refreshing..."
		return m.refreshNow(), true
	}

	if m.currentView != ViewList {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Projects):
		m.previousView = m.currentView
		m.currentView = ViewProjects
		return nil, true

	case key.Matches(msg, m.keys.Notifications):
		m.previousView = m.currentView
		m.currentView = ViewNotifications
		return nil, true

	case key.Matches(msg, m.keys.Settings):
		return m.openSettings(), true

	case key.Matches(msg, m.keys.New):
		return m.startCreate(), true

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Delete), key.Matches(msg, m.keys.Transition):
		task, ok := m.taskList.SelectedTask()
		if !ok {
			return nil, true
		}
		action := "edit"
		switch {
		case key.Matches(msg, m.keys.Delete):
			action = "delete"
		case key.Matches(msg, m.keys.Transition):
			action = "transition"
		}
		return m.handleTaskAction(action, task.ID), true
	}
	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewWorkLogForm:
		m.workLogForm, cmd = m.workLogForm.Update(msg)
	case ViewProjects:
		m.projectView, cmd = m.projectView.Update(msg)
	case ViewNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// refreshViews re-reads the stores into the views that cache rendering.
func (m *Model) refreshViews() tea.Cmd {
	m.detail.Refresh()
	return m.taskList.Reload()
}

func (m *Model) setError(err error) {
	m.lastErr = apperr.Message(err)
	m.statusMsg = ""
	m.log.Debug().Err(err).Msg("operation failed")
}

func (m *Model) openTask(taskID string) tea.Cmd {
	if m.currentView != ViewDetail {
		m.previousView = m.currentView
	}
	m.currentView = ViewDetail
	m.detail.Show(taskID)
	return m.loadTask(taskID)
}

func (m *Model) openSettings() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m.settingsView.Open()
}

func (m *Model) startCreate() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewTaskForm
	m.taskForm.SetOptions(m.state.Projects.List(), m.state.Users.List())
	return m.taskForm.StartCreate(m.taskList.Filter().ProjectID)
}

func (m *Model) handleTaskAction(action, taskID string) tea.Cmd {
	task, ok := m.state.Tasks.Get(taskID)
	if cur, curOK := m.state.Tasks.Current(); curOK && cur.ID == taskID {
		task, ok = cur, true
	}
	if !ok {
		return nil
	}

	switch action {
	case "transition":
		return m.setStatus(taskID, detail.NextStatus(task.Status))
	case "delete":
		return m.removeTask(taskID)
	case "edit":
		m.previousView = m.currentView
		m.currentView = ViewTaskForm
		m.taskForm.SetOptions(m.state.Projects.List(), m.state.Users.List())
		return m.taskForm.StartEdit(task)
	case "log":
		m.previousView = m.currentView
		m.currentView = ViewWorkLogForm
		return m.workLogForm.StartCreate(task, time.Now())
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	if m.poller != nil {
		m.poller.Stop()
	}
	return tea.Quit
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(ui.Header{
		Title:  "Project Dashboard",
		Viewer: m.state.Viewer().Name,
		Unread: selector.UnreadCount(m.state.Notifications.List()),
		Sync:   m.syncStatus(),
	})

	var bar string
	switch {
	case m.lastErr != "":
		bar = m.layout.RenderErrorBar(m.lastErr)
	case m.authErrorMessage != "":
		bar = m.layout.RenderErrorBar(m.authErrorMessage)
	default:
		bar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.Frame(header, m.renderContent(), bar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewWorkLogForm:
		return m.workLogForm.View()
	case ViewProjects:
		return m.projectView.View()
	case ViewNotifications:
		return m.notifications.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the combined refresh state.
func (m Model) syncStatus() string {
	if m.poller == nil {
		return "offline"
	}
	statuses := m.poller.Statuses()
	if len(statuses) == 0 {
		return "no refresh jobs"
	}

	running := 0
	var failed []string
	var last time.Time
	for _, s := range statuses {
		switch s.State {
		case appsync.SyncRunning:
			running++
		case appsync.SyncError:
			failed = append(failed, s.Name)
		}
		if s.LastSync.After(last) {
			last = s.LastSync
		}
	}

	switch {
	case running > 0:
		return fmt.Sprintf("syncing (%d)", running)
	case len(failed) > 0:
		return "stale: " + strings.Join(failed, ", ")
	case !last.IsZero():
		return "synced " + last.Format("15:04")
	default:
		return "idle"
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | c comment | t next status | l log time | e edit | d delete | j/k scroll"
	case ViewTaskForm, ViewWorkLogForm:
		return "enter submit | esc cancel"
	case ViewProjects:
		return "enter tasks | / search | n new | e edit | d delete | m members | esc back"
	case ViewNotifications:
		return "enter open | x read | X read all | esc back"
	case ViewSettings:
		return "p profile | n notifications | c connection | v test | esc back"
	}

	hints := "q quit | ? help | n new | / search | p projects | N inbox | s settings | tab sort"
	if m.statusMsg != "" {
		hints = m.statusMsg + " | " + hints
	}
	if summary := m.taskList.FilterSummary(); summary != "" {
		return summary + " | 0 clear"
	}
	return hints
}
