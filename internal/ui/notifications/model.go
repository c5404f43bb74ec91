// Package notifications renders the viewer's notification inbox.
package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/crossref"
	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/selector"
	"github.com/nhle/project-dashboard/internal/state"
	"github.com/nhle/project-dashboard/internal/theme"
)

// CloseMsg signals the parent to close the inbox.
type CloseMsg struct{}

// OpenMsg asks the parent to navigate to a notification's target.
type OpenMsg struct {
	Target crossref.Target
}

// ChangedMsg reports the outcome of a read-state mutation.
type ChangedMsg struct {
	Err error
}

// Notifications is the part of the notification coordinator this view
// drives.
type Notifications interface {
	MarkAsRead(ctx context.Context, id string) (model.Notification, error)
	MarkAllAsRead(ctx context.Context) ([]model.Notification, error)
}

// Model is the notification inbox.
type Model struct {
	state      *state.AppState
	notifier   Notifications
	keys       *keys.KeyMap
	unreadOnly bool
	cursor     int
	statusMsg  string
	width      int
	height     int
}

func New(s *state.AppState, n Notifications, k *keys.KeyMap, width, height int) Model {
	return Model{state: s, notifier: n, keys: k, width: width, height: height}
}

// Visible returns the notifications shown, newest first.
func (m Model) Visible() []model.Notification {
	ns := m.state.Notifications.List()
	if m.unreadOnly {
		ns = selector.UnreadOnly(ns)
	}
	return selector.SortNotifications(ns)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg:
		m.statusMsg = ""
		if msg.Err != nil {
			m.statusMsg = "Error: " + apperr.Message(msg.Err)
		}
		m.cursor = min(m.cursor, max(len(m.Visible())-1, 0))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	visible := m.Visible()

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(visible) > 0 {
			m.cursor = (m.cursor + 1) % len(visible)
		}

	case key.Matches(msg, m.keys.Up):
		if len(visible) > 0 {
			m.cursor = (m.cursor - 1 + len(visible)) % len(visible)
		}

	case key.Matches(msg, m.keys.FilterStatus):
		m.unreadOnly = !m.unreadOnly
		m.cursor = 0

	case key.Matches(msg, m.keys.MarkRead):
		if m.cursor < len(visible) && !visible[m.cursor].Read {
			return m, m.markRead(visible[m.cursor].ID)
		}

	case key.Matches(msg, m.keys.MarkAll):
		if selector.UnreadCount(visible) > 0 {
			return m, m.markAll()
		}

	case key.Matches(msg, m.keys.Select):
		if m.cursor >= len(visible) {
			return m, nil
		}
		n := visible[m.cursor]
		target := crossref.ParseLink(n.Link)
		cmds := []tea.Cmd{}
		if !n.Read {
			cmds = append(cmds, m.markRead(n.ID))
		}
		if target.Kind != "" {
			cmds = append(cmds, func() tea.Msg { return OpenMsg{Target: target} })
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m Model) markRead(id string) tea.Cmd {
	n := m.notifier
	return func() tea.Msg {
		_, err := n.MarkAsRead(context.Background(), id)
		return ChangedMsg{Err: err}
	}
}

func (m Model) markAll() tea.Cmd {
	n := m.notifier
	return func() tea.Msg {
		_, err := n.MarkAllAsRead(context.Background())
		return ChangedMsg{Err: err}
	}
}

// View renders the inbox.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	title := fmt.Sprintf("Notifications (%d unread)", selector.UnreadCount(m.state.Notifications.List()))
	if m.unreadOnly {
		title += "  " + theme.DimmedStyle.Render("unread only")
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	visible := m.Visible()
	if len(visible) == 0 {
		b.WriteString(theme.DimmedStyle.Render("You're all caught up."))
	}
	for i, n := range visible {
		label := fmt.Sprintf("%s %s  %s",
			theme.NotificationStyle(string(n.Type)).Render(typeLabel(n.Type)),
			n.Message,
			theme.DimmedStyle.Render(age(n.CreatedAt)),
		)
		if !n.Read {
			label = theme.UnreadStyle.Render("● ") + label
		} else {
			label = "  " + theme.DimmedStyle.Render(label)
		}
		if i == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("enter open | x mark read | X mark all | 1 unread only | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func typeLabel(t model.NotificationType) string {
	if t == "" {
		return "notice"
	}
	return strings.ReplaceAll(string(t), "_", " ")
}

func age(t time.Time) string {
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
	default:
		return t.Format("Jan 02")
	}
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
