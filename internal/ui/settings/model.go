// Package settings edits the viewer's profile, notification preferences
// and the backend connection.
package settings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/credential"
	"github.com/nhle/project-dashboard/internal/keys"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
	"github.com/nhle/project-dashboard/internal/theme"
)

// Mode is the current screen of the settings view.
type Mode int

const (
	ModeOverview Mode = iota
	ModeProfile
	ModeNotifications
	ModeConnection
	ModeValidating
	ModeValidateResult
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg reports the outcome of a settings mutation.
type SavedMsg struct {
	Done string
	Err  error
}

// ValidateResultMsg carries the result of a connection check.
type ValidateResultMsg struct {
	Name string
	Err  error
}

type profileLoadedMsg struct{ err error }

// Profiles is the part of the profile coordinator this view drives.
type Profiles interface {
	Fetch(ctx context.Context, userID string) (model.Profile, error)
	Update(ctx context.Context, userID string, in model.ProfileInput) (model.Profile, error)
	UpdateSettings(ctx context.Context, category model.SettingsCategory, values map[string]any) (model.Profile, error)
}

// Deps are the collaborators of the settings view. Tokens, Verify and
// SaveConfig may be nil, which disables the matching action.
type Deps struct {
	Profiles   Profiles
	Tokens     credential.Store
	Verify     func(ctx context.Context) (model.User, error)
	Config     model.APIConfig
	SaveConfig func(cfg model.APIConfig) error
}

// Notification preference keys stored in the notifications category.
const (
	PrefEmail     = "email"
	PrefPush      = "push"
	PrefMentions  = "mentions"
	PrefDeadlines = "deadlines"
)

type formBindings struct {
	name  string
	email string
	phone string
	bio   string

	prefEmail     bool
	prefPush      bool
	prefMentions  bool
	prefDeadlines bool

	baseURL   string
	streamURL string
	token     string
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode  Mode
	state *state.AppState
	deps  Deps
	keys  *keys.KeyMap

	form *huh.Form
	fb   *formBindings

	spinner    spinner.Model
	validName  string
	validError error
	statusMsg  string
	width      int
	height     int
}

// New creates the settings view.
func New(s *state.AppState, d Deps, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		mode:    ModeOverview,
		state:   s,
		deps:    d,
		keys:    k,
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Open resets the view to the overview and loads the viewer's profile.
func (m *Model) Open() tea.Cmd {
	m.mode = ModeOverview
	m.statusMsg = ""
	viewer := m.state.Viewer()
	if viewer.ID == "" || m.deps.Profiles == nil {
		return nil
	}
	profiles := m.deps.Profiles
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := profiles.Fetch(ctx, viewer.ID)
		return profileLoadedMsg{err: err}
	}
}

// Editing reports whether a form or the connection check has focus.
func (m Model) Editing() bool {
	return m.mode != ModeOverview
}

// Mode returns the active screen.
func (m Model) Mode() Mode { return m.mode }

func (m Model) profile() (model.Profile, bool) {
	return m.state.Profile.Get(m.state.Viewer().ID)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "Error loading profile: " + apperr.Message(msg.err)
		}
		return m, nil

	case SavedMsg:
		m.mode = ModeOverview
		if msg.Err != nil {
			m.statusMsg = "Error: " + apperr.Message(msg.Err)
		} else {
			m.statusMsg = msg.Done
		}
		return m, nil

	case ValidateResultMsg:
		m.validName = msg.Name
		m.validError = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeOverview:
			return m.handleOverviewKey(msg)
		case ModeValidating:
			if key.Matches(msg, m.keys.Back) {
				m.mode = ModeOverview
			}
			return m, nil
		case ModeValidateResult:
			return m.handleResultKey(msg)
		}
	}

	return m.updateForm(msg)
}

func (m Model) handleOverviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case msg.String() == "p":
		p, ok := m.profile()
		if !ok {
			m.statusMsg = "Profile not loaded yet"
			return m, nil
		}
		*m.fb = formBindings{name: p.Name, email: p.Email, phone: p.Phone, bio: p.Bio}
		m.form = m.buildProfileForm()
		m.mode = ModeProfile
		return m, m.form.Init()

	case msg.String() == "n":
		p, ok := m.profile()
		if !ok {
			m.statusMsg = "Profile not loaded yet"
			return m, nil
		}
		prefs := p.Category(model.SettingsNotifications)
		*m.fb = formBindings{
			prefEmail:     boolPref(prefs, PrefEmail, true),
			prefPush:      boolPref(prefs, PrefPush, true),
			prefMentions:  boolPref(prefs, PrefMentions, true),
			prefDeadlines: boolPref(prefs, PrefDeadlines, true),
		}
		m.form = m.buildNotificationForm()
		m.mode = ModeNotifications
		return m, m.form.Init()

	case msg.String() == "c":
		*m.fb = formBindings{baseURL: m.deps.Config.BaseURL, streamURL: m.deps.Config.StreamURL}
		m.form = m.buildConnectionForm()
		m.mode = ModeConnection
		return m, m.form.Init()

	case msg.String() == "v":
		if m.deps.Verify == nil {
			return m, nil
		}
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.verify())
	}
	return m, nil
}

func (m Model) handleResultKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = ModeOverview
		m.validName = ""
		m.validError = nil
		return m, nil
	case "r":
		if m.validError != nil && m.deps.Verify != nil {
			m.mode = ModeValidating
			return m, tea.Batch(m.spinner.Tick, m.verify())
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	switch m.mode {
	case ModeProfile, ModeNotifications, ModeConnection:
	default:
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = ModeOverview
		return m, nil
	case huh.StateCompleted:
		mode := m.mode
		m.mode = ModeOverview
		switch mode {
		case ModeProfile:
			return m, m.saveProfile()
		case ModeNotifications:
			return m, m.saveNotifications()
		case ModeConnection:
			return m.saveConnection()
		}
	}
	return m, cmd
}

// --- Forms ---

func (m Model) buildProfileForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Phone").
				Placeholder("Optional").
				Value(&m.fb.phone),
			huh.NewText().
				Title("Bio").
				Placeholder("Optional").
				Value(&m.fb.bio),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildNotificationForm() *huh.Form {
	toggle := func(title, desc string, v *bool) *huh.Confirm {
		return huh.NewConfirm().
			Title(title).
			Description(desc).
			Affirmative("On").
			Negative("Off").
			Value(v)
	}
	return huh.NewForm(
		huh.NewGroup(
			toggle("Email", "Send notifications by email", &m.fb.prefEmail),
			toggle("Push", "Show notifications in the app", &m.fb.prefPush),
			toggle("Mentions", "Notify when someone mentions you", &m.fb.prefMentions),
			toggle("Deadlines", "Notify before tasks are due", &m.fb.prefDeadlines),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildConnectionForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base URL").
				Description("REST API root (e.g., https://pm.example.com/api)").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Stream URL").
				Description("WebSocket endpoint for live notifications (optional)").
				Placeholder("wss://pm.example.com/api/notifications/stream").
				Value(&m.fb.streamURL).
				Validate(validateOptionalURL),
			huh.NewInput().
				Title("Session Token").
				Description("Leave blank to keep the stored token").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
		),
	).WithWidth(m.formWidth())
}

// --- Commands ---

func (m Model) saveProfile() tea.Cmd {
	profiles, userID := m.deps.Profiles, m.state.Viewer().ID
	in := model.ProfileInput{
		Name:  strings.TrimSpace(m.fb.name),
		Email: strings.TrimSpace(m.fb.email),
		Phone: strings.TrimSpace(m.fb.phone),
		Bio:   m.fb.bio,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := profiles.Update(ctx, userID, in)
		return SavedMsg{Done: "Profile saved", Err: err}
	}
}

func (m Model) saveNotifications() tea.Cmd {
	profiles := m.deps.Profiles
	values := map[string]any{
		PrefEmail:     m.fb.prefEmail,
		PrefPush:      m.fb.prefPush,
		PrefMentions:  m.fb.prefMentions,
		PrefDeadlines: m.fb.prefDeadlines,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := profiles.UpdateSettings(ctx, model.SettingsNotifications, values)
		return SavedMsg{Done: "Notification preferences saved", Err: err}
	}
}

// saveConnection stores the token right away; URL changes are written to
// the config file and apply on the next start.
func (m Model) saveConnection() (Model, tea.Cmd) {
	if token := strings.TrimSpace(m.fb.token); token != "" && m.deps.Tokens != nil {
		if err := m.deps.Tokens.SetToken(token); err != nil {
			m.statusMsg = fmt.Sprintf("Error saving token: %v", err)
			return m, nil
		}
	}

	cfg := m.deps.Config
	cfg.BaseURL = strings.TrimSpace(m.fb.baseURL)
	cfg.StreamURL = strings.TrimSpace(m.fb.streamURL)
	if cfg == m.deps.Config || m.deps.SaveConfig == nil {
		m.statusMsg = "Connection saved"
		return m, nil
	}

	save := m.deps.SaveConfig
	m.deps.Config = cfg
	return m, func() tea.Msg {
		return SavedMsg{Done: "Connection saved. Restart to apply the new URLs.", Err: save(cfg)}
	}
}

func (m Model) verify() tea.Cmd {
	verify := m.deps.Verify
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		u, err := verify(ctx)
		return ValidateResultMsg{Name: u.Name, Err: err}
	}
}

// --- View ---

// View renders the settings view for the current mode.
func (m Model) View() string {
	box := lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height)

	switch m.mode {
	case ModeProfile, ModeNotifications, ModeConnection:
		if m.form == nil {
			return ""
		}
		return box.Render(m.form.View())
	case ModeValidating:
		return box.Render(fmt.Sprintf("%s Testing connection...\n\nPress esc to cancel.", m.spinner.View()))
	case ModeValidateResult:
		return box.Render(m.viewValidateResult())
	}
	return box.Render(m.viewOverview())
}

func (m Model) viewOverview() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(14)
	row := func(k, v string) {
		b.WriteString(label.Render(k))
		b.WriteString(v)
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	if p, ok := m.profile(); ok {
		row("Name", p.Name)
		row("Email", p.Email)
		if p.Phone != "" {
			row("Phone", p.Phone)
		}
		prefs := p.Category(model.SettingsNotifications)
		var on []string
		for _, k := range []string{PrefEmail, PrefPush, PrefMentions, PrefDeadlines} {
			if boolPref(prefs, k, true) {
				on = append(on, k)
			}
		}
		if len(on) == 0 {
			on = []string{"none"}
		}
		row("Notify", strings.Join(on, ", "))
	} else {
		b.WriteString(theme.DimmedStyle.Render("Loading profile..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	row("API", orDash(m.deps.Config.BaseURL))
	row("Live feed", orDash(m.deps.Config.StreamURL))

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("p profile | n notifications | c connection | v test connection | esc back"))
	return b.String()
}

func (m Model) viewValidateResult() string {
	hint := lipgloss.NewStyle().Foreground(theme.ColorGray)
	if m.validError != nil {
		return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render("Connection failed") +
			"\n\n" + apperr.Message(m.validError) + "\n\n" +
			hint.Render("r retry | enter/esc back")
	}
	name := m.validName
	if name == "" {
		name = "OK"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render("Connection successful") +
		"\n\nSigned in as " + name + "\n\n" +
		hint.Render("enter/esc back")
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// --- Helpers ---

// boolPref reads a toggle from a settings category, falling back to def
// when the key is missing or not a boolean.
func boolPref(values map[string]any, name string, def bool) bool {
	v, ok := values[name].(bool)
	if !ok {
		return def
	}
	return v
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(s, "@") || strings.HasPrefix(s, "@") || strings.HasSuffix(s, "@") {
		return errors.New("enter a valid email address")
	}
	return nil
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return errors.New("enter a full URL including the scheme")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must use http or https")
	}
	return nil
}

func validateOptionalURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return errors.New("enter a full URL including the scheme")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.New("stream URL must use ws or wss")
	}
	return nil
}
