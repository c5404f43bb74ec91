package coordinator

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/api"
	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/cache"
	"github.com/nhle/project-dashboard/internal/credential"
	"github.com/nhle/project-dashboard/internal/crossref"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/selector"
	"github.com/nhle/project-dashboard/internal/state"
	"github.com/nhle/project-dashboard/internal/testutil"
)

type harness struct {
	backend *testutil.Backend
	state   *state.AppState
	cache   *cache.SQLiteCache
	set     *Set
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := testutil.NewBackend(t)
	b.SetViewer(model.User{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	st := state.New()
	c := testutil.NewTestCache(t)
	set := New(Deps{
		API:   api.New(b.URL(), credential.NewMemory("session-1")),
		State: st,
		Cache: c,
	})
	return &harness{backend: b, state: st, cache: c, set: set}
}

func TestCreateProjectUsesServerIdentity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.set.Projects.Create(ctx, model.ProjectInput{Name: "X"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "X", first.Name)

	list := h.state.Projects.List()
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	second, err := h.set.Projects.Create(ctx, model.ProjectInput{Name: "Y"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, h.state.Projects.Len())
	assert.Equal(t, "Bearer session-1", h.backend.Requests()[0].Auth)
}

func TestCreateValidationMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.set.Projects.Create(ctx, model.ProjectInput{Name: "  "})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, "create", e.Op)
	assert.Equal(t, "project", e.Entity)

	_, err = h.set.Tasks.Create(ctx, model.TaskInput{Title: "No project"})
	assert.True(t, apperr.IsValidation(err))

	_, err = h.set.WorkLogs.Create(ctx, model.WorkLogInput{TaskID: "t1", Hours: 0, Date: time.Now()})
	assert.True(t, apperr.IsValidation(err))

	assert.Empty(t, h.backend.Requests())
	assert.Zero(t, h.state.Projects.Len())
}

func TestUpdateReplacesWithServerRecordAndIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedUsers(model.User{ID: "u2", Name: "Grace"})
	h.backend.SeedTasks(model.Task{ID: "t1", Title: "Old", Status: model.StatusTodo, ProjectID: "p1"})

	_, err := h.set.Tasks.FetchAll(ctx, api.TaskQuery{})
	require.NoError(t, err)

	in := model.TaskInput{
		Title:       "New title",
		Status:      model.StatusReview,
		Priority:    model.PriorityHigh,
		ProjectID:   "p1",
		AssigneeIDs: []string{"u2", "u2"},
	}
	updated, err := h.set.Tasks.Update(ctx, "t1", in)
	require.NoError(t, err)

	cached, ok := h.state.Tasks.Get("t1")
	require.True(t, ok)
	assert.Equal(t, updated, cached)
	server, _ := h.backend.Task("t1")
	assert.Equal(t, server.Title, cached.Title)
	assert.Equal(t, server.Status, cached.Status)
	require.Len(t, cached.Assignees, 1, "duplicate assignees are dropped")
	assert.Equal(t, "Grace", cached.Assignees[0].Name)

	_, err = h.set.Tasks.Update(ctx, "t1", in)
	require.NoError(t, err)
	again, _ := h.state.Tasks.Get("t1")
	assert.Equal(t, cached, again)
	assert.Equal(t, 1, h.state.Tasks.Len())
}

func TestFailedUpdateLeavesStoreUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedTasks(model.Task{ID: "t1", Title: "Stable", Status: model.StatusTodo, ProjectID: "p1"})
	_, err := h.set.Tasks.FetchAll(ctx, api.TaskQuery{})
	require.NoError(t, err)
	before := h.state.Tasks.List()

	h.backend.Fail(http.MethodPut, "/tasks/t1", http.StatusInternalServerError, "database unavailable")
	_, err = h.set.Tasks.Update(ctx, "t1", model.TaskInput{Title: "Changed", ProjectID: "p1"})
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindServer, e.Kind)
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Equal(t, "database unavailable", e.Message)
	assert.Equal(t, "update", e.Op)
	assert.Equal(t, "task", e.Entity)
	assert.Equal(t, "t1", e.ID)

	assert.Equal(t, before, h.state.Tasks.List())
	assert.NoError(t, h.state.Tasks.Err())
}

func TestUpdateMissingTaskIsNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.set.Tasks.Update(context.Background(), "ghost", model.TaskInput{Title: "x", ProjectID: "p1"})
	assert.True(t, apperr.IsNotFound(err))

	_, err = h.set.Tasks.SetStatus(context.Background(), "ghost", model.StatusCompleted)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSetStatusSendsFullRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedTasks(model.Task{
		ID: "t1", Title: "Ship", Status: model.StatusInProgress, Priority: model.PriorityHigh,
		ProjectID: "p1", Assignees: model.Refs("u1"),
	})
	_, err := h.set.Tasks.FetchAll(ctx, api.TaskQuery{})
	require.NoError(t, err)

	got, err := h.set.Tasks.SetStatus(ctx, "t1", model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "Ship", got.Title)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.True(t, got.AssignedTo("u1"))
}

func TestDeleteRemovesFromStoreAndViews(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedProjects(model.Project{ID: "p1", Name: "Apollo", Status: model.ProjectActive})
	h.backend.SeedTasks(
		model.Task{ID: "t1", Title: "Keep", Status: model.StatusTodo, ProjectID: "p1"},
		model.Task{ID: "t2", Title: "Drop", Status: model.StatusTodo, ProjectID: "p1"},
	)
	_, err := h.set.Projects.FetchAll(ctx, api.ProjectQuery{})
	require.NoError(t, err)
	_, err = h.set.Tasks.FetchAll(ctx, api.TaskQuery{})
	require.NoError(t, err)
	_, err = h.set.Tasks.FetchByID(ctx, "t2")
	require.NoError(t, err)
	h.state.Comments("t2").Put(model.Comment{ID: "c1", TaskID: "t2"})

	require.NoError(t, h.set.Tasks.Remove(ctx, "t2"))
	_, ok := h.state.Tasks.Get("t2")
	assert.False(t, ok)
	_, ok = h.state.Tasks.Current()
	assert.False(t, ok, "detail slot cleared")
	assert.Zero(t, h.state.Comments("t2").Len())
	todo := selector.FilterTasks(h.state.Tasks.List(), selector.TaskFilter{Status: "todo"})
	require.Len(t, todo, 1)
	assert.Equal(t, "t1", todo[0].ID)

	require.NoError(t, h.set.Projects.Remove(ctx, "p1"))
	task, _ := h.state.Tasks.Get("t1")
	assert.Nil(t, crossref.ResolveProject(task, h.state.Projects), "dangling project reference resolves to nothing")

	cached, err := cache.Restore[model.Task](ctx, h.cache, cache.KindTasks)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "t1", cached[0].ID)
}

func TestLateDetailResponseDoesNotOverwriteCurrent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedTasks(
		model.Task{ID: "t1", Title: "First", ProjectID: "p1"},
		model.Task{ID: "t2", Title: "Second", ProjectID: "p1"},
	)

	gate := h.backend.Gate(http.MethodGet, "/tasks/t1")
	done := make(chan error, 1)
	go func() {
		_, err := h.set.Tasks.FetchByID(ctx, "t1")
		done <- err
	}()
	<-gate.Arrived()

	_, err := h.set.Tasks.FetchByID(ctx, "t2")
	require.NoError(t, err)
	gate.Release()
	require.NoError(t, <-done)

	cur, ok := h.state.Tasks.Current()
	require.True(t, ok)
	assert.Equal(t, "t2", cur.ID)
	assert.Equal(t, state.StatusSucceeded, h.state.Tasks.DetailStatus())
	assert.Equal(t, state.StatusIdle, h.state.Tasks.Status())
}

func TestFailedDetailFetchRecordsError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.set.Tasks.FetchByID(ctx, "missing")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, state.StatusFailed, h.state.Tasks.DetailStatus())
	assert.Equal(t, state.StatusIdle, h.state.Tasks.Status())
	assert.True(t, apperr.IsNotFound(h.state.Tasks.Err()))
}

func TestMarkAsReadDecrementsUnreadOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedNotifications(
		model.Notification{ID: "n1", Type: model.NotifyMention, Message: "hi"},
		model.Notification{ID: "n2", Type: model.NotifyDeadline, Message: "due"},
	)
	_, err := h.set.Notifications.FetchAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, h.set.Notifications.Unread())

	n, err := h.set.Notifications.MarkAsRead(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, 1, h.set.Notifications.Unread())

	_, err = h.set.Notifications.MarkAsRead(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, 1, h.set.Notifications.Unread())
	assert.Equal(t, 1, h.backend.Count(http.MethodPatch, "/notifications/n1/read"))
}

func TestMarkAllAsReadAndReceive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedNotifications(model.Notification{ID: "n1"}, model.Notification{ID: "n2"})
	_, err := h.set.Notifications.FetchAll(ctx)
	require.NoError(t, err)

	_, err = h.set.Notifications.MarkAllAsRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, h.set.Notifications.Unread())

	h.set.Notifications.Receive(ctx, model.Notification{ID: "n3", Message: "pushed"})
	h.set.Notifications.Receive(ctx, model.Notification{Message: "no id"})
	assert.Equal(t, 1, h.set.Notifications.Unread())
	assert.Equal(t, 3, h.state.Notifications.Len())

	require.NoError(t, h.set.Notifications.Remove(ctx, "n1"))
	assert.Equal(t, 2, h.state.Notifications.Len())
}

func TestFailedListKeepsItemsAndRecordsError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedTasks(model.Task{ID: "t1", Title: "Cached", ProjectID: "p1"})
	_, err := h.set.Tasks.FetchAll(ctx, api.TaskQuery{})
	require.NoError(t, err)

	h.backend.FailOnce(http.MethodGet, "/tasks", http.StatusBadGateway, "")
	_, err = h.set.Tasks.FetchAll(ctx, api.TaskQuery{})
	require.Error(t, err)
	assert.Equal(t, state.StatusFailed, h.state.Tasks.Status())
	assert.Equal(t, "list", h.state.Tasks.Err().(*apperr.Error).Op)
	assert.Equal(t, 1, h.state.Tasks.Len())

	_, err = h.set.Tasks.FetchAll(ctx, api.TaskQuery{})
	require.NoError(t, err)
	assert.NoError(t, h.state.Tasks.Err())
}

func TestAddMembersShowsPendingUntilConfirmed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedUsers(model.User{ID: "u2", Name: "Grace"})
	h.backend.SeedProjects(model.Project{ID: "p1", Name: "Apollo", Members: []model.Member{
		{User: model.UserRef{ID: "u1", Name: "Ada"}, Role: model.RoleLeader},
	}})
	_, err := h.set.Users.FetchAll(ctx)
	require.NoError(t, err)
	_, err = h.set.Projects.FetchAll(ctx, api.ProjectQuery{})
	require.NoError(t, err)

	gate := h.backend.Gate(http.MethodPost, "/projects/p1/members")
	done := make(chan error, 1)
	go func() {
		_, err := h.set.Projects.AddMembers(ctx, "p1", []model.MemberInput{{UserID: "u2", Role: model.RoleTester}})
		done <- err
	}()
	<-gate.Arrived()

	inFlight := h.set.Projects.Members("p1")
	require.Len(t, inFlight, 2)
	assert.True(t, inFlight[0].Confirmed())
	assert.False(t, inFlight[1].Confirmed())
	assert.Equal(t, "Grace", inFlight[1].Value.User.Name)

	gate.Release()
	require.NoError(t, <-done)

	settled := h.set.Projects.Members("p1")
	require.Len(t, settled, 2)
	assert.True(t, settled[1].Confirmed())
	assert.Equal(t, model.RoleTester, settled[1].Value.Role)
}

func TestAddMembersRollsBackOnFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedProjects(model.Project{ID: "p1", Name: "Apollo"})
	_, err := h.set.Projects.FetchAll(ctx, api.ProjectQuery{})
	require.NoError(t, err)

	_, err = h.set.Projects.AddMembers(ctx, "p1", []model.MemberInput{{UserID: "nobody", Role: model.RoleQA}})
	require.Error(t, err)
	assert.Equal(t, "add members", err.(*apperr.Error).Op)
	assert.Empty(t, h.set.Projects.Members("p1"))

	_, err = h.set.Projects.AddMembers(ctx, "p1", []model.MemberInput{{UserID: "u1", Role: "boss"}})
	assert.True(t, apperr.IsValidation(err))
	_, err = h.set.Projects.AddMembers(ctx, "p1", nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestMemberRoleChanges(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedProjects(model.Project{ID: "p1", Name: "Apollo", Members: []model.Member{
		{User: model.UserRef{ID: "u1"}, Role: model.RoleDeveloper},
	}})

	p, err := h.set.Projects.UpdateMember(ctx, "p1", "u1", model.RoleTeamLead)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeamLead, p.Members[0].Role)

	_, err = h.set.Projects.UpdateMember(ctx, "p1", "u1", "owner")
	assert.True(t, apperr.IsValidation(err))

	p, err = h.set.Projects.RemoveMember(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Empty(t, p.Members)
	cached, _ := h.state.Projects.Get("p1")
	assert.Empty(t, cached.Members)
}

func TestHydrateSeedsStoresFromCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedTasks(model.Task{ID: "t1", Title: "Persisted", ProjectID: "p1"})
	_, err := h.set.Tasks.FetchAll(ctx, api.TaskQuery{})
	require.NoError(t, err)
	requestsBefore := len(h.backend.Requests())

	fresh := state.New()
	set := New(Deps{API: api.New(h.backend.URL(), nil), State: fresh, Cache: h.cache})
	set.Hydrate(ctx)

	got, ok := fresh.Tasks.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "Persisted", got.Title)
	assert.Equal(t, state.StatusIdle, fresh.Tasks.Status())
	assert.Len(t, h.backend.Requests(), requestsBefore)
}

func TestViewerCommentsAndLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedTasks(model.Task{ID: "t1", Title: "Discuss", ProjectID: "p1"})

	viewer, err := h.set.Users.FetchViewer(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", viewer.ID)
	assert.Equal(t, "u1", h.state.Viewer().ID)

	_, err = h.set.Comments.Add(ctx, "t1", model.CommentInput{Content: ""})
	assert.True(t, apperr.IsValidation(err))

	c, err := h.set.Comments.Add(ctx, "t1", model.CommentInput{Content: "Looks good"})
	require.NoError(t, err)
	author := crossref.ResolveAuthor(c, h.state.Users)
	assert.Equal(t, "Ada", author.Name)
	assert.True(t, author.Resolved)

	comments, err := h.set.Comments.FetchAll(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, comments, 1)

	require.NoError(t, h.set.Comments.Remove(ctx, "t1", c.ID))
	assert.Zero(t, h.state.Comments("t1").Len())

	h.set.Logout(ctx)
	assert.Empty(t, h.state.Viewer().ID)
	assert.Zero(t, h.state.Users.Len())
	users, err := cache.Restore[model.User](ctx, h.cache, cache.KindUsers)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestProfileSettingsAreIndependent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.SeedProfile(model.Profile{UserID: "u1", Name: "Ada", Email: "ada@example.com",
		Settings: map[model.SettingsCategory]map[string]any{
			model.SettingsAppearance: {"theme": "dark"},
		}})

	p, err := h.set.Profiles.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "dark", p.Category(model.SettingsAppearance)["theme"])

	p, err = h.set.Profiles.UpdateSettings(ctx, model.SettingsNotifications, map[string]any{"email": false})
	require.NoError(t, err)
	assert.Equal(t, false, p.Category(model.SettingsNotifications)["email"])
	assert.Equal(t, "dark", p.Category(model.SettingsAppearance)["theme"])
	assert.Equal(t, 1, h.backend.Count(http.MethodPut, "/profiles/notification-settings"))

	_, err = h.set.Profiles.UpdateSettings(ctx, "colours", map[string]any{})
	assert.True(t, apperr.IsValidation(err))

	_, err = h.set.Profiles.Update(ctx, "u1", model.ProfileInput{Name: "Ada", Email: "not-an-email"})
	assert.True(t, apperr.IsValidation(err))
	p, err = h.set.Profiles.Update(ctx, "u1", model.ProfileInput{Name: "Ada L.", Email: "ada@example.com"})
	require.NoError(t, err)
	cur, _ := h.state.Profile.Get("u1")
	assert.Equal(t, "Ada L.", cur.Name)
}

func TestWorkLogLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	day := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	l, err := h.set.WorkLogs.Create(ctx, model.WorkLogInput{TaskID: "t1", Hours: 2.5, Date: day})
	require.NoError(t, err)
	assert.Equal(t, "u1", l.UserID)

	l, err = h.set.WorkLogs.Update(ctx, l.ID, model.WorkLogInput{TaskID: "t1", Hours: 3, Date: day})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, selector.TotalHours(h.state.WorkLogs.List()), 1e-9)

	logs, err := h.set.WorkLogs.FetchAll(ctx, api.WorkLogQuery{TaskID: "t1"})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	require.NoError(t, h.set.WorkLogs.Remove(ctx, l.ID))
	assert.Zero(t, h.state.WorkLogs.Len())
}
