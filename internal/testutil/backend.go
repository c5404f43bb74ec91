package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nhle/project-dashboard/internal/model"
)

// Request is one call recorded by the fake backend.
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// Gate holds matching requests until released.
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Arrived is closed when the first matching request reaches the backend.
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

// Release lets held requests proceed.
func (g *Gate) Release() {
	close(g.release)
}

type failure struct {
	status  int
	message string
	once    bool
}

// Backend is a chi-routed, in-memory stand-in for the dashboard REST API.
// It assigns ids on create, stores full records, and answers with the
// standard {success, data, message} envelope.
type Backend struct {
	Server *httptest.Server

	mu            sync.Mutex
	seq           int
	clock         time.Time
	viewer        string
	projects      []model.Project
	tasks         []model.Task
	users         []model.User
	notifications []model.Notification
	worklogs      []model.WorkLog
	comments      map[string][]model.Comment
	profiles      map[string]model.Profile
	requests      []Request
	failures      map[string]*failure
	gates         map[string]*Gate
}

// NewBackend starts a fake backend that is shut down when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		clock:    time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		comments: make(map[string][]model.Comment),
		profiles: make(map[string]model.Profile),
		failures: make(map[string]*failure),
		gates:    make(map[string]*Gate),
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL to hand to api.New.
func (b *Backend) URL() string { return b.Server.URL }

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.intercept)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", b.listUsers)
		r.Get("/me", b.me)
		r.Get("/{id}", b.getUser)
	})
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", b.listProjects)
		r.Post("/", b.createProject)
		r.Get("/{id}", b.getProject)
		r.Put("/{id}", b.updateProject)
		r.Delete("/{id}", b.deleteProject)
		r.Post("/{id}/members", b.addMembers)
		r.Put("/{id}/members/{userID}", b.updateMember)
		r.Delete("/{id}/members/{userID}", b.removeMember)
	})
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", b.listTasks)
		r.Post("/", b.createTask)
		r.Get("/{id}", b.getTask)
		r.Put("/{id}", b.updateTask)
		r.Delete("/{id}", b.deleteTask)
	})
	r.Route("/comments/{taskID}", func(r chi.Router) {
		r.Get("/", b.listComments)
		r.Post("/", b.addComment)
		r.Delete("/{id}", b.deleteComment)
	})
	r.Route("/profiles", func(r chi.Router) {
		r.Put("/notification-settings", b.updateSettings)
		r.Put("/settings/{category}", b.updateSettings)
		r.Get("/{id}", b.getProfile)
		r.Put("/{id}", b.updateProfile)
	})
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", b.listNotifications)
		r.Patch("/read-all", b.markAllRead)
		r.Patch("/{id}/read", b.markRead)
		r.Delete("/{id}", b.deleteNotification)
	})
	r.Route("/worklogs", func(r chi.Router) {
		r.Get("/", b.listWorkLogs)
		r.Post("/", b.createWorkLog)
		r.Put("/{id}", b.updateWorkLog)
		r.Delete("/{id}", b.deleteWorkLog)
	})
	return r
}

// intercept records the request, then applies gates and injected failures.
func (b *Backend) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		key := r.Method + " " + r.URL.Path

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		gate := b.gates[key]
		f := b.failures[key]
		if f != nil && f.once {
			delete(b.failures, key)
		}
		b.mu.Unlock()

		if gate != nil {
			gate.once.Do(func() { close(gate.arrived) })
			select {
			case <-gate.release:
			case <-r.Context().Done():
				return
			}
		}
		if f != nil {
			fail(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request matching method and path fail with status
// until Heal is called.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = &failure{status: status, message: message}
}

// FailOnce makes only the next matching request fail.
func (b *Backend) FailOnce(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = &failure{status: status, message: message, once: true}
}

// Heal removes an injected failure.
func (b *Backend) Heal(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+path)
}

// Gate holds requests matching method and path until the returned gate
// is released.
func (b *Backend) Gate(method, path string) *Gate {
	g := &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gates[method+" "+path] = g
	return g
}

// Requests returns every recorded request in arrival order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many requests matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// SetViewer seeds a user and makes it the one GET /users/me returns.
func (b *Backend) SetViewer(u model.User) {
	b.SeedUsers(u)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewer = u.ID
}

func (b *Backend) SeedUsers(users ...model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range users {
		b.users = upsert(b.users, u)
	}
}

func (b *Backend) SeedProjects(projects ...model.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range projects {
		b.projects = upsert(b.projects, p)
	}
}

func (b *Backend) SeedTasks(tasks ...model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range tasks {
		b.tasks = upsert(b.tasks, t)
	}
}

func (b *Backend) SeedNotifications(ns ...model.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range ns {
		b.notifications = upsert(b.notifications, n)
	}
}

func (b *Backend) SeedWorkLogs(logs ...model.WorkLog) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range logs {
		b.worklogs = upsert(b.worklogs, l)
	}
}

func (b *Backend) SeedComments(taskID string, cs ...model.Comment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range cs {
		c.TaskID = taskID
		b.comments[taskID] = upsert(b.comments[taskID], c)
	}
}

func (b *Backend) SeedProfile(p model.Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[p.UserID] = p
}

// Task returns the backend's copy of a task.
func (b *Backend) Task(id string) (model.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return find(b.tasks, id)
}

// Project returns the backend's copy of a project.
func (b *Backend) Project(id string) (model.Project, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return find(b.projects, id)
}

// Notification returns the backend's copy of a notification.
func (b *Backend) Notification(id string) (model.Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return find(b.notifications, id)
}

// nextID and tick must be called with b.mu held.
func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s%d", prefix, b.seq)
}

func (b *Backend) tick() time.Time {
	b.clock = b.clock.Add(time.Minute)
	return b.clock
}

func (b *Backend) userRef(id string) model.UserRef {
	if u, ok := find(b.users, id); ok {
		return model.UserRef{ID: u.ID, Name: u.Name}
	}
	return model.UserRef{ID: id}
}

// --- users ---

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ok(w, http.StatusOK, map[string]any{"users": orEmpty(b.users)})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, found := find(b.users, b.viewer)
	if !found {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	ok(w, http.StatusOK, u)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	getOne(w, b.users, chi.URLParam(r, "id"), "User")
}

// --- projects ---

func (b *Backend) listProjects(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	status := r.URL.Query().Get("status")
	out := []model.Project{}
	for _, p := range b.projects {
		if status == "" || string(p.Status) == status {
			out = append(out, p)
		}
	}
	ok(w, http.StatusOK, map[string]any{
		"projects":   out,
		"pagination": map[string]int{"total": len(out), "page": 1},
	})
}

func (b *Backend) getProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	getOne(w, b.projects, chi.URLParam(r, "id"), "Project")
}

func (b *Backend) createProject(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	p := model.Project{
		ID:          b.nextID("p"),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Members:     []model.Member{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	b.projects = append(b.projects, p)
	ok(w, http.StatusCreated, p)
}

func (b *Backend) updateProject(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, found := find(b.projects, chi.URLParam(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "Project not found")
		return
	}
	p.Name, p.Description, p.StartDate, p.EndDate = in.Name, in.Description, in.StartDate, in.EndDate
	if in.Status != "" {
		p.Status = in.Status
	}
	p.UpdatedAt = b.tick()
	b.projects = upsert(b.projects, p)
	ok(w, http.StatusOK, p)
}

func (b *Backend) deleteProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	var found bool
	if b.projects, found = remove(b.projects, id); !found {
		fail(w, http.StatusNotFound, "Project not found")
		return
	}
	ok(w, http.StatusOK, map[string]string{"id": id})
}

func (b *Backend) addMembers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Members []model.MemberInput `json:"members"`
	}
	if !decode(w, r, &body) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, found := find(b.projects, chi.URLParam(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "Project not found")
		return
	}
	for _, m := range body.Members {
		if _, known := find(b.users, m.UserID); !known {
			fail(w, http.StatusBadRequest, "Unknown user "+m.UserID)
			return
		}
		if p.HasMember(m.UserID) {
			continue
		}
		p.Members = append(p.Members, model.Member{User: b.userRef(m.UserID), Role: m.Role})
	}
	b.projects = upsert(b.projects, p)
	ok(w, http.StatusOK, p)
}

func (b *Backend) updateMember(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role model.MemberRole `json:"role"`
	}
	if !decode(w, r, &body) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, found := find(b.projects, chi.URLParam(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "Project not found")
		return
	}
	userID := chi.URLParam(r, "userID")
	members := make([]model.Member, 0, len(p.Members))
	for _, m := range p.Members {
		if m.User.ID == userID {
			m.Role = body.Role
		}
		members = append(members, m)
	}
	p.Members = members
	b.projects = upsert(b.projects, p)
	ok(w, http.StatusOK, p)
}

func (b *Backend) removeMember(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, found := find(b.projects, chi.URLParam(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "Project not found")
		return
	}
	p.Members, _ = remove(p.Members, chi.URLParam(r, "userID"))
	b.projects = upsert(b.projects, p)
	ok(w, http.StatusOK, p)
}

// --- tasks ---

func (b *Backend) listTasks(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := r.URL.Query()
	out := []model.Task{}
	for _, t := range b.tasks {
		if v := q.Get("projectId"); v != "" && t.ProjectID != v {
			continue
		}
		if v := q.Get("status"); v != "" && string(t.Status) != v {
			continue
		}
		if v := q.Get("assignee"); v != "" && !t.AssignedTo(v) {
			continue
		}
		out = append(out, t)
	}
	ok(w, http.StatusOK, map[string]any{"tasks": out})
}

func (b *Backend) getTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	getOne(w, b.tasks, chi.URLParam(r, "id"), "Task")
}

func (b *Backend) applyTaskInput(t *model.Task, in model.TaskInput) {
	t.Title, t.Description, t.ProjectID = in.Title, in.Description, in.ProjectID
	t.StartDate, t.EndDate = in.StartDate, in.EndDate
	t.Status, t.Priority = in.Status, in.Priority
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	t.Assignees = make([]model.UserRef, 0, len(in.AssigneeIDs))
	for _, id := range in.AssigneeIDs {
		t.Assignees = append(t.Assignees, b.userRef(id))
	}
}

func (b *Backend) createTask(w http.ResponseWriter, r *http.Request) {
	var in model.TaskInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	t := model.Task{ID: b.nextID("t"), CreatedAt: now, UpdatedAt: now}
	b.applyTaskInput(&t, in)
	b.tasks = append(b.tasks, t)
	ok(w, http.StatusCreated, t)
}

func (b *Backend) updateTask(w http.ResponseWriter, r *http.Request) {
	var in model.TaskInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t, found := find(b.tasks, chi.URLParam(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "Task not found")
		return
	}
	b.applyTaskInput(&t, in)
	t.UpdatedAt = b.clock
	b.tasks = upsert(b.tasks, t)
	ok(w, http.StatusOK, t)
}

func (b *Backend) deleteTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	var found bool
	if b.tasks, found = remove(b.tasks, id); !found {
		fail(w, http.StatusNotFound, "Task not found")
		return
	}
	delete(b.comments, id)
	w.WriteHeader(http.StatusNoContent)
}

// --- comments ---

func (b *Backend) listComments(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.comments[chi.URLParam(r, "taskID")]
	if out == nil {
		out = []model.Comment{}
	}
	ok(w, http.StatusOK, out)
}

func (b *Backend) addComment(w http.ResponseWriter, r *http.Request) {
	var in model.CommentInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	taskID := chi.URLParam(r, "taskID")
	if _, found := find(b.tasks, taskID); !found {
		fail(w, http.StatusNotFound, "Task not found")
		return
	}
	c := model.Comment{
		ID:        b.nextID("c"),
		TaskID:    taskID,
		Author:    b.userRef(b.viewer),
		Content:   in.Content,
		CreatedAt: b.tick(),
	}
	b.comments[taskID] = append(b.comments[taskID], c)
	ok(w, http.StatusCreated, c)
}

func (b *Backend) deleteComment(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	taskID := chi.URLParam(r, "taskID")
	var found bool
	if b.comments[taskID], found = remove(b.comments[taskID], chi.URLParam(r, "id")); !found {
		fail(w, http.StatusNotFound, "Comment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- profiles ---

func (b *Backend) getProfile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, found := b.profiles[chi.URLParam(r, "id")]
	if !found {
		fail(w, http.StatusNotFound, "Profile not found")
		return
	}
	ok(w, http.StatusOK, p)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in model.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	p := b.profiles[id]
	p.UserID, p.Name, p.Email, p.Phone, p.Bio = id, in.Name, in.Email, in.Phone, in.Bio
	b.profiles[id] = p
	ok(w, http.StatusOK, p)
}

func (b *Backend) updateSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Values map[string]any `json:"values"`
	}
	if !decode(w, r, &body) {
		return
	}
	category := model.SettingsCategory(chi.URLParam(r, "category"))
	if category == "" {
		category = model.SettingsNotifications
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, found := b.profiles[b.viewer]
	if !found {
		p = model.Profile{UserID: b.viewer}
	}
	settings := make(map[model.SettingsCategory]map[string]any, len(p.Settings)+1)
	for k, v := range p.Settings {
		settings[k] = v
	}
	settings[category] = body.Values
	p.Settings = settings
	b.profiles[b.viewer] = p
	ok(w, http.StatusOK, p)
}

// --- notifications ---

func (b *Backend) listNotifications(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ok(w, http.StatusOK, map[string]any{"notifications": orEmpty(b.notifications)})
}

func (b *Backend) markRead(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, found := find(b.notifications, chi.URLParam(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "Notification not found")
		return
	}
	n.Read = true
	b.notifications = upsert(b.notifications, n)
	ok(w, http.StatusOK, n)
}

func (b *Backend) markAllRead(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.notifications {
		b.notifications[i].Read = true
	}
	ok(w, http.StatusOK, map[string]any{"notifications": orEmpty(b.notifications)})
}

func (b *Backend) deleteNotification(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var found bool
	if b.notifications, found = remove(b.notifications, chi.URLParam(r, "id")); !found {
		fail(w, http.StatusNotFound, "Notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- work logs ---

func (b *Backend) listWorkLogs(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := r.URL.Query()
	out := []model.WorkLog{}
	for _, l := range b.worklogs {
		if v := q.Get("taskId"); v != "" && l.TaskID != v {
			continue
		}
		if v := q.Get("userId"); v != "" && l.UserID != v {
			continue
		}
		out = append(out, l)
	}
	ok(w, http.StatusOK, map[string]any{"worklogs": out})
}

func (b *Backend) createWorkLog(w http.ResponseWriter, r *http.Request) {
	var in model.WorkLogInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	l := model.WorkLog{
		ID:          b.nextID("w"),
		TaskID:      in.TaskID,
		UserID:      b.viewer,
		Hours:       in.Hours,
		Date:        in.Date,
		Description: in.Description,
	}
	b.worklogs = append(b.worklogs, l)
	ok(w, http.StatusCreated, l)
}

func (b *Backend) updateWorkLog(w http.ResponseWriter, r *http.Request) {
	var in model.WorkLogInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	l, found := find(b.worklogs, chi.URLParam(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "Work log not found")
		return
	}
	l.TaskID, l.Hours, l.Date, l.Description = in.TaskID, in.Hours, in.Date, in.Description
	b.worklogs = upsert(b.worklogs, l)
	ok(w, http.StatusOK, l)
}

func (b *Backend) deleteWorkLog(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var found bool
	if b.worklogs, found = remove(b.worklogs, chi.URLParam(r, "id")); !found {
		fail(w, http.StatusNotFound, "Work log not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

type identifiable interface {
	GetID() string
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func find[T identifiable](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.GetID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func upsert[T identifiable](items []T, v T) []T {
	for i, it := range items {
		if it.GetID() == v.GetID() {
			out := append([]T(nil), items...)
			out[i] = v
			return out
		}
	}
	return append(items, v)
}

func remove[T identifiable](items []T, id string) ([]T, bool) {
	out := make([]T, 0, len(items))
	found := false
	for _, it := range items {
		if it.GetID() == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}

func getOne[T identifiable](w http.ResponseWriter, items []T, id, label string) {
	v, found := find(items, id)
	if !found {
		fail(w, http.StatusNotFound, label+" not found")
		return
	}
	ok(w, http.StatusOK, v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func ok(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, map[string]any{"success": true, "data": data})
}

func fail(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, map[string]any{"success": false, "message": message})
}

func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
