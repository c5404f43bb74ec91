package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/model"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token() (string, error) { return s.token, s.err }

func newTestServer(t *testing.T, r chi.Router) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth []string
	r := chi.NewRouter()
	r.Get("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	})
	srv := newTestServer(t, r)

	ctx := context.Background()
	_, err := New(srv.URL+"/api", staticToken{token: "sess-1"}).ListTasks(ctx, TaskQuery{})
	require.NoError(t, err)
	_, err = New(srv.URL+"/api", staticToken{}).ListTasks(ctx, TaskQuery{})
	require.NoError(t, err)
	_, err = New(srv.URL+"/api", staticToken{err: errors.New("keyring locked")}).ListTasks(ctx, TaskQuery{})
	require.NoError(t, err, "a missing credential is not an error at this layer")
	_, err = New(srv.URL+"/api", nil).ListTasks(ctx, TaskQuery{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer sess-1", "", "", ""}, gotAuth)
}

func TestClientSendsQueryAndBody(t *testing.T) {
	var gotQuery string
	var gotBody map[string]any
	r := chi.NewRouter()
	r.Get("/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"tasks":[{"id":"t1","title":"a"}]}}`)
	})
	r.Post("/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":"t2","title":"Write docs","projectId":"p1"}}`)
	})
	srv := newTestServer(t, r)
	c := New(srv.URL, nil)

	tasks, err := c.ListTasks(context.Background(), TaskQuery{ProjectID: "p1", Status: "todo"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "projectId=p1&status=todo", gotQuery)

	task, err := c.CreateTask(context.Background(), model.TaskInput{Title: "Write docs", ProjectID: "p1", AssigneeIDs: []string{"u1"}})
	require.NoError(t, err)
	assert.Equal(t, "t2", task.ID)
	assert.Equal(t, "Write docs", gotBody["title"])
	assert.Equal(t, []any{"u1"}, gotBody["assignees"])
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		ctype      string
		body       string
		wantKind   apperr.Kind
		wantStatus int
		wantMsg    string
	}{
		{"envelope failure on 200", 200, "application/json", `{"success":false,"message":"Task title taken"}`, apperr.KindServer, 200, "Task title taken"},
		{"not found with message", 404, "application/json", `{"success":false,"message":"Task not found"}`, apperr.KindNotFound, 404, "Task not found"},
		{"unauthorized", 401, "application/json", `{"error":"Invalid token"}`, apperr.KindServer, 401, "Invalid token"},
		{"html error page", 502, "text/html", `<!DOCTYPE html><html>bad gateway</html>`, apperr.KindServer, 502, "Bad Gateway"},
		{"plain text", 500, "text/plain", "database exploded", apperr.KindServer, 500, "database exploded"},
		{"null data", 200, "application/json", `{"success":true,"data":null}`, apperr.KindServer, 200, "malformed response: missing data"},
		{"entity without id", 200, "application/json", `{"success":true,"data":{"title":"ghost"}}`, apperr.KindServer, 200, "malformed response: entity without id"},
		{"not json", 200, "text/html", `<html>login</html>`, apperr.KindServer, 200, "malformed response: expected JSON response but received HTML"},
		{"no envelope", 200, "application/json", `{"id":"t1"}`, apperr.KindServer, 200, "malformed response: missing response envelope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			srv := newTestServer(t, r)

			_, err := New(srv.URL, nil).GetTask(context.Background(), "t1")
			require.Error(t, err)
			e, ok := apperr.As(err)
			require.True(t, ok, "error %v is not an apperr.Error", err)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.wantStatus, e.Status)
			assert.Equal(t, tt.wantMsg, e.Message)
		})
	}
}

func TestClientDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, `{"message":"try later"}`)
	})
	srv := newTestServer(t, r)

	_, err := New(srv.URL, nil).ListNotifications(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsNetwork(err))
	assert.Equal(t, apperr.GenericNetworkMessage, apperr.Message(err))
}

func TestClientRejectsEmptyIDBeforeSending(t *testing.T) {
	c := New("http://127.0.0.1:1", nil)
	_, err := c.GetProject(context.Background(), " ")
	assert.True(t, apperr.IsValidation(err))
	assert.True(t, apperr.IsValidation(c.DeleteTask(context.Background(), "")))
}

func TestListProjectsReadsPagination(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/projects", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"projects":[{"id":"p1","title":"Legacy"},{"id":"p2","name":"New"}],"pagination":{"total":12,"page":2}}}`)
	})
	srv := newTestServer(t, r)

	page, err := New(srv.URL, nil).ListProjects(context.Background(), ProjectQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Projects, 2)
	assert.Equal(t, "Legacy", page.Projects[0].Name)
}

func TestSubResourcePaths(t *testing.T) {
	var paths []string
	r := chi.NewRouter()
	r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/comments/t1/c1":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/comments/t1":
			writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":"c1","taskId":"t1","content":"hi"}]}`)
		case r.URL.Path == "/notifications/read-all":
			writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
		default:
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":"x","userId":"u1"}}`)
		}
	})
	srv := newTestServer(t, r)
	c := New(srv.URL, nil)
	ctx := context.Background()

	_, err := c.ListComments(ctx, "t1")
	require.NoError(t, err)
	require.NoError(t, c.DeleteComment(ctx, "t1", "c1"))
	_, err = c.UpdateSettings(ctx, model.SettingsInput{Category: model.SettingsNotifications, Values: map[string]any{"email": true}})
	require.NoError(t, err)
	_, err = c.UpdateSettings(ctx, model.SettingsInput{Category: model.SettingsAppearance, Values: map[string]any{"theme": "dark"}})
	require.NoError(t, err)
	_, err = c.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	_, err = c.AddMembers(ctx, "p1", []model.MemberInput{{UserID: "u2", Role: model.RoleTester}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /comments/t1",
		"DELETE /comments/t1/c1",
		"PUT /profiles/notification-settings",
		"PUT /profiles/settings/appearance",
		"PATCH /notifications/read-all",
		"POST /projects/p1/members",
	}, paths)
}

func TestTimeoutDoesNotTouchSharedHTTPClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := New("http://api.test", nil, WithHTTPClient(shared), WithTimeout(5*time.Second))
	assert.Equal(t, time.Minute, shared.Timeout)
	assert.NotSame(t, shared, c.httpClient)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)

	c = New("http://api.test", nil, WithHTTPClient(shared))
	assert.Same(t, shared, c.httpClient)

	c = New("http://api.test", nil, WithHTTPClient(nil), WithTimeout(2*time.Second))
	require.NotNil(t, c.httpClient)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)

	c = New("http://api.test", nil)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}
