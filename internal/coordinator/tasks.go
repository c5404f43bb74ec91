package coordinator

import (
	"context"

	"github.com/nhle/project-dashboard/internal/api"
	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/cache"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

type TaskAPI interface {
	ListTasks(ctx context.Context, q api.TaskQuery) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id string, in model.TaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Tasks coordinates the task store.
type Tasks struct {
	api   TaskAPI
	state *state.AppState
	base
}

// FetchAll replaces the task list with the server's, narrowed by q.
func (c *Tasks) FetchAll(ctx context.Context, q api.TaskQuery) ([]model.Task, error) {
	return fetchList(ctx, c.base, c.state.Tasks, "task", cache.KindTasks,
		func(ctx context.Context) ([]model.Task, error) { return c.api.ListTasks(ctx, q) })
}

// FetchByID loads one task into the detail slot. Only the most recently
// requested id can land there.
func (c *Tasks) FetchByID(ctx context.Context, id string) (model.Task, error) {
	return fetchDetail(ctx, c.base, c.state.Tasks, "task", id, c.api.GetTask)
}

// Create validates in and inserts the server's task on success.
func (c *Tasks) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := c.validate("create", "task", "", &in); err != nil {
		return model.Task{}, err
	}
	t, err := c.api.CreateTask(ctx, in)
	if err != nil {
		return model.Task{}, c.fail("create", "task", "", err)
	}
	c.apply(ctx, t)
	return t, nil
}

// Update replaces the task with the server's full record.
func (c *Tasks) Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	if err := c.validate("update", "task", id, &in); err != nil {
		return model.Task{}, err
	}
	t, err := c.api.UpdateTask(ctx, id, in)
	if err != nil {
		return model.Task{}, c.fail("update", "task", id, err)
	}
	c.apply(ctx, t)
	return t, nil
}

// SetStatus moves a cached task to status. The task is sent in full, as
// updates replace the whole record.
func (c *Tasks) SetStatus(ctx context.Context, id string, status model.TaskStatus) (model.Task, error) {
	t, ok := c.cached(id)
	if !ok {
		return model.Task{}, c.fail("update", "task", id, apperr.NotFound("task is not loaded"))
	}
	in := InputFromTask(t)
	in.Status = status
	return c.Update(ctx, id, in)
}

// Remove deletes the task along with its cached comments.
func (c *Tasks) Remove(ctx context.Context, id string) error {
	if err := c.api.DeleteTask(ctx, id); err != nil {
		return c.fail("delete", "task", id, err)
	}
	c.state.Tasks.Remove(id)
	c.state.DropComments(id)
	c.forget(ctx, cache.KindTasks, id)
	return nil
}

func (c *Tasks) cached(id string) (model.Task, bool) {
	if t, ok := c.state.Tasks.Get(id); ok {
		return t, true
	}
	if t, ok := c.state.Tasks.Current(); ok && t.ID == id {
		return t, true
	}
	return model.Task{}, false
}

func (c *Tasks) apply(ctx context.Context, t model.Task) {
	c.state.Tasks.Put(t)
	saveOne(ctx, c.base, cache.KindTasks, t)
}

// InputFromTask builds the replace payload that reproduces t.
func InputFromTask(t model.Task) model.TaskInput {
	ids := make([]string, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		ids = append(ids, a.ID)
	}
	return model.TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		ProjectID:   t.ProjectID,
		AssigneeIDs: ids,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
	}
}
