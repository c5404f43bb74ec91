package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/project-dashboard/internal/model"
)

// TaskQuery narrows a task listing. Zero values are omitted.
type TaskQuery struct {
	ProjectID  string
	Status     string
	Priority   string
	AssigneeID string
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.ProjectID != "" {
		v.Set("projectId", q.ProjectID)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Priority != "" {
		v.Set("priority", q.Priority)
	}
	if q.AssigneeID != "" {
		v.Set("assignee", q.AssigneeID)
	}
	return v
}

// ListTasks retrieves tasks, optionally narrowed server-side.
func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]model.Task, error) {
	resp, err := c.get(ctx, "/tasks", q.values())
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return decodeList[model.Task](resp, "tasks")
}

// GetTask retrieves a single task.
func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	if err := requireID("taskId", id); err != nil {
		return model.Task{}, err
	}
	resp, err := c.get(ctx, "/tasks/"+escape(id), nil)
	if err != nil {
		return model.Task{}, fmt.Errorf("getting task %s: %w", id, err)
	}
	return decodeOne[model.Task](resp)
}

// CreateTask creates a task and returns the server's canonical copy.
func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	resp, err := c.post(ctx, "/tasks", in)
	if err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return decodeOne[model.Task](resp)
}

// UpdateTask replaces a task's editable fields.
func (c *Client) UpdateTask(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	if err := requireID("taskId", id); err != nil {
		return model.Task{}, err
	}
	resp, err := c.put(ctx, "/tasks/"+escape(id), in)
	if err != nil {
		return model.Task{}, fmt.Errorf("updating task %s: %w", id, err)
	}
	return decodeOne[model.Task](resp)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := requireID("taskId", id); err != nil {
		return err
	}
	if _, err := c.delete(ctx, "/tasks/"+escape(id)); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}
