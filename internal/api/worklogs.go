package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nhle/project-dashboard/internal/model"
)

// WorkLogQuery narrows a work log listing. Zero values are omitted.
type WorkLogQuery struct {
	TaskID    string
	UserID    string
	ProjectID string
	From      *time.Time
	To        *time.Time
}

const dateLayout = "2006-01-02"

func (q WorkLogQuery) values() url.Values {
	v := url.Values{}
	if q.TaskID != "" {
		v.Set("taskId", q.TaskID)
	}
	if q.UserID != "" {
		v.Set("userId", q.UserID)
	}
	if q.ProjectID != "" {
		v.Set("projectId", q.ProjectID)
	}
	if q.From != nil {
		v.Set("from", q.From.Format(dateLayout))
	}
	if q.To != nil {
		v.Set("to", q.To.Format(dateLayout))
	}
	return v
}

// ListWorkLogs retrieves work logs.
func (c *Client) ListWorkLogs(ctx context.Context, q WorkLogQuery) ([]model.WorkLog, error) {
	resp, err := c.get(ctx, "/worklogs", q.values())
	if err != nil {
		return nil, fmt.Errorf("listing work logs: %w", err)
	}
	return decodeList[model.WorkLog](resp, "worklogs")
}

// CreateWorkLog records hours for the viewer.
func (c *Client) CreateWorkLog(ctx context.Context, in model.WorkLogInput) (model.WorkLog, error) {
	resp, err := c.post(ctx, "/worklogs", in)
	if err != nil {
		return model.WorkLog{}, fmt.Errorf("creating work log: %w", err)
	}
	return decodeOne[model.WorkLog](resp)
}

// UpdateWorkLog replaces a work log entry.
func (c *Client) UpdateWorkLog(ctx context.Context, id string, in model.WorkLogInput) (model.WorkLog, error) {
	if err := requireID("workLogId", id); err != nil {
		return model.WorkLog{}, err
	}
	resp, err := c.put(ctx, "/worklogs/"+escape(id), in)
	if err != nil {
		return model.WorkLog{}, fmt.Errorf("updating work log %s: %w", id, err)
	}
	return decodeOne[model.WorkLog](resp)
}

// DeleteWorkLog removes a work log entry.
func (c *Client) DeleteWorkLog(ctx context.Context, id string) error {
	if err := requireID("workLogId", id); err != nil {
		return err
	}
	if _, err := c.delete(ctx, "/worklogs/"+escape(id)); err != nil {
		return fmt.Errorf("deleting work log %s: %w", id, err)
	}
	return nil
}
