package coordinator

import (
	"context"

	"github.com/nhle/project-dashboard/internal/api"
	"github.com/nhle/project-dashboard/internal/cache"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

type WorkLogAPI interface {
	ListWorkLogs(ctx context.Context, q api.WorkLogQuery) ([]model.WorkLog, error)
	CreateWorkLog(ctx context.Context, in model.WorkLogInput) (model.WorkLog, error)
	UpdateWorkLog(ctx context.Context, id string, in model.WorkLogInput) (model.WorkLog, error)
	DeleteWorkLog(ctx context.Context, id string) error
}

// WorkLogs coordinates the work log store.
type WorkLogs struct {
	api   WorkLogAPI
	state *state.AppState
	base
}

func (c *WorkLogs) FetchAll(ctx context.Context, q api.WorkLogQuery) ([]model.WorkLog, error) {
	return fetchList(ctx, c.base, c.state.WorkLogs, "worklog", cache.KindWorkLogs,
		func(ctx context.Context) ([]model.WorkLog, error) { return c.api.ListWorkLogs(ctx, q) })
}

// Create records hours for the viewer.
func (c *WorkLogs) Create(ctx context.Context, in model.WorkLogInput) (model.WorkLog, error) {
	if err := c.validate("create", "worklog", "", in); err != nil {
		return model.WorkLog{}, err
	}
	l, err := c.api.CreateWorkLog(ctx, in)
	if err != nil {
		return model.WorkLog{}, c.fail("create", "worklog", "", err)
	}
	c.apply(ctx, l)
	return l, nil
}

func (c *WorkLogs) Update(ctx context.Context, id string, in model.WorkLogInput) (model.WorkLog, error) {
	if err := c.validate("update", "worklog", id, in); err != nil {
		return model.WorkLog{}, err
	}
	l, err := c.api.UpdateWorkLog(ctx, id, in)
	if err != nil {
		return model.WorkLog{}, c.fail("update", "worklog", id, err)
	}
	c.apply(ctx, l)
	return l, nil
}

func (c *WorkLogs) Remove(ctx context.Context, id string) error {
	if err := c.api.DeleteWorkLog(ctx, id); err != nil {
		return c.fail("delete", "worklog", id, err)
	}
	c.state.WorkLogs.Remove(id)
	c.forget(ctx, cache.KindWorkLogs, id)
	return nil
}

func (c *WorkLogs) apply(ctx context.Context, l model.WorkLog) {
	c.state.WorkLogs.Put(l)
	saveOne(ctx, c.base, cache.KindWorkLogs, l)
}
