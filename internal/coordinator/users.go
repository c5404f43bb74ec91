package coordinator

import (
	"context"

	"github.com/nhle/project-dashboard/internal/cache"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

type UserAPI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	Me(ctx context.Context) (model.User, error)
}

// Users coordinates the user directory and the signed-in viewer.
type Users struct {
	api   UserAPI
	state *state.AppState
	base
}

func (c *Users) FetchAll(ctx context.Context) ([]model.User, error) {
	return fetchList(ctx, c.base, c.state.Users, "user", cache.KindUsers, c.api.ListUsers)
}

func (c *Users) FetchByID(ctx context.Context, id string) (model.User, error) {
	return fetchDetail(ctx, c.base, c.state.Users, "user", id, c.api.GetUser)
}

// FetchViewer resolves the session token to a user and records it as the
// viewer. The viewer is also added to the user directory.
func (c *Users) FetchViewer(ctx context.Context) (model.User, error) {
	u, err := c.api.Me(ctx)
	if err != nil {
		return model.User{}, c.fail("get", "viewer", "", err)
	}
	c.state.SetViewer(u)
	c.state.Users.Put(u)
	saveOne(ctx, c.base, cache.KindUsers, u)
	return u, nil
}
