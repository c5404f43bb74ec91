package coordinator

import (
	"context"

	"github.com/nhle/project-dashboard/internal/cache"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/selector"
	"github.com/nhle/project-dashboard/internal/state"
)

type NotificationAPI interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) ([]model.Notification, error)
	DeleteNotification(ctx context.Context, id string) error
}

// Notifications coordinates the viewer's notification store.
type Notifications struct {
	api   NotificationAPI
	state *state.AppState
	base
}

func (c *Notifications) FetchAll(ctx context.Context) ([]model.Notification, error) {
	return fetchList(ctx, c.base, c.state.Notifications, "notification", cache.KindNotifications, c.api.ListNotifications)
}

// MarkAsRead marks one notification read. A notification already known
// to be read is returned as is without a request.
func (c *Notifications) MarkAsRead(ctx context.Context, id string) (model.Notification, error) {
	if n, ok := c.state.Notifications.Get(id); ok && n.Read {
		return n, nil
	}
	n, err := c.api.MarkNotificationRead(ctx, id)
	if err != nil {
		return model.Notification{}, c.fail("mark read", "notification", id, err)
	}
	c.apply(ctx, n)
	return n, nil
}

// MarkAllAsRead marks every notification read and merges the server's
// list into the store.
func (c *Notifications) MarkAllAsRead(ctx context.Context) ([]model.Notification, error) {
	ns, err := c.api.MarkAllNotificationsRead(ctx)
	if err != nil {
		return nil, c.fail("mark all read", "notification", "", err)
	}
	c.state.Notifications.PutAll(ns)
	saveAll(ctx, c.base, cache.KindNotifications, c.state.Notifications.List())
	return ns, nil
}

func (c *Notifications) Remove(ctx context.Context, id string) error {
	if err := c.api.DeleteNotification(ctx, id); err != nil {
		return c.fail("delete", "notification", id, err)
	}
	c.state.Notifications.Remove(id)
	c.forget(ctx, cache.KindNotifications, id)
	return nil
}

// Receive applies a notification pushed by the live feed.
func (c *Notifications) Receive(ctx context.Context, n model.Notification) {
	if n.ID == "" {
		c.log.Debug().Msg("ignoring pushed notification without id")
		return
	}
	c.apply(ctx, n)
}

// Unread is the viewer's unread count.
func (c *Notifications) Unread() int {
	return selector.UnreadCount(c.state.Notifications.List())
}

func (c *Notifications) apply(ctx context.Context, n model.Notification) {
	c.state.Notifications.Put(n)
	saveOne(ctx, c.base, cache.KindNotifications, n)
}
