package api

import (
	"context"
	"fmt"

	"github.com/nhle/project-dashboard/internal/model"
)

// ListNotifications retrieves the viewer's notifications.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	resp, err := c.get(ctx, "/notifications", nil)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return decodeList[model.Notification](resp, "notifications")
}

// MarkNotificationRead marks one notification read and returns it.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	if err := requireID("notificationId", id); err != nil {
		return model.Notification{}, err
	}
	resp, err := c.patch(ctx, "/notifications/"+escape(id)+"/read", nil)
	if err != nil {
		return model.Notification{}, fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return decodeOne[model.Notification](resp)
}

// MarkAllNotificationsRead marks every notification read and returns the
// updated list.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) ([]model.Notification, error) {
	resp, err := c.patch(ctx, "/notifications/read-all", nil)
	if err != nil {
		return nil, fmt.Errorf("marking all notifications as read: %w", err)
	}
	return decodeList[model.Notification](resp, "notifications")
}

// DeleteNotification removes a notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if err := requireID("notificationId", id); err != nil {
		return err
	}
	if _, err := c.delete(ctx, "/notifications/"+escape(id)); err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return nil
}
