package api

import (
	"context"
	"fmt"

	"github.com/nhle/project-dashboard/internal/model"
)

// ListUsers retrieves the user directory used to resolve references.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	resp, err := c.get(ctx, "/users", nil)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return decodeList[model.User](resp, "users")
}

// GetUser retrieves one user.
func (c *Client) GetUser(ctx context.Context, id string) (model.User, error) {
	if err := requireID("userId", id); err != nil {
		return model.User{}, err
	}
	resp, err := c.get(ctx, "/users/"+escape(id), nil)
	if err != nil {
		return model.User{}, fmt.Errorf("getting user %s: %w", id, err)
	}
	return decodeOne[model.User](resp)
}

// Me retrieves the user the session token belongs to.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	resp, err := c.get(ctx, "/users/me", nil)
	if err != nil {
		return model.User{}, fmt.Errorf("getting current user: %w", err)
	}
	return decodeOne[model.User](resp)
}
