package api

import (
	"context"
	"fmt"

	"github.com/nhle/project-dashboard/internal/model"
)

// GetProfile retrieves a user's profile and settings.
func (c *Client) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	if err := requireID("userId", userID); err != nil {
		return model.Profile{}, err
	}
	resp, err := c.get(ctx, "/profiles/"+escape(userID), nil)
	if err != nil {
		return model.Profile{}, fmt.Errorf("getting profile %s: %w", userID, err)
	}
	return decodeOne[model.Profile](resp)
}

// UpdateProfile replaces the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, userID string, in model.ProfileInput) (model.Profile, error) {
	if err := requireID("userId", userID); err != nil {
		return model.Profile{}, err
	}
	resp, err := c.put(ctx, "/profiles/"+escape(userID), in)
	if err != nil {
		return model.Profile{}, fmt.Errorf("updating profile %s: %w", userID, err)
	}
	return decodeOne[model.Profile](resp)
}

// settingsPath returns the endpoint for one settings category.
// Notification settings predate the generic endpoint.
func settingsPath(category model.SettingsCategory) string {
	if category == model.SettingsNotifications {
		return "/profiles/notification-settings"
	}
	return "/profiles/settings/" + escape(string(category))
}

// UpdateSettings replaces one settings category of the viewer's profile
// and returns the whole updated profile.
func (c *Client) UpdateSettings(ctx context.Context, in model.SettingsInput) (model.Profile, error) {
	resp, err := c.put(ctx, settingsPath(in.Category), in)
	if err != nil {
		return model.Profile{}, fmt.Errorf("updating %s settings: %w", in.Category, err)
	}
	return decodeOne[model.Profile](resp)
}
