package coordinator

import (
	"context"

	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

type ProfileAPI interface {
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in model.ProfileInput) (model.Profile, error)
	UpdateSettings(ctx context.Context, in model.SettingsInput) (model.Profile, error)
}

// Profiles coordinates the viewer's profile and settings.
type Profiles struct {
	api   ProfileAPI
	state *state.AppState
	base
}

// Fetch loads a user's profile into the profile store's detail slot.
func (c *Profiles) Fetch(ctx context.Context, userID string) (model.Profile, error) {
	p, err := fetchDetail(ctx, c.base, c.state.Profile, "profile", userID, c.api.GetProfile)
	if err != nil {
		return model.Profile{}, err
	}
	c.state.Profile.Put(p)
	return p, nil
}

// Update replaces the editable profile fields.
func (c *Profiles) Update(ctx context.Context, userID string, in model.ProfileInput) (model.Profile, error) {
	if err := c.validate("update", "profile", userID, in); err != nil {
		return model.Profile{}, err
	}
	p, err := c.api.UpdateProfile(ctx, userID, in)
	if err != nil {
		return model.Profile{}, c.fail("update", "profile", userID, err)
	}
	c.state.Profile.Put(p)
	return p, nil
}

// UpdateSettings replaces one settings category; the other categories
// are left as the server returns them.
func (c *Profiles) UpdateSettings(ctx context.Context, category model.SettingsCategory, values map[string]any) (model.Profile, error) {
	in := model.SettingsInput{Category: category, Values: values}
	if err := c.validate("update settings", "profile", string(category), in); err != nil {
		return model.Profile{}, err
	}
	p, err := c.api.UpdateSettings(ctx, in)
	if err != nil {
		return model.Profile{}, c.fail("update settings", "profile", string(category), err)
	}
	c.state.Profile.Put(p)
	return p, nil
}
