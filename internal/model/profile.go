package model

// SettingsCategory names one independently mutable group of preferences.
type SettingsCategory string

const (
	SettingsNotifications SettingsCategory = "notifications"
	SettingsAppearance    SettingsCategory = "appearance"
	SettingsPrivacy       SettingsCategory = "privacy"
	SettingsTimezone      SettingsCategory = "timezone"
	SettingsSecurity      SettingsCategory = "security"
)

var SettingsCategories = []SettingsCategory{
	SettingsNotifications, SettingsAppearance, SettingsPrivacy, SettingsTimezone, SettingsSecurity,
}

func (c SettingsCategory) Valid() bool {
	for _, v := range SettingsCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Profile is the viewer-facing user profile plus the preference bag.
type Profile struct {
	UserID   string                              `json:"userId"`
	Name     string                              `json:"name"`
	Email    string                              `json:"email"`
	Phone    string                              `json:"phone,omitempty"`
	Bio      string                              `json:"bio,omitempty"`
	Settings map[SettingsCategory]map[string]any `json:"settings"`
}

func (p Profile) GetID() string { return p.UserID }

// Category returns a copy of one settings category. A missing category is
// an empty map, never nil.
func (p Profile) Category(c SettingsCategory) map[string]any {
	out := make(map[string]any, len(p.Settings[c]))
	for k, v := range p.Settings[c] {
		out[k] = v
	}
	return out
}

// ProfileInput replaces the editable profile fields.
type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

func (in ProfileInput) Validate() error {
	if err := requireText("name", in.Name, 120); err != nil {
		return err
	}
	return checkEmail("email", in.Email)
}

// SettingsInput replaces one settings category.
type SettingsInput struct {
	Category SettingsCategory `json:"-"`
	Values   map[string]any   `json:"values"`
}

func (in SettingsInput) Validate() error {
	if !in.Category.Valid() {
		return invalid("category", "unknown settings category %q", in.Category)
	}
	if in.Values == nil {
		return invalid("values", "settings values are required")
	}
	return nil
}
