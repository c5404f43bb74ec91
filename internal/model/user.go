package model

// User is shared by reference from members, assignees, comments and
// work logs; those relations never own a copy.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar,omitempty"`
	Role      string `json:"role,omitempty"`
}

func (u User) GetID() string { return u.ID }

// UserRef is a reference to a user. Name is whatever partial display
// data the backend embedded; it is a fallback, not a source of truth.
type UserRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Refs converts user ids into references.
func Refs(ids ...string) []UserRef {
	out := make([]UserRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, UserRef{ID: id})
	}
	return out
}
