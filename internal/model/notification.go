package model

import "time"

// NotificationType is the event that produced a notification. Types the
// client does not know are kept verbatim.
type NotificationType string

const (
	NotifyTaskUpdate    NotificationType = "task_update"
	NotifyProjectUpdate NotificationType = "project_update"
	NotifyMention       NotificationType = "mention"
	NotifyComment       NotificationType = "comment"
	NotifyWorkLogAdded  NotificationType = "worklog_added"
	NotifyMemberAdded   NotificationType = "member_added"
	NotifyDeadline      NotificationType = "deadline"
)

// Notification represents an alert surfaced to the current viewer.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	Type NotificationType `json:"type"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the viewer has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"createdAt"`

	// Link is an optional deep-link target such as "/tasks/t1".
	Link string `json:"link,omitempty"`
}

func (n Notification) GetID() string { return n.ID }
