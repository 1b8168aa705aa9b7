package model

import "time"

// DefaultAvatar is the placeholder image reference used when a
// notification carries no usable picture.
const DefaultAvatar = "assets/avatar-placeholder.png"

// Notification is the view-model for a single portal notification.
// It is rebuilt from the server on every fetch and never persisted.
type Notification struct {
	// ID is the opaque identifier assigned by the portal backend.
	ID string `json:"id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// CreatedAt is when the notification was generated server-side.
	CreatedAt time.Time `json:"created_at"`

	// ReadAt is set once the user has seen the notification.
	// A nil ReadAt means unread.
	ReadAt *time.Time `json:"read_at"`

	// Avatar is the image reference shown next to the message,
	// falling back to DefaultAvatar when the payload has none.
	Avatar string `json:"avatar"`

	// TimeAgo is the relative age label ("3 hours", "Just now"),
	// computed once at transform time. It is not re-derived while
	// the list stays open.
	TimeAgo string `json:"time_ago"`
}

// Unread reports whether the notification has no read timestamp.
func (n Notification) Unread() bool {
	return n.ReadAt == nil
}
