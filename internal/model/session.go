package model

// Session is the signed-in user's identity record. It is read once
// when a protected view mounts and treated as immutable for the
// lifetime of that view; there is no live refresh.
type Session struct {
	// ID is the portal user identifier.
	ID string `json:"id"`

	// Name is the user's display name.
	Name string `json:"name"`

	// Email is the address the user signed in with.
	Email string `json:"email"`

	// Picture is the profile image reference, if any.
	Picture string `json:"picture"`
}
