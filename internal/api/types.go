package api

import "encoding/json"

// envelope is the common response wrapper used by every portal
// endpoint: a truthy status flag, an operation-specific payload, and
// an optional human-readable message.
type envelope struct {
	Status  bool            `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Notification is a single notification entry as the backend sends
// it. Timestamps are raw strings; the notify package owns parsing and
// the transform into the view-model.
type Notification struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	CreatedAt string          `json:"created_at"`
	ReadAt    string          `json:"read_at"`
	Data      json.RawMessage `json:"data"`
}

// notificationData is the nested payload carrying the sender's
// picture. It only decodes when data is a structured value; a string
// or null payload fails to decode and yields no picture.
type notificationData struct {
	Picture string `json:"picture"`
}

// Picture returns the sender picture nested in the data field, or
// empty when data is absent, null, or not a structured value.
func (n Notification) Picture() string {
	if len(n.Data) == 0 {
		return ""
	}
	var d notificationData
	if err := json.Unmarshal(n.Data, &d); err != nil {
		return ""
	}
	return d.Picture
}

// notificationsPayload is the data field of getNotifications.
type notificationsPayload struct {
	Notifications []Notification `json:"notifications"`
}

// markReadRequest is the body of markasReadNotification.
type markReadRequest struct {
	NotificationID string `json:"notification_id"`
}

// loginRequest is the body of the auth login endpoint.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo is the account summary on the business dashboard.
type UserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	Company string `json:"company"`
}

// Lawyer is a single lawyer entry on the business dashboard.
type Lawyer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Picture  string `json:"picture"`
	Practice string `json:"practice_area"`
}

// Case is a single case entry on the business dashboard.
type Case struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Lawyer    string `json:"lawyer_name"`
	UpdatedAt string `json:"updated_at"`
}

// Question is the client's most recent question.
type Question struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// LawyerResponse is a lawyer's reply to a client question.
type LawyerResponse struct {
	ID         string `json:"id"`
	LawyerName string `json:"lawyer_name"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

// Dashboard is the aggregate payload of getBusinessDashboard.
type Dashboard struct {
	UserInfo        UserInfo         `json:"user_info"`
	RecentQuestion  *Question        `json:"recent_question"`
	LawyerResponses []LawyerResponse `json:"lawyer_responses"`
	ActiveLawyers   []Lawyer         `json:"active_lawyers"`
	InactiveLawyers []Lawyer         `json:"inactive_lawyers"`
	Cases           []Case           `json:"cases"`
	Notifications   []Notification   `json:"notifications"`
}

// LoginResult is the provider payload returned on successful login.
type LoginResult struct {
	User struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	} `json:"user"`
	Token string `json:"token"`
}
