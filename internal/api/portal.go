package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetNotifications fetches the user's notification list.
func (c *Client) GetNotifications(ctx context.Context) ([]Notification, error) {
	env, err := c.get(ctx, "/getNotifications")
	if err != nil {
		return nil, err
	}

	var payload notificationsPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("decoding notifications payload: %w", err)
	}
	return payload.Notifications, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	_, err := c.post(ctx, "/markasReadNotification", markReadRequest{
		NotificationID: notificationID,
	})
	return err
}

// ClearAllNotifications removes every notification for the user.
func (c *Client) ClearAllNotifications(ctx context.Context) error {
	_, err := c.post(ctx, "/clearAllNotifications", nil)
	return err
}

// GetBusinessDashboard fetches the aggregate dashboard payload.
func (c *Client) GetBusinessDashboard(ctx context.Context) (*Dashboard, error) {
	env, err := c.get(ctx, "/getBusinessDashboard")
	if err != nil {
		return nil, err
	}

	var dash Dashboard
	if err := json.Unmarshal(env.Data, &dash); err != nil {
		return nil, fmt.Errorf("decoding dashboard payload: %w", err)
	}
	return &dash, nil
}

// Login authenticates with email and password and returns the
// provider payload (user record plus bearer token).
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	env, err := c.post(ctx, "/system-users/auth/login", loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("decoding login payload: %w", err)
	}
	return &result, nil
}
