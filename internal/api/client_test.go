package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, StaticToken("test-token"))
	return client, server
}

func TestGetNotifications(t *testing.T) {
	var gotAuth string
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getNotifications" {
			t.Errorf("path = %s, want /getNotifications", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"notifications": []map[string]interface{}{
					{
						"id":         "n1",
						"message":    "Your lawyer replied",
						"created_at": "2026-08-30T09:00:00Z",
						"data":       map[string]string{"picture": "pic.png"},
					},
				},
			},
		})
	}))
	defer server.Close()

	batch, err := client.GetNotifications(context.Background())
	if err != nil {
		t.Fatalf("GetNotifications: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(batch) != 1 || batch[0].ID != "n1" {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if batch[0].Picture() != "pic.png" {
		t.Errorf("picture = %q, want pic.png", batch[0].Picture())
	}
}

func TestFalsyStatusIsStatusError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Something went wrong",
		})
	}))
	defer server.Close()

	err := client.ClearAllNotifications(context.Background())
	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T (%v)", err, err)
	}
	if statusErr.Message != "Something went wrong" {
		t.Errorf("message = %q", statusErr.Message)
	}
}

func TestMarkNotificationReadBody(t *testing.T) {
	var body markReadRequest
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markasReadNotification" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true})
	}))
	defer server.Close()

	if err := client.MarkNotificationRead(context.Background(), "n42"); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if body.NotificationID != "n42" {
		t.Errorf("notification_id = %q, want n42", body.NotificationID)
	}
}

func TestLogin(t *testing.T) {
	var body loginRequest
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/system-users/auth/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("login should be unauthenticated, got %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"user": map[string]string{
					"id":    "u1",
					"name":  "Jane Doe",
					"email": "jane@example.com",
				},
				"token": "bearer-abc",
			},
		})
	}))
	defer server.Close()

	client.tokens = StaticToken("")

	result, err := client.Login(context.Background(), "jane@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if body.Email != "jane@example.com" || body.Password != "hunter2" {
		t.Errorf("request body = %+v", body)
	}
	if result.Token != "bearer-abc" || result.User.Name != "Jane Doe" {
		t.Errorf("result = %+v", result)
	}
}

func TestGetBusinessDashboard(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getBusinessDashboard" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"user_info":       map[string]string{"id": "u1", "name": "Jane"},
				"active_lawyers":  []map[string]string{{"id": "l1", "name": "Sam Counsel"}},
				"cases":           []map[string]string{{"id": "c1", "title": "Lease dispute"}},
				"recent_question": map[string]string{"id": "q1", "subject": "Deposit"},
			},
		})
	}))
	defer server.Close()

	dash, err := client.GetBusinessDashboard(context.Background())
	if err != nil {
		t.Fatalf("GetBusinessDashboard: %v", err)
	}
	if dash.UserInfo.Name != "Jane" {
		t.Errorf("user_info = %+v", dash.UserInfo)
	}
	if len(dash.ActiveLawyers) != 1 || dash.ActiveLawyers[0].Name != "Sam Counsel" {
		t.Errorf("active_lawyers = %+v", dash.ActiveLawyers)
	}
	if dash.RecentQuestion == nil || dash.RecentQuestion.Subject != "Deposit" {
		t.Errorf("recent_question = %+v", dash.RecentQuestion)
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	attempts := 0
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true})
	}))
	defer server.Close()

	if err := client.ClearAllNotifications(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
