package session_test

import (
	"testing"

	"github.com/counselhub/portal/internal/model"
	"github.com/counselhub/portal/internal/session"
	"github.com/counselhub/portal/tests/testutil"
)

func TestSessionNilWhenNothingStored(t *testing.T) {
	m := session.NewManager(testutil.NewMemorySecrets())
	if s := m.Session(); s != nil {
		t.Errorf("Session = %+v, want nil", s)
	}
	if token := m.Token(); token != "" {
		t.Errorf("Token = %q, want empty", token)
	}
}

func TestSetSessionRoundTrip(t *testing.T) {
	secrets := testutil.NewMemorySecrets()
	m := session.NewManager(secrets)

	in := model.Session{
		ID:      "u1",
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Picture: "pic.png",
	}
	if err := m.SetSession(in, "bearer-abc"); err != nil {
		t.Fatalf("SetSession: %v", err)
	}

	got := m.Session()
	if got == nil || *got != in {
		t.Fatalf("Session = %+v, want %+v", got, in)
	}
	if token := m.Token(); token != "bearer-abc" {
		t.Errorf("Token = %q", token)
	}

	// A second manager over the same store sees the persisted record.
	fresh := session.NewManager(secrets)
	got = fresh.Session()
	if got == nil || got.Email != "jane@example.com" {
		t.Errorf("fresh manager Session = %+v", got)
	}
}

func TestCorruptRecordIsSignedOut(t *testing.T) {
	secrets := testutil.NewMemorySecrets()
	if err := secrets.Set("session", "{not valid json"); err != nil {
		t.Fatal(err)
	}

	m := session.NewManager(secrets)
	if s := m.Session(); s != nil {
		t.Errorf("Session = %+v, want nil for unreadable record", s)
	}
}

func TestClearSessionWipesEverything(t *testing.T) {
	secrets := testutil.NewMemorySecrets()
	m := session.NewManager(secrets)

	if err := m.SetSession(model.Session{ID: "u1"}, "tok"); err != nil {
		t.Fatal(err)
	}
	if err := m.RememberPassword("hunter2"); err != nil {
		t.Fatal(err)
	}

	m.ClearSession()

	if s := m.Session(); s != nil {
		t.Errorf("Session after clear = %+v", s)
	}
	if token := m.Token(); token != "" {
		t.Errorf("Token after clear = %q", token)
	}
	if pw := m.RememberedPassword(); pw != "" {
		t.Errorf("RememberedPassword after clear = %q", pw)
	}

	// Clearing an already-empty store must not panic.
	m.ClearSession()
}

func TestRememberPassword(t *testing.T) {
	m := session.NewManager(testutil.NewMemorySecrets())

	if pw := m.RememberedPassword(); pw != "" {
		t.Errorf("RememberedPassword = %q, want empty", pw)
	}
	if err := m.RememberPassword("hunter2"); err != nil {
		t.Fatalf("RememberPassword: %v", err)
	}
	if pw := m.RememberedPassword(); pw != "hunter2" {
		t.Errorf("RememberedPassword = %q", pw)
	}
}
