package intent

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// fireClose executes a Leave command synchronously and returns the
// CloseMsg it produced.
func fireClose(t *testing.T, cmd tea.Cmd) CloseMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a scheduled close command")
	}
	msg, ok := cmd().(CloseMsg)
	if !ok {
		t.Fatalf("expected CloseMsg, got %T", cmd())
	}
	return msg
}

func TestLeaveSchedulesClose(t *testing.T) {
	tm := NewTimer("profile")

	tm.Enter()
	if !tm.Open() {
		t.Fatal("panel should open on enter")
	}

	msg := fireClose(t, tm.Leave())
	if !tm.Expire(msg) {
		t.Fatal("live close should expire")
	}
	if tm.Open() {
		t.Error("panel should close after expiry")
	}
}

func TestReenterWithinDelayCancelsClose(t *testing.T) {
	tm := NewTimer("notifications")

	tm.Enter()
	msg := fireClose(t, tm.Leave())

	// The pointer comes back before the delay expires.
	tm.Enter()

	if tm.Expire(msg) {
		t.Error("cancelled close must not expire")
	}
	if !tm.Open() {
		t.Error("panel should stay open after re-enter")
	}
}

func TestLeaveWhileClosedIsNoop(t *testing.T) {
	tm := NewTimer("profile")

	if cmd := tm.Leave(); cmd != nil {
		t.Error("leave on a closed panel should schedule nothing")
	}
}

func TestIndependentTimersShareNoState(t *testing.T) {
	profile := NewTimer("profile")
	notif := NewTimer("notifications")

	profile.Enter()
	notif.Enter()

	profileClose := fireClose(t, profile.Leave())

	// The profile panel's expiry must not touch the notification
	// panel.
	if notif.Expire(profileClose) {
		t.Error("close for one panel expired on another")
	}
	if !notif.Open() {
		t.Error("notification panel should be unaffected")
	}
	if !profile.Expire(profileClose) {
		t.Error("profile panel should close on its own expiry")
	}
}

func TestTeardownCancelsPendingClose(t *testing.T) {
	tm := NewTimer("notifications")

	tm.Enter()
	msg := fireClose(t, tm.Leave())

	tm.Teardown()

	if tm.Expire(msg) {
		t.Error("expiry after teardown must be ignored")
	}
	if tm.Open() {
		t.Error("teardown should leave the panel closed")
	}
}

func TestStaleGenerationIgnored(t *testing.T) {
	tm := NewTimer("notifications")

	tm.Enter()
	stale := fireClose(t, tm.Leave())

	// A newer leave supersedes the first.
	tm.Enter()
	fresh := fireClose(t, tm.Leave())

	if tm.Expire(stale) {
		t.Error("superseded close must not expire")
	}
	if !tm.Expire(fresh) {
		t.Error("latest close should expire")
	}
}
