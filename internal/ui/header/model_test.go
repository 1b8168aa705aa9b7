package header

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/counselhub/portal/internal/api"
	"github.com/counselhub/portal/internal/keys"
	"github.com/counselhub/portal/internal/model"
)

func newTestHeader() Model {
	client := api.NewClient("http://127.0.0.1:1", api.StaticToken("tok"))
	s := &model.Session{ID: "u1", Name: "Jane Doe", Email: "jane@example.com"}
	return New(client, keys.DefaultKeyMap(), s, 80)
}

func key(s string) tea.KeyMsg {
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPanelTogglesAreExclusive(t *testing.T) {
	m := newTestHeader()

	m, cmd := m.Update(key("n"))
	if !m.notifPanel.Open() {
		t.Fatal("notifications panel not open after n")
	}
	if cmd == nil {
		t.Error("opening notifications should issue a fetch")
	}

	// Opening the profile panel closes the notifications panel.
	m, _ = m.Update(key("p"))
	if m.notifPanel.Open() {
		t.Error("notifications panel still open")
	}
	if !m.profilePanel.Open() {
		t.Error("profile panel not open after p")
	}

	// Esc closes whatever is open.
	m, _ = m.Update(key("esc"))
	if m.PanelOpen() {
		t.Error("panel still open after esc")
	}
}

func TestFetchResultPopulatesStore(t *testing.T) {
	m := newTestHeader()
	m, _ = m.Update(key("n"))

	seq := m.notifications.Seq()
	m, _ = m.Update(fetchResultMsg{seq: seq, batch: []api.Notification{
		{ID: "n1", Message: "Reply from your lawyer", CreatedAt: "2026-08-30T09:00:00Z"},
		{ID: "n2", Message: "Case updated", CreatedAt: "2026-08-30T08:00:00Z"},
	}})

	if got := m.UnreadCount(); got != 2 {
		t.Errorf("UnreadCount = %d, want 2", got)
	}
	if m.notifications.Loading() {
		t.Error("still loading after result")
	}
}

func TestEnterOnReadEntryIsNoop(t *testing.T) {
	m := newTestHeader()
	m, _ = m.Update(key("n"))

	readAt := "2026-08-30T08:30:00Z"
	m, _ = m.Update(fetchResultMsg{seq: m.notifications.Seq(), batch: []api.Notification{
		{ID: "n1", Message: "Already seen", CreatedAt: "2026-08-30T08:00:00Z", ReadAt: readAt},
	}})

	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("enter on a read entry issued a remote call")
	}
}

func TestClearAllFailureRaisesToast(t *testing.T) {
	m := newTestHeader()
	m, _ = m.Update(key("n"))
	m, _ = m.Update(fetchResultMsg{seq: m.notifications.Seq(), batch: []api.Notification{
		{ID: "n1", Message: "One", CreatedAt: "2026-08-30T09:00:00Z"},
	}})

	m, cmd := m.Update(clearAllResultMsg{err: &api.StatusError{Message: "Server busy"}})
	if cmd == nil {
		t.Fatal("failed clear produced no command")
	}
	toast, ok := cmd().(ToastMsg)
	if !ok {
		t.Fatalf("command produced %T, want ToastMsg", cmd())
	}
	if toast.Text != "Server busy" {
		t.Errorf("toast text = %q", toast.Text)
	}
	if len(m.notifications.List()) != 1 {
		t.Error("failed clear mutated the list")
	}
}

func TestClearAllSuccessEmptiesList(t *testing.T) {
	m := newTestHeader()
	m, _ = m.Update(key("n"))
	m, _ = m.Update(fetchResultMsg{seq: m.notifications.Seq(), batch: []api.Notification{
		{ID: "n1", Message: "One", CreatedAt: "2026-08-30T09:00:00Z"},
		{ID: "n2", Message: "Two", CreatedAt: "2026-08-30T08:00:00Z"},
	}})

	m, _ = m.Update(clearAllResultMsg{})
	if len(m.notifications.List()) != 0 || m.UnreadCount() != 0 {
		t.Errorf("list=%d unread=%d after clear", len(m.notifications.List()), m.UnreadCount())
	}
	if m.notifCursor != 0 {
		t.Errorf("cursor = %d after clear", m.notifCursor)
	}
}

func TestCursorClampsToRefreshedList(t *testing.T) {
	m := newTestHeader()
	m, _ = m.Update(key("n"))
	m, _ = m.Update(fetchResultMsg{seq: m.notifications.Seq(), batch: []api.Notification{
		{ID: "n1", CreatedAt: "2026-08-30T09:00:00Z"},
		{ID: "n2", CreatedAt: "2026-08-30T08:00:00Z"},
		{ID: "n3", CreatedAt: "2026-08-30T07:00:00Z"},
	}})

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	if m.notifCursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.notifCursor)
	}

	// A refresh that shrinks the list pulls the cursor back in range.
	m, _ = m.Update(key("r"))
	m, _ = m.Update(fetchResultMsg{seq: m.notifications.Seq(), batch: []api.Notification{
		{ID: "n1", CreatedAt: "2026-08-30T09:00:00Z"},
	}})
	if m.notifCursor != 0 {
		t.Errorf("cursor = %d after shrink, want 0", m.notifCursor)
	}
}

func TestProfilePanelActions(t *testing.T) {
	m := newTestHeader()
	m, _ = m.Update(key("p"))

	_, cmd := m.Update(key("t"))
	if cmd == nil {
		t.Fatal("t produced no command")
	}
	if _, ok := cmd().(ThemeToggleMsg); !ok {
		t.Errorf("t produced %T, want ThemeToggleMsg", cmd())
	}

	m2, cmd := m.Update(key("L"))
	if cmd == nil {
		t.Fatal("L produced no command")
	}
	if _, ok := cmd().(LogoutRequestMsg); !ok {
		t.Errorf("L produced %T, want LogoutRequestMsg", cmd())
	}
	if m2.profilePanel.Open() {
		t.Error("profile panel still open after logout request")
	}
}
