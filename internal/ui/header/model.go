// Package header implements the portal chrome: title bar, unread
// badge, and the two hover-driven floating panels (notifications and
// profile).
package header

import (
	"context"
	"log"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/counselhub/portal/internal/api"
	"github.com/counselhub/portal/internal/intent"
	"github.com/counselhub/portal/internal/keys"
	"github.com/counselhub/portal/internal/model"
	"github.com/counselhub/portal/internal/notify"
	"github.com/counselhub/portal/internal/theme"
)

// Panel names for the intent timers. The two panels keep fully
// independent timers; a pending close on one never affects the other.
const (
	PanelNotifications = "notifications"
	PanelProfile       = "profile"
)

// ToastMsg asks the root model to show a transient user-visible
// notice in the status bar.
type ToastMsg struct {
	Text string
}

// LogoutRequestMsg is sent when the user triggers logout from the
// profile panel. The root model opens the confirmation dialog.
type LogoutRequestMsg struct{}

// ThemeToggleMsg is sent when the user flips the theme from the
// profile panel.
type ThemeToggleMsg struct{}

// fetchResultMsg carries a completed notification fetch back to the
// UI loop, tagged with its issue sequence.
type fetchResultMsg struct {
	seq   int
	batch []api.Notification
	err   error
}

// markReadResultMsg carries a completed mark-as-read call.
type markReadResultMsg struct {
	id  string
	err error
}

// clearAllResultMsg carries a completed clear-all call.
type clearAllResultMsg struct {
	err error
}

// Model is the header component. It owns the notification store and
// the transient panel state.
type Model struct {
	client        *api.Client
	keys          *keys.KeyMap
	session       *model.Session
	notifications *notify.Store

	notifPanel   intent.Timer
	profilePanel intent.Timer

	spinner     spinner.Model
	notifCursor int
	width       int

	// Pointer hit state, used to derive enter/leave edges from
	// mouse motion.
	inNotifZone   bool
	inProfileZone bool
}

// New creates the header for the given session.
func New(client *api.Client, k *keys.KeyMap, session *model.Session, width int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.DimmedStyle

	return Model{
		client:        client,
		keys:          k,
		session:       session,
		notifications: notify.NewStore(nil),
		notifPanel:    intent.NewTimer(PanelNotifications),
		profilePanel:  intent.NewTimer(PanelProfile),
		spinner:       sp,
		width:         width,
	}
}

// SetWidth updates the header width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// UnreadCount exposes the unread counter for the root header badge.
func (m *Model) UnreadCount() int {
	return m.notifications.UnreadCount()
}

// PanelOpen reports whether either floating panel is open.
func (m *Model) PanelOpen() bool {
	return m.notifPanel.Open() || m.profilePanel.Open()
}

// PanelHeight returns how many content rows the open panel occupies.
func (m *Model) PanelHeight() int {
	if !m.PanelOpen() {
		return 0
	}
	return lipgloss.Height(m.panelView())
}

// Teardown cancels both panel timers. Called when the owning view
// unmounts so no close fires afterwards.
func (m *Model) Teardown() {
	m.notifPanel.Teardown()
	m.profilePanel.Teardown()
}

// FetchNotifications issues a notification fetch. Each call gets a
// fresh sequence number; when calls overlap, only the last issued one
// lands.
func (m *Model) FetchNotifications() tea.Cmd {
	seq := m.notifications.BeginFetch()
	client := m.client

	fetch := func() tea.Msg {
		batch, err := client.GetNotifications(context.Background())
		return fetchResultMsg{seq: seq, batch: batch, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// markRead issues a mark-as-read call for an unread notification.
func (m *Model) markRead(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.MarkNotificationRead(context.Background(), id)
		return markReadResultMsg{id: id, err: err}
	}
}

// clearAll issues a clear-all call.
func (m *Model) clearAll() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.ClearAllNotifications(context.Background())
		return clearAllResultMsg{err: err}
	}
}

// Update handles messages for the header.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchResultMsg:
		if msg.err != nil {
			// Transport and server failures both degrade to an
			// empty list; the error is diagnostic only.
			log.Printf("header: notification fetch failed: %v", msg.err)
		}
		m.notifications.ApplyFetch(msg.seq, msg.batch, msg.err)
		m.clampCursor()
		return m, nil

	case markReadResultMsg:
		if msg.err != nil {
			// Leave local state untouched; the next full fetch
			// reconciles.
			log.Printf("header: mark-as-read failed for %s: %v", msg.id, msg.err)
			return m, nil
		}
		m.notifications.ConfirmRead(msg.id)
		return m, nil

	case clearAllResultMsg:
		if msg.err != nil {
			text := "Could not clear notifications"
			if statusErr, ok := msg.err.(*api.StatusError); ok && statusErr.Message != "" {
				text = statusErr.Message
			}
			log.Printf("header: clear-all failed: %v", msg.err)
			return m, func() tea.Msg { return ToastMsg{Text: text} }
		}
		m.notifications.Clear()
		m.notifCursor = 0
		return m, nil

	case intent.CloseMsg:
		m.notifPanel.Expire(msg)
		m.profilePanel.Expire(msg)
		return m, nil

	case spinner.TickMsg:
		if m.notifications.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

// handleKeys processes keyboard input when a panel is open, plus the
// global panel-toggle keys.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		if m.notifPanel.Open() {
			m.notifPanel.Teardown()
			return m, nil
		}
		m.profilePanel.Teardown()
		m.notifPanel.Enter()
		m.notifCursor = 0
		return m, m.FetchNotifications()

	case "p":
		if m.profilePanel.Open() {
			m.profilePanel.Teardown()
			return m, nil
		}
		m.notifPanel.Teardown()
		m.profilePanel.Enter()
		return m, nil

	case "esc":
		if m.PanelOpen() {
			m.notifPanel.Teardown()
			m.profilePanel.Teardown()
			return m, nil
		}
		return m, nil
	}

	if m.notifPanel.Open() {
		return m.handleNotifPanelKeys(msg)
	}
	if m.profilePanel.Open() {
		return m.handleProfilePanelKeys(msg)
	}
	return m, nil
}

// handleNotifPanelKeys drives the notification panel cursor and
// actions.
func (m Model) handleNotifPanelKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	list := m.notifications.List()

	switch msg.String() {
	case "j", "down":
		if m.notifCursor < len(list)-1 {
			m.notifCursor++
		}
		return m, nil

	case "k", "up":
		if m.notifCursor > 0 {
			m.notifCursor--
		}
		return m, nil

	case "enter":
		if m.notifCursor >= len(list) {
			return m, nil
		}
		id := list[m.notifCursor].ID
		// Already-read entries fire no remote call and change no
		// state.
		if !m.notifications.NeedsMarkRead(id) {
			return m, nil
		}
		return m, m.markRead(id)

	case "C":
		if len(list) == 0 {
			return m, nil
		}
		return m, m.clearAll()

	case "r":
		return m, m.FetchNotifications()
	}

	return m, nil
}

// handleProfilePanelKeys drives the profile panel actions.
func (m Model) handleProfilePanelKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "t":
		return m, func() tea.Msg { return ThemeToggleMsg{} }
	case "L":
		m.profilePanel.Teardown()
		return m, func() tea.Msg { return LogoutRequestMsg{} }
	}
	return m, nil
}

// clampCursor keeps the cursor inside the refreshed list.
func (m *Model) clampCursor() {
	if n := len(m.notifications.List()); m.notifCursor >= n {
		if n == 0 {
			m.notifCursor = 0
		} else {
			m.notifCursor = n - 1
		}
	}
}
