package header

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/counselhub/portal/internal/theme"
)

// rightSections returns the bell and profile trigger strings shown at
// the right edge of the header row.
func (m Model) rightSections() (string, string) {
	bell := "🔔"
	if count := m.notifications.UnreadCount(); count > 0 {
		bell = fmt.Sprintf("🔔 %d", count)
	}
	if m.notifications.Loading() {
		bell = m.spinner.View() + " " + bell
	}

	name := ""
	if m.session != nil {
		name = m.session.Name
	}
	profile := name + " ▾"

	return bell + "  ", profile
}

// Right returns the rendered right side of the header row.
func (m Model) Right() string {
	bell, profile := m.rightSections()
	return bell + profile
}

// ViewPanel renders the open floating panel, right-aligned beneath
// the header row, or an empty string when both panels are closed.
func (m Model) ViewPanel() string {
	if !m.PanelOpen() {
		return ""
	}

	panel := m.panelView()
	pw := lipgloss.Width(panel)

	pad := m.width - pw
	if pad < 0 {
		pad = 0
	}
	return lipgloss.NewStyle().MarginLeft(pad).Render(panel)
}

// panelView renders whichever panel is open.
func (m Model) panelView() string {
	if m.notifPanel.Open() {
		return m.notificationPanelView()
	}
	if m.profilePanel.Open() {
		return m.profilePanelView()
	}
	return ""
}

// notificationPanelView renders the notification list panel.
func (m Model) notificationPanelView() string {
	title := theme.TitleStyle.Render("Notifications")

	list := m.notifications.List()
	lines := []string{title}

	if m.notifications.Loading() && len(list) == 0 {
		lines = append(lines, theme.DimmedStyle.Render(m.spinner.View()+" loading..."))
	} else if len(list) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("No notifications"))
	}

	for i, n := range list {
		marker := "  "
		if n.Unread() {
			marker = theme.UnreadStyle.Render("● ")
		}

		line := fmt.Sprintf("%s%s %s", marker, n.Message, theme.DimmedStyle.Render(n.TimeAgo))
		if i == m.notifCursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if len(list) > 0 {
		lines = append(lines, theme.DimmedStyle.Render("enter read | C clear all | r refresh"))
	}

	return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// profilePanelView renders the profile panel.
func (m Model) profilePanelView() string {
	name, email := "", ""
	if m.session != nil {
		name = m.session.Name
		email = m.session.Email
	}

	mode := "light"
	if theme.Dark() {
		mode = "dark"
	}

	lines := []string{
		theme.TitleStyle.Render(name),
		theme.DimmedStyle.Render(email),
		"",
		fmt.Sprintf("t  toggle theme (%s)", mode),
		"L  log out",
	}

	return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// handleMouse derives enter/leave edges for both panels from pointer
// motion over their trigger and panel hit zones.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	bell, profile := m.rightSections()
	bellWidth := lipgloss.Width(bell)
	profileWidth := lipgloss.Width(profile)

	profileStart := m.width - profileWidth
	bellStart := profileStart - bellWidth

	onHeaderRow := msg.Y == 0
	overBell := onHeaderRow && msg.X >= bellStart && msg.X < profileStart
	overProfile := onHeaderRow && msg.X >= profileStart

	inNotif := overBell || (m.notifPanel.Open() && m.overPanel(msg))
	inProfile := overProfile || (m.profilePanel.Open() && m.overPanel(msg))

	var cmds []tea.Cmd

	if inNotif && !m.inNotifZone {
		wasOpen := m.notifPanel.Open()
		m.profilePanel.Teardown()
		m.notifPanel.Enter()
		if !wasOpen {
			cmds = append(cmds, m.FetchNotifications())
		}
	} else if !inNotif && m.inNotifZone {
		cmds = append(cmds, m.notifPanel.Leave())
	}

	if inProfile && !m.inProfileZone {
		m.notifPanel.Teardown()
		m.profilePanel.Enter()
	} else if !inProfile && m.inProfileZone {
		cmds = append(cmds, m.profilePanel.Leave())
	}

	m.inNotifZone = inNotif
	m.inProfileZone = inProfile

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if cmd := m.handleClick(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// overPanel reports whether the pointer is inside the open panel box.
func (m Model) overPanel(msg tea.MouseMsg) bool {
	panel := m.panelView()
	pw := lipgloss.Width(panel)
	ph := lipgloss.Height(panel)

	return msg.Y >= 1 && msg.Y <= ph && msg.X >= m.width-pw
}

// handleClick maps a left click inside the notification panel to a
// mark-as-read on the clicked entry.
func (m Model) handleClick(msg tea.MouseMsg) tea.Cmd {
	if !m.notifPanel.Open() || !m.overPanel(msg) {
		return nil
	}

	// Row 1 is the panel border, row 2 the title; entries start at
	// row 3.
	idx := msg.Y - 3
	list := m.notifications.List()
	if idx < 0 || idx >= len(list) {
		return nil
	}

	id := list[idx].ID
	if !m.notifications.NeedsMarkRead(id) {
		return nil
	}
	return m.markRead(id)
}
