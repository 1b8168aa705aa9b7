// Package confirm implements the logout confirmation dialog.
package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/counselhub/portal/internal/theme"
)

// LogoutConfirmedMsg is dispatched when the user confirms logout.
type LogoutConfirmedMsg struct{}

// LogoutCancelledMsg is dispatched when the user cancels. The dialog
// is dismissed with no side effects.
type LogoutCancelledMsg struct{}

// Model is the Bubble Tea model for the logout confirmation dialog.
type Model struct {
	form      *huh.Form
	confirmed *bool
	width     int
	height    int
}

// New creates a new confirmation dialog model.
func New(width, height int) Model {
	return Model{
		confirmed: new(bool),
		width:     width,
		height:    height,
	}
}

// Start arms the dialog.
func (m *Model) Start() tea.Cmd {
	*m.confirmed = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Log out?").
				Description("You will need to sign in again to access your cases.").
				Affirmative("Yes, log out").
				Negative("Cancel").
				Value(m.confirmed),
		),
	).WithWidth(m.formWidth())
	return m.form.Init()
}

// SetSize updates the dialog dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the dialog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if *m.confirmed {
			return m, func() tea.Msg { return LogoutConfirmedMsg{} }
		}
		return m, func() tea.Msg { return LogoutCancelledMsg{} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return LogoutCancelledMsg{} }
	}

	return m, cmd
}

// View renders the dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	content := theme.TitleStyle.MarginBottom(1).Render("Confirm logout") +
		"\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

func (m *Model) formWidth() int {
	w := m.width - 8
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}
