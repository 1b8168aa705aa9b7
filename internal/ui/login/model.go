// Package login implements the sign-in form.
package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/counselhub/portal/internal/theme"
)

// SubmittedMsg is dispatched when the user submits the form. The root
// model performs the remote login.
type SubmittedMsg struct {
	Email    string
	Password string
	Remember bool
}

// AbortedMsg is dispatched when the user abandons the form.
type AbortedMsg struct{}

// formBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
	remember bool
}

// Model is the Bubble Tea model for the login form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	errText    string
	submitting bool
	spinner    spinner.Model
	width      int
	height     int
}

// New creates a new login form model.
func New(width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.DimmedStyle

	return Model{
		fb:      &formBindings{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start initializes the form. Cached credentials, when fresh, prefill
// the fields so a returning user just presses enter.
func (m *Model) Start(cachedEmail, cachedPassword string) tea.Cmd {
	m.fb.email = cachedEmail
	m.fb.password = cachedPassword
	m.fb.remember = cachedEmail != ""
	m.errText = ""
	m.submitting = false
	m.form = m.buildForm()
	return m.form.Init()
}

// SetError shows a failed-login message and re-arms the form.
func (m *Model) SetError(text string) tea.Cmd {
	m.errText = text
	m.submitting = false
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.submitting {
		if tick, ok := msg.(spinner.TickMsg); ok {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(tick)
			return m, cmd
		}
		return m, nil
	}

	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		m.errText = ""
		submit := SubmittedMsg{
			Email:    strings.TrimSpace(m.fb.email),
			Password: m.fb.password,
			Remember: m.fb.remember,
		}
		return m, tea.Batch(
			func() tea.Msg { return submit },
			m.spinner.Tick,
		)
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return AbortedMsg{} }
	}

	return m, cmd
}

// View renders the login form.
func (m Model) View() string {
	title := theme.TitleStyle.MarginBottom(1).Render("Sign in to Counsel Portal")

	var body string
	switch {
	case m.submitting:
		body = theme.DimmedStyle.Render(m.spinner.View() + " signing in...")
	case m.form != nil:
		body = m.form.View()
	}

	content := title + "\n"
	if m.errText != "" {
		content += theme.ErrorStyle.Render(m.errText) + "\n\n"
	}
	content += body

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
			huh.NewConfirm().
				Title("Remember me").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.remember),
		),
	).WithWidth(m.formWidth())
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

// validateRequired rejects empty values for the named field.
func validateRequired(field string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return &validationError{field: field}
		}
		return nil
	}
}

type validationError struct {
	field string
}

func (e *validationError) Error() string {
	return e.field + " is required"
}
