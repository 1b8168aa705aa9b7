// Package dashboard renders the business dashboard: the client's
// recent question, lawyer responses, lawyer availability, and cases.
package dashboard

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/counselhub/portal/internal/api"
	"github.com/counselhub/portal/internal/theme"
)

// LoadedMsg is sent when the dashboard fetch completes.
type LoadedMsg struct {
	Dashboard *api.Dashboard
	Err       error
}

// Model is the dashboard view.
type Model struct {
	client   *api.Client
	viewport viewport.Model
	spinner  spinner.Model

	dash    *api.Dashboard
	loading bool
	welcome string

	width  int
	height int
}

// New creates the dashboard view.
func New(client *api.Client, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.DimmedStyle

	vp := viewport.New(width, height)

	return Model{
		client:   client,
		viewport: vp,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// SetWelcome shows the one-time welcome notice at the top of the
// dashboard. The root model decides whether it has already been shown
// this session.
func (m *Model) SetWelcome(text string) {
	m.welcome = text
}

// Load fetches the dashboard payload.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	client := m.client

	fetch := func() tea.Msg {
		dash, err := client.GetBusinessDashboard(context.Background())
		return LoadedMsg{Dashboard: dash, Err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.renderContent())
}

// Update handles messages for the dashboard view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			// Degrade to an empty dashboard rather than stale or
			// partial data.
			log.Printf("dashboard: fetch failed: %v", msg.Err)
			m.dash = nil
		} else {
			m.dash = msg.Dashboard
		}
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if m.loading && m.dash == nil {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(theme.DimmedStyle.Render(m.spinner.View() + " loading dashboard..."))
	}
	return m.viewport.View()
}

// renderContent builds the full dashboard content string.
func (m Model) renderContent() string {
	sections := []string{}

	if m.welcome != "" {
		sections = append(sections, theme.ToastStyle.Render(m.welcome))
	}

	if m.dash == nil {
		sections = append(sections, theme.DimmedStyle.Render("Dashboard unavailable"))
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	}

	sections = append(sections,
		m.renderQuestion(),
		m.renderResponses(),
		m.renderLawyers(),
		m.renderCases(),
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderQuestion renders the client's most recent question.
func (m Model) renderQuestion() string {
	title := theme.TitleStyle.Render("Recent question")
	if m.dash.RecentQuestion == nil {
		return title + "\n" + theme.DimmedStyle.Render("  No questions yet") + "\n"
	}

	q := m.dash.RecentQuestion
	return fmt.Sprintf(
		"%s\n  %s\n  %s\n",
		title,
		q.Subject,
		theme.DimmedStyle.Render(q.CreatedAt),
	)
}

// renderResponses renders lawyer replies to the recent question.
func (m Model) renderResponses() string {
	title := theme.TitleStyle.Render("Lawyer responses")
	if len(m.dash.LawyerResponses) == 0 {
		return title + "\n" + theme.DimmedStyle.Render("  No responses yet") + "\n"
	}

	lines := []string{title}
	for _, r := range m.dash.LawyerResponses {
		lines = append(lines, fmt.Sprintf(
			"  %s %s",
			theme.UnreadStyle.Render(r.LawyerName+":"),
			r.Body,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// renderLawyers renders lawyer availability.
func (m Model) renderLawyers() string {
	lines := []string{theme.TitleStyle.Render("Lawyers")}

	for _, l := range m.dash.ActiveLawyers {
		lines = append(lines, fmt.Sprintf(
			"  %s %s %s",
			theme.UnreadStyle.Render("●"),
			l.Name,
			theme.DimmedStyle.Render(l.Practice),
		))
	}
	for _, l := range m.dash.InactiveLawyers {
		lines = append(lines, theme.DimmedStyle.Render(fmt.Sprintf(
			"  ○ %s %s", l.Name, l.Practice,
		)))
	}
	if len(m.dash.ActiveLawyers)+len(m.dash.InactiveLawyers) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("  No lawyers assigned"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// renderCases renders the case list.
func (m Model) renderCases() string {
	lines := []string{theme.TitleStyle.Render("Cases")}

	if len(m.dash.Cases) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("  No cases"))
	}
	for _, c := range m.dash.Cases {
		lines = append(lines, fmt.Sprintf(
			"  %s  %s %s",
			c.Title,
			theme.DimmedStyle.Render(c.Status),
			theme.DimmedStyle.Render(c.UpdatedAt),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
