// Package app wires the portal client together: view routing, the
// session gate, theme state, and the bridges between the UI loop and
// the remote API, realtime channel, and event bus.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/counselhub/portal/internal/api"
	"github.com/counselhub/portal/internal/events"
	"github.com/counselhub/portal/internal/intent"
	"github.com/counselhub/portal/internal/keys"
	"github.com/counselhub/portal/internal/model"
	"github.com/counselhub/portal/internal/realtime"
	"github.com/counselhub/portal/internal/session"
	"github.com/counselhub/portal/internal/store"
	"github.com/counselhub/portal/internal/theme"
	"github.com/counselhub/portal/internal/ui"
	"github.com/counselhub/portal/internal/ui/confirm"
	"github.com/counselhub/portal/internal/ui/dashboard"
	"github.com/counselhub/portal/internal/ui/header"
	"github.com/counselhub/portal/internal/ui/help"
	"github.com/counselhub/portal/internal/ui/login"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewHelp
	ViewLogoutConfirm
)

// toastDuration is how long a transient notice stays in the status
// bar.
const toastDuration = 4 * time.Second

// loginResultMsg carries a completed remote login back to the UI loop.
type loginResultMsg struct {
	result   *api.LoginResult
	email    string
	password string
	remember bool
	err      error
}

// toastClearMsg clears the status-bar notice when its generation is
// still current.
type toastClearMsg struct {
	gen int
}

// transitionDoneMsg clears the theme transition marker.
type transitionDoneMsg struct{}

// busEventMsg delivers a bus event to the UI loop.
type busEventMsg struct {
	event interface{}
}

// presenceDoneMsg reports the presence-announce attempt; it exists
// only so the command has something to return.
type presenceDoneMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	cfg     *model.AppConfig
	cfgPath string

	kv       *store.KV
	sessions *session.Manager
	client   *api.Client
	channel  *realtime.Channel
	bus      *events.Bus
	busSub   *events.Subscription
	keys     *keys.KeyMap

	loginView   login.Model
	dashView    dashboard.Model
	headerView  header.Model
	confirmView confirm.Model
	helpView    help.Model

	toast         string
	toastGen      int
	transitioning bool
	announced     bool

	// initCmds is prepared in New because Init runs on a copy of
	// the model: commands that mutate view state (arming the login
	// form, issuing the first fetch) must run against the model the
	// program keeps.
	initCmds []tea.Cmd
}

// New creates the root model. The session gate runs here: with no
// stored session the application starts on the login view.
func New(
	cfg *model.AppConfig,
	cfgPath string,
	kv *store.KV,
	sessions *session.Manager,
	client *api.Client,
	channel *realtime.Channel,
	bus *events.Bus,
) Model {
	k := keys.DefaultKeyMap()
	theme.Apply(cfg.DarkMode())

	m := Model{
		cfg:         cfg,
		cfgPath:     cfgPath,
		kv:          kv,
		sessions:    sessions,
		client:      client,
		channel:     channel,
		bus:         bus,
		busSub:      bus.Subscribe(events.ThemeChanged{}),
		keys:        k,
		loginView:   login.New(80, 24),
		dashView:    dashboard.New(client, 80, 22),
		confirmView: confirm.New(80, 24),
		helpView:    help.New(k, 80, 22),
	}

	if s := sessions.Session(); s != nil {
		m.headerView = header.New(client, k, s, 80)
		m.initCmds = m.enterDashboard()
	} else {
		m.currentView = ViewLogin
		m.headerView = header.New(client, k, nil, 80)
		email, password := m.cachedLogin()
		m.initCmds = []tea.Cmd{m.loginView.Start(email, password)}
	}

	return m
}

// CurrentView exposes the active view for tests.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Init returns the initial commands for the starting view.
func (m Model) Init() tea.Cmd {
	return tea.Batch(append([]tea.Cmd{m.waitForBusEvent()}, m.initCmds...)...)
}

// cachedLogin returns the remembered email and password when the
// cache is fresh, or empty strings.
func (m Model) cachedLogin() (string, string) {
	ctx := context.Background()

	email, ok, err := m.kv.Get(ctx, store.KeyLoginEmail)
	if err != nil || !ok || email == "" {
		return "", ""
	}

	cachedAt, ok, err := m.kv.Get(ctx, store.KeyLoginCachedAt)
	if err != nil || !ok {
		return "", ""
	}
	at, err := time.Parse(time.RFC3339, cachedAt)
	if err != nil {
		return "", ""
	}

	ttl := time.Duration(m.cfg.Login.CacheTTLHours) * time.Hour
	if ttl > 0 && time.Since(at) > ttl {
		return "", ""
	}

	return email, m.sessions.RememberedPassword()
}

// enterDashboard returns the commands fired when the dashboard view
// mounts: the dashboard fetch, the notification fetch, and the
// presence announce. The fetches and the announce are independent;
// no ordering holds between them.
func (m *Model) enterDashboard() []tea.Cmd {
	m.currentView = ViewDashboard

	if shown, _, _ := m.kv.Get(context.Background(), store.KeyWelcomeShown); shown != "true" {
		name := ""
		if s := m.sessions.Session(); s != nil {
			name = s.Name
		}
		m.dashView.SetWelcome(fmt.Sprintf("Welcome back, %s", name))
		_ = m.kv.Set(context.Background(), store.KeyWelcomeShown, "true")
	} else {
		m.dashView.SetWelcome("")
	}

	return []tea.Cmd{
		m.dashView.Load(),
		m.headerView.FetchNotifications(),
		m.announcePresence(),
		m.channel.WaitForEvent(),
	}
}

// announcePresence emits the one-shot user-connected event. It only
// fires when the channel is not already connected, is never retried,
// and failures are logged only.
func (m *Model) announcePresence() tea.Cmd {
	if m.announced {
		return nil
	}
	m.announced = true

	channel := m.channel
	s := m.sessions.Session()

	return func() tea.Msg {
		if channel.Connected() {
			return presenceDoneMsg{}
		}
		if err := channel.Connect(context.Background()); err != nil {
			log.Printf("app: realtime connect failed: %v", err)
			return presenceDoneMsg{}
		}
		payload := struct {
			User         *model.Session `json:"user"`
			ConnectionID string         `json:"connection_id"`
		}{User: s, ConnectionID: uuid.New().String()}

		if err := channel.Emit(realtime.EventUserConnected, payload); err != nil {
			log.Printf("app: presence announce failed: %v", err)
		}
		return presenceDoneMsg{}
	}
}

// doLogin performs the remote login and the associated cache writes.
func (m Model) doLogin(msg login.SubmittedMsg) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.Login(context.Background(), msg.Email, msg.Password)
		return loginResultMsg{
			result:   result,
			email:    msg.Email,
			password: msg.Password,
			remember: msg.Remember,
			err:      err,
		}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.loginView.SetSize(contentWidth, contentHeight)
		m.dashView.SetSize(contentWidth, contentHeight)
		m.confirmView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.headerView.SetWidth(contentWidth)
		return m.updateActiveView(msg)

	case login.SubmittedMsg:
		return m, m.doLogin(msg)

	case login.AbortedMsg:
		return m, m.quit()

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case dashboard.LoadedMsg:
		var cmd tea.Cmd
		m.dashView, cmd = m.dashView.Update(msg)
		return m, cmd

	case header.ToastMsg:
		return m.showToast(msg.Text)

	case header.LogoutRequestMsg:
		m.previousView = m.currentView
		m.currentView = ViewLogoutConfirm
		return m, m.confirmView.Start()

	case header.ThemeToggleMsg:
		return m.toggleTheme()

	case confirm.LogoutConfirmedMsg:
		return m.logout()

	case confirm.LogoutCancelledMsg:
		m.currentView = m.previousView
		return m, nil

	case toastClearMsg:
		if msg.gen == m.toastGen {
			m.toast = ""
		}
		return m, nil

	case transitionDoneMsg:
		m.transitioning = false
		return m, nil

	case busEventMsg:
		if ev, ok := msg.event.(events.ThemeChanged); ok {
			theme.Apply(ev.Dark)
			m.cfg.Display.Dark = fmt.Sprintf("%t", ev.Dark)
		}
		return m, m.waitForBusEvent()

	case realtime.EventMsg:
		// Presence is the only event this client emits; incoming
		// events just keep the subscription alive.
		return m, m.channel.WaitForEvent()

	case presenceDoneMsg:
		return m, nil

	case intent.CloseMsg:
		var cmd tea.Cmd
		m.headerView, cmd = m.headerView.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.currentView == ViewDashboard {
			var cmd tea.Cmd
			m.headerView, cmd = m.headerView.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateActiveView(msg)
}

// handleLoginResult finishes or fails the sign-in flow.
func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		text := "Sign in failed. Check your connection and try again."
		if statusErr, ok := msg.err.(*api.StatusError); ok {
			text = statusErr.Error()
		}
		log.Printf("app: login failed: %v", msg.err)
		return m, m.loginView.SetError(text)
	}

	s := model.Session{
		ID:      msg.result.User.ID,
		Name:    msg.result.User.Name,
		Email:   msg.result.User.Email,
		Picture: msg.result.User.Picture,
	}
	if err := m.sessions.SetSession(s, msg.result.Token); err != nil {
		log.Printf("app: storing session: %v", err)
		return m, m.loginView.SetError("Could not store your session")
	}

	ctx := context.Background()
	if msg.remember {
		_ = m.kv.Set(ctx, store.KeyLoginEmail, msg.email)
		_ = m.kv.Set(ctx, store.KeyLoginCachedAt, time.Now().UTC().Format(time.RFC3339))
		_ = m.sessions.RememberPassword(msg.password)
	} else {
		_ = m.kv.Delete(ctx, store.KeyLoginEmail)
		_ = m.kv.Delete(ctx, store.KeyLoginCachedAt)
	}

	// Each sign-in gets one welcome notice.
	_ = m.kv.Delete(ctx, store.KeyWelcomeShown)

	m.headerView = header.New(m.client, m.keys, &s, m.layout.ContentWidth())
	m.announced = false
	return m, tea.Batch(m.enterDashboard()...)
}

// handleKeys processes global keys, then delegates to the active view.
func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if m.currentView == ViewDashboard {
		switch msg.String() {
		case "q":
			if !m.headerView.PanelOpen() {
				return m, m.quit()
			}

		case "?":
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case "t":
			return m.toggleTheme()

		case "L":
			m.previousView = m.currentView
			m.currentView = ViewLogoutConfirm
			return m, m.confirmView.Start()

		case "r":
			if !m.headerView.PanelOpen() {
				return m, tea.Batch(
					m.dashView.Load(),
					m.headerView.FetchNotifications(),
				)
			}
		}

		// Panel toggles and panel-local keys.
		switch msg.String() {
		case "n", "p", "esc", "j", "k", "down", "up", "enter", "C":
			if m.headerView.PanelOpen() || msg.String() == "n" || msg.String() == "p" {
				var cmd tea.Cmd
				m.headerView, cmd = m.headerView.Update(msg)
				return m, cmd
			}
		}
	}

	if m.currentView == ViewHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.currentView = m.previousView
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// toggleTheme flips the dark flag, persists it, re-applies the
// palette, and arms the cosmetic transition marker.
func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	dark := !theme.Dark()
	theme.Apply(dark)
	m.transitioning = true

	m.cfg.Display.Dark = fmt.Sprintf("%t", dark)
	cfg := m.cfg
	cfgPath := m.cfgPath
	persist := func() tea.Msg {
		if err := model.SaveConfig(cfgPath, cfg); err != nil {
			log.Printf("app: persisting theme flag: %v", err)
		}
		return nil
	}

	clear := tea.Tick(theme.TransitionDuration, func(time.Time) tea.Msg {
		return transitionDoneMsg{}
	})

	return m, tea.Batch(persist, clear)
}

// showToast displays a transient status-bar notice.
func (m Model) showToast(text string) (tea.Model, tea.Cmd) {
	m.toast = text
	m.toastGen++
	gen := m.toastGen
	return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastClearMsg{gen: gen}
	})
}

// logout clears the session and returns to the login view. The
// remembered email survives so the login form can prefill it; every
// secret is wiped.
func (m Model) logout() (tea.Model, tea.Cmd) {
	m.sessions.ClearSession()
	_ = m.kv.Delete(context.Background(), store.KeyWelcomeShown)

	m.headerView.Teardown()
	m.headerView = header.New(m.client, m.keys, nil, m.layout.ContentWidth())
	m.announced = false
	m.currentView = ViewLogin

	email := ""
	if e, ok, err := m.kv.Get(context.Background(), store.KeyLoginEmail); err == nil && ok {
		email = e
	}
	return m, m.loginView.Start(email, "")
}

// quit tears down timers and long-lived resources and exits.
func (m Model) quit() tea.Cmd {
	m.headerView.Teardown()
	m.busSub.Close()
	if err := m.channel.Close(); err != nil {
		log.Printf("app: closing realtime channel: %v", err)
	}
	return tea.Quit
}

// waitForBusEvent bridges the event bus onto the UI loop.
func (m Model) waitForBusEvent() tea.Cmd {
	sub := m.busSub
	return func() tea.Msg {
		ev, ok := <-sub.C
		if !ok {
			return nil
		}
		return busEventMsg{event: ev}
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewDashboard:
		m.dashView, cmd = m.dashView.Update(msg)
		cmds = append(cmds, cmd)
		m.headerView, cmd = m.headerView.Update(msg)
	case ViewLogoutConfirm:
		m.confirmView, cmd = m.confirmView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.currentView {
	case ViewLogin:
		return m.layout.RenderWithFrame(
			m.layout.RenderHeader("Counsel Portal", ""),
			m.loginView.View(),
			m.layout.RenderStatusBar(m.statusHints()),
		)

	case ViewLogoutConfirm:
		return m.layout.RenderWithFrame(
			m.renderHeaderBar(),
			m.confirmView.View(),
			m.layout.RenderStatusBar(m.statusHints()),
		)

	case ViewHelp:
		return m.layout.RenderWithFrame(
			m.renderHeaderBar(),
			m.helpView.View(),
			m.layout.RenderStatusBar(m.statusHints()),
		)

	default:
		content := m.dashView.View()
		if panel := m.headerView.ViewPanel(); panel != "" {
			content = panel + "\n" + content
		}
		return m.layout.RenderWithFrame(
			m.renderHeaderBar(),
			content,
			m.layout.RenderStatusBar(m.statusHints()),
		)
	}
}

// renderHeaderBar renders the protected-view header row.
func (m Model) renderHeaderBar() string {
	title := "Counsel Portal"
	if m.transitioning {
		title += " ·"
	}
	return m.layout.RenderHeader(title, m.headerView.Right())
}

// statusHints returns the status bar content: the active toast when
// present, otherwise keyboard hints for the current view.
func (m Model) statusHints() string {
	if m.toast != "" {
		return m.toast
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | tab next field | esc quit"
	case ViewLogoutConfirm:
		return "enter confirm | esc cancel"
	case ViewHelp:
		return "? close help | esc back"
	default:
		return "q quit | ? help | n notifications | p profile | t theme | L log out | r refresh"
	}
}
