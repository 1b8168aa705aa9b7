// Package session owns the signed-in user record. Views never read
// persistent storage directly; they go through the Manager, which can
// be backed by the system keyring in production and by an in-memory
// store in tests.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/counselhub/portal/internal/model"
)

// Keyring keys holding session-related secrets. ClearSession removes
// all of them.
const (
	secretSession  = "session"
	secretToken    = "auth-token"
	secretPassword = "login-password"
)

// SecretStore is the minimal credential storage contract the manager
// needs. credential.Keyring implements it over the system keyring.
type SecretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Manager provides Session/SetSession/ClearSession over a SecretStore.
// The session record is read from storage once and cached; it is
// treated as immutable until replaced by a new sign-in.
type Manager struct {
	secrets SecretStore

	mu     sync.Mutex
	cached *model.Session
	loaded bool
}

// NewManager creates a session manager over the given secret store.
func NewManager(secrets SecretStore) *Manager {
	return &Manager{secrets: secrets}
}

// Session returns the current session, or nil when no user is signed
// in. A missing or unreadable stored record is treated as signed-out,
// not as an error; protected views redirect to login on nil.
func (m *Manager) Session() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.cached
	}
	m.loaded = true

	raw, err := m.secrets.Get(secretSession)
	if err != nil || raw == "" {
		return nil
	}

	var s model.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil
	}
	m.cached = &s
	return m.cached
}

// SetSession persists the session record and auth token after a
// successful sign-in and makes them the cached current session.
func (m *Manager) SetSession(s model.Session, token string) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := m.secrets.Set(secretSession, string(raw)); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	if err := m.secrets.Set(secretToken, token); err != nil {
		return fmt.Errorf("storing auth token: %w", err)
	}

	m.mu.Lock()
	m.cached = &s
	m.loaded = true
	m.mu.Unlock()
	return nil
}

// Token returns the stored auth token, or empty when absent.
func (m *Manager) Token() string {
	raw, err := m.secrets.Get(secretToken)
	if err != nil {
		return ""
	}
	return raw
}

// RememberPassword stores the login password for prefilling the login
// form. It lives alongside the other secrets so ClearSession wipes it.
func (m *Manager) RememberPassword(password string) error {
	if err := m.secrets.Set(secretPassword, password); err != nil {
		return fmt.Errorf("storing remembered password: %w", err)
	}
	return nil
}

// RememberedPassword returns the stored login password, or empty.
func (m *Manager) RememberedPassword() string {
	raw, err := m.secrets.Get(secretPassword)
	if err != nil {
		return ""
	}
	return raw
}

// ClearSession removes every session-related secret. Deletion is
// best-effort: a key that was never stored is not an error, and the
// in-memory session is dropped regardless, so after ClearSession
// returns, Session reports nil.
func (m *Manager) ClearSession() {
	for _, key := range []string{secretSession, secretToken, secretPassword} {
		// Backends report missing keys as errors; ignore them.
		_ = m.secrets.Delete(key)
	}

	m.mu.Lock()
	m.cached = nil
	m.loaded = true
	m.mu.Unlock()
}
