package testutil

import (
	"errors"
	"sync"
	"testing"

	"github.com/counselhub/portal/internal/events"
	"github.com/counselhub/portal/internal/store"
)

// NewTestKV creates an in-memory preference store with all migrations
// applied. It automatically closes the store when the test completes.
func NewTestKV(t *testing.T, bus *events.Bus) *store.KV {
	t.Helper()

	kv, err := store.Open(":memory:", bus)
	if err != nil {
		t.Fatalf("creating test kv store: %v", err)
	}

	t.Cleanup(func() {
		if err := kv.Close(); err != nil {
			t.Errorf("closing test kv store: %v", err)
		}
	})

	return kv
}

// MemorySecrets is an in-memory session.SecretStore so session tests
// never touch the real system keyring.
type MemorySecrets struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemorySecrets creates an empty in-memory secret store.
func NewMemorySecrets() *MemorySecrets {
	return &MemorySecrets{values: make(map[string]string)}
}

// Get returns the stored value or an error when absent.
func (s *MemorySecrets) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", errors.New("secret not found: " + key)
	}
	return value, nil
}

// Set stores the value.
func (s *MemorySecrets) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes the value, erroring on absent keys the way keyring
// backends do.
func (s *MemorySecrets) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return errors.New("secret not found: " + key)
	}
	delete(s.values, key)
	return nil
}
