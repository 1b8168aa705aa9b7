// Package store provides the local preference store: a small
// sqlite-backed key-value table holding the portal client's
// non-secret persisted flags (cached login email, welcome-shown).
// Secrets (session record, tokens, passwords) live in the system
// keyring, not here.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/counselhub/portal/internal/events"
)

// Well-known preference keys.
const (
	KeyLoginEmail    = "login.email"
	KeyLoginCachedAt = "login.cached_at"
	KeyWelcomeShown  = "welcome.shown"
)

// KV is a string key-value store backed by a local SQLite database.
// Writes publish an events.KeyChanged so mounted views can react to
// preference changes without polling.
type KV struct {
	db  *sqlx.DB
	bus *events.Bus
}

// Open opens (or creates) the preference database at dbPath, enables
// WAL mode, and runs any pending schema migrations. The bus may be
// nil when change notifications are not needed.
func Open(dbPath string, bus *events.Bus) (*KV, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	kv := &KV{db: db, bus: bus}
	if err := kv.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return kv, nil
}

// Close closes the underlying database connection.
func (kv *KV) Close() error {
	return kv.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (kv *KV) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := kv.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = kv.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := kv.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Get returns the value stored under key. The second return value is
// false when the key is absent.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := kv.db.GetContext(ctx, &value, "SELECT value FROM prefs WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading pref %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value, and
// publishes a KeyChanged event.
func (kv *KV) Set(ctx context.Context, key, value string) error {
	_, err := kv.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO prefs (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing pref %q: %w", key, err)
	}

	if kv.bus != nil {
		kv.bus.Publish(events.KeyChanged{Key: key, Value: value})
	}
	return nil
}

// Delete removes key from the store. Deleting an absent key is not
// an error.
func (kv *KV) Delete(ctx context.Context, key string) error {
	_, err := kv.db.ExecContext(ctx, "DELETE FROM prefs WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting pref %q: %w", key, err)
	}

	if kv.bus != nil {
		kv.bus.Publish(events.KeyChanged{Key: key, Value: ""})
	}
	return nil
}
