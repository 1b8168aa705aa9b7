package store_test

import (
	"context"
	"testing"

	"github.com/counselhub/portal/internal/events"
	"github.com/counselhub/portal/internal/store"
	"github.com/counselhub/portal/tests/testutil"
)

func TestSetGetDelete(t *testing.T) {
	kv := testutil.NewTestKV(t, nil)
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, store.KeyLoginEmail); err != nil || ok {
		t.Fatalf("fresh store Get = ok=%v err=%v, want absent", ok, err)
	}

	if err := kv.Set(ctx, store.KeyLoginEmail, "jane@example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := kv.Get(ctx, store.KeyLoginEmail)
	if err != nil || !ok || value != "jane@example.com" {
		t.Fatalf("Get = %q ok=%v err=%v", value, ok, err)
	}

	// Overwrite replaces the previous value.
	if err := kv.Set(ctx, store.KeyLoginEmail, "john@example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, _, _ = kv.Get(ctx, store.KeyLoginEmail)
	if value != "john@example.com" {
		t.Errorf("after overwrite Get = %q", value)
	}

	if err := kv.Delete(ctx, store.KeyLoginEmail); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, store.KeyLoginEmail); ok {
		t.Error("key still present after Delete")
	}

	// Deleting an absent key is not an error.
	if err := kv.Delete(ctx, "no.such.key"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestWritesPublishKeyChanged(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe(events.KeyChanged{})
	defer sub.Close()

	kv := testutil.NewTestKV(t, bus)
	ctx := context.Background()

	if err := kv.Set(ctx, store.KeyWelcomeShown, "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	event := (<-sub.C).(events.KeyChanged)
	if event.Key != store.KeyWelcomeShown || event.Value != "true" {
		t.Errorf("set event = %+v", event)
	}

	if err := kv.Delete(ctx, store.KeyWelcomeShown); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	event = (<-sub.C).(events.KeyChanged)
	if event.Key != store.KeyWelcomeShown || event.Value != "" {
		t.Errorf("delete event = %+v", event)
	}
}
