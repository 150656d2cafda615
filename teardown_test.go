package menu

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-menu/pkg/lifecycle"
	"github.com/goliatone/go-menu/pkg/store"
)

type nexus struct {
	health float64
}

func (n *nexus) Valid() bool     { return true }
func (n *nexus) Health() float64 { return n.health }

func TestBindTeardownSavesOnSessionEnd(t *testing.T) {
	backing := store.NewMemoryStore()
	m := newTestManager(t, backing)
	root := m.NewRootMenu("Settings", "settings")
	mustAddItem(t, root, "enabled", "Enabled", true)
	mustRegister(t, root)

	base := &nexus{health: 10}
	watcher := lifecycle.NewEndWatcher(base)
	stop := m.BindTeardown(context.Background(), watcher)
	defer stop()

	watcher.Tick()
	if backing.Saves() != 0 {
		t.Fatalf("expected no save while the session runs")
	}
	base.health = 0
	watcher.Tick()
	if backing.Saves() != 1 {
		t.Fatalf("expected a save at session end, got %d", backing.Saves())
	}
}

func TestBindTeardownSavesOnCancel(t *testing.T) {
	backing := store.NewMemoryStore()
	m := newTestManager(t, backing)
	root := m.NewRootMenu("Settings", "settings")
	mustAddItem(t, root, "enabled", "Enabled", true)
	mustRegister(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	stop := m.BindTeardown(ctx, nil)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for backing.Saves() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	if backing.Saves() != 1 {
		t.Fatalf("expected a save after cancellation, got %d", backing.Saves())
	}
}
