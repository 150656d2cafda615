package menu

import (
	"context"
	"image"
	"sync"
	"testing"

	"github.com/goliatone/go-menu/pkg/store"
)

// Layout numbers used by the input tests assume the default settings and the
// 7px-wide bitmap face: rows are 30px high and root menus are 160px wide
// starting at (10,10).

type captureLogger struct {
	mu     sync.Mutex
	events []LogEvent
}

func (l *captureLogger) Log(event LogEvent) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
}

func (l *captureLogger) failures(kind ErrorKind) []LogEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogEvent
	for _, event := range l.events {
		if event.Err != nil && event.Kind == kind {
			out = append(out, event)
		}
	}
	return out
}

func newTestManager(t *testing.T, backing store.Store, opts ...Option) *Manager {
	t.Helper()
	if backing == nil {
		backing = store.NewMemoryStore()
	}
	m := New(append([]Option{WithStore(backing)}, opts...)...)
	t.Cleanup(func() { _ = m.objects.Close() })
	return m
}

func mustSet(t *testing.T, it Item, v any) Item {
	t.Helper()
	if _, err := it.SetValue(v); err != nil {
		t.Fatalf("set %s: %v", it, err)
	}
	return it
}

func mustAddItem(t *testing.T, parent Menu, name, display string, v any) Item {
	t.Helper()
	it, err := parent.AddItem(parent.m.NewItem(name, display))
	if err != nil {
		t.Fatalf("add item %s: %v", name, err)
	}
	return mustSet(t, it, v)
}

func mustRegister(t *testing.T, root Menu) string {
	t.Helper()
	id, err := root.AddToMainMenu("")
	if err != nil {
		t.Fatalf("register %s: %v", root, err)
	}
	return id
}

func mustSaveAll(t *testing.T, m *Manager) {
	t.Helper()
	if err := m.SaveAll(context.Background()); err != nil {
		t.Fatalf("save all: %v", err)
	}
}

func click(m *Manager, x, y int) {
	m.HandleMessage(Message{Kind: LButtonDown, Cursor: image.Pt(x, y)})
	m.HandleMessage(Message{Kind: LButtonUp, Cursor: image.Pt(x, y)})
}

func key(m *Manager, kind MessageKind, code uint32) {
	m.HandleMessage(Message{Kind: kind, Key: code})
}
