package lifecycle

import (
	"context"
	"testing"
	"time"
)

type structure struct {
	valid  bool
	health float64
}

func (s *structure) Valid() bool     { return s.valid }
func (s *structure) Health() float64 { return s.health }

func TestEndWatcherFiresOnce(t *testing.T) {
	base := &structure{valid: true, health: 100}
	w := NewEndWatcher(base, nil, &structure{valid: false})
	calls := 0
	w.OnEnd(func() { calls++ })

	if w.Tick() {
		t.Fatalf("expected no end while the structure is alive")
	}
	base.health = 0
	if !w.Tick() {
		t.Fatalf("expected end once health reached zero")
	}
	if w.Tick() {
		t.Fatalf("expected a single firing")
	}
	if calls != 1 || !w.Ended() {
		t.Fatalf("expected one callback, got %d (ended=%v)", calls, w.Ended())
	}
}

func TestEndWatcherIgnoresInvalidStructures(t *testing.T) {
	dead := &structure{valid: false, health: 0}
	w := NewEndWatcher(dead)
	w.OnEnd(func() { t.Fatalf("callback must not run") })
	if w.Tick() {
		t.Fatalf("untracked structure must not end the session")
	}

	tracked := &structure{valid: true, health: 0}
	w.Track(tracked)
	tracked.valid = false
	if w.Tick() {
		t.Fatalf("structure that became invalid must be skipped")
	}
}

func TestEndWatcherWaitsForCallbacks(t *testing.T) {
	w := NewEndWatcher(&structure{valid: true, health: -1})
	if w.Tick() {
		t.Fatalf("expected no firing without callbacks")
	}
	fired := false
	w.OnEnd(func() { fired = true })
	if !w.Tick() || !fired {
		t.Fatalf("expected the late callback to run")
	}
}

func TestOnSignalRunsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{})
	stop := OnSignal(ctx, func() { close(ran) })
	defer stop()

	cancel()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected callback after cancellation")
	}
}

func TestOnSignalStopSkipsCallback(t *testing.T) {
	ran := false
	stop := OnSignal(context.Background(), func() { ran = true })
	stop()
	stop()
	if ran {
		t.Fatalf("callback must not run after stop")
	}
}
