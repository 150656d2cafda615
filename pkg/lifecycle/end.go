package lifecycle

import "sync"

// Structure is a host object whose destruction ends the session.
type Structure interface {
	Valid() bool
	Health() float64
}

// EndWatcher fires its callbacks once, on the first Tick that finds a valid
// tracked structure with no health left.
type EndWatcher struct {
	mu         sync.Mutex
	structures []Structure
	callbacks  []func()
	fired      bool
}

// NewEndWatcher tracks the valid structures among those given.
func NewEndWatcher(structures ...Structure) *EndWatcher {
	w := &EndWatcher{}
	w.Track(structures...)
	return w
}

// Track adds structures. Nil and invalid ones are ignored.
func (w *EndWatcher) Track(structures ...Structure) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range structures {
		if s != nil && s.Valid() {
			w.structures = append(w.structures, s)
		}
	}
}

// OnEnd registers fn to run when the end is detected.
func (w *EndWatcher) OnEnd(fn func()) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Tick checks the tracked structures. It is meant to be called from the
// host's update loop and reports whether the callbacks ran on this call.
func (w *EndWatcher) Tick() bool {
	w.mu.Lock()
	if w.fired || len(w.structures) == 0 {
		w.mu.Unlock()
		return false
	}
	ended := false
	for _, s := range w.structures {
		if s.Valid() && s.Health() <= 0 {
			ended = true
			break
		}
	}
	if !ended || len(w.callbacks) == 0 {
		w.mu.Unlock()
		return false
	}
	w.fired = true
	callbacks := append([]func(){}, w.callbacks...)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return true
}

// Ended reports whether the callbacks have run.
func (w *EndWatcher) Ended() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}
