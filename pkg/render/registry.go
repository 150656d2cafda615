package render

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTick is how often Run rebuilds the visible snapshot.
const DefaultTick = time.Millisecond

// Registry keeps render objects and a visibility-filtered, layer-sorted
// snapshot of them. The snapshot is rebuilt on a background goroutine and
// swapped in atomically; draw callbacks read whichever snapshot is current and
// may lag one tick behind the object list.
type Registry struct {
	mu      sync.Mutex
	objects []Object

	visible atomic.Pointer[[]Object]
	closed  atomic.Bool
	tick    time.Duration
	onError func(error)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTick sets the snapshot rebuild interval.
func WithTick(tick time.Duration) RegistryOption {
	return func(r *Registry) {
		if tick > 0 {
			r.tick = tick
		}
	}
}

// WithErrorHandler receives failures recovered while preparing snapshots.
func WithErrorHandler(fn func(error)) RegistryOption {
	return func(r *Registry) {
		r.onError = fn
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{tick: DefaultTick}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	empty := []Object{}
	r.visible.Store(&empty)
	return r
}

// Add registers obj and returns it for chaining.
func (r *Registry) Add(obj Object) Object {
	if obj == nil {
		return nil
	}
	r.mu.Lock()
	r.objects = append(r.objects, obj)
	r.mu.Unlock()
	return obj
}

// Remove unregisters obj. It disappears from the snapshot on the next tick.
func (r *Registry) Remove(obj Object) {
	r.mu.Lock()
	r.objects = slices.DeleteFunc(r.objects, func(o Object) bool { return o == obj })
	r.mu.Unlock()
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// Prepare rebuilds the visible snapshot once.
func (r *Registry) Prepare() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render: prepare objects: %v", rec)
		}
	}()

	r.mu.Lock()
	objects := slices.Clone(r.objects)
	r.mu.Unlock()

	next := make([]Object, 0, len(objects))
	for _, obj := range objects {
		if obj.Visible() && ValidLayer(obj.Layer()) {
			next = append(next, obj)
		}
	}
	slices.SortStableFunc(next, func(a, b Object) int {
		return a.Layer() - b.Layer()
	})
	r.visible.Store(&next)
	return nil
}

// Snapshot returns the current visible objects in draw order.
func (r *Registry) Snapshot() []Object {
	return *r.visible.Load()
}

// Run rebuilds the snapshot every tick until ctx is done or Close is called.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for !r.closed.Load() {
		if err := r.Prepare(); err != nil && r.onError != nil {
			r.onError(err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Draw runs the per-frame draw hook of every visible object.
func (r *Registry) Draw(c Canvas) {
	for _, obj := range r.Snapshot() {
		obj.Draw(c)
	}
}

// EndScene runs the end-of-scene hook of every visible object.
func (r *Registry) EndScene(c Canvas) {
	for _, obj := range r.Snapshot() {
		obj.EndScene(c)
	}
}

// PreReset notifies every registered object that the device is going away.
func (r *Registry) PreReset() {
	for _, obj := range r.all() {
		obj.PreReset()
	}
}

// PostReset notifies every registered object that the device is back.
func (r *Registry) PostReset() {
	for _, obj := range r.all() {
		obj.PostReset()
	}
}

// Close stops Run and releases every object.
func (r *Registry) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	var errs []error
	for _, obj := range r.all() {
		if err := obj.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	return r.closed.Load()
}

func (r *Registry) all() []Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.objects)
}
