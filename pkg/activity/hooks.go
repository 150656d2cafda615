package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"
)

// Event is one menu activity occurrence. IDs are plain strings; sinks that
// need UUIDs map them themselves.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Routable reports whether the event names a verb, object type and object
// id. Hooks only see routable events.
func (e Event) Routable() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// ActivityHook receives normalized events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans an event out to every hook in order.
type Hooks []ActivityHook

func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and delivers it to each hook, joining their
// errors. Events that are not routable are dropped silently.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = NormalizeEvent(event)
	if !event.Routable() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		errs = append(errs, hook.Notify(ctx, event))
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims the identifiers, copies the metadata and stamps a
// missing OccurredAt with the current time.
func NormalizeEvent(event Event) Event {
	for _, field := range []*string{&event.Verb, &event.ActorID, &event.UserID, &event.ObjectType, &event.ObjectID, &event.Channel} {
		*field = strings.TrimSpace(*field)
	}
	event.Metadata = cloneMap(event.Metadata)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
