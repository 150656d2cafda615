package activity

import (
	"cmp"
	"context"
	"slices"
	"strings"
)

// DefaultChannel stamps events emitted without a channel.
const DefaultChannel = "menu"

// Config controls an Emitter.
type Config struct {
	Enabled bool
	// Channel replaces DefaultChannel.
	Channel string
	// Verbs restricts emission to the listed verbs. Empty emits every verb.
	Verbs []string
}

// Emitter applies the configured defaults and filter before fanning events
// out to its hooks.
type Emitter struct {
	hooks   Hooks
	channel string
	verbs   map[string]bool
}

func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{channel: cmp.Or(strings.TrimSpace(cfg.Channel), DefaultChannel)}
	if cfg.Enabled {
		e.hooks = CloneHooks(hooks)
	}
	for _, verb := range cfg.Verbs {
		if verb = strings.TrimSpace(verb); verb != "" {
			if e.verbs == nil {
				e.verbs = map[string]bool{}
			}
			e.verbs[verb] = true
		}
	}
	return e
}

// Enabled reports whether any hook can receive events.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Emits reports whether an event with verb would reach the hooks.
func (e *Emitter) Emits(verb string) bool {
	if !e.Enabled() {
		return false
	}
	return e.verbs == nil || e.verbs[strings.TrimSpace(verb)]
}

// Emit delivers event unless the emitter is disabled or filters its verb.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Emits(event.Verb) {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}

// CloneHooks copies hooks without nil entries, returning nil when none are
// left.
func CloneHooks(hooks Hooks) Hooks {
	out := slices.DeleteFunc(slices.Clone(hooks), func(h ActivityHook) bool { return h == nil })
	if len(out) == 0 {
		return nil
	}
	return out
}
