package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " menu.value.changed ",
		ActorID:    " actor ",
		UserID:     " user ",
		ObjectType: " menu.item ",
		ObjectID:   " combo/useQ ",
		Channel:    " menu ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "menu.value.changed" || got.ObjectType != "menu.item" || got.ObjectID != "combo/useQ" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.Channel != "menu" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: "menu.saved", ObjectType: "menu.group", ObjectID: "plugin"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := Event{Verb: "menu.saved", ObjectType: "menu.group", ObjectID: "plugin"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Channel != "menu" {
		t.Fatalf("expected default channel applied, got %+v", capture.Events)
	}
}

func TestEmitterPreservesExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       "menu.saved",
		ObjectType: "menu.group",
		ObjectID:   "plugin",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].Channel != "custom" {
		t.Fatalf("expected explicit channel preserved, got %q", capture.Events[0].Channel)
	}
	if !capture.Events[0].OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", capture.Events[0].OccurredAt)
	}
}

func TestCloneHooksDropsNil(t *testing.T) {
	if CloneHooks(Hooks{nil, nil}) != nil {
		t.Fatalf("expected nil when only nil hooks")
	}
	hook := HookFunc(func(context.Context, Event) error { return nil })
	if got := CloneHooks(Hooks{nil, hook}); len(got) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(got))
	}
}

func TestEmitterVerbFilter(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Verbs: []string{VerbSaved, " "}})

	if !emitter.Emits(VerbSaved) || emitter.Emits(VerbValueChanged) {
		t.Fatalf("unexpected filter state")
	}
	for _, verb := range []string{VerbValueChanged, VerbSaved, VerbRootRemoved} {
		if err := emitter.Emit(context.Background(), Event{Verb: verb, ObjectType: "menu.group", ObjectID: "Menu"}); err != nil {
			t.Fatalf("emit %s: %v", verb, err)
		}
	}
	if got := capture.Verbs(); len(got) != 1 || got[0] != VerbSaved {
		t.Fatalf("expected only saves, got %v", got)
	}
}

func TestEventRoutable(t *testing.T) {
	cases := []struct {
		event Event
		want  bool
	}{
		{Event{Verb: VerbSaved, ObjectType: "menu.group", ObjectID: "Menu"}, true},
		{Event{Verb: VerbSaved, ObjectType: "menu.group"}, false},
		{Event{ObjectType: "menu.group", ObjectID: "Menu"}, false},
	}
	for _, tc := range cases {
		if got := tc.event.Routable(); got != tc.want {
			t.Fatalf("%+v: expected %v", tc.event, tc.want)
		}
	}
}
