package activity

import (
	"strings"
	"time"
)

const (
	VerbValueChanged   = "menu.value.changed"
	VerbSaved          = "menu.saved"
	VerbRootRegistered = "menu.root.registered"
	VerbRootRemoved    = "menu.root.removed"
)

// MenuEventInput carries the fields shared by menu lifecycle events.
type MenuEventInput struct {
	ActorID    string
	UserID     string
	ObjectID   string
	Channel    string
	Path       string
	Kind       string
	Group      string
	Key        string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildValueChangedEvent describes a committed item value change.
func BuildValueChangedEvent(input MenuEventInput) Event {
	return buildMenuEvent(VerbValueChanged, "menu.item", input)
}

// BuildSavedEvent describes a group file written by a save.
func BuildSavedEvent(input MenuEventInput) Event {
	return buildMenuEvent(VerbSaved, "menu.group", input)
}

// BuildRootRegisteredEvent describes a root menu added to the display order.
func BuildRootRegisteredEvent(input MenuEventInput) Event {
	return buildMenuEvent(VerbRootRegistered, "menu.root", input)
}

// BuildRootRemovedEvent describes a root menu leaving the display order.
func BuildRootRemovedEvent(input MenuEventInput) Event {
	return buildMenuEvent(VerbRootRemoved, "menu.root", input)
}

func buildMenuEvent(verb, objectType string, input MenuEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.Path != "" {
		set("path", input.Path)
	}
	if input.Kind != "" {
		set("kind", input.Kind)
	}
	if input.Group != "" {
		set("group", input.Group)
	}
	if input.Key != "" {
		set("key", input.Key)
	}
	if input.OldValue != nil {
		set("old_value", input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", input.NewValue)
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Path)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.Group)
	}

	return NormalizeEvent(Event{
		Verb:       verb,
		ActorID:    input.ActorID,
		UserID:     input.UserID,
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    input.Channel,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	})
}
