// Package usersink forwards menu activity to a go-users activity sink.
package usersink

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-menu/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// ActorNamespace derives actor UUIDs for menu owners whose id is not a UUID.
var ActorNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("go-menu/actor"))

// Hook writes every routable event to Sink as an ActivityRecord.
type Hook struct {
	Sink usertypes.ActivitySink
}

func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	record, ok := Record(event)
	if !ok {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

// Record maps event onto an ActivityRecord. Event metadata becomes the record
// data, and the raw actor id is kept there under "actor" because owner ids
// such as "Plugin" are mapped onto name-based UUIDs.
func Record(event activity.Event) (usertypes.ActivityRecord, bool) {
	event = activity.NormalizeEvent(event)
	if !event.Routable() {
		return usertypes.ActivityRecord{}, false
	}
	data := maps.Clone(event.Metadata)
	if event.ActorID != "" {
		if data == nil {
			data = map[string]any{}
		}
		data["actor"] = event.ActorID
	}
	return usertypes.ActivityRecord{
		ActorID:    actorID(event.ActorID),
		UserID:     userID(event.UserID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}, true
}

func actorID(raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	return uuid.NewSHA1(ActorNamespace, []byte(strings.ToLower(raw)))
}

func userID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
