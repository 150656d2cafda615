package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SharedGroup is the group file used by items marked as shared.
const SharedGroup = "SharedConfig"

var ErrInvalidGroup = errors.New("store: invalid group name")

// Entries maps persist keys to encoded payloads for one group.
type Entries map[string][]byte

// Meta is storage-owned metadata recorded on every save.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves the complete entry map of one group.
type Store interface {
	Load(ctx context.Context, group string) (entries Entries, meta Meta, ok bool, err error)
	Save(ctx context.Context, group string, entries Entries, meta Meta) (Meta, error)
}

// ValidateGroup rejects names that cannot be used as a file name.
func ValidateGroup(group string) error {
	if strings.TrimSpace(group) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidGroup)
	}
	if strings.ContainsAny(group, `/\:*?"<>|`) || group == "." || group == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	return nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

func cloneEntries(entries Entries) Entries {
	if entries == nil {
		return nil
	}
	out := make(Entries, len(entries))
	for key, value := range entries {
		out[key] = append([]byte(nil), value...)
	}
	return out
}
