package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cache fronts a Store with a per-group in-memory copy. A group is loaded at
// most once per process and reused until Put replaces it after a save.
type Cache struct {
	store Store

	mu     sync.Mutex
	groups map[string]Entries
}

func NewCache(store Store) *Cache {
	return &Cache{store: store, groups: map[string]Entries{}}
}

// Store returns the backing store.
func (c *Cache) Store() Store {
	if c == nil {
		return nil
	}
	return c.store
}

// Lookup returns the payload stored under key in group. A failed load is
// cached as an empty group and its error returned once.
func (c *Cache) Lookup(ctx context.Context, group, key string) ([]byte, bool, error) {
	if c == nil || c.store == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, loaded := c.groups[group]
	var loadErr error
	if !loaded {
		var ok bool
		entries, _, ok, loadErr = c.store.Load(ctx, group)
		if loadErr != nil || !ok {
			entries = Entries{}
		}
		c.groups[group] = entries
	}
	payload, ok := entries[key]
	if !ok {
		return nil, false, loadErr
	}
	return append([]byte(nil), payload...), true, loadErr
}

// Put replaces the cached copy of group.
func (c *Cache) Put(group string, entries Entries) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.groups[group] = cloneEntries(entries)
	c.mu.Unlock()
}

// Loaded reports whether group is held in memory.
func (c *Cache) Loaded(group string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.groups[group]
	return ok
}

// Reset drops every cached group.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.groups = map[string]Entries{}
	c.mu.Unlock()
}

// NewMeta stamps a fresh snapshot id and timestamp.
func NewMeta(now time.Time, extra map[string]string) Meta {
	return cloneMeta(Meta{
		SnapshotID: uuid.NewString(),
		UpdatedAt:  now,
		Extra:      extra,
	})
}
