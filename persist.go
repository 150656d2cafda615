package menu

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-menu/layering"
	"github.com/goliatone/go-menu/pkg/activity"
	"github.com/goliatone/go-menu/pkg/store"
)

// Groups is the save payload: group file -> persist key -> encoded value.
type Groups map[string]store.Entries

// SaveAll writes every registered root tree. Each group file is merged over
// what is currently stored, so keys from other trees survive.
func (m *Manager) SaveAll(ctx context.Context) error {
	return m.saveGroups(ctx, m.Collect())
}

// Collect returns the payload SaveAll would write across every registered
// root. When two roots produce the same key in a group, the later root wins.
func (m *Manager) Collect() Groups {
	m.mu.Lock()
	defer m.mu.Unlock()
	merged := Groups{}
	for _, entry := range m.roots {
		groups := Groups{}
		m.collect(entry.menu, groups)
		merged = layering.MergeGroups(groups, merged)
	}
	return merged
}

// SaveAll writes this menu's subtree only.
func (mn Menu) SaveAll(ctx context.Context) error {
	if mn.m == nil {
		return newError("save_all", ErrorTree, "", ErrInvalidHandle)
	}
	m := mn.m
	m.mu.Lock()
	groups := Groups{}
	m.collect(mn.id, groups)
	m.mu.Unlock()
	return m.saveGroups(ctx, groups)
}

// Collect returns the payload SaveAll would write for this subtree.
func (mn Menu) Collect() Groups {
	groups := Groups{}
	if mn.m == nil {
		return groups
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	mn.m.collect(mn.id, groups)
	return groups
}

// collect gathers children before own items. Callers hold m.mu.
func (m *Manager) collect(id MenuID, groups Groups) {
	n := m.menu(id)
	if n == nil {
		return
	}
	for _, child := range n.children {
		m.collect(child, groups)
	}
	for _, itemID := range n.items {
		item := m.item(itemID)
		if item.cell.skipPersist || !item.cell.set || item.cell.encoded == nil {
			continue
		}
		group := m.groupOf(item)
		if groups[group] == nil {
			groups[group] = store.Entries{}
		}
		groups[group][persistKey(item.display, item.name)] = layering.CloneBytes(item.cell.encoded)
	}
}

func (m *Manager) saveGroups(ctx context.Context, groups Groups) error {
	if ctx == nil {
		ctx = context.Background()
	}
	backing := m.cache.Store()
	names := layering.Keys(groups)
	slices.Sort(names)

	var errs []error
	for _, group := range names {
		fresh := groups[group]
		existing, _, _, err := backing.Load(ctx, group)
		if err != nil {
			// Unreadable files are replaced by the fresh entries.
			m.logError("save_load", ErrorFileIO, group, err)
			existing = nil
		}
		merged := store.Entries(layering.MergeEntries(fresh, existing))
		meta, err := backing.Save(ctx, group, merged, store.NewMeta(m.now(), map[string]string{"owner": m.settings.Owner}))
		if err != nil {
			e := newError("save_group", ErrorFileIO, group, fmt.Errorf("%w: %v", ErrFileIO, err))
			m.logError(e.Op, e.Kind, e.Path, err)
			errs = append(errs, e)
			continue
		}
		m.cache.Put(group, merged)
		m.emit(ctx, activity.BuildSavedEvent(activity.MenuEventInput{
			ActorID:    m.cfg.actorID,
			Group:      group,
			Metadata:   map[string]any{"entries": len(merged), "written": len(fresh), "snapshot_id": meta.SnapshotID},
			OccurredAt: m.now(),
		}))
	}
	return errors.Join(errs...)
}
