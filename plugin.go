package menu

import (
	"context"
	"strings"

	"github.com/goliatone/go-menu/pkg/activity"
	"github.com/goliatone/go-menu/pkg/store"
)

// Plugin creates nodes owned by one consumer of the Manager. Items created
// through it, or attached below its menus, persist into the owner's group
// file, so two plugins using the same labels never share saved values.
type Plugin struct {
	m     *Manager
	owner string
}

// Plugin returns the node factory for owner. An owner that is not a valid
// group file name is logged and replaced by Settings.Owner.
func (m *Manager) Plugin(owner string) Plugin {
	owner = strings.TrimSpace(owner)
	if err := store.ValidateGroup(owner); err != nil {
		m.logError("plugin", ErrorTree, owner, err)
		owner = m.settings.Owner
	}
	return Plugin{m: m, owner: owner}
}

// Owner is the group file the plugin's items save into.
func (p Plugin) Owner() string { return p.owner }

func (p Plugin) NewRootMenu(display, name string) Menu {
	return p.m.newMenu(p.owner, display, name, true)
}

func (p Plugin) NewMenu(display, name string) Menu {
	return p.m.newMenu(p.owner, display, name, false)
}

func (p Plugin) NewItem(name, display string) Item {
	return p.m.newItem(p.owner, name, display)
}

type pendingAdoption struct {
	id    ItemID
	group string
	key   string
	path  string
	value Value
}

// defaultItems maps the set items below id that still hold their first value
// to their current group. Callers hold m.mu.
func (m *Manager) defaultItems(id MenuID) map[ItemID]string {
	out := map[ItemID]string{}
	var walk func(MenuID)
	walk = func(id MenuID) {
		n := m.menu(id)
		if n == nil {
			return
		}
		for _, child := range n.children {
			walk(child)
		}
		for _, itemID := range n.items {
			item := m.item(itemID)
			if item.cell.set && item.cell.origin == OriginDefault {
				out[itemID] = m.groupOf(item)
			}
		}
	}
	walk(id)
	return out
}

// regrouped lists the items of before whose group changed. Callers hold m.mu.
func (m *Manager) regrouped(before map[ItemID]string) []pendingAdoption {
	var out []pendingAdoption
	for id, group := range before {
		n := m.item(id)
		if now := m.groupOf(n); now != group {
			out = append(out, pendingAdoption{
				id:    id,
				group: now,
				key:   persistKey(n.display, n.name),
				path:  m.itemPath(id),
				value: n.cell.value,
			})
		}
	}
	return out
}

// readopt applies saved values from the new group of each pending item. An
// item changed in the meantime keeps its value.
func (m *Manager) readopt(pending []pendingAdoption) {
	for _, p := range pending {
		adopted, ok := m.adoptPersisted(p.group, p.key, p.path, p.value)
		if !ok {
			continue
		}
		encoded, err := encodeValue(adopted)
		if err != nil {
			m.logError("encode_value", ErrorUnknown, p.path, err)
			continue
		}
		m.mu.Lock()
		n := m.item(p.id)
		if n == nil || n.cell.origin != OriginDefault || !ValuesEqual(n.cell.value, p.value) {
			m.mu.Unlock()
			continue
		}
		n.cell.commit(adopted, OriginPersisted, encoded)
		m.mu.Unlock()

		m.emit(context.Background(), activity.BuildValueChangedEvent(activity.MenuEventInput{
			ActorID:    m.cfg.actorID,
			Path:       p.path,
			Kind:       adopted.Kind().String(),
			Group:      p.group,
			Key:        p.key,
			OldValue:   plainValue(p.value),
			NewValue:   plainValue(adopted),
			Metadata:   map[string]any{"origin": OriginPersisted.String()},
			OccurredAt: m.now(),
		}))
	}
}
