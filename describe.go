package menu

import (
	"regexp"
	"sort"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FieldDescriptor describes one item of a registered tree.
type FieldDescriptor struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Group   string `json:"group"`
	Key     string `json:"key"`
	Persist bool   `json:"persist"`
}

// Snapshot flattens the registered trees into plain values keyed by item
// name. The first item with a given name wins and names that are not valid
// identifiers are skipped. The "menus" entry nests the same values by menu
// name.
func (m *Manager) Snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := map[string]any{}
	menus := map[string]any{}
	for _, entry := range m.roots {
		m.flatten(entry.menu, out)
		if n := m.menu(entry.menu); n != nil {
			if _, exists := menus[n.name]; !exists {
				menus[n.name] = m.nested(entry.menu)
			}
		}
	}
	out["menus"] = menus
	return out
}

func (m *Manager) flatten(id MenuID, out map[string]any) {
	n := m.menu(id)
	if n == nil {
		return
	}
	for _, itemID := range n.items {
		item := m.item(itemID)
		if !item.cell.set || !identifierPattern.MatchString(item.name) || item.name == "menus" {
			continue
		}
		if _, exists := out[item.name]; !exists {
			out[item.name] = plainValue(item.cell.value)
		}
	}
	for _, child := range n.children {
		m.flatten(child, out)
	}
}

func (m *Manager) nested(id MenuID) map[string]any {
	n := m.menu(id)
	out := map[string]any{}
	for _, itemID := range n.items {
		item := m.item(itemID)
		if item.cell.set {
			out[item.name] = plainValue(item.cell.value)
		}
	}
	for _, child := range n.children {
		name := m.menu(child).name
		if _, exists := out[name]; !exists {
			out[name] = m.nested(child)
		}
	}
	return out
}

// Describe lists every item of the registered trees sorted by path.
func (m *Manager) Describe() []FieldDescriptor {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []FieldDescriptor
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
			out = append(out, FieldDescriptor{
				Path:    m.itemPath(itemID),
				Name:    item.name,
				Kind:    item.cell.kind.String(),
				Group:   m.groupOf(item),
				Key:     persistKey(item.display, item.name),
				Persist: !item.cell.skipPersist,
			})
		}
	}
	for _, entry := range m.roots {
		walk(entry.menu)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
