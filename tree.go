package menu

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/goliatone/go-menu/pkg/activity"
	"github.com/goliatone/go-menu/pkg/store"
)

// MenuID and ItemID index the Manager's node arena. The zero value is never
// a valid handle.
type (
	MenuID int
	ItemID int
)

type menuNode struct {
	name     string
	display  string
	owner    string
	root     bool
	parent   MenuID
	children []MenuID
	items    []ItemID
	visible  bool
	uniqueID string
}

type itemNode struct {
	name        string
	display     string
	owner       string
	parent      MenuID
	visible     bool
	interacting bool
	cell        cell
}

// Menu is a handle to a container node.
type Menu struct {
	m  *Manager
	id MenuID
}

// Item is a handle to a widget node.
type Item struct {
	m  *Manager
	id ItemID
}

// NewMenu creates a detached, non-root menu.
func (m *Manager) NewMenu(display, name string) Menu {
	return m.newMenu("", display, name, false)
}

// NewRootMenu creates a root menu. Roots are drawn while the Manager is
// shown once they are registered with AddToMainMenu.
func (m *Manager) NewRootMenu(display, name string) Menu {
	return m.newMenu("", display, name, true)
}

func (m *Manager) newMenu(owner, display, name string, root bool) Menu {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menus = append(m.menus, &menuNode{name: name, display: display, owner: owner, root: root})
	return Menu{m: m, id: MenuID(len(m.menus))}
}

// NewItem creates a detached item. Its value is set with SetValue.
func (m *Manager) NewItem(name, display string) Item {
	return m.newItem("", name, display)
}

func (m *Manager) newItem(owner, name, display string) Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, &itemNode{name: name, display: display, owner: owner})
	return Item{m: m, id: ItemID(len(m.items))}
}

// menu returns the node for id. Callers hold m.mu.
func (m *Manager) menu(id MenuID) *menuNode {
	if id <= 0 || int(id) > len(m.menus) {
		return nil
	}
	return m.menus[id-1]
}

// item returns the node for id. Callers hold m.mu.
func (m *Manager) item(id ItemID) *itemNode {
	if id <= 0 || int(id) > len(m.items) {
		return nil
	}
	return m.items[id-1]
}

func (mn Menu) ID() MenuID { return mn.id }

// Valid reports whether mn refers to a node.
func (mn Menu) Valid() bool {
	if mn.m == nil {
		return false
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	return mn.m.menu(mn.id) != nil
}

func (mn Menu) Name() string {
	return mn.read(func(n *menuNode) string { return n.name })
}

func (mn Menu) DisplayName() string {
	return mn.read(func(n *menuNode) string { return n.display })
}

// UniqueID returns the registry id assigned by AddToMainMenu.
func (mn Menu) UniqueID() string {
	return mn.read(func(n *menuNode) string { return n.uniqueID })
}

func (mn Menu) IsRoot() bool {
	if mn.m == nil {
		return false
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	n := mn.m.menu(mn.id)
	return n != nil && n.root
}

func (mn Menu) read(get func(*menuNode) string) string {
	if mn.m == nil {
		return ""
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	if n := mn.m.menu(mn.id); n != nil {
		return get(n)
	}
	return ""
}

// Parent returns the owning menu, or the zero Menu for detached and root menus.
func (mn Menu) Parent() Menu {
	if mn.m == nil {
		return Menu{}
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	n := mn.m.menu(mn.id)
	if n == nil || n.parent == 0 {
		return Menu{}
	}
	return Menu{m: mn.m, id: n.parent}
}

// Children returns the sub-menus in declaration order.
func (mn Menu) Children() []Menu {
	if mn.m == nil {
		return nil
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	n := mn.m.menu(mn.id)
	if n == nil {
		return nil
	}
	out := make([]Menu, 0, len(n.children))
	for _, id := range n.children {
		out = append(out, Menu{m: mn.m, id: id})
	}
	return out
}

// Items returns the menu's own items in declaration order.
func (mn Menu) Items() []Item {
	if mn.m == nil {
		return nil
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	n := mn.m.menu(mn.id)
	if n == nil {
		return nil
	}
	out := make([]Item, 0, len(n.items))
	for _, id := range n.items {
		out = append(out, Item{m: mn.m, id: id})
	}
	return out
}

// AddSubMenu attaches child and returns it for chaining.
func (mn Menu) AddSubMenu(child Menu) (Menu, error) {
	if mn.m == nil || child.m != mn.m {
		return Menu{}, newError("add_sub_menu", ErrorTree, "", ErrInvalidHandle)
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	parent, node := mn.m.menu(mn.id), mn.m.menu(child.id)
	if parent == nil || node == nil || child.id == mn.id {
		return Menu{}, newError("add_sub_menu", ErrorTree, "", ErrInvalidHandle)
	}
	if node.parent != 0 || node.root || mn.m.isAncestor(child.id, mn.id) {
		return Menu{}, newError("add_sub_menu", ErrorTree, mn.m.menuPath(child.id), ErrAlreadyAttached)
	}
	node.parent = mn.id
	parent.children = append(parent.children, child.id)
	return child, nil
}

// isAncestor reports whether anc is id or one of its ancestors.
func (m *Manager) isAncestor(anc, id MenuID) bool {
	for cur := id; cur != 0; {
		if cur == anc {
			return true
		}
		n := m.menu(cur)
		if n == nil {
			return false
		}
		cur = n.parent
	}
	return false
}

// AddItem attaches item and returns it for chaining.
func (mn Menu) AddItem(item Item) (Item, error) {
	if mn.m == nil || item.m != mn.m {
		return Item{}, newError("add_item", ErrorTree, "", ErrInvalidHandle)
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	parent, node := mn.m.menu(mn.id), mn.m.item(item.id)
	if parent == nil || node == nil {
		return Item{}, newError("add_item", ErrorTree, "", ErrInvalidHandle)
	}
	if node.parent != 0 {
		return Item{}, newError("add_item", ErrorTree, mn.m.itemPath(item.id), ErrAlreadyAttached)
	}
	node.parent = mn.id
	parent.items = append(parent.items, item.id)
	return item, nil
}

// Item finds the first item called name: own items first, then each
// sub-menu depth-first. The zero Item is returned when nothing matches.
func (mn Menu) Item(name string) Item {
	if mn.m == nil {
		return Item{}
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	if id := mn.m.findItem(mn.id, name); id != 0 {
		return Item{m: mn.m, id: id}
	}
	return Item{}
}

func (m *Manager) findItem(id MenuID, name string) ItemID {
	n := m.menu(id)
	if n == nil {
		return 0
	}
	for _, itemID := range n.items {
		if m.item(itemID).name == name {
			return itemID
		}
	}
	for _, child := range n.children {
		if found := m.findItem(child, name); found != 0 {
			return found
		}
	}
	return 0
}

// SubMenu returns the direct sub-menu called name, creating and attaching
// one when it does not exist.
func (mn Menu) SubMenu(name string) Menu {
	if mn.m == nil {
		return Menu{}
	}
	m := mn.m
	m.mu.Lock()
	n := m.menu(mn.id)
	if n == nil {
		m.mu.Unlock()
		return Menu{}
	}
	for _, child := range n.children {
		if m.menu(child).name == name {
			m.mu.Unlock()
			return Menu{m: m, id: child}
		}
	}
	m.menus = append(m.menus, &menuNode{name: name, display: name, parent: mn.id})
	id := MenuID(len(m.menus))
	n.children = append(n.children, id)
	m.mu.Unlock()
	return Menu{m: m, id: id}
}

// AddToMainMenu registers a root menu in the display order. The registry id
// is owner + "." + name, suffixed with "." until it is unique. An empty owner
// uses the root's bound owner, or Settings.Owner.
//
// A root that was not created through a Plugin is bound to owner here: its
// items save into the owner's group file from now on, and items still holding
// their default adopt the value saved in that group.
func (mn Menu) AddToMainMenu(owner string) (string, error) {
	if mn.m == nil {
		return "", newError("add_to_main_menu", ErrorTree, "", ErrInvalidHandle)
	}
	m := mn.m
	owner = strings.TrimSpace(owner)
	m.mu.Lock()
	n := m.menu(mn.id)
	if n == nil {
		m.mu.Unlock()
		return "", newError("add_to_main_menu", ErrorTree, "", ErrInvalidHandle)
	}
	if n.uniqueID != "" || n.parent != 0 {
		m.mu.Unlock()
		return "", newError("add_to_main_menu", ErrorTree, n.name, ErrAlreadyAttached)
	}
	var rebound []pendingAdoption
	switch {
	case owner == "":
		owner = m.menuOwner(mn.id)
	case n.owner == "":
		if err := store.ValidateGroup(owner); err != nil {
			m.mu.Unlock()
			return "", newError("add_to_main_menu", ErrorTree, n.name, err)
		}
		before := m.defaultItems(mn.id)
		n.owner = owner
		rebound = m.regrouped(before)
	}
	n.root = true
	uniqueID := owner + "." + n.name
	for m.rootIndexByID(uniqueID) >= 0 {
		uniqueID += "."
	}
	n.uniqueID = uniqueID
	name := n.name
	m.roots = append(m.roots, rootEntry{uniqueID: uniqueID, menu: mn.id})
	m.mu.Unlock()

	m.readopt(rebound)
	m.emit(context.Background(), activity.BuildRootRegisteredEvent(activity.MenuEventInput{
		ActorID:    m.cfg.actorID,
		ObjectID:   uniqueID,
		Path:       name,
		Group:      owner,
		OccurredAt: m.now(),
	}))
	return uniqueID, nil
}

// RemoveFromMainMenu deregisters a root menu. Later roots move up one row.
func (mn Menu) RemoveFromMainMenu() {
	if mn.m == nil {
		return
	}
	m := mn.m
	m.mu.Lock()
	n := m.menu(mn.id)
	if n == nil || n.uniqueID == "" {
		m.mu.Unlock()
		return
	}
	uniqueID := n.uniqueID
	if idx := m.rootIndexByID(uniqueID); idx >= 0 {
		m.roots = append(m.roots[:idx], m.roots[idx+1:]...)
	}
	n.uniqueID = ""
	name := n.name
	m.mu.Unlock()

	m.emit(context.Background(), activity.BuildRootRemovedEvent(activity.MenuEventInput{
		ActorID:    m.cfg.actorID,
		ObjectID:   uniqueID,
		Path:       name,
		OccurredAt: m.now(),
	}))
}

func (m *Manager) rootIndexByID(uniqueID string) int {
	for i, entry := range m.roots {
		if entry.uniqueID == uniqueID {
			return i
		}
	}
	return -1
}

// rootIndex is the display row of a registered root, 0 otherwise.
func (m *Manager) rootIndex(id MenuID) int {
	for i, entry := range m.roots {
		if entry.menu == id {
			return i
		}
	}
	return 0
}

// menuPath joins the names from the top-level menu down to id with ".".
func (m *Manager) menuPath(id MenuID) string {
	var parts []string
	for cur := id; cur != 0; {
		n := m.menu(cur)
		if n == nil {
			break
		}
		parts = append(parts, n.name)
		cur = n.parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func (m *Manager) itemPath(id ItemID) string {
	n := m.item(id)
	if n == nil {
		return ""
	}
	if n.parent == 0 {
		return n.name
	}
	return m.menuPath(n.parent) + "." + n.name
}

func (it Item) ID() ItemID { return it.id }

// Valid reports whether it refers to a node.
func (it Item) Valid() bool {
	if it.m == nil {
		return false
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	return it.m.item(it.id) != nil
}

func (it Item) Name() string {
	return it.read(func(n *itemNode) string { return n.name })
}

func (it Item) DisplayName() string {
	return it.read(func(n *itemNode) string { return n.display })
}

// Path returns the dotted path of menu names ending with the item name.
func (it Item) Path() string {
	if it.m == nil {
		return ""
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	return it.m.itemPath(it.id)
}

func (it Item) read(get func(*itemNode) string) string {
	if it.m == nil {
		return ""
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	if n := it.m.item(it.id); n != nil {
		return get(n)
	}
	return ""
}

// Parent returns the owning menu.
func (it Item) Parent() Menu {
	if it.m == nil {
		return Menu{}
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	n := it.m.item(it.id)
	if n == nil || n.parent == 0 {
		return Menu{}
	}
	return Menu{m: it.m, id: n.parent}
}

// SetShared stores the item in the shared group file instead of the owner's.
func (it Item) SetShared() Item {
	it.update(func(n *itemNode) { n.cell.shared = true })
	return it
}

// DontSave excludes the item from SaveAll.
func (it Item) DontSave() Item {
	it.update(func(n *itemNode) { n.cell.skipPersist = true })
	return it
}

// OnChange registers a listener for value changes after the first set.
func (it Item) OnChange(listener ChangeListener) Item {
	if listener != nil {
		it.update(func(n *itemNode) { n.cell.listeners = append(n.cell.listeners, listener) })
	}
	return it
}

func (it Item) update(fn func(*itemNode)) {
	if it.m == nil {
		return
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	if n := it.m.item(it.id); n != nil {
		fn(n)
	}
}

// PersistKey returns the stable key of the item in its group file.
func (it Item) PersistKey() string {
	return it.read(func(n *itemNode) string { return persistKey(n.display, n.name) })
}

// Group returns the group file the item persists into.
func (it Item) Group() string {
	if it.m == nil {
		return ""
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	n := it.m.item(it.id)
	if n == nil {
		return ""
	}
	return it.m.groupOf(n)
}

// groupOf resolves the group file of n: the shared group, the nearest bound
// owner on the way up, or Settings.Owner. Callers hold m.mu.
func (m *Manager) groupOf(n *itemNode) string {
	if n.cell.shared {
		return store.SharedGroup
	}
	if n.owner != "" {
		return n.owner
	}
	return m.menuOwner(n.parent)
}

func (m *Manager) menuOwner(id MenuID) string {
	for cur := id; cur != 0; {
		n := m.menu(cur)
		if n == nil {
			break
		}
		if n.owner != "" {
			return n.owner
		}
		cur = n.parent
	}
	return m.settings.Owner
}

// persistKey hashes a version tag with the label and name so saved values
// survive restarts while the item keeps its label.
func persistKey(display, name string) string {
	sum := md5.Sum([]byte("v3" + display + name))
	return hex.EncodeToString(sum[:])
}

func (mn Menu) String() string {
	if mn.m == nil {
		return "menu(<nil>)"
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	return fmt.Sprintf("menu(%s)", mn.m.menuPath(mn.id))
}

func (it Item) String() string {
	return fmt.Sprintf("item(%s)", it.Path())
}
