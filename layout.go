package menu

import (
	"image"

	"github.com/goliatone/go-menu/internal/vkey"
)

// All layout helpers expect m.mu to be held.

func (m *Manager) menuYLevel(id MenuID) int {
	n := m.menu(id)
	if n == nil || n.root || n.parent == 0 {
		return 0
	}
	parent := m.menu(n.parent)
	return m.menuYLevel(n.parent) + indexOf(parent.children, id)
}

func (m *Manager) itemYLevel(id ItemID) int {
	n := m.item(id)
	if n == nil || n.parent == 0 {
		return 0
	}
	parent := m.menu(n.parent)
	return m.menuYLevel(n.parent) + len(parent.children) + indexOf(parent.items, id)
}

// baseY is the top of the row block owned by the top-level menu above id.
func (m *Manager) baseY(id MenuID) int {
	for cur := id; cur != 0; {
		n := m.menu(cur)
		if n == nil {
			break
		}
		if n.root || n.parent == 0 {
			return m.settings.BaseY + m.rootIndex(cur)*m.settings.ItemHeight
		}
		cur = n.parent
	}
	return m.settings.BaseY
}

func (m *Manager) menuPos(id MenuID) image.Point {
	n := m.menu(id)
	if n == nil {
		return image.Point{}
	}
	x := m.settings.BaseX
	if n.parent != 0 {
		x = m.menuPos(n.parent).X + m.menuWidth(n.parent)
	}
	return image.Pt(x, m.baseY(id)+m.menuYLevel(id)*m.settings.ItemHeight)
}

func (m *Manager) itemPos(id ItemID) image.Point {
	n := m.item(id)
	if n == nil {
		return image.Point{}
	}
	if n.parent == 0 {
		return image.Pt(m.settings.BaseX, m.settings.BaseY)
	}
	x := m.menuPos(n.parent).X + m.menuWidth(n.parent)
	return image.Pt(x, m.baseY(n.parent)+m.itemYLevel(id)*m.settings.ItemHeight)
}

func (m *Manager) menuWidth(id MenuID) int {
	n := m.menu(id)
	if n == nil || n.parent == 0 {
		return m.settings.ItemWidth
	}
	return m.childrenWidth(n.parent)
}

func (m *Manager) itemWidth(id ItemID) int {
	n := m.item(id)
	if n == nil || n.parent == 0 {
		return m.settings.ItemWidth
	}
	return m.childrenWidth(n.parent)
}

// childrenWidth is the widest need among the direct children and items so a
// column lines up.
func (m *Manager) childrenWidth(id MenuID) int {
	n := m.menu(id)
	if n == nil {
		return 0
	}
	width := 0
	for _, child := range n.children {
		width = max(width, m.menuNeededWidth(child))
	}
	for _, item := range n.items {
		width = max(width, m.itemNeededWidth(item))
	}
	return width
}

func (m *Manager) menuNeededWidth(id MenuID) int {
	return m.canvas.MeasureText(m.tr(m.menu(id).display)) + 25
}

func (m *Manager) itemNeededWidth(id ItemID) int {
	n := m.item(id)
	h := m.settings.ItemHeight
	extra := 0
	switch v := n.cell.value.(type) {
	case StringList:
		widest := 0
		for _, choice := range v.Choices {
			widest = max(widest, m.canvas.MeasureText(m.tr(choice))+25)
		}
		extra += widest
	case KeyBind:
		extra += m.canvas.MeasureText(" (" + vkey.KeyToText(v.Key) + ")")
	}
	return m.canvas.MeasureText(m.tr(n.display)) + h*2 + 10 + extra
}

func (m *Manager) menuRect(id MenuID) image.Rectangle {
	p := m.menuPos(id)
	return image.Rect(p.X, p.Y, p.X+m.menuWidth(id), p.Y+m.settings.ItemHeight)
}

func (m *Manager) itemRect(id ItemID) image.Rectangle {
	p := m.itemPos(id)
	return image.Rect(p.X, p.Y, p.X+m.itemWidth(id), p.Y+m.settings.ItemHeight)
}

// menuShowing is the effective visibility: roots follow the shown flag,
// everything else also needs its own flag.
func (m *Manager) menuShowing(id MenuID) bool {
	n := m.menu(id)
	if n == nil || !m.shown {
		return false
	}
	return n.root || n.visible
}

func (m *Manager) itemShowing(id ItemID) bool {
	n := m.item(id)
	return n != nil && m.shown && n.visible
}

// setMenuVisible sets the flag; hiding cascades to every descendant.
func (m *Manager) setMenuVisible(id MenuID, visible bool) {
	n := m.menu(id)
	if n == nil {
		return
	}
	n.visible = visible
	if visible {
		return
	}
	for _, child := range n.children {
		m.setMenuVisible(child, false)
	}
	for _, item := range n.items {
		m.item(item).visible = false
	}
}

// hideContents closes everything directly below id.
func (m *Manager) hideContents(id MenuID) {
	n := m.menu(id)
	for _, child := range n.children {
		m.setMenuVisible(child, false)
	}
	for _, item := range n.items {
		m.item(item).visible = false
	}
}

// Showing reports whether the menu is currently drawn and clickable.
func (mn Menu) Showing() bool {
	if mn.m == nil {
		return false
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	return mn.m.menuShowing(mn.id)
}

// SetVisible sets the menu's own flag. Hiding a menu hides its whole subtree.
func (mn Menu) SetVisible(visible bool) {
	if mn.m == nil {
		return
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	mn.m.setMenuVisible(mn.id, visible)
}

// Bounds returns the menu's row rectangle.
func (mn Menu) Bounds() image.Rectangle {
	if mn.m == nil {
		return image.Rectangle{}
	}
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	return mn.m.menuRect(mn.id)
}

// Showing reports whether the item is currently drawn and clickable.
func (it Item) Showing() bool {
	if it.m == nil {
		return false
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	return it.m.itemShowing(it.id)
}

// SetVisible sets the item's own flag.
func (it Item) SetVisible(visible bool) {
	it.update(func(n *itemNode) { n.visible = visible })
}

// Interacting reports whether a slider drag or key capture is in progress.
func (it Item) Interacting() bool {
	if it.m == nil {
		return false
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	n := it.m.item(it.id)
	return n != nil && n.interacting
}

// Bounds returns the item's row rectangle.
func (it Item) Bounds() image.Rectangle {
	if it.m == nil {
		return image.Rectangle{}
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	return it.m.itemRect(it.id)
}

func indexOf[T comparable](list []T, v T) int {
	for i, candidate := range list {
		if candidate == v {
			return i
		}
	}
	return 0
}
