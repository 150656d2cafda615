package menu

import (
	"image"
)

// MessageKind is the type of a host input message.
type MessageKind int

const (
	MouseMove MessageKind = iota
	LButtonDown
	LButtonUp
	KeyDown
	KeyUp
	ImeKeyUp
)

func (k MessageKind) String() string {
	switch k {
	case MouseMove:
		return "mouse_move"
	case LButtonDown:
		return "lbutton_down"
	case LButtonUp:
		return "lbutton_up"
	case KeyDown:
		return "key_down"
	case KeyUp:
		return "key_up"
	case ImeKeyUp:
		return "ime_key_up"
	}
	return "unknown"
}

// Message is one input event delivered by the host.
type Message struct {
	Kind   MessageKind
	Cursor image.Point
	Key    uint32
}

// ColorPicker is the external colour selection surface. Pick opens it with
// the current colour; apply may be called any number of times later.
type ColorPicker interface {
	Pick(current Color, apply func(Color))
}

// ColorPickerFunc adapts a function to ColorPicker.
type ColorPickerFunc func(current Color, apply func(Color))

func (f ColorPickerFunc) Pick(current Color, apply func(Color)) {
	if f != nil {
		f(current, apply)
	}
}

// WithColorPicker sets the surface opened by colour zones.
func WithColorPicker(picker ColorPicker) Option {
	return func(cfg *managerConfig) {
		cfg.picker = picker
	}
}

// HandleMessage applies the show-menu hotkeys and dispatches msg to every
// registered root menu.
func (m *Manager) HandleMessage(msg Message) {
	var deferred []func()

	m.mu.Lock()
	s := m.settings
	if (msg.Kind == KeyDown || msg.Kind == KeyUp) && msg.Key == s.ShowMenuPressKey {
		m.shown = msg.Kind == KeyDown
	}
	if msg.Kind == KeyUp && msg.Key == s.ShowMenuToggleKey {
		m.shown = !m.shown
	}
	typing := m.cfg.textInput != nil && m.cfg.textInput()
	roots := make([]MenuID, 0, len(m.roots))
	for _, entry := range m.roots {
		roots = append(roots, entry.menu)
	}
	for _, root := range roots {
		m.dispatchMenu(root, msg, typing, &deferred)
	}
	m.mu.Unlock()

	// Value changes run listeners and may reach the colour picker, both of
	// which can call back into the Manager.
	for _, fn := range deferred {
		fn()
	}
}

// Dispatch delivers msg to this menu's subtree only, without the hotkeys.
func (mn Menu) Dispatch(msg Message) {
	if mn.m == nil {
		return
	}
	m := mn.m
	var deferred []func()
	m.mu.Lock()
	typing := m.cfg.textInput != nil && m.cfg.textInput()
	m.dispatchMenu(mn.id, msg, typing, &deferred)
	m.mu.Unlock()
	for _, fn := range deferred {
		fn()
	}
}

func (m *Manager) dispatchMenu(id MenuID, msg Message, typing bool, deferred *[]func()) {
	n := m.menu(id)
	if n == nil {
		return
	}
	for _, child := range n.children {
		m.dispatchMenu(child, msg, typing, deferred)
	}
	for _, item := range n.items {
		m.dispatchItem(item, msg, typing, deferred)
	}

	if msg.Kind != LButtonDown {
		return
	}
	s := m.settings

	if n.root && m.menuShowing(id) && msg.Cursor.X-s.BaseX < s.ItemWidth {
		row := (msg.Cursor.Y - s.BaseY) / s.ItemHeight
		if m.rootIndex(id) != row {
			m.hideContents(id)
		}
	}

	if !m.menuShowing(id) || !msg.Cursor.In(m.menuRect(id)) {
		return
	}

	if !n.root && n.parent != 0 {
		for _, sibling := range m.menu(n.parent).children {
			if sibling != id {
				m.hideContents(sibling)
			}
		}
	}

	for _, child := range n.children {
		m.setMenuVisible(child, !m.menuShowing(child))
	}
	for _, item := range n.items {
		m.item(item).visible = !m.itemShowing(item)
	}
}

func (m *Manager) dispatchItem(id ItemID, msg Message, typing bool, deferred *[]func()) {
	n := m.item(id)
	if n == nil || !n.cell.set {
		return
	}
	showing := m.itemShowing(id)
	rect := m.itemRect(id)
	inside := msg.Cursor.In(rect)
	h := m.settings.ItemHeight
	dx := msg.Cursor.X - rect.Min.X
	w := rect.Dx()
	item := Item{m: m, id: id}
	set := func(v Value) {
		*deferred = append(*deferred, func() { _, _ = item.SetValue(v) })
	}
	clicked := msg.Kind == LButtonDown && showing && inside

	switch v := n.cell.value.(type) {
	case Bool:
		if clicked && dx > w-h {
			set(!v)
		}

	case Slider:
		if !showing {
			n.interacting = false
			return
		}
		if (msg.Kind == MouseMove && n.interacting) || (msg.Kind == LButtonDown && !n.interacting && inside) {
			set(v.WithValue(v.Min + dx*(v.Max-v.Min)/w))
		}
		if msg.Kind != LButtonDown && msg.Kind != LButtonUp {
			return
		}
		if !inside && msg.Kind == LButtonDown {
			return
		}
		n.interacting = msg.Kind == LButtonDown

	case KeyBind:
		if !typing && !n.interacting && msg.Key == v.Key {
			switch msg.Kind {
			case KeyDown:
				if v.Type == KeyBindPress && !v.Active {
					v.Active = true
					set(v)
				}
			case KeyUp, ImeKeyUp:
				if v.Type == KeyBindPress {
					if v.Active {
						v.Active = false
						set(v)
					}
				} else {
					v.Active = !v.Active
					set(v)
				}
			}
		}
		if msg.Kind == KeyUp && n.interacting {
			v.Key = msg.Key
			set(v)
			n.interacting = false
			return
		}
		if !clicked {
			return
		}
		if dx > w-h {
			v.Active = !v.Active
			set(v)
		} else {
			n.interacting = !n.interacting
		}

	case Color:
		if clicked && dx > w-h {
			m.pickColor(v, func(c Color) { _, _ = item.SetValue(c) }, deferred)
		}

	case Circle:
		if !clicked {
			return
		}
		if dx > w-h {
			v.Active = !v.Active
			set(v)
		} else if dx > w-2*h {
			m.pickColor(v.Color, func(c Color) {
				current, err := ValueAs[Circle](item)
				if err != nil {
					return
				}
				current.Color = c
				_, _ = item.SetValue(current)
			}, deferred)
		}

	case StringList:
		if !clicked {
			return
		}
		if dx > w-h {
			set(v.Next())
		} else if dx > w-2*h {
			set(v.Prev())
		}
	}
}

func (m *Manager) pickColor(current Color, apply func(Color), deferred *[]func()) {
	picker := m.cfg.picker
	if picker == nil {
		return
	}
	*deferred = append(*deferred, func() { picker.Pick(current, apply) })
}
