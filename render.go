package menu

import (
	"image"
	"strconv"

	"github.com/goliatone/go-menu/internal/vkey"
	"github.com/goliatone/go-menu/pkg/render"
)

// Draw renders every registered root menu and then the render objects. It is
// the host's per-frame callback.
func (m *Manager) Draw() {
	m.mu.Lock()
	for _, entry := range m.roots {
		m.drawMenu(entry.menu)
	}
	m.mu.Unlock()
	m.objects.Draw(m.canvas)
	m.objects.EndScene(m.canvas)
}

// PreReset forwards the device-lost callback to the canvas and render objects.
func (m *Manager) PreReset() {
	if r, ok := m.canvas.(render.Resetter); ok {
		r.PreReset()
	}
	m.objects.PreReset()
}

// PostReset forwards the device-restored callback.
func (m *Manager) PostReset() {
	if r, ok := m.canvas.(render.Resetter); ok {
		r.PostReset()
	}
	m.objects.PostReset()
}

// Canvas returns the drawing surface.
func (m *Manager) Canvas() render.Canvas {
	return m.canvas
}

func (m *Manager) drawMenu(id MenuID) {
	if !m.menuShowing(id) {
		return
	}
	n := m.menu(id)
	c, p := m.canvas, m.palette
	rect := m.menuRect(id)

	fill := p.background
	if (len(n.children) > 0 && m.menuShowing(n.children[0])) || (len(n.items) > 0 && m.itemShowing(n.items[0])) {
		fill = p.activeBackground
	}
	c.DrawBox(rect, fill, 1, p.border)
	c.DrawText(m.tr(n.display), rect.Add(image.Pt(5, 0)), render.AlignLeft, p.text)
	c.DrawText(">", rect.Sub(image.Pt(5, 0)), render.AlignRight, p.text)

	for _, child := range n.children {
		if m.menuShowing(child) {
			m.drawMenu(child)
		}
	}
	// Reverse order so the first item ends up on top.
	for i := len(n.items) - 1; i >= 0; i-- {
		if m.itemShowing(n.items[i]) {
			m.drawItem(n.items[i])
		}
	}
}

func (m *Manager) drawItem(id ItemID) {
	n := m.item(id)
	c, p := m.canvas, m.palette
	rect := m.itemRect(id)
	h := rect.Dy()
	w := rect.Dx()
	lastCell := image.Rect(rect.Max.X-h, rect.Min.Y, rect.Max.X, rect.Max.Y)
	secondCell := lastCell.Sub(image.Pt(h, 0))

	c.DrawBox(rect, p.background, 1, p.border)
	label := m.tr(n.display)

	switch v := n.cell.value.(type) {
	case Bool:
		m.drawOnOff(bool(v), lastCell)

	case Slider:
		pct := 0
		if v.Max != v.Min {
			pct = 100 * (v.Value - v.Min) / (v.Max - v.Min)
		}
		x := float32(rect.Min.X + 3 + pct*(w-3)/100)
		c.DrawLine(x, float32(rect.Min.Y+2), x, float32(rect.Max.Y), 2, p.sliderMarker)
		c.DrawText(strconv.Itoa(v.Value), rect.Sub(image.Pt(5, 0)), render.AlignRight, p.text)

	case KeyBind:
		label += " (" + vkey.KeyToText(v.Key) + ")"
		if n.interacting {
			label = m.tr("Press new key")
		}
		m.drawOnOff(v.Active, lastCell)

	case Int:
		c.DrawText(strconv.Itoa(int(v)), rect.Add(image.Pt(5, 0)), render.AlignRight, p.text)

	case Color:
		c.DrawBox(lastCell, v, 1, p.border)

	case Circle:
		c.DrawBox(secondCell, v.Color, 1, p.border)
		m.drawOnOff(v.Active, lastCell)

	case StringList:
		c.DrawBox(secondCell, p.arrow, 1, p.border)
		c.DrawText("<", secondCell, render.AlignCenter, p.text)
		c.DrawBox(lastCell, p.arrow, 1, p.border)
		c.DrawText(">", lastCell, render.AlignCenter, p.text)
		c.DrawText(m.tr(v.SelectedValue()), rect.Sub(image.Pt(5+2*h, 0)), render.AlignRight, p.text)
	}

	c.DrawText(label, rect.Add(image.Pt(5, 0)), render.AlignLeft, p.text)
}

func (m *Manager) drawOnOff(on bool, cell image.Rectangle) {
	fill, text := m.palette.off, "Off"
	if on {
		fill, text = m.palette.on, "On"
	}
	m.canvas.DrawBox(cell, fill, 1, m.palette.border)
	m.canvas.DrawText(text, cell, render.AlignCenter, m.palette.text)
}
