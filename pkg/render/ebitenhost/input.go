//go:build ebiten

package ebitenhost

import (
	"image"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	menu "github.com/goliatone/go-menu"
	"github.com/goliatone/go-menu/internal/vkey"
)

var virtualKeys = buildVirtualKeys()

func buildVirtualKeys() map[ebiten.Key]uint32 {
	named := map[string]uint32{
		"Tab":          vkey.Tab,
		"Enter":        vkey.Enter,
		"ShiftLeft":    vkey.Shift,
		"ShiftRight":   vkey.Shift,
		"ControlLeft":  vkey.Control,
		"ControlRight": vkey.Control,
		"AltLeft":      vkey.Alt,
		"AltRight":     vkey.Alt,
		"CapsLock":     vkey.Caps,
		"Escape":       vkey.Escape,
		"Space":        vkey.Space,
		"Insert":       vkey.Insert,
	}
	for c := 'A'; c <= 'Z'; c++ {
		named[string(c)] = uint32(c)
	}
	for d := '0'; d <= '9'; d++ {
		named["Digit"+string(d)] = uint32(d)
	}
	for i := 1; i <= 12; i++ {
		named["F"+strconv.Itoa(i)] = vkey.F1 + uint32(i-1)
	}

	out := make(map[ebiten.Key]uint32, len(named))
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		if code, ok := named[k.String()]; ok {
			out[k] = code
		}
	}
	return out
}

// VirtualKey maps an ebiten key to the virtual key code used by menu items.
func VirtualKey(k ebiten.Key) (uint32, bool) {
	code, ok := virtualKeys[k]
	return code, ok
}

// Poller turns the per-frame ebiten input state into menu messages.
type Poller struct {
	cursor  image.Point
	started bool
}

// Poll returns the messages for the current frame in the order mouse move,
// button, key presses, key releases.
func (p *Poller) Poll() []menu.Message {
	var out []menu.Message
	x, y := ebiten.CursorPosition()
	cursor := image.Pt(x, y)
	if !p.started || cursor != p.cursor {
		out = append(out, menu.Message{Kind: menu.MouseMove, Cursor: cursor})
		p.cursor, p.started = cursor, true
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		out = append(out, menu.Message{Kind: menu.LButtonDown, Cursor: cursor})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		out = append(out, menu.Message{Kind: menu.LButtonUp, Cursor: cursor})
	}
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if code, ok := VirtualKey(k); ok {
			out = append(out, menu.Message{Kind: menu.KeyDown, Cursor: cursor, Key: code})
		}
	}
	for _, k := range inpututil.AppendJustReleasedKeys(nil) {
		if code, ok := VirtualKey(k); ok {
			out = append(out, menu.Message{Kind: menu.KeyUp, Cursor: cursor, Key: code})
		}
	}
	return out
}
