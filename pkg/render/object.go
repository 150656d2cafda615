package render

import (
	"image"
	"image/color"
	"sync"
)

const (
	MinLayer = -5
	MaxLayer = 5
)

// Object is a registry entry drawn every frame while visible.
type Object interface {
	Layer() int
	Visible() bool
	Draw(Canvas)
	EndScene(Canvas)
	PreReset()
	PostReset()
	Close() error
}

// ValidLayer reports whether layer falls in the drawable range.
func ValidLayer(layer int) bool {
	return layer >= MinLayer && layer <= MaxLayer
}

// Base carries the layer and visibility shared by the built-in objects.
// Embedders override the draw hooks they need.
type Base struct {
	mu          sync.RWMutex
	layer       int
	hidden      bool
	visibleWhen func() bool
}

func (b *Base) Layer() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.layer
}

// SetLayer moves the object to layer.
func (b *Base) SetLayer(layer int) {
	b.mu.Lock()
	b.layer = layer
	b.mu.Unlock()
}

// Visible reports the visibility condition when set, else the plain flag.
func (b *Base) Visible() bool {
	b.mu.RLock()
	cond, hidden := b.visibleWhen, b.hidden
	b.mu.RUnlock()
	if cond != nil {
		return cond()
	}
	return !hidden
}

// SetVisible sets the plain visibility flag.
func (b *Base) SetVisible(visible bool) {
	b.mu.Lock()
	b.hidden = !visible
	b.mu.Unlock()
}

// VisibleWhen installs a condition that overrides the plain flag.
func (b *Base) VisibleWhen(cond func() bool) {
	b.mu.Lock()
	b.visibleWhen = cond
	b.mu.Unlock()
}

func (b *Base) Draw(Canvas)     {}
func (b *Base) EndScene(Canvas) {}
func (b *Base) PreReset()       {}
func (b *Base) PostReset()      {}
func (b *Base) Close() error    { return nil }

// Line draws a segment at end of scene.
type Line struct {
	Base
	From, To image.Point
	Width    float32
	Color    color.Color
}

func NewLine(from, to image.Point, width float32, c color.Color) *Line {
	return &Line{From: from, To: to, Width: width, Color: c}
}

func (l *Line) EndScene(c Canvas) {
	c.DrawLine(float32(l.From.X), float32(l.From.Y), float32(l.To.X), float32(l.To.Y), l.Width, l.Color)
}

// Rect draws a filled rectangle at end of scene.
type Rect struct {
	Base
	Bounds image.Rectangle
	Fill   color.Color
}

func NewRect(bounds image.Rectangle, fill color.Color) *Rect {
	return &Rect{Bounds: bounds, Fill: fill}
}

func (r *Rect) EndScene(c Canvas) {
	c.DrawBox(r.Bounds, r.Fill, 0, nil)
}

// Text draws a label. TextFunc, when set, is evaluated every frame.
type Text struct {
	Base
	Bounds   image.Rectangle
	Content  string
	TextFunc func() string
	Align    Align
	Color    color.Color
}

func NewText(content string, bounds image.Rectangle, c color.Color) *Text {
	return &Text{Content: content, Bounds: bounds, Color: c}
}

func (t *Text) EndScene(c Canvas) {
	content := t.Content
	if t.TextFunc != nil {
		content = t.TextFunc()
	}
	c.DrawText(content, t.Bounds, t.Align, t.Color)
}
