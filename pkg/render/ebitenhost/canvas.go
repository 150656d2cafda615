//go:build ebiten

// Package ebitenhost runs a menu Manager inside an ebiten game loop: a Canvas
// drawing on the frame image and a poller turning ebiten input state into
// menu messages.
package ebitenhost

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/goliatone/go-menu/pkg/render"
)

// Canvas draws on an ebiten image. Target is swapped every frame by Game.
type Canvas struct {
	render.FaceMeasurer
	Target *ebiten.Image
}

// NewCanvas returns a canvas using the 7x13 bitmap face.
func NewCanvas() *Canvas {
	return &Canvas{FaceMeasurer: render.DefaultMeasurer()}
}

func (c *Canvas) face() font.Face {
	if c.Face == nil {
		return basicfont.Face7x13
	}
	return c.Face
}

func (c *Canvas) DrawBox(r image.Rectangle, fill color.Color, border int, borderColor color.Color) {
	if c.Target == nil || r.Empty() {
		return
	}
	x, y := float32(r.Min.X), float32(r.Min.Y)
	w, h := float32(r.Dx()), float32(r.Dy())
	vector.DrawFilledRect(c.Target, x, y, w, h, fill, false)
	if border > 0 {
		vector.StrokeRect(c.Target, x, y, w, h, float32(border), borderColor, false)
	}
}

func (c *Canvas) DrawLine(x0, y0, x1, y1, width float32, clr color.Color) {
	if c.Target == nil {
		return
	}
	vector.StrokeLine(c.Target, x0, y0, x1, y1, width, clr, true)
}

func (c *Canvas) DrawText(s string, r image.Rectangle, align render.Align, clr color.Color) {
	if c.Target == nil || s == "" {
		return
	}
	face := c.face()
	metrics := face.Metrics()
	width := c.MeasureText(s)
	x := r.Min.X
	switch align {
	case render.AlignRight:
		x = r.Max.X - width
	case render.AlignCenter:
		x = r.Min.X + (r.Dx()-width)/2
	}
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()
	y := r.Min.Y + (r.Dy()-textHeight)/2 + metrics.Ascent.Ceil()
	text.Draw(c.Target, s, face, x, y, clr)
}
