// Package render holds the drawing surface shared by the menu tree and the
// render object registry, plus a headless recorder used by tests and tools.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Align positions text horizontally inside its rectangle. Text is always
// centred vertically.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Canvas is the drawing surface supplied by the host.
type Canvas interface {
	DrawBox(r image.Rectangle, fill color.Color, border int, borderColor color.Color)
	DrawLine(x0, y0, x1, y1, width float32, c color.Color)
	DrawText(text string, r image.Rectangle, align Align, c color.Color)
	MeasureText(text string) int
}

// Resetter is implemented by canvases holding device-bound resources that
// must be released before a device reset and reacquired after it.
type Resetter interface {
	PreReset()
	PostReset()
}

// FaceMeasurer measures text with a font face.
type FaceMeasurer struct {
	Face font.Face
}

// MeasureText returns the advance width of text in pixels.
func (m FaceMeasurer) MeasureText(text string) int {
	face := m.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	return font.MeasureString(face, text).Ceil()
}

// DefaultMeasurer measures with the fixed 7x13 bitmap face.
func DefaultMeasurer() FaceMeasurer {
	return FaceMeasurer{Face: basicfont.Face7x13}
}

// Discard is a Canvas that measures text but draws nothing.
type Discard struct {
	FaceMeasurer
}

func (Discard) DrawBox(image.Rectangle, color.Color, int, color.Color)            {}
func (Discard) DrawLine(float32, float32, float32, float32, float32, color.Color) {}
func (Discard) DrawText(string, image.Rectangle, Align, color.Color)              {}
