package render

import (
	"image"
	"image/color"
	"sync"
)

// OpKind identifies a recorded draw call.
type OpKind int

const (
	OpBox OpKind = iota
	OpLine
	OpText
)

// Op is one recorded draw call.
type Op struct {
	Kind  OpKind
	Rect  image.Rectangle
	Text  string
	Align Align
	Color color.Color
	Line  [4]float32
	Width float32
}

// Recorder is a Canvas that records every call instead of drawing.
type Recorder struct {
	Measurer FaceMeasurer

	mu     sync.Mutex
	ops    []Op
	resets [2]int
}

// NewRecorder returns a recorder measuring with the default face.
func NewRecorder() *Recorder {
	return &Recorder{Measurer: DefaultMeasurer()}
}

func (r *Recorder) DrawBox(rect image.Rectangle, fill color.Color, _ int, _ color.Color) {
	r.record(Op{Kind: OpBox, Rect: rect, Color: fill})
}

func (r *Recorder) DrawLine(x0, y0, x1, y1, width float32, c color.Color) {
	r.record(Op{Kind: OpLine, Line: [4]float32{x0, y0, x1, y1}, Width: width, Color: c})
}

func (r *Recorder) DrawText(text string, rect image.Rectangle, align Align, c color.Color) {
	r.record(Op{Kind: OpText, Rect: rect, Text: text, Align: align, Color: c})
}

func (r *Recorder) MeasureText(text string) int {
	return r.Measurer.MeasureText(text)
}

func (r *Recorder) PreReset() {
	r.mu.Lock()
	r.resets[0]++
	r.mu.Unlock()
}

func (r *Recorder) PostReset() {
	r.mu.Lock()
	r.resets[1]++
	r.mu.Unlock()
}

// Resets returns how many pre and post reset notifications arrived.
func (r *Recorder) Resets() (pre, post int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets[0], r.resets[1]
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Texts returns the text of every recorded DrawText call in order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}
