package menu

import (
	"fmt"
	"image/color"
	"slices"
)

// Kind identifies the closed set of value shapes an item can hold.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindSlider
	KindKeyBind
	KindInt
	KindColor
	KindCircle
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindSlider:
		return "slider"
	case KindKeyBind:
		return "keybind"
	case KindInt:
		return "int"
	case KindColor:
		return "color"
	case KindCircle:
		return "circle"
	case KindStringList:
		return "stringlist"
	default:
		return "none"
	}
}

// Value is implemented by the seven value kinds only.
type Value interface {
	Kind() Kind
	isValue()
}

// Bool is an on/off toggle.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) isValue()   {}

// Int is a raw integer without bounds.
type Int int

func (Int) Kind() Kind { return KindInt }
func (Int) isValue()   {}

// Slider is a bounded integer. Value is always within [Min, Max].
type Slider struct {
	Value int
	Min   int
	Max   int
}

// NewSlider builds a slider, swapping inverted bounds and clamping value.
func NewSlider(value, lo, hi int) Slider {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Slider{Min: lo, Max: hi}.WithValue(value)
}

// WithValue returns a copy of s holding value clamped to the bounds.
func (s Slider) WithValue(value int) Slider {
	s.Value = min(max(value, s.Min), s.Max)
	return s
}

func (Slider) Kind() Kind { return KindSlider }
func (Slider) isValue()   {}

// KeyBindType selects how a key bind reacts to its key.
type KeyBindType int

const (
	// KeyBindPress is active only while the key is held.
	KeyBindPress KeyBindType = iota
	// KeyBindToggle flips on every key release.
	KeyBindToggle
)

func (t KeyBindType) String() string {
	if t == KeyBindToggle {
		return "toggle"
	}
	return "press"
}

// KeyBind binds a virtual key code to an active flag.
type KeyBind struct {
	Key    uint32
	Type   KeyBindType
	Active bool
}

// NewKeyBind builds an inactive key bind unless active is given.
func NewKeyBind(key uint32, typ KeyBindType, active ...bool) KeyBind {
	kb := KeyBind{Key: key, Type: typ}
	if len(active) > 0 {
		kb.Active = active[0]
	}
	return kb
}

func (KeyBind) Kind() Kind { return KindKeyBind }
func (KeyBind) isValue()   {}

// Color is an 8-bit RGBA colour. It satisfies image/color.Color.
type Color struct {
	R, G, B, A uint8
}

// ColorFrom converts any image colour.
func ColorFrom(c color.Color) Color {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return Color{R: rgba.R, G: rgba.G, B: rgba.B, A: rgba.A}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Hex renders the colour as #rrggbbaa.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (Color) Kind() Kind { return KindColor }
func (Color) isValue()   {}

// Circle is a toggle with a colour and a caller-controlled radius.
type Circle struct {
	Active bool
	Color  Color
	Radius float32
}

// NewCircle builds a circle toggle; radius defaults to 100.
func NewCircle(active bool, c Color, radius ...float32) Circle {
	r := float32(100)
	if len(radius) > 0 {
		r = radius[0]
	}
	return Circle{Active: active, Color: c, Radius: r}
}

func (Circle) Kind() Kind { return KindCircle }
func (Circle) isValue()   {}

// StringList is a fixed list of choices with one selected entry.
type StringList struct {
	Choices  []string
	Selected int
}

// NewStringList builds a choice list selecting index selected (0 by default).
func NewStringList(choices []string, selected ...int) StringList {
	sl := StringList{Choices: slices.Clone(choices)}
	if len(selected) > 0 {
		sl.Selected = selected[0]
	}
	return sl
}

// SelectedValue returns the selected choice or "" when out of range.
func (s StringList) SelectedValue() string {
	if s.Selected < 0 || s.Selected >= len(s.Choices) {
		return ""
	}
	return s.Choices[s.Selected]
}

// Next selects the following choice, wrapping to the first.
func (s StringList) Next() StringList {
	if len(s.Choices) == 0 {
		return s
	}
	s.Choices = slices.Clone(s.Choices)
	if s.Selected >= len(s.Choices)-1 {
		s.Selected = 0
	} else {
		s.Selected++
	}
	return s
}

// Prev selects the preceding choice, wrapping to the last.
func (s StringList) Prev() StringList {
	if len(s.Choices) == 0 {
		return s
	}
	s.Choices = slices.Clone(s.Choices)
	if s.Selected <= 0 {
		s.Selected = len(s.Choices) - 1
	} else {
		s.Selected--
	}
	return s
}

func (StringList) Kind() Kind { return KindStringList }
func (StringList) isValue()   {}

// Normalize maps v onto one of the seven value kinds. Plain bool, int and
// color.RGBA values are accepted as Bool, Int and Color.
func Normalize(v any) (Value, error) {
	switch typed := v.(type) {
	case Bool, Int, Slider, KeyBind, Color, Circle:
		return typed.(Value), nil
	case StringList:
		return NewStringList(typed.Choices, typed.Selected), nil
	case bool:
		return Bool(typed), nil
	case int:
		return Int(typed), nil
	case color.RGBA:
		return Color{R: typed.R, G: typed.G, B: typed.B, A: typed.A}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKind, v)
	}
}

// ValuesEqual reports structural equality of two values.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if sa, ok := a.(StringList); ok {
		sb := b.(StringList)
		return sa.Selected == sb.Selected && slices.Equal(sa.Choices, sb.Choices)
	}
	return a == b
}

// plainValue flattens v into the representation used by rule snapshots.
func plainValue(v Value) any {
	switch typed := v.(type) {
	case Bool:
		return bool(typed)
	case Int:
		return int(typed)
	case Slider:
		return typed.Value
	case KeyBind:
		return typed.Active
	case Color:
		return typed.Hex()
	case Circle:
		return typed.Active
	case StringList:
		return typed.SelectedValue()
	default:
		return nil
	}
}
