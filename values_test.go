package menu

import (
	"errors"
	"image/color"
	"testing"
)

func TestNormalizeAcceptsKnownShapes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want Kind
	}{
		{"bool", true, KindBool},
		{"named bool", Bool(false), KindBool},
		{"int", 7, KindInt},
		{"slider", NewSlider(5, 0, 10), KindSlider},
		{"keybind", NewKeyBind('K', KeyBindToggle), KindKeyBind},
		{"rgba", color.RGBA{R: 1, A: 255}, KindColor},
		{"color", Color{G: 2}, KindColor},
		{"circle", NewCircle(true, Color{}), KindCircle},
		{"stringlist", NewStringList([]string{"a"}), KindStringList},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Normalize(tc.in)
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if v.Kind() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, v.Kind())
			}
		})
	}
}

func TestNormalizeRejectsUnknownShapes(t *testing.T) {
	for _, in := range []any{"text", 1.5, nil, []int{1}} {
		if _, err := Normalize(in); !errors.Is(err, ErrUnsupportedKind) {
			t.Fatalf("%T: expected ErrUnsupportedKind, got %v", in, err)
		}
	}
}

func TestSliderClampsAndSwapsBounds(t *testing.T) {
	s := NewSlider(150, 100, 0)
	if s.Min != 0 || s.Max != 100 || s.Value != 100 {
		t.Fatalf("unexpected slider %+v", s)
	}
	if got := s.WithValue(-5).Value; got != 0 {
		t.Fatalf("expected clamp to min, got %d", got)
	}
}

func TestStringListWraps(t *testing.T) {
	sl := NewStringList([]string{"A", "B", "C"}, 2)
	if got := sl.Next().SelectedValue(); got != "A" {
		t.Fatalf("expected wrap to A, got %q", got)
	}
	if got := NewStringList([]string{"A", "B", "C"}).Prev().SelectedValue(); got != "C" {
		t.Fatalf("expected wrap to C, got %q", got)
	}
	if got := NewStringList(nil).Next().SelectedValue(); got != "" {
		t.Fatalf("expected empty selection, got %q", got)
	}
}

func TestValuesEqual(t *testing.T) {
	a := NewStringList([]string{"x", "y"}, 1)
	b := NewStringList([]string{"x", "y"}, 1)
	if !ValuesEqual(a, b) {
		t.Fatalf("expected equal string lists")
	}
	if ValuesEqual(a, NewStringList([]string{"x"}, 1)) {
		t.Fatalf("expected different choices to differ")
	}
	if ValuesEqual(Bool(true), Int(1)) {
		t.Fatalf("expected different kinds to differ")
	}
	if !ValuesEqual(nil, nil) || ValuesEqual(nil, Int(0)) {
		t.Fatalf("unexpected nil handling")
	}
}

func TestColorHexAndParse(t *testing.T) {
	c := Color{R: 0x69, G: 0x69, B: 0x69, A: 0xff}
	if c.Hex() != "#696969ff" {
		t.Fatalf("unexpected hex %q", c.Hex())
	}
	parsed, err := ParseHexColor("#696969")
	if err != nil || parsed != c {
		t.Fatalf("unexpected parse %+v err=%v", parsed, err)
	}
	if _, err := ParseHexColor("#12"); err == nil {
		t.Fatalf("expected short colour to fail")
	}
	if got := ColorFrom(color.White); got != (Color{255, 255, 255, 255}) {
		t.Fatalf("unexpected conversion %+v", got)
	}
}
