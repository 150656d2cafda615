// Package vkey names virtual key codes for key-bind labels.
package vkey

import "strconv"

const (
	Tab     uint32 = 0x09
	Enter   uint32 = 0x0D
	Shift   uint32 = 0x10
	Control uint32 = 0x11
	Alt     uint32 = 0x12
	Caps    uint32 = 0x14
	Escape  uint32 = 0x1B
	Space   uint32 = 0x20
	Insert  uint32 = 0x2D
	F1      uint32 = 0x70
	F9      uint32 = 0x78
	F12     uint32 = 0x7B

	leftShift    uint32 = 0xA0
	rightShift   uint32 = 0xA1
	leftControl  uint32 = 0xA2
	rightControl uint32 = 0xA3
	leftAlt      uint32 = 0xA4
	rightAlt     uint32 = 0xA5
	oem5         uint32 = 0xDC
)

// Fix maps side-specific modifier codes onto their generic code.
func Fix(key uint32) uint32 {
	switch key {
	case leftShift, rightShift:
		return Shift
	case leftControl, rightControl:
		return Control
	case leftAlt, rightAlt:
		return Alt
	}
	return key
}

// KeyToText returns a short label for key.
func KeyToText(key uint32) string {
	switch {
	case key >= 'A' && key <= 'Z':
		return string(rune(key))
	case key >= '0' && key <= '9':
		return string(rune(key))
	case key >= F1 && key <= F12:
		return "F" + strconv.Itoa(int(key-F1+1))
	}
	switch key {
	case Tab:
		return "Tab"
	case Enter:
		return "Enter"
	case Shift:
		return "Shift"
	case Control:
		return "Ctrl"
	case Alt:
		return "Alt"
	case Caps:
		return "CAPS"
	case Escape:
		return "ESC"
	case Space:
		return "Space"
	case Insert:
		return "Insert"
	case oem5:
		return "º"
	}
	return strconv.FormatUint(uint64(key), 10)
}
