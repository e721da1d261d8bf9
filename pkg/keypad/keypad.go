// Package keypad maps host keyboard characters onto the 16-key hexadecimal
// keypad.
//
// The default layout uses the left block of a QWERTY keyboard:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
package keypad

import (
	"strings"
	"unicode"
)

// DefaultLayout lists the host character for each keypad key, 0x0 to 0xF.
const DefaultLayout = "x123qweasdzc4rfv"

// Layout translates host characters into keypad keys.
type Layout struct {
	chars [16]rune
}

// NewLayout builds a layout from a 16 character string, where position n
// holds the character for key n. It returns false if the string does not
// hold 16 distinct characters.
func NewLayout(chars string) (Layout, bool) {
	var l Layout
	runes := []rune(strings.ToLower(chars))
	if len(runes) != len(l.chars) {
		return l, false
	}
	seen := make(map[rune]struct{}, len(runes))
	for i, r := range runes {
		if _, ok := seen[r]; ok {
			return l, false
		}
		seen[r] = struct{}{}
		l.chars[i] = r
	}
	return l, true
}

// Default returns the QWERTY layout.
func Default() Layout {
	l, _ := NewLayout(DefaultLayout)
	return l
}

// Index returns the keypad key for a host character. Letters match in
// either case.
func (l Layout) Index(r rune) (byte, bool) {
	r = unicode.ToLower(r)
	for i, c := range l.chars {
		if c == r {
			return byte(i), true
		}
	}
	return 0, false
}

// Char returns the host character bound to key.
func (l Layout) Char(key byte) rune {
	return l.chars[key&0x0F]
}

// Latch turns a stream of key presses without releases into a held key
// mask. Terminals only report presses, so every press holds its key for a
// fixed number of frames.
type Latch struct {
	hold   int
	frames [16]int
}

func NewLatch(holdFrames int) *Latch {
	if holdFrames < 1 {
		holdFrames = 1
	}
	return &Latch{hold: holdFrames}
}

// Press marks key as held for the next hold frames.
func (l *Latch) Press(key byte) {
	l.frames[key&0x0F] = l.hold
}

// Mask returns the keys currently held, bit n for key n.
func (l *Latch) Mask() uint16 {
	var mask uint16
	for key, left := range l.frames {
		if left > 0 {
			mask |= 1 << key
		}
	}
	return mask
}

// Advance ages every held key by one frame.
func (l *Latch) Advance() {
	for key := range l.frames {
		if l.frames[key] > 0 {
			l.frames[key]--
		}
	}
}
