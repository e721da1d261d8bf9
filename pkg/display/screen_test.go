package display

import (
	"errors"
	"strings"
	"testing"
)

func TestPixelAccessors(t *testing.T) {
	s := New()

	if err := s.SetPixel(63, 31, true); err != nil {
		t.Fatalf("SetPixel(63, 31): unexpected error %v", err)
	}
	on, err := s.Pixel(63, 31)
	if err != nil {
		t.Fatalf("Pixel(63, 31): unexpected error %v", err)
	}
	if !on {
		t.Error("Pixel(63, 31): expected on")
	}

	if err := s.SetPixel(64, 0, true); !errors.Is(err, ErrInvalidPixelPosition) {
		t.Errorf("SetPixel(64, 0): expected ErrInvalidPixelPosition, got %v", err)
	}
	if _, err := s.Pixel(0, 32); !errors.Is(err, ErrInvalidPixelPosition) {
		t.Errorf("Pixel(0, 32): expected ErrInvalidPixelPosition, got %v", err)
	}
}

func TestClearPresents(t *testing.T) {
	s := New()
	var seen int
	s.OnPresent(func(*Screen) { seen++ })

	_ = s.SetPixel(1, 1, true)
	s.Clear()

	if on, _ := s.Pixel(1, 1); on {
		t.Error("Clear: expected pixel (1,1) off")
	}
	if seen != 1 {
		t.Errorf("Clear: expected 1 present callback, got %d", seen)
	}
	if s.Presents() != 1 {
		t.Errorf("Presents: expected 1, got %d", s.Presents())
	}
}

func TestKeypad(t *testing.T) {
	s := New()

	if s.AnyKeyPressed() {
		t.Error("AnyKeyPressed: expected false on a fresh screen")
	}
	if _, err := s.PressedKey(); !errors.Is(err, ErrNoKeyPressed) {
		t.Errorf("PressedKey: expected ErrNoKeyPressed, got %v", err)
	}

	_ = s.PressKey(0xC)
	_ = s.PressKey(0x5)

	if !s.AnyKeyPressed() {
		t.Error("AnyKeyPressed: expected true")
	}
	key, err := s.PressedKey()
	if err != nil || key != 0x5 {
		t.Errorf("PressedKey: expected 0x5, got 0x%X (%v)", key, err)
	}
	if down, _ := s.KeyState(0xC); !down {
		t.Error("KeyState(0xC): expected down")
	}

	_ = s.ReleaseKey(0x5)
	key, _ = s.PressedKey()
	if key != 0xC {
		t.Errorf("PressedKey after release: expected 0xC, got 0x%X", key)
	}
	if s.Keys() != 1<<0xC {
		t.Errorf("Keys: expected 0x%04X, got 0x%04X", 1<<0xC, s.Keys())
	}

	if _, err := s.KeyState(0x10); !errors.Is(err, ErrOutOfRangeKey) {
		t.Errorf("KeyState(0x10): expected ErrOutOfRangeKey, got %v", err)
	}
	if err := s.PressKey(0x10); !errors.Is(err, ErrOutOfRangeKey) {
		t.Errorf("PressKey(0x10): expected ErrOutOfRangeKey, got %v", err)
	}
	if err := s.ReleaseKey(0xFF); !errors.Is(err, ErrOutOfRangeKey) {
		t.Errorf("ReleaseKey(0xFF): expected ErrOutOfRangeKey, got %v", err)
	}

	s.SetKeys(0)
	if s.AnyKeyPressed() {
		t.Error("SetKeys(0): expected no key down")
	}
}

func TestClosed(t *testing.T) {
	s := New()
	if s.Closed() {
		t.Error("Closed: expected false")
	}
	s.Close()
	if !s.Closed() {
		t.Error("Closed: expected true")
	}
}

func TestString(t *testing.T) {
	s := New()
	_ = s.SetPixel(0, 0, true)
	_ = s.SetPixel(2, 1, true)

	lines := strings.Split(s.String(), "\n")
	if len(lines) != Height+1 {
		t.Fatalf("String: expected %d lines, got %d", Height+1, len(lines))
	}
	if !strings.HasPrefix(lines[0], "* ") {
		t.Errorf("row 0: expected prefix %q, got %q", "* ", lines[0][:2])
	}
	if !strings.HasPrefix(lines[1], "  *") {
		t.Errorf("row 1: expected prefix %q, got %q", "  *", lines[1][:3])
	}
	if len(lines[0]) != Width {
		t.Errorf("row width: expected %d, got %d", Width, len(lines[0]))
	}
}
