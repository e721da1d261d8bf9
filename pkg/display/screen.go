package display

import (
	"errors"
	"fmt"
	"strings"

	"gochip8/pkg/grid"
)

const (
	Width  = 64
	Height = 32

	// KeyCount is the size of the hexadecimal keypad, keys 0x0-0xF.
	KeyCount = 16
)

var (
	ErrInvalidPixelPosition = errors.New("pixel position outside 64x32 grid")
	ErrOutOfRangeKey        = errors.New("key id out of range, must be 0x0-0xF")
	ErrNoKeyPressed         = errors.New("no key is pressed")
)

// Screen is the framebuffer and keypad surface shared between the
// interpreter and a presentation frontend. All access happens on the
// goroutine that runs the interpreter.
type Screen struct {
	pixels [Width * Height]bool
	keys   uint16
	closed bool

	// Palette selects the colors used by FramebufferRGBA.
	Palette Palette

	presenter func(*Screen)
	presents  uint64
}

// New returns a blank screen with no keys down.
func New() *Screen {
	return &Screen{
		Palette: DefaultPalette,
	}
}

// OnPresent registers fn to be called every time the interpreter presents a
// finished frame. A nil fn removes the hook.
func (s *Screen) OnPresent(fn func(*Screen)) {
	s.presenter = fn
}

// Present marks the current pixel grid as a finished frame.
func (s *Screen) Present() {
	s.presents++
	if s.presenter != nil {
		s.presenter(s)
	}
}

// Presents returns how many frames have been presented so far.
func (s *Screen) Presents() uint64 {
	return s.presents
}

// Clear turns every pixel off and presents the blank frame.
func (s *Screen) Clear() {
	s.pixels = [Width * Height]bool{}
	s.Present()
}

func (s *Screen) Pixel(x, y byte) (bool, error) {
	if !grid.InBounds(int(x), int(y), Width, Height) {
		return false, fmt.Errorf("%w: x %d, y %d", ErrInvalidPixelPosition, x, y)
	}
	return s.pixels[grid.Index(int(x), int(y), Width)], nil
}

func (s *Screen) SetPixel(x, y byte, on bool) error {
	if !grid.InBounds(int(x), int(y), Width, Height) {
		return fmt.Errorf("%w: x %d, y %d", ErrInvalidPixelPosition, x, y)
	}
	s.pixels[grid.Index(int(x), int(y), Width)] = on
	return nil
}

// Pixels returns a row-major snapshot of the pixel grid.
func (s *Screen) Pixels() [Width * Height]bool {
	return s.pixels
}

// KeyState reports whether key is currently held down.
func (s *Screen) KeyState(key byte) (bool, error) {
	if key >= KeyCount {
		return false, fmt.Errorf("%w: key %d", ErrOutOfRangeKey, key)
	}
	return s.keys&(1<<key) != 0, nil
}

func (s *Screen) AnyKeyPressed() bool {
	return s.keys != 0
}

// PressedKey returns the lowest-numbered key that is down. Callers must
// check AnyKeyPressed first; with no key down it returns ErrNoKeyPressed.
func (s *Screen) PressedKey() (byte, error) {
	for key := byte(0); key < KeyCount; key++ {
		if s.keys&(1<<key) != 0 {
			return key, nil
		}
	}
	return 0, ErrNoKeyPressed
}

func (s *Screen) PressKey(key byte) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: key %d", ErrOutOfRangeKey, key)
	}
	s.keys |= 1 << key
	return nil
}

func (s *Screen) ReleaseKey(key byte) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: key %d", ErrOutOfRangeKey, key)
	}
	s.keys &^= 1 << key
	return nil
}

// SetKeys replaces the whole keypad state; bit n is key n.
func (s *Screen) SetKeys(mask uint16) {
	s.keys = mask
}

func (s *Screen) Keys() uint16 {
	return s.keys
}

// Close records that the frontend window went away. The driver loop stops
// once it observes the flag.
func (s *Screen) Close() {
	s.closed = true
}

func (s *Screen) Closed() bool {
	return s.closed
}

// String renders the grid with '*' for lit pixels, one line per row.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)
	for i, on := range s.pixels {
		if on {
			sb.WriteByte('*')
		} else {
			sb.WriteByte(' ')
		}
		if x, _ := grid.GetGridCoords(i, Width); x == Width-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
