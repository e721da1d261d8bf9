package display

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// Palette holds the two colors of the monochrome display.
type Palette struct {
	On  color.RGBA
	Off color.RGBA
}

// DefaultPalette draws white pixels on black.
var DefaultPalette = Palette{
	On:  color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	Off: color.RGBA{A: 0xFF},
}

// FramebufferRGBA decodes the pixel grid into a 64×32 RGBA8888 byte slice
// (length 64*32*4 = 8192) using the screen palette.
func (s *Screen) FramebufferRGBA() []byte {
	pixels := make([]byte, Width*Height*4)
	s.WriteRGBA(pixels)
	return pixels
}

// WriteRGBA decodes the pixel grid into dst, which must hold at least
// Width*Height*4 bytes.
func (s *Screen) WriteRGBA(dst []byte) {
	for i, on := range s.pixels {
		c := s.Palette.Off
		if on {
			c = s.Palette.On
		}
		dst[i*4+0] = c.R
		dst[i*4+1] = c.G
		dst[i*4+2] = c.B
		dst[i*4+3] = c.A
	}
}

// Image returns the current pixel grid as an *image.RGBA.
func (s *Screen) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    s.FramebufferRGBA(),
		Stride: Width * 4,
		Rect:   image.Rect(0, 0, Width, Height),
	}
}

// SaveScreenshot encodes the current framebuffer as a PNG and writes it to filename.
func (s *Screen) SaveScreenshot(filename string) error {
	img := s.Image()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
