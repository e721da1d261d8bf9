package display

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFramebufferRGBA(t *testing.T) {
	s := New()
	s.Palette = Palette{
		On:  color.RGBA{R: 0x33, G: 0xFF, B: 0x66, A: 0xFF},
		Off: color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF},
	}
	_ = s.SetPixel(1, 0, true)

	pixels := s.FramebufferRGBA()
	if len(pixels) != Width*Height*4 {
		t.Fatalf("length: expected %d, got %d", Width*Height*4, len(pixels))
	}

	if pixels[0] != 0x10 || pixels[1] != 0x10 || pixels[2] != 0x10 || pixels[3] != 0xFF {
		t.Errorf("pixel 0: expected off color, got (%d,%d,%d,%d)", pixels[0], pixels[1], pixels[2], pixels[3])
	}
	if pixels[4] != 0x33 || pixels[5] != 0xFF || pixels[6] != 0x66 || pixels[7] != 0xFF {
		t.Errorf("pixel 1: expected on color, got (%d,%d,%d,%d)", pixels[4], pixels[5], pixels[6], pixels[7])
	}
}

func TestImage(t *testing.T) {
	s := New()
	img := s.Image()
	if img.Rect.Dx() != Width || img.Rect.Dy() != Height {
		t.Errorf("image size: expected %dx%d, got %dx%d", Width, Height, img.Rect.Dx(), img.Rect.Dy())
	}
	if img.Stride != Width*4 {
		t.Errorf("image stride: expected %d, got %d", Width*4, img.Stride)
	}
}

func TestSaveScreenshot(t *testing.T) {
	s := New()
	_ = s.SetPixel(5, 7, true)

	path := filepath.Join(t.TempDir(), "shot.png")
	if err := s.SaveScreenshot(path); err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open screenshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode screenshot: %v", err)
	}
	r, g, b, _ := img.At(5, 7).RGBA()
	if r>>8 != 0xFF || g>>8 != 0xFF || b>>8 != 0xFF {
		t.Errorf("pixel (5,7): expected white, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
	r, _, _, _ = img.At(0, 0).RGBA()
	if r != 0 {
		t.Errorf("pixel (0,0): expected black, got r=%d", r>>8)
	}
}
