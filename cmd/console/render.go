package main

import (
	"bufio"
	"io"

	"gochip8/pkg/display"
)

// Each terminal cell shows two vertically stacked pixels.
var halfBlocks = [4]string{" ", "▀", "▄", "█"}

// render draws the framebuffer at the top left of a raw mode terminal,
// followed by a status line.
func render(w io.Writer, s *display.Screen, status string) error {
	bw := bufio.NewWriterSize(w, 4096)
	pixels := s.Pixels()

	_, _ = bw.WriteString("\x1b[H")
	for y := 0; y < display.Height; y += 2 {
		for x := 0; x < display.Width; x++ {
			var cell int
			if pixels[y*display.Width+x] {
				cell |= 1
			}
			if pixels[(y+1)*display.Width+x] {
				cell |= 2
			}
			_, _ = bw.WriteString(halfBlocks[cell])
		}
		_, _ = bw.WriteString("\r\n")
	}
	_, _ = bw.WriteString("\x1b[K")
	_, _ = bw.WriteString(status)
	_, _ = bw.WriteString("\r\n")
	return bw.Flush()
}
