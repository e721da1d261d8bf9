package main

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font/basicfont"

	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
	"gochip8/pkg/driver"
)

const statusBarHeight = 16

// keyBindings maps keypad keys 0x0-0xF to the left block of a QWERTY
// keyboard, in the same order as keypad.DefaultLayout.
var keyBindings = [display.KeyCount]ebiten.Key{
	ebiten.KeyX, ebiten.Key1, ebiten.Key2, ebiten.Key3,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyA,
	ebiten.KeyS, ebiten.KeyD, ebiten.KeyZ, ebiten.KeyC,
	ebiten.Key4, ebiten.KeyR, ebiten.KeyF, ebiten.KeyV,
}

// keyMask returns the keypad state, bit n set while the key bound to n is down.
func keyMask(pressed func(ebiten.Key) bool) uint16 {
	var mask uint16
	for key, binding := range keyBindings {
		if pressed(binding) {
			mask |= 1 << key
		}
	}
	return mask
}

type Game struct {
	ctx    context.Context
	cpu    *cpu.CPU
	screen *display.Screen
	loop   *driver.Loop
	logger *log.Logger
	scale  int

	paused bool
	canvas *ebiten.Image // reused 64x32 framebuffer image
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() || g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.screen.Close()
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.saveScreenshot()
	}

	g.screen.SetKeys(keyMask(ebiten.IsKeyPressed))
	if g.paused {
		return nil
	}
	return g.loop.Frame()
}

func (g *Game) saveScreenshot() {
	name := fmt.Sprintf("chip8-%s.png", time.Now().Format("20060102-150405"))
	if err := g.screen.SaveScreenshot(name); err != nil {
		g.logger.Error("Saving screenshot failed", log.Err(err))
		return
	}
	g.logger.Info("Saved screenshot", log.String("file", name))
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(display.Width, display.Height)
	}
	g.canvas.WritePixels(g.screen.FramebufferRGBA())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.canvas, op)

	text.Draw(screen, g.status(), basicfont.Face7x13, 4, display.Height*g.scale+statusBarHeight-4,
		color.RGBA{R: 0x80, G: 0xC0, B: 0x80, A: 0xFF})
}

// status is the text shown below the framebuffer.
func (g *Game) status() string {
	mode := "modern"
	if g.cpu.Legacy {
		mode = "legacy"
	}
	s := fmt.Sprintf("%d Hz %s  PC %03X", g.loop.Frequency(), mode, g.cpu.Mem.PC())
	if g.cpu.Mem.SoundActive() {
		s += "  BEEP"
	}
	if g.paused {
		s += "  PAUSED"
	}
	return s
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return display.Width * g.scale, display.Height*g.scale + statusBarHeight
}
