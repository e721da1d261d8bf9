// Package main runs a CHIP-8 program in a terminal. The terminal is put in
// raw mode; since terminals report key presses but not releases, each press
// holds its keypad key for a few frames.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
	"gochip8/pkg/driver"
	"gochip8/pkg/keypad"
	"gochip8/pkg/memory"
	"gochip8/pkg/rom"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const (
	holdFrames = 6

	keyCtrlC  = 0x03
	keyEscape = 0x1B
)

var errQuit = errors.New("quit requested")

func main() {
	ctx := app.Context()

	cfg, err := config.Parse(filepath.Base(os.Args[0]), os.Args[1:])
	logger := config.CreateLogger(cfg.Debug, cfg.Quiet)
	if err != nil {
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			config.PrintBanner(logger, "chip8-console", cfg, version, commit, date)
			fmt.Fprintf(os.Stderr, "%s\n\n", usageErr.Error())
			usageErr.ShowUsage(os.Stderr)
			os.Exit(1)
		}
		logger.Fatal(err.Error())
	}
	config.PrintBanner(logger, "chip8-console", cfg, version, commit, date)

	mem := memory.New()
	fullPath, err := rom.LoadFile(mem, cfg.ROMPath)
	if err != nil {
		logger.Fatal("Loading rom failed", log.Err(err))
	}
	logger.Info("Loaded rom", log.String("file", fullPath))

	screen := display.New()
	c := cpu.New(mem, screen, config.CPUOptions(cfg, logger)...)
	loop, err := driver.New(c, screen, cfg.Frequency, logger)
	if err != nil {
		logger.Fatal(err.Error())
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		logger.Fatal("Standard input is not a terminal")
	}
	if w, h, err := term.GetSize(fd); err == nil && (w < display.Width || h < display.Height/2+1) {
		logger.Error("Terminal is smaller than the display", log.Int("columns", w), log.Int("rows", h))
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		logger.Fatal("Setting raw mode failed", log.Err(err))
	}

	err = run(ctx, c, screen, loop, os.Stdin, os.Stdout)
	_ = term.Restore(fd, oldState)
	fmt.Print("\x1b[?25h\r\n")

	if err != nil && !errors.Is(err, errQuit) {
		logger.Fatal("Execution failed", log.Err(err))
	}
}

// run interprets the program, reading keys from in and drawing to out until
// ctx is cancelled, Escape or Ctrl-C is read or an instruction fails.
func run(ctx context.Context, c *cpu.CPU, screen *display.Screen, loop *driver.Loop, in io.Reader, out io.Writer) error {
	keys := make(chan byte, 64)
	g, ctx := errgroup.WithContext(ctx)

	// The read itself cannot be cancelled; the goroutine exits on the next
	// byte or error once ctx is done.
	input := make(chan byte, 64)
	go pumpInput(ctx, in, input)

	g.Go(func() error {
		return translateKeys(ctx, keypad.Default(), input, keys)
	})

	g.Go(func() error {
		_, _ = io.WriteString(out, "\x1b[2J\x1b[?25l")
		latch := keypad.NewLatch(holdFrames)
		ticker := time.NewTicker(time.Second / driver.TimerFrequency)
		defer ticker.Stop()

		var drawn uint64
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

		drain:
			for {
				select {
				case key := <-keys:
					latch.Press(key)
				default:
					break drain
				}
			}
			screen.SetKeys(latch.Mask())
			latch.Advance()

			if err := loop.Frame(); err != nil {
				return err
			}
			if screen.Presents() != drawn {
				drawn = screen.Presents()
				if err := render(out, screen, statusLine(c, loop)); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

// pumpInput forwards bytes read from in until a read fails, closing input
// in that case. It stops sending once ctx is done.
func pumpInput(ctx context.Context, in io.Reader, input chan<- byte) {
	buf := make([]byte, 16)
	for {
		n, err := in.Read(buf)
		for _, b := range buf[:n] {
			select {
			case input <- b:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			close(input)
			return
		}
	}
}

// translateKeys forwards keypad keys read from input until a quit key
// arrives or ctx is cancelled.
func translateKeys(ctx context.Context, layout keypad.Layout, input <-chan byte, keys chan<- byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-input:
			if !ok {
				return nil
			}
			if b == keyCtrlC || b == keyEscape {
				return errQuit
			}
			if key, ok := layout.Index(rune(b)); ok {
				select {
				case keys <- key:
				default:
				}
			}
		}
	}
}

func statusLine(c *cpu.CPU, loop *driver.Loop) string {
	mode := "modern"
	if c.Legacy {
		mode = "legacy"
	}
	s := fmt.Sprintf("%d Hz %s  PC %03X  Esc quits", loop.Frequency(), mode, c.Mem.PC())
	if c.Mem.SoundActive() {
		s += "  BEEP"
	}
	return s
}
