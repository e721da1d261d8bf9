// Package main runs a CHIP-8 program in a desktop window.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
	"gochip8/pkg/driver"
	"gochip8/pkg/memory"
	"gochip8/pkg/rom"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	cfg, err := config.Parse(filepath.Base(os.Args[0]), os.Args[1:])
	logger := config.CreateLogger(cfg.Debug, cfg.Quiet)
	if err != nil {
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			config.PrintBanner(logger, "chip8-desktop", cfg, version, commit, date)
			fmt.Fprintf(os.Stderr, "%s\n\n", usageErr.Error())
			usageErr.ShowUsage(os.Stderr)
			os.Exit(1)
		}
		logger.Fatal(err.Error())
	}
	config.PrintBanner(logger, "chip8-desktop", cfg, version, commit, date)

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

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetWindowSize(display.Width*cfg.Scale, display.Height*cfg.Scale+statusBarHeight)
	ebiten.SetWindowTitle("CHIP-8 - " + filepath.Base(fullPath))

	game := &Game{
		ctx:    ctx,
		cpu:    c,
		screen: screen,
		loop:   loop,
		logger: logger,
		scale:  cfg.Scale,
	}
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("Execution failed", log.Err(err))
	}
}
