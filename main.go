//go:build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/asm"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
	"gochip8/pkg/driver"
	"gochip8/pkg/harness"
	"gochip8/pkg/memory"
	"gochip8/pkg/rom"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type runOptions struct {
	cycles     int
	frequency  int // 0 runs the cycles unpaced
	legacy     bool
	seed       int64
	script     string
	showScreen bool
	trace      bool
}

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output rom file path (default: input with .ch8 extension)")
	runProgram := flag.Bool("run", false, "run the assembled rom headless")
	runBinPath := flag.String("run-bin", "", "run an existing rom file headless")
	cycles := flag.Int("cycles", 10000, "number of instructions to execute when running without a script")
	frequency := flag.Int("frequency", 0, "pace the headless run at this many instructions per second, 0 runs unpaced")
	legacy := flag.Bool("legacy", false, "use the legacy COSMAC VIP instruction behavior")
	seed := flag.Int64("seed", 1, "seed for the CXNN random source")
	script := flag.String("script", "", "Lua script driving the run instead of -cycles")
	showScreen := flag.Bool("screen", false, "print the framebuffer after the run")
	debug := flag.Bool("debug", false, "enable debug logging with an instruction trace")
	quiet := flag.Bool("q", false, "only log errors")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", buildinfo.Version(version, commit, date))
		return
	}

	logger := config.CreateLogger(*debug, *quiet)

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}

	assembledOutput := ""
	if *inPath != "" {
		source, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}

		code, _, err := asm.Assemble(string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}

		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}

		if err := writeBinary(output, code); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write rom file %q: %v\n", output, err)
			os.Exit(1)
		}

		fmt.Printf("assembled %d bytes -> %s\n", len(code), output)
		assembledOutput = output
	}

	if *inPath == "" && *runBinPath == "" && !*runProgram {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -run to run assembled output, or -run-bin <file> to run an existing rom")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	opts := runOptions{
		cycles:     *cycles,
		frequency:  *frequency,
		legacy:     *legacy,
		seed:       *seed,
		script:     *script,
		showScreen: *showScreen,
		trace:      *debug,
	}
	if *debug {
		logger.Debug("Running rom", log.String("file", runTarget), log.Int("cycles", opts.cycles))
	}

	summary, err := runBinary(app.Context(), runTarget, opts, logger)
	if summary != "" {
		fmt.Print(summary)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", runTarget, err)
		os.Exit(1)
	}
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".ch8"
	}
	return strings.TrimSuffix(inPath, ext) + ".ch8"
}

func writeBinary(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// runBinary executes the rom at path without a window and returns a register
// dump. A run stopped by an instruction error still returns the dump of the
// state it failed in. With a frequency set the cycles are paced by the
// driver loop and the run ends early when ctx is cancelled.
func runBinary(ctx context.Context, path string, opts runOptions, logger *log.Logger) (string, error) {
	mem := memory.New()
	if _, err := rom.LoadFile(mem, path); err != nil {
		return "", err
	}

	screen := display.New()
	cpuOpts := []cpu.Option{
		cpu.WithLegacy(opts.legacy),
		cpu.WithRand(rand.New(rand.NewSource(opts.seed))),
	}
	if opts.trace {
		cpuOpts = append(cpuOpts, cpu.WithTracer(logger))
	}
	c := cpu.New(mem, screen, cpuOpts...)

	var runErr error
	if opts.script != "" {
		loop, err := driver.New(c, screen, driver.DefaultFrequency, logger)
		if err != nil {
			return "", err
		}
		h := harness.New(c, screen, loop, logger)
		runErr = h.RunFile(opts.script)
		h.Close()
	} else if opts.frequency > 0 {
		loop, err := driver.New(c, screen, opts.frequency, logger)
		if err != nil {
			return "", err
		}
		loop.SetCycleLimit(uint64(opts.cycles))
		runErr = loop.Run(ctx)
	} else {
		runErr = c.Run(opts.cycles)
	}

	return summarize(path, c, screen, opts.showScreen), runErr
}

func summarize(path string, c *cpu.CPU, screen *display.Screen, showScreen bool) string {
	var sb strings.Builder
	regs := c.Mem.Registers()
	fmt.Fprintf(&sb, "run complete (%s): cycles=%d PC=0x%03X I=0x%03X DT=%d ST=%d\n",
		path, c.Cycles, c.Mem.PC(), c.Mem.IndexRegister(), c.Mem.DelayRegister(), c.Mem.SoundRegister())
	for i, v := range regs {
		fmt.Fprintf(&sb, "V%X=0x%02X", i, v)
		if i%8 == 7 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	if showScreen {
		sb.WriteString(screen.String())
	}
	return sb.String()
}
