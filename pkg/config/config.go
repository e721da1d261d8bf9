// Package config handles command line options and logger setup shared by
// the frontends.
package config

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/cpu"
	"gochip8/pkg/driver"
)

// Config holds the options of one interpreter run.
type Config struct {
	ROMPath   string
	Legacy    bool
	Frequency int
	Scale     int
	Seed      int64 // 0 seeds the random source from the clock
	Debug     bool
	Quiet     bool
}

// Default returns the options used when no flags are given.
func Default() Config {
	return Config{
		Frequency: driver.DefaultFrequency,
		Scale:     10,
	}
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [options] <rom file>\n\n", e.flags.Name())
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

// Parse reads the options from args, which must not include the program
// name. The ROM path is the single positional argument.
func Parse(name string, args []string) (Config, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	cfg := Default()
	readFlags(flags, &cfg)

	if err := flags.Parse(args); err != nil {
		return cfg, &UsageError{flags: flags, msg: err.Error()}
	}

	rest := flags.Args()
	switch {
	case len(rest) == 0:
		return cfg, &UsageError{flags: flags, msg: "missing rom file"}
	case len(rest) > 1:
		for _, arg := range rest[1:] {
			if strings.HasPrefix(arg, "-") {
				return cfg, &UsageError{
					flags: flags,
					msg:   fmt.Sprintf("argument %s found after rom file, please pass the rom file as last argument", arg),
				}
			}
		}
		return cfg, &UsageError{flags: flags, msg: "only one rom file can be run"}
	}
	cfg.ROMPath = rest[0]

	if cfg.Frequency <= 0 {
		return cfg, &UsageError{flags: flags, msg: fmt.Sprintf("frequency must be positive, got %d", cfg.Frequency)}
	}
	if cfg.Scale <= 0 {
		return cfg, &UsageError{flags: flags, msg: fmt.Sprintf("scale must be positive, got %d", cfg.Scale)}
	}
	return cfg, nil
}

func readFlags(flags *flag.FlagSet, cfg *Config) {
	flags.BoolVar(&cfg.Legacy, "l", cfg.Legacy, "use the legacy COSMAC VIP behavior for shifts, BNNN and FX55/FX65")
	flags.BoolVar(&cfg.Legacy, "legacy", cfg.Legacy, "same as -l")
	flags.IntVar(&cfg.Frequency, "f", cfg.Frequency, "instructions executed per second")
	flags.IntVar(&cfg.Frequency, "frequency", cfg.Frequency, "same as -f")
	flags.IntVar(&cfg.Scale, "scale", cfg.Scale, "window pixels per CHIP-8 pixel")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the CXNN random source, 0 uses the clock")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging with an instruction trace")
	flags.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "only log errors")
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// PrintBanner logs the program name and version unless running quietly.
func PrintBanner(logger *log.Logger, name string, cfg Config, version, commit, date string) {
	if cfg.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}
	logger.Info(name, log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// CPUOptions translates the run options into interpreter options. Debug
// runs trace every executed instruction to logger.
func CPUOptions(cfg Config, logger *log.Logger) []cpu.Option {
	opts := []cpu.Option{cpu.WithLegacy(cfg.Legacy)}
	if cfg.Seed != 0 {
		opts = append(opts, cpu.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}
	if cfg.Debug {
		opts = append(opts, cpu.WithTracer(logger))
	}
	return opts
}
