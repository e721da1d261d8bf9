// Package driver paces the interpreter: instructions run at a configurable
// frequency while the delay and sound timers count down at a fixed 60 Hz.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/cpu"
)

const (
	// DefaultFrequency is the instruction rate in Hz when none is configured.
	DefaultFrequency = 700
	// TimerFrequency is the fixed countdown rate of the delay and sound timers.
	TimerFrequency = 60
)

var ErrInvalidFrequency = errors.New("frequency must be positive")

// Closer reports whether the presentation surface went away.
type Closer interface {
	Closed() bool
}

// Loop owns the timing of one interpreter.
type Loop struct {
	cpu       *cpu.CPU
	surface   Closer
	frequency int
	logger    *log.Logger

	lastTimer time.Time
	carry     int    // fractional cycles owed to the next frame, in 1/60ths
	limit     uint64 // stop Run once the cpu has executed this many cycles, 0 for no limit
}

func New(c *cpu.CPU, surface Closer, frequency int, logger *log.Logger) (*Loop, error) {
	if frequency <= 0 {
		return nil, ErrInvalidFrequency
	}
	return &Loop{
		cpu:       c,
		surface:   surface,
		frequency: frequency,
		logger:    logger,
	}, nil
}

func (l *Loop) Frequency() int {
	return l.frequency
}

// SetCycleLimit makes Run return once the interpreter has executed n
// instructions in total. Zero removes the limit.
func (l *Loop) SetCycleLimit(n uint64) {
	l.limit = n
}

// CycleInterval is the sleep between two instructions.
func (l *Loop) CycleInterval() time.Duration {
	return time.Second / time.Duration(l.frequency)
}

// Tick runs one instruction, decrementing the timers first if at least
// 1/60 s has passed since they were last decremented. The timers advance at
// most once per call.
func (l *Loop) Tick(now time.Time) error {
	const period = time.Second / TimerFrequency

	if l.lastTimer.IsZero() {
		l.lastTimer = now
	}
	if now.Sub(l.lastTimer) >= period {
		l.cpu.TickTimers()
		l.lastTimer = l.lastTimer.Add(period)
		if now.Sub(l.lastTimer) >= period {
			// too far behind to catch up one tick at a time
			l.lastTimer = now
		}
	}
	return l.cpu.Step()
}

// Frame runs one 60 Hz frame worth of instructions followed by a single
// timer tick. Frontends that are already driven at 60 Hz use it instead of
// Tick. Frequencies that are not a multiple of 60 are spread across frames.
func (l *Loop) Frame() error {
	total := l.frequency + l.carry
	cycles := total / TimerFrequency
	l.carry = total % TimerFrequency

	for i := 0; i < cycles; i++ {
		if err := l.cpu.Step(); err != nil {
			return err
		}
	}
	l.cpu.TickTimers()
	return nil
}

// Run executes instructions at the configured frequency until ctx is
// cancelled, the surface is closed, the cycle limit is reached or an
// instruction fails. Only the failure is returned as an error.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.CycleInterval())
	defer ticker.Stop()

	mode := "modern"
	if l.cpu.Legacy {
		mode = "legacy"
	}
	l.logger.Info("Starting interpreter loop", log.Int("frequency", l.frequency), log.String("mode", mode))

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Interpreter loop cancelled")
			return nil
		case now := <-ticker.C:
			if l.surface != nil && l.surface.Closed() {
				l.logger.Info("Display closed, stopping interpreter loop")
				return nil
			}
			if err := l.Tick(now); err != nil {
				l.logger.Error("Execution failed", log.Err(err))
				return err
			}
			if l.limit > 0 && l.cpu.Cycles >= l.limit {
				l.logger.Debug("Cycle limit reached", log.Int("cycles", int(l.cpu.Cycles)))
				return nil
			}
		}
	}
}
