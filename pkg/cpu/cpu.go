package cpu

import (
	"math/rand"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/memory"
)

// Surface is the framebuffer and keypad the interpreter draws to and polls.
// display.Screen implements it.
type Surface interface {
	Clear()
	Pixel(x, y byte) (bool, error)
	SetPixel(x, y byte, on bool) error
	Present()
	KeyState(key byte) (bool, error)
	AnyKeyPressed() bool
	PressedKey() (byte, error)
}

// CPU executes CHIP-8 instructions against a Memory and a Surface.
type CPU struct {
	Mem    *memory.Memory
	Screen Surface

	// Legacy selects the original COSMAC VIP behavior for the shift,
	// jump-with-offset and register block instructions.
	Legacy bool

	// Cycles counts instructions executed, including failed ones.
	Cycles uint64

	rng    *rand.Rand
	tracer *log.Logger
}

type Option func(*CPU)

func WithLegacy(legacy bool) Option {
	return func(c *CPU) {
		c.Legacy = legacy
	}
}

// WithRand sets the random source used by CXNN. Tests pass a seeded source
// to get reproducible results.
func WithRand(rng *rand.Rand) Option {
	return func(c *CPU) {
		c.rng = rng
	}
}

// WithTracer logs every executed instruction at debug level.
func WithTracer(logger *log.Logger) Option {
	return func(c *CPU) {
		c.tracer = logger
	}
}

func New(mem *memory.Memory, screen Surface, opts ...Option) *CPU {
	c := &CPU{
		Mem:    mem,
		Screen: screen,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Step runs one fetch-decode-execute cycle. The program counter is advanced
// past the instruction before it executes, so jumps and skips act on the
// already advanced value.
func (c *CPU) Step() error {
	pc := c.Mem.PC()
	hi, lo := c.Mem.FetchInstruction()
	c.Mem.IncrementPC()
	opcode := uint16(hi)<<8 | uint16(lo)

	c.Cycles++
	if c.tracer != nil {
		c.tracer.Debug("Executing instruction",
			log.Hex("pc", pc),
			log.Hex("opcode", opcode),
			log.String("instruction", Mnemonic(opcode)))
	}

	if err := c.execute(Decode(opcode), c.Legacy); err != nil {
		return &OpcodeError{Opcode: opcode, PC: pc, Err: err}
	}
	return nil
}

// Execute runs a single opcode against the current state without fetching
// it from memory. The program counter is only touched by the instruction
// itself.
func (c *CPU) Execute(opcode uint16) error {
	if err := c.execute(Decode(opcode), c.Legacy); err != nil {
		return &OpcodeError{Opcode: opcode, PC: c.Mem.PC(), Err: err}
	}
	return nil
}

// Run executes up to n cycles, stopping at the first error.
func (c *CPU) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// TickTimers decrements the delay and sound timers by one, stopping at zero.
// It is meant to be called at 60 Hz independent of the instruction rate.
func (c *CPU) TickTimers() {
	c.Mem.DecrementDelay()
	c.Mem.DecrementSound()
}

func (c *CPU) execute(ins Instruction, legacy bool) error {
	switch ins.Kind {
	case 0x0:
		return c.system(ins)
	case 0x1:
		c.Mem.JumpPC(ins.NNN)
		return nil
	case 0x2:
		c.Mem.PushStack(c.Mem.PC())
		c.Mem.JumpPC(ins.NNN)
		return nil
	case 0x3:
		return c.skipIfImmediate(ins, true)
	case 0x4:
		return c.skipIfImmediate(ins, false)
	case 0x5:
		return c.skipIfRegisters(ins, true)
	case 0x6:
		return c.Mem.SetVarRegister(ins.X, ins.NN)
	case 0x7:
		return c.addImmediate(ins)
	case 0x8:
		return c.arithmetic(ins, legacy)
	case 0x9:
		return c.skipIfRegisters(ins, false)
	case 0xA:
		c.Mem.SetIndexRegister(ins.NNN)
		return nil
	case 0xB:
		return c.jumpWithOffset(ins, legacy)
	case 0xC:
		return c.Mem.SetVarRegister(ins.X, byte(c.rng.Intn(256))&ins.NN)
	case 0xD:
		return c.draw(ins)
	case 0xE:
		return c.skipIfKey(ins)
	case 0xF:
		return c.misc(ins, legacy)
	}
	return ErrInvalidOpcode
}
