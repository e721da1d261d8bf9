package memory

import (
	"errors"
	"fmt"
)

const (
	// RAMSize is the addressable memory of the machine (12-bit address space).
	RAMSize = 4096
	// RegisterCount is the number of variable registers V0-VF.
	RegisterCount = 16
	// FlagRegister is VF, overwritten by carry, borrow, shift and collision results.
	FlagRegister = 0xF

	// ProgramStart is where ROMs are loaded and where the program counter starts.
	ProgramStart uint16 = 0x200
	// FontStart is the address of the first built-in hex digit sprite.
	FontStart uint16 = 0x050
	// FontGlyphSize is the number of bytes (rows) in one font sprite.
	FontGlyphSize = 5

	addressMask = RAMSize - 1
)

var (
	ErrOutOfRangeRegister = errors.New("variable register id out of range, must be 0x0-0xF")
	ErrEmptyStack         = errors.New("return with empty call stack")
)

// font holds the sixteen 4x5 hex digit sprites, 0 through F.
var font = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the complete register and RAM state of one machine.
// It has no behavior beyond accessors; the interpreter drives it.
type Memory struct {
	ram       [RAMSize]byte
	registers [RegisterCount]byte
	stack     []uint16

	index uint16
	pc    uint16

	delay byte
	sound byte
}

// New returns a Memory with the font seeded at FontStart and the program
// counter at ProgramStart.
func New() *Memory {
	m := &Memory{
		pc: ProgramStart,
	}
	copy(m.ram[FontStart:], font[:])
	return m
}

// FontAddress returns the address of the sprite for the low nibble of digit.
func FontAddress(digit byte) uint16 {
	return FontStart + FontGlyphSize*uint16(digit&0x0F)
}

func (m *Memory) SetVarRegister(id byte, value byte) error {
	if id > 0xF {
		return fmt.Errorf("%w: id %d", ErrOutOfRangeRegister, id)
	}
	m.registers[id] = value
	return nil
}

func (m *Memory) VarRegister(id byte) (byte, error) {
	if id > 0xF {
		return 0, fmt.Errorf("%w: id %d", ErrOutOfRangeRegister, id)
	}
	return m.registers[id], nil
}

// Registers returns a copy of V0-VF.
func (m *Memory) Registers() [RegisterCount]byte {
	return m.registers
}

func (m *Memory) SetIndexRegister(addr uint16) {
	m.index = addr
}

func (m *Memory) IndexRegister() uint16 {
	return m.index
}

func (m *Memory) PC() uint16 {
	return m.pc
}

func (m *Memory) JumpPC(addr uint16) {
	m.pc = addr
}

func (m *Memory) IncrementPC() {
	m.pc += 2
}

// DecrementPC rewinds the program counter by one instruction so the
// instruction just fetched is executed again on the next cycle.
func (m *Memory) DecrementPC() {
	m.pc -= 2
}

func (m *Memory) PushStack(addr uint16) {
	m.stack = append(m.stack, addr)
}

func (m *Memory) PopStack() (uint16, error) {
	if len(m.stack) == 0 {
		return 0, ErrEmptyStack
	}
	addr := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return addr, nil
}

// StackDepth returns the number of return addresses currently pushed.
func (m *Memory) StackDepth() int {
	return len(m.stack)
}

// FetchInstruction returns the two bytes at the program counter. It does not
// advance the counter.
func (m *Memory) FetchInstruction() (byte, byte) {
	return m.ram[m.pc&addressMask], m.ram[(m.pc+1)&addressMask]
}

// WriteRAM copies data into RAM starting at addr. Addresses are taken modulo
// RAMSize; bytes that would land past the end of RAM are dropped.
func (m *Memory) WriteRAM(addr uint16, data []byte) {
	copy(m.ram[addr&addressMask:], data)
}

func (m *Memory) ReadRAMCell(addr uint16) byte {
	return m.ram[addr&addressMask]
}

func (m *Memory) DecrementDelay() {
	if m.delay != 0 {
		m.delay--
	}
}

func (m *Memory) DecrementSound() {
	if m.sound != 0 {
		m.sound--
	}
}

func (m *Memory) DelayRegister() byte {
	return m.delay
}

func (m *Memory) SetDelayRegister(v byte) {
	m.delay = v
}

func (m *Memory) SoundRegister() byte {
	return m.sound
}

func (m *Memory) SetSoundRegister(v byte) {
	m.sound = v
}

// SoundActive reports whether the sound timer is still counting down.
func (m *Memory) SoundActive() bool {
	return m.sound > 0
}
