package cpu

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is a decoded 16-bit opcode. Every field is always populated;
// each handler reads only the ones its family uses.
type Instruction struct {
	Opcode uint16
	Kind   byte   // top nibble, selects the instruction family
	X      byte   // second nibble, a register index
	Y      byte   // third nibble, a register index
	N      byte   // lowest nibble
	NN     byte   // lowest byte
	NNN    uint16 // lowest 12 bits, an address
}

func Decode(opcode uint16) Instruction {
	return Instruction{
		Opcode: opcode,
		Kind:   byte(opcode >> 12),
		X:      byte(opcode>>8) & 0x0F,
		Y:      byte(opcode>>4) & 0x0F,
		N:      byte(opcode) & 0x0F,
		NN:     byte(opcode),
		NNN:    opcode & 0x0FFF,
	}
}

// Mnemonic returns the assembler name of opcode, or "???" if it is not a
// known CHIP-8 instruction.
func Mnemonic(opcode uint16) string {
	for _, op := range chip8.Opcodes[int(opcode>>12)] {
		if op.Info.Mask&opcode == op.Info.Value && op.Instruction != nil {
			return op.Instruction.Name
		}
	}
	return "???"
}
