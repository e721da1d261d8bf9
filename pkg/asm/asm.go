// Package asm is a two-pass assembler for CHIP-8 programs. Mnemonics follow
// the conventional names (CLS, LD, DRW, ...); the output image is meant to
// be loaded at the program start address.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"

	"gochip8/pkg/memory"
)

const endOfMemory = memory.RAMSize

type encoder func(a *Assembler, ops []string, lineNo int) (uint16, error)

var instructions = map[string]encoder{
	mnemonic(chip8.Cls):  fixed(0x00E0),
	mnemonic(chip8.Ret):  fixed(0x00EE),
	mnemonic(chip8.Jp):   encodeJump,
	mnemonic(chip8.Call): encodeCall,
	mnemonic(chip8.Se):   skipEncoder(0x3000, 0x5000),
	mnemonic(chip8.Sne):  skipEncoder(0x4000, 0x9000),
	mnemonic(chip8.Ld):   encodeLoad,
	mnemonic(chip8.Add):  encodeAdd,
	mnemonic(chip8.Or):   aluEncoder(0x1),
	mnemonic(chip8.And):  aluEncoder(0x2),
	mnemonic(chip8.Xor):  aluEncoder(0x3),
	mnemonic(chip8.Sub):  aluEncoder(0x5),
	mnemonic(chip8.Shr):  shiftEncoder(0x6),
	mnemonic(chip8.Subn): aluEncoder(0x7),
	mnemonic(chip8.Shl):  shiftEncoder(0xE),
	mnemonic(chip8.Rnd):  encodeRandom,
	mnemonic(chip8.Drw):  encodeDraw,
	mnemonic(chip8.Skp):  keyEncoder(0x9E),
	mnemonic(chip8.Sknp): keyEncoder(0xA1),
}

func mnemonic(ins *chip8.Instruction) string {
	return strings.ToUpper(ins.Name)
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble translates code into a program image and a map from absolute
// address to source line.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// Labels returns the resolved label addresses, keyed by upper case name.
func (a *Assembler) Labels() map[string]uint16 {
	return a.labels
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(memory.ProgramStart)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address >= endOfMemory {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		if p.mnemonic == ".ORG" {
			target, err := parseOrigin(p.operands, lineNo, address)
			if err != nil {
				return err
			}
			address = target
			continue
		}

		length, ok := lineLength(p)
		if !ok {
			return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
		}
		if address+length > endOfMemory {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)
	addressOf := func() uint16 {
		return memory.ProgramStart + uint16(len(program))
	}

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		mnemonic := p.mnemonic
		ops := p.operands

		if mnemonic == ".ORG" {
			target, err := parseOrigin(ops, lineNo, uint32(addressOf()))
			if err != nil {
				return nil, nil, err
			}
			program = append(program, make([]byte, target-uint32(addressOf()))...)
			continue
		}

		sourceMap[addressOf()] = lineNo

		switch mnemonic {
		case ".BYTE":
			if len(ops) == 0 {
				return nil, nil, fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			for _, op := range ops {
				val, err := a.parseValue(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue

		case ".WORD":
			if len(ops) == 0 {
				return nil, nil, fmt.Errorf(".WORD expects at least one operand on line %d", lineNo)
			}
			for _, op := range ops {
				val, err := a.parseValue(op, 0xFFFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val>>8), byte(val))
			}
			continue
		}

		encode, ok := instructions[mnemonic]
		if !ok {
			return nil, nil, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
		}
		opcode, err := encode(a, ops, lineNo)
		if err != nil {
			return nil, nil, err
		}
		program = append(program, byte(opcode>>8), byte(opcode))
	}

	return program, sourceMap, nil
}

func parseOrigin(ops []string, lineNo int, current uint32) (uint32, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := parseNumber(ops[0])
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, ops[0])
	}
	if target >= endOfMemory {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, ops[0])
	}
	if uint32(target) < current {
		return 0, fmt.Errorf("cannot move origin backward on line %d", lineNo)
	}
	return uint32(target), nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}
	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

// lineLength returns the number of bytes a line emits.
// Every instruction is 2 bytes.
func lineLength(p parsedLine) (uint32, bool) {
	switch p.mnemonic {
	case ".BYTE":
		return uint32(len(p.operands)), true
	case ".WORD":
		return uint32(2 * len(p.operands)), true
	}
	if _, ok := instructions[p.mnemonic]; ok {
		return 2, true
	}
	return 0, false
}

// parseRegister accepts V0-VF in either case.
func parseRegister(token string) (uint16, bool) {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return 0, false
	}
	n, err := strconv.ParseUint(token[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

func mustRegister(token string, lineNo int) (uint16, error) {
	reg, ok := parseRegister(token)
	if !ok {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	return reg, nil
}

// parseNumber accepts Go integer literals (0x1F, 0b1010, 42) and $-prefixed
// hex.
func parseNumber(token string) (uint64, error) {
	if strings.HasPrefix(token, "$") {
		return strconv.ParseUint(token[1:], 16, 32)
	}
	return strconv.ParseUint(token, 0, 32)
}

// parseValue resolves a number or label and checks it against limit.
func (a *Assembler) parseValue(token string, limit uint16, lineNo int) (uint16, error) {
	if value, err := parseNumber(token); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("value out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if addr > limit {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid value '%s' on line %d", token, lineNo)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
