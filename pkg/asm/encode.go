package asm

import (
	"fmt"
	"strings"
)

func expectOperands(ops []string, lo, hi int, lineNo int) error {
	if len(ops) < lo || len(ops) > hi {
		if lo == hi {
			return fmt.Errorf("expected %d operands on line %d, got %d", lo, lineNo, len(ops))
		}
		return fmt.Errorf("expected %d to %d operands on line %d, got %d", lo, hi, lineNo, len(ops))
	}
	return nil
}

func fixed(opcode uint16) encoder {
	return func(_ *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands(ops, 0, 0, lineNo); err != nil {
			return 0, err
		}
		return opcode, nil
	}
}

// encodeJump handles "JP addr" and "JP V0, addr".
func encodeJump(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands(ops, 1, 2, lineNo); err != nil {
		return 0, err
	}
	if len(ops) == 1 {
		addr, err := a.parseValue(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0x1000 | addr, nil
	}

	if reg, ok := parseRegister(ops[0]); !ok || reg != 0 {
		return 0, fmt.Errorf("jump offset register must be V0 on line %d", lineNo)
	}
	addr, err := a.parseValue(ops[1], 0xFFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0xB000 | addr, nil
}

func encodeCall(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands(ops, 1, 1, lineNo); err != nil {
		return 0, err
	}
	addr, err := a.parseValue(ops[0], 0xFFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0x2000 | addr, nil
}

// skipEncoder builds SE and SNE, which compare against a byte or a register.
func skipEncoder(immediate, register uint16) encoder {
	return func(a *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands(ops, 2, 2, lineNo); err != nil {
			return 0, err
		}
		x, err := mustRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		if y, ok := parseRegister(ops[1]); ok {
			return register | x<<8 | y<<4, nil
		}
		nn, err := a.parseValue(ops[1], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		return immediate | x<<8 | nn, nil
	}
}

// encodeLoad covers every LD form:
//
//	LD Vx, byte    LD Vx, Vy    LD I, addr
//	LD Vx, DT      LD Vx, K     LD DT, Vx    LD ST, Vx
//	LD F, Vx       LD B, Vx     LD [I], Vx   LD Vx, [I]
func encodeLoad(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands(ops, 2, 2, lineNo); err != nil {
		return 0, err
	}
	dst, src := strings.ToUpper(ops[0]), strings.ToUpper(ops[1])

	switch dst {
	case "I":
		addr, err := a.parseValue(ops[1], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0xA000 | addr, nil
	case "DT", "ST", "F", "B", "[I]":
		x, err := mustRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		low := map[string]uint16{"DT": 0x15, "ST": 0x18, "F": 0x29, "B": 0x33, "[I]": 0x55}[dst]
		return 0xF000 | x<<8 | low, nil
	}

	x, err := mustRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	switch src {
	case "DT":
		return 0xF007 | x<<8, nil
	case "K":
		return 0xF00A | x<<8, nil
	case "[I]":
		return 0xF065 | x<<8, nil
	}
	if y, ok := parseRegister(ops[1]); ok {
		return 0x8000 | x<<8 | y<<4, nil
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0x6000 | x<<8 | nn, nil
}

// encodeAdd covers "ADD Vx, byte", "ADD Vx, Vy" and "ADD I, Vx".
func encodeAdd(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands(ops, 2, 2, lineNo); err != nil {
		return 0, err
	}
	if strings.EqualFold(ops[0], "I") {
		x, err := mustRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return 0xF01E | x<<8, nil
	}

	x, err := mustRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	if y, ok := parseRegister(ops[1]); ok {
		return 0x8004 | x<<8 | y<<4, nil
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0x7000 | x<<8 | nn, nil
}

func aluEncoder(n uint16) encoder {
	return func(_ *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands(ops, 2, 2, lineNo); err != nil {
			return 0, err
		}
		x, err := mustRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		y, err := mustRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return 0x8000 | x<<8 | y<<4 | n, nil
	}
}

// shiftEncoder builds SHR and SHL. The source register is optional and
// defaults to the target, which behaves the same in legacy and modern mode.
func shiftEncoder(n uint16) encoder {
	return func(_ *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands(ops, 1, 2, lineNo); err != nil {
			return 0, err
		}
		x, err := mustRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		y := x
		if len(ops) == 2 {
			if y, err = mustRegister(ops[1], lineNo); err != nil {
				return 0, err
			}
		}
		return 0x8000 | x<<8 | y<<4 | n, nil
	}
}

func encodeRandom(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands(ops, 2, 2, lineNo); err != nil {
		return 0, err
	}
	x, err := mustRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0xC000 | x<<8 | nn, nil
}

func encodeDraw(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands(ops, 3, 3, lineNo); err != nil {
		return 0, err
	}
	x, err := mustRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	y, err := mustRegister(ops[1], lineNo)
	if err != nil {
		return 0, err
	}
	n, err := a.parseValue(ops[2], 0xF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0xD000 | x<<8 | y<<4 | n, nil
}

func keyEncoder(low uint16) encoder {
	return func(_ *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands(ops, 1, 1, lineNo); err != nil {
			return 0, err
		}
		x, err := mustRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		return 0xE000 | x<<8 | low, nil
	}
}
