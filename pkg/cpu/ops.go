package cpu

import (
	"gochip8/pkg/display"
	"gochip8/pkg/memory"
)

const spriteWidth = 8

// system handles the 0x0 family: 00E0 and 00EE. Machine code calls (0NNN)
// are not supported.
func (c *CPU) system(ins Instruction) error {
	switch ins.Opcode {
	case 0x00E0:
		c.Screen.Clear()
		return nil
	case 0x00EE:
		addr, err := c.Mem.PopStack()
		if err != nil {
			return err
		}
		c.Mem.JumpPC(addr)
		return nil
	}
	return ErrInvalidOpcode
}

func (c *CPU) skipIfImmediate(ins Instruction, equal bool) error {
	vx, err := c.Mem.VarRegister(ins.X)
	if err != nil {
		return err
	}
	if (vx == ins.NN) == equal {
		c.Mem.IncrementPC()
	}
	return nil
}

func (c *CPU) skipIfRegisters(ins Instruction, equal bool) error {
	vx, vy, err := c.pair(ins)
	if err != nil {
		return err
	}
	if (vx == vy) == equal {
		c.Mem.IncrementPC()
	}
	return nil
}

// addImmediate wraps modulo 256 and never touches VF.
func (c *CPU) addImmediate(ins Instruction) error {
	vx, err := c.Mem.VarRegister(ins.X)
	if err != nil {
		return err
	}
	return c.Mem.SetVarRegister(ins.X, vx+ins.NN)
}

// arithmetic handles the 0x8 family. VF is written before the result
// register, so with X=F the result overwrites the flag.
func (c *CPU) arithmetic(ins Instruction, legacy bool) error {
	vx, vy, err := c.pair(ins)
	if err != nil {
		return err
	}

	switch ins.N {
	case 0x0:
		return c.Mem.SetVarRegister(ins.X, vy)
	case 0x1:
		return c.Mem.SetVarRegister(ins.X, vx|vy)
	case 0x2:
		return c.Mem.SetVarRegister(ins.X, vx&vy)
	case 0x3:
		return c.Mem.SetVarRegister(ins.X, vx^vy)
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		return c.setWithFlag(ins.X, byte(sum), sum > 0xFF)
	case 0x5:
		return c.setWithFlag(ins.X, vx-vy, vx > vy)
	case 0x6:
		if legacy {
			vx = vy
		}
		return c.setWithFlag(ins.X, vx>>1, vx&0x01 != 0)
	case 0x7:
		return c.setWithFlag(ins.X, vy-vx, vy > vx)
	case 0xE:
		if legacy {
			vx = vy
		}
		if err := c.Mem.SetVarRegister(memory.FlagRegister, vx&0x80); err != nil {
			return err
		}
		return c.Mem.SetVarRegister(ins.X, vx<<1)
	}
	return ErrInvalidOpcode
}

func (c *CPU) setWithFlag(x, value byte, flag bool) error {
	var f byte
	if flag {
		f = 1
	}
	if err := c.Mem.SetVarRegister(memory.FlagRegister, f); err != nil {
		return err
	}
	return c.Mem.SetVarRegister(x, value)
}

// jumpWithOffset is BNNN. The original interpreter always offsets by V0;
// later ones read the offset register from the X nibble.
func (c *CPU) jumpWithOffset(ins Instruction, legacy bool) error {
	reg := ins.X
	if legacy {
		reg = 0
	}
	offset, err := c.Mem.VarRegister(reg)
	if err != nil {
		return err
	}
	c.Mem.JumpPC(ins.NNN + uint16(offset))
	return nil
}

// draw XORs an N-row sprite from I onto the screen at (VX, VY). The start
// position wraps; the sprite itself is clipped at the right and bottom edges.
func (c *CPU) draw(ins Instruction) error {
	vx, vy, err := c.pair(ins)
	if err != nil {
		return err
	}
	startX := vx % display.Width
	startY := vy % display.Height
	index := c.Mem.IndexRegister()

	var collision bool
	for row := byte(0); row < ins.N; row++ {
		bits := c.Mem.ReadRAMCell(index + uint16(row))
		y := startY + row
		for col := byte(0); col < spriteWidth; col++ {
			x := startX + col
			if bits&(0x80>>col) != 0 {
				lit, err := c.Screen.Pixel(x, y)
				if err != nil {
					return err
				}
				if lit {
					collision = true
				}
				if err := c.Screen.SetPixel(x, y, !lit); err != nil {
					return err
				}
			}
			if x >= display.Width-1 {
				break
			}
		}
		if y >= display.Height-1 {
			break
		}
	}

	var flag byte
	if collision {
		flag = 1
	}
	if err := c.Mem.SetVarRegister(memory.FlagRegister, flag); err != nil {
		return err
	}
	c.Screen.Present()
	return nil
}

func (c *CPU) skipIfKey(ins Instruction) error {
	var wantDown bool
	switch ins.NN {
	case 0x9E:
		wantDown = true
	case 0xA1:
		wantDown = false
	default:
		return ErrInvalidOpcode
	}

	key, err := c.Mem.VarRegister(ins.X)
	if err != nil {
		return err
	}
	down, err := c.Screen.KeyState(key)
	if err != nil {
		return err
	}
	if down == wantDown {
		c.Mem.IncrementPC()
	}
	return nil
}

// misc handles the 0xF family: timers, index arithmetic, key wait, font,
// BCD and register block transfers.
func (c *CPU) misc(ins Instruction, legacy bool) error {
	vx, err := c.Mem.VarRegister(ins.X)
	if err != nil {
		return err
	}

	switch ins.NN {
	case 0x07:
		return c.Mem.SetVarRegister(ins.X, c.Mem.DelayRegister())
	case 0x15:
		c.Mem.SetDelayRegister(vx)
	case 0x18:
		c.Mem.SetSoundRegister(vx)
	case 0x1E:
		sum := uint32(c.Mem.IndexRegister()) + uint32(vx)
		c.Mem.SetIndexRegister(uint16(sum))
		if sum > 0x0FFF {
			return c.Mem.SetVarRegister(memory.FlagRegister, 1)
		}
	case 0x0A:
		return c.waitForKey(ins)
	case 0x29:
		c.Mem.SetIndexRegister(memory.FontAddress(vx))
	case 0x33:
		c.Mem.WriteRAM(c.Mem.IndexRegister(), []byte{vx / 100, vx / 10 % 10, vx % 10})
	case 0x55:
		regs := c.Mem.Registers()
		c.Mem.WriteRAM(c.Mem.IndexRegister(), regs[:ins.X+1])
		if legacy {
			c.Mem.SetIndexRegister(c.Mem.IndexRegister() + uint16(ins.X) + 1)
		}
	case 0x65:
		index := c.Mem.IndexRegister()
		for i := byte(0); i <= ins.X; i++ {
			if err := c.Mem.SetVarRegister(i, c.Mem.ReadRAMCell(index+uint16(i))); err != nil {
				return err
			}
		}
		if legacy {
			c.Mem.SetIndexRegister(index + uint16(ins.X) + 1)
		}
	default:
		return ErrInvalidOpcode
	}
	return nil
}

// waitForKey blocks by re-executing itself every cycle until a key is down.
// Timers keep running while it waits.
func (c *CPU) waitForKey(ins Instruction) error {
	if !c.Screen.AnyKeyPressed() {
		c.Mem.DecrementPC()
		return nil
	}
	key, err := c.Screen.PressedKey()
	if err != nil {
		return err
	}
	return c.Mem.SetVarRegister(ins.X, key)
}

func (c *CPU) pair(ins Instruction) (byte, byte, error) {
	vx, err := c.Mem.VarRegister(ins.X)
	if err != nil {
		return 0, 0, err
	}
	vy, err := c.Mem.VarRegister(ins.Y)
	if err != nil {
		return 0, 0, err
	}
	return vx, vy, nil
}
