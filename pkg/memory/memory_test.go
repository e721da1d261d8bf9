package memory

import (
	"errors"
	"testing"
)

func TestNewSeedsFontAndPC(t *testing.T) {
	m := New()

	if m.PC() != ProgramStart {
		t.Errorf("PC: expected 0x%04X, got 0x%04X", ProgramStart, m.PC())
	}
	for i, b := range font {
		if got := m.ReadRAMCell(FontStart + uint16(i)); got != b {
			t.Fatalf("font byte %d: expected 0x%02X, got 0x%02X", i, b, got)
		}
	}
	if got := m.ReadRAMCell(FontStart - 1); got != 0 {
		t.Errorf("byte before font: expected 0, got 0x%02X", got)
	}
	if got := m.ReadRAMCell(FontStart + uint16(len(font))); got != 0 {
		t.Errorf("byte after font: expected 0, got 0x%02X", got)
	}
}

func TestFontAddress(t *testing.T) {
	tests := []struct {
		digit byte
		want  uint16
	}{
		{0x0, 0x050},
		{0x1, 0x055},
		{0xA, 0x082},
		{0xF, 0x09B},
		{0x3A, 0x082}, // only the low nibble selects the glyph
	}
	for _, tc := range tests {
		if got := FontAddress(tc.digit); got != tc.want {
			t.Errorf("FontAddress(0x%X) = 0x%04X; want 0x%04X", tc.digit, got, tc.want)
		}
	}
}

func TestVarRegisters(t *testing.T) {
	m := New()
	for id := byte(0); id <= 0xF; id++ {
		if err := m.SetVarRegister(id, id*3+1); err != nil {
			t.Fatalf("SetVarRegister(%d): unexpected error %v", id, err)
		}
	}
	for id := byte(0); id <= 0xF; id++ {
		got, err := m.VarRegister(id)
		if err != nil {
			t.Fatalf("VarRegister(%d): unexpected error %v", id, err)
		}
		if got != id*3+1 {
			t.Errorf("V%X: expected %d, got %d", id, id*3+1, got)
		}
	}

	if err := m.SetVarRegister(0x10, 1); !errors.Is(err, ErrOutOfRangeRegister) {
		t.Errorf("SetVarRegister(0x10): expected ErrOutOfRangeRegister, got %v", err)
	}
	if _, err := m.VarRegister(0xFF); !errors.Is(err, ErrOutOfRangeRegister) {
		t.Errorf("VarRegister(0xFF): expected ErrOutOfRangeRegister, got %v", err)
	}
}

func TestProgramCounter(t *testing.T) {
	m := New()
	m.IncrementPC()
	if m.PC() != 0x202 {
		t.Errorf("IncrementPC: expected 0x202, got 0x%04X", m.PC())
	}
	m.DecrementPC()
	if m.PC() != 0x200 {
		t.Errorf("DecrementPC: expected 0x200, got 0x%04X", m.PC())
	}
	m.JumpPC(0x3AE)
	if m.PC() != 0x3AE {
		t.Errorf("JumpPC: expected 0x3AE, got 0x%04X", m.PC())
	}
}

func TestStackRoundTrip(t *testing.T) {
	m := New()
	for _, addr := range []uint16{0x300, 0x310, 0x320} {
		m.PushStack(addr)
	}
	if m.StackDepth() != 3 {
		t.Errorf("StackDepth: expected 3, got %d", m.StackDepth())
	}

	for _, want := range []uint16{0x320, 0x310, 0x300} {
		got, err := m.PopStack()
		if err != nil {
			t.Fatalf("PopStack: unexpected error %v", err)
		}
		if got != want {
			t.Errorf("PopStack: expected 0x%04X, got 0x%04X", want, got)
		}
	}

	if _, err := m.PopStack(); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("fourth PopStack: expected ErrEmptyStack, got %v", err)
	}
}

func TestStackIsUnbounded(t *testing.T) {
	m := New()
	for i := 0; i < 64; i++ {
		m.PushStack(uint16(i))
	}
	if m.StackDepth() != 64 {
		t.Errorf("StackDepth: expected 64, got %d", m.StackDepth())
	}
}

func TestFetchInstruction(t *testing.T) {
	m := New()
	m.WriteRAM(ProgramStart, []byte{0xA2, 0x2A})

	hi, lo := m.FetchInstruction()
	if hi != 0xA2 || lo != 0x2A {
		t.Errorf("FetchInstruction: expected (0xA2, 0x2A), got (0x%02X, 0x%02X)", hi, lo)
	}
	if m.PC() != ProgramStart {
		t.Errorf("FetchInstruction must not advance PC, got 0x%04X", m.PC())
	}
}

func TestRAMWrapsAt12Bits(t *testing.T) {
	m := New()
	m.WriteRAM(0x1FFE, []byte{0xAB})
	if got := m.ReadRAMCell(0x0FFE); got != 0xAB {
		t.Errorf("ReadRAMCell(0x0FFE): expected 0xAB, got 0x%02X", got)
	}
	if got := m.ReadRAMCell(0x1FFE); got != 0xAB {
		t.Errorf("ReadRAMCell(0x1FFE): expected 0xAB, got 0x%02X", got)
	}

	// a bulk write running off the end is truncated, not wrapped
	m.WriteRAM(0x0FFF, []byte{1, 2, 3})
	if got := m.ReadRAMCell(0x0FFF); got != 1 {
		t.Errorf("ReadRAMCell(0x0FFF): expected 1, got %d", got)
	}
	if got := m.ReadRAMCell(0x0000); got != 0 {
		t.Errorf("ReadRAMCell(0x0000): expected 0, got %d", got)
	}
}

func TestTimersSaturate(t *testing.T) {
	m := New()
	m.SetDelayRegister(2)
	m.SetSoundRegister(1)
	if !m.SoundActive() {
		t.Error("SoundActive: expected true")
	}

	for i := 0; i < 5; i++ {
		m.DecrementDelay()
		m.DecrementSound()
	}

	if m.DelayRegister() != 0 {
		t.Errorf("delay: expected 0, got %d", m.DelayRegister())
	}
	if m.SoundRegister() != 0 {
		t.Errorf("sound: expected 0, got %d", m.SoundRegister())
	}
	if m.SoundActive() {
		t.Error("SoundActive: expected false")
	}
}
