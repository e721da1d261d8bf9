package harness

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/asm"
	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
	"gochip8/pkg/driver"
	"gochip8/pkg/memory"
	"gochip8/pkg/rom"
)

func newHarness(t *testing.T, source string) *Harness {
	t.Helper()
	program, _, err := asm.Assemble(source)
	assert.NoError(t, err)

	mem := memory.New()
	assert.NoError(t, rom.Load(mem, program))
	screen := display.New()
	c := cpu.New(mem, screen, cpu.WithRand(rand.New(rand.NewSource(1))))
	logger := log.NewTestLogger(t)
	loop, err := driver.New(c, screen, driver.DefaultFrequency, logger)
	assert.NoError(t, err)

	h := New(c, screen, loop, logger)
	t.Cleanup(h.Close)
	return h
}

const keyEcho = `
    LD  V0, K      ; wait for a key
    LD  F, V0
    DRW V1, V2, 5
    LD  V3, 60
    LD  DT, V3
halt:
    JP  halt
`

func TestRunAndInspect(t *testing.T) {
	h := newHarness(t, keyEcho)

	err := h.RunString(`
		run(3)
		expect(pc() == 0x200, "waiting for key")
		press(0xA)
		run(5)
		release(0xA)
		expect(reg(0) == 10, "V0 holds the pressed key")
		expect(index() == 0x82, "I points at glyph A")
		expect(pixel(0, 0), "glyph drawn at origin")
		expect(not pixel(4, 0), "glyph is four pixels wide")
		expect(delay() == 60, "delay timer loaded")
		expect(sound() == 0, "sound timer idle")
		expect(mem(0x200) == 0xF0, "rom loaded")
		tick()
		expect(delay() == 59, "tick decrements delay")
	`)
	assert.NoError(t, err)
	assert.Empty(t, h.Failures())
}

func TestFrameRunsTimers(t *testing.T) {
	h := newHarness(t, keyEcho)

	err := h.RunString(`
		press(1)
		frame()
		release(1)
		expect(delay() == 59, "one frame ticks the timer once")
		frame(9)
		expect(delay() == 50, "ten frames tick ten times")
	`)
	assert.NoError(t, err)
}

func TestExpectationFailure(t *testing.T) {
	h := newHarness(t, keyEcho)

	err := h.RunString(`
		expect(false, "first")
		expect(true, "second")
		expect(1 == 2, "third")
	`)
	assert.True(t, errors.Is(err, ErrExpectation))
	assert.Len(t, h.Failures(), 2)
	assert.Contains(t, h.Failures()[0], "first")
	assert.Contains(t, h.Failures()[1], "third")
}

func TestInterpreterErrorAbortsScript(t *testing.T) {
	h := newHarness(t, "RET")

	err := h.RunString(`
		run(1)
		expect(false, "not reached")
	`)
	assert.True(t, errors.Is(err, ErrScript))
	assert.ErrorContains(t, err, memory.ErrEmptyStack.Error())
	assert.Empty(t, h.Failures())
}

func TestInvalidKeyRaises(t *testing.T) {
	h := newHarness(t, keyEcho)
	err := h.RunString(`press(16)`)
	assert.True(t, errors.Is(err, ErrScript))
	assert.ErrorContains(t, err, "key id out of range")
}

func TestScreenText(t *testing.T) {
	h := newHarness(t, "CLS\nLD I, 0x50\nDRW V0, V0, 1\nhalt: JP halt")

	err := h.RunString(`
		run(3)
		local s = screen()
		expect(string.sub(s, 1, 5) == "**** ", "first row of glyph 0")
		expect(#s == 65 * 32, "one line per row")
	`)
	assert.NoError(t, err)
}

func TestRunFile(t *testing.T) {
	h := newHarness(t, keyEcho)
	path := filepath.Join(t.TempDir(), "check.lua")
	assert.NoError(t, os.WriteFile(path, []byte(`log("from file") expect(pc() == 0x200, "start")`), 0o600))
	assert.NoError(t, h.RunFile(path))

	err := h.RunFile(filepath.Join(t.TempDir(), "missing.lua"))
	assert.True(t, errors.Is(err, ErrScript))
}
