// Package harness drives an interpreter from a Lua script. Scripts feed key
// presses, run cycles or frames and check the resulting machine state,
// which makes ROM behavior testable without a window.
//
// Functions available to scripts:
//
//	run(n)          execute n instructions
//	frame([n])      run n 60 Hz frames (default 1)
//	tick()          decrement the delay and sound timers once
//	press(k)        hold keypad key k
//	release(k)      release keypad key k
//	reg(x)          value of register Vx
//	index()         value of I
//	pc()            program counter
//	mem(addr)       byte at addr
//	pixel(x, y)     true if the pixel is lit
//	delay()         delay timer
//	sound()         sound timer
//	screen()        the framebuffer as text, '*' for lit pixels
//	expect(ok, msg) record a failure with msg unless ok is true
//	log(msg)        write msg to the logger
package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"

	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
	"gochip8/pkg/driver"
)

var (
	ErrScript      = errors.New("script failed")
	ErrExpectation = errors.New("expectation failed")
)

// Harness binds one interpreter to a Lua state.
type Harness struct {
	cpu    *cpu.CPU
	screen *display.Screen
	loop   *driver.Loop
	logger *log.Logger

	state    *lua.LState
	failures []string
}

func New(c *cpu.CPU, screen *display.Screen, loop *driver.Loop, logger *log.Logger) *Harness {
	h := &Harness{
		cpu:    c,
		screen: screen,
		loop:   loop,
		logger: logger,
		state:  lua.NewState(),
	}
	h.register()
	return h
}

// Close releases the Lua state.
func (h *Harness) Close() {
	h.state.Close()
}

// Failures returns the messages of every failed expect call so far.
func (h *Harness) Failures() []string {
	return h.failures
}

// RunString executes a script. Interpreter errors abort the script and are
// returned wrapped in ErrScript; failed expectations let the script finish
// and are reported as ErrExpectation.
func (h *Harness) RunString(source string) error {
	return h.finish(h.state.DoString(source))
}

func (h *Harness) RunFile(path string) error {
	return h.finish(h.state.DoFile(path))
}

func (h *Harness) finish(err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScript, err)
	}
	if len(h.failures) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(h.failures, "; "))
	}
	return nil
}

func (h *Harness) register() {
	functions := map[string]lua.LGFunction{
		"run":     h.run,
		"frame":   h.frame,
		"tick":    h.tick,
		"press":   h.press,
		"release": h.release,
		"reg":     h.reg,
		"index":   h.index,
		"pc":      h.pc,
		"mem":     h.mem,
		"pixel":   h.pixel,
		"delay":   h.delay,
		"sound":   h.sound,
		"screen":  h.screenText,
		"expect":  h.expect,
		"log":     h.log,
	}
	for name, fn := range functions {
		h.state.SetGlobal(name, h.state.NewFunction(fn))
	}
}

func (h *Harness) run(L *lua.LState) int {
	n := L.CheckInt(1)
	if err := h.cpu.Run(n); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *Harness) frame(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for i := 0; i < n; i++ {
		if err := h.loop.Frame(); err != nil {
			L.RaiseError("%v", err)
		}
	}
	return 0
}

func (h *Harness) tick(_ *lua.LState) int {
	h.cpu.TickTimers()
	return 0
}

func (h *Harness) press(L *lua.LState) int {
	if err := h.screen.PressKey(byte(L.CheckInt(1))); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *Harness) release(L *lua.LState) int {
	if err := h.screen.ReleaseKey(byte(L.CheckInt(1))); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *Harness) reg(L *lua.LState) int {
	v, err := h.cpu.Mem.VarRegister(byte(L.CheckInt(1)))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *Harness) index(L *lua.LState) int {
	L.Push(lua.LNumber(h.cpu.Mem.IndexRegister()))
	return 1
}

func (h *Harness) pc(L *lua.LState) int {
	L.Push(lua.LNumber(h.cpu.Mem.PC()))
	return 1
}

func (h *Harness) mem(L *lua.LState) int {
	L.Push(lua.LNumber(h.cpu.Mem.ReadRAMCell(uint16(L.CheckInt(1)))))
	return 1
}

func (h *Harness) pixel(L *lua.LState) int {
	on, err := h.screen.Pixel(byte(L.CheckInt(1)), byte(L.CheckInt(2)))
	if err != nil {
		L.RaiseError("%v", err)
	}
	L.Push(lua.LBool(on))
	return 1
}

func (h *Harness) delay(L *lua.LState) int {
	L.Push(lua.LNumber(h.cpu.Mem.DelayRegister()))
	return 1
}

func (h *Harness) sound(L *lua.LState) int {
	L.Push(lua.LNumber(h.cpu.Mem.SoundRegister()))
	return 1
}

func (h *Harness) screenText(L *lua.LState) int {
	L.Push(lua.LString(h.screen.String()))
	return 1
}

func (h *Harness) expect(L *lua.LState) int {
	ok := L.ToBool(1)
	msg := L.OptString(2, "expectation failed")
	if !ok {
		where := L.Where(1)
		h.failures = append(h.failures, strings.TrimSpace(where+" "+msg))
		h.logger.Error("Expectation failed", log.String("message", msg), log.String("where", where))
	}
	return 0
}

func (h *Harness) log(L *lua.LState) int {
	h.logger.Info(L.CheckString(1))
	return 0
}
