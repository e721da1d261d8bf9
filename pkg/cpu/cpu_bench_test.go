package cpu

import (
	"math/rand"
	"testing"

	"gochip8/pkg/display"
	"gochip8/pkg/memory"
)

func newBenchCPU(opcodes ...uint16) *CPU {
	c := New(memory.New(), display.New(), WithRand(rand.New(rand.NewSource(1))))
	loadProgram(c, opcodes...)
	return c
}

// BenchmarkCPU_ALU measures dispatch overhead for a tight add loop:
// 0x200 ADD V0, V1; 0x202 JP 0x200.
func BenchmarkCPU_ALU(b *testing.B) {
	c := newBenchCPU(0x8014, 0x1200)
	_ = c.Mem.SetVarRegister(1, 3)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Step(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCPU_Draw measures a full-height sprite draw followed by a jump.
func BenchmarkCPU_Draw(b *testing.B) {
	c := newBenchCPU(0xD01F, 0x1200)
	c.Mem.SetIndexRegister(memory.FontStart)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
