package cpu

import (
	"errors"
	"fmt"
)

var ErrInvalidOpcode = errors.New("invalid opcode")

// OpcodeError wraps any failure raised while executing one instruction.
// Execution errors are fatal; the machine state is left as the failing
// handler found it.
type OpcodeError struct {
	Opcode uint16
	PC     uint16 // address the instruction was fetched from
	Err    error
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("error in instruction with opcode 0x%04X at 0x%03X: %v", e.Opcode, e.PC, e.Err)
}

func (e *OpcodeError) Unwrap() error {
	return e.Err
}
