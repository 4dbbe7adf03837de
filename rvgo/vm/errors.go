package vm

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds            = errors.New("memory access out of bounds")
	ErrInvalidWidth           = errors.New("invalid memory access width")
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
)

// MemoryFault describes a load or store that does not fit the address space.
type MemoryFault struct {
	Addr     uint64
	Width    uint8
	Capacity uint64
	Store    bool
}

func (f *MemoryFault) Error() string {
	kind := "load"
	if f.Store {
		kind = "store"
	}
	return fmt.Sprintf("%s of %d bits at %08x exceeds capacity %d", kind, f.Width, f.Addr, f.Capacity)
}

func (f *MemoryFault) Unwrap() error {
	return ErrOutOfBounds
}

// UnsupportedInstructionError is returned in strict mode for words that
// do not map to a supported operation.
type UnsupportedInstructionError struct {
	Instr  uint32
	Opcode uint8
	Funct3 uint8
	Funct7 uint8
}

func (e *UnsupportedInstructionError) Error() string {
	return fmt.Sprintf("unsupported instruction %08x (opcode %02x, funct3 %d, funct7 %02x)", e.Instr, e.Opcode, e.Funct3, e.Funct7)
}

func (e *UnsupportedInstructionError) Unwrap() error {
	return ErrUnsupportedInstruction
}

// StepError wraps a fault with the location it happened at.
type StepError struct {
	Step  uint64
	PC    uint32
	Instr uint32
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed at step %d (PC: %08x, instr: %08x): %v", e.Step, e.PC, e.Instr, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
