package vm

import (
	"bytes"
	"fmt"

	"github.com/rv32im/rvtrace/rvgo/riscv"
)

// HaltReason tells why a run stopped.
type HaltReason string

const (
	HaltNone         HaltReason = ""
	HaltEndOfProgram HaltReason = "end-of-program"
	HaltJumpToZero   HaltReason = "jump-to-zero"
	HaltStepLimit    HaltReason = "step-limit"
)

type VMState struct {
	Memory *Memory `json:"memory"`

	PC uint32 `json:"pc"`

	// ProgramSize is the byte length of the loaded image; fetching past it halts.
	ProgramSize uint32 `json:"programSize"`

	Step uint64 `json:"step"`

	Exited     bool       `json:"exited"`
	HaltReason HaltReason `json:"haltReason,omitempty"`

	Registers Registers `json:"registers"`
}

// NewVMState returns a zeroed machine with memSize bytes of RAM
// and the stack pointer at the top of it.
func NewVMState(memSize uint32) *VMState {
	s := &VMState{
		Memory: NewMemory(memSize),
	}
	s.Registers.Set(riscv.RegSP, memSize)
	return s
}

// LoadProgram builds a machine with the flat binary image at address 0.
func LoadProgram(image []byte, memSize uint32) (*VMState, error) {
	if uint64(len(image)) > uint64(memSize) {
		return nil, fmt.Errorf("program of %d bytes does not fit memory of %d bytes", len(image), memSize)
	}
	s := NewVMState(memSize)
	n, err := s.Memory.SetMemoryRange(0, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to load program image: %w", err)
	}
	s.ProgramSize = n
	return s, nil
}

// Instr returns the word at the current PC, without advancing.
func (state *VMState) Instr() uint32 {
	v, err := state.Memory.Load(state.PC, 32)
	if err != nil {
		return 0
	}
	return v
}
