package vm

import (
	"context"
	"errors"

	"github.com/rv32im/rvtrace/rvgo/riscv"
)

// TraceSink receives the record of every executed instruction, in program order.
type TraceSink interface {
	Put(rec TraceRecord) error
}

type InstrumentedState struct {
	state *VMState

	sink TraceSink

	// strict turns unsupported instructions into faults instead of no-ops
	strict bool

	// maxSteps stops the run after this many instructions, 0 means no limit
	maxSteps uint64

	lastRecord TraceRecord
}

type Option func(m *InstrumentedState)

func WithSink(sink TraceSink) Option {
	return func(m *InstrumentedState) {
		m.sink = sink
	}
}

func WithStrict(strict bool) Option {
	return func(m *InstrumentedState) {
		m.strict = strict
	}
}

func WithMaxSteps(n uint64) Option {
	return func(m *InstrumentedState) {
		m.maxSteps = n
	}
}

func NewInstrumentedState(state *VMState, opts ...Option) *InstrumentedState {
	m := &InstrumentedState{state: state}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *InstrumentedState) State() *VMState {
	return m.state
}

// LastRecord is the trace of the most recently executed instruction.
func (m *InstrumentedState) LastRecord() TraceRecord {
	return m.lastRecord
}

func (m *InstrumentedState) halt(reason HaltReason) {
	m.state.Exited = true
	m.state.HaltReason = reason
}

// Step fetches, executes and traces one instruction. It returns
// (false, nil) once the machine has halted without executing anything.
func (m *InstrumentedState) Step() (executed bool, err error) {
	s := m.state
	if s.Exited {
		return false, nil
	}
	if m.maxSteps != 0 && s.Step >= m.maxSteps {
		m.halt(HaltStepLimit)
		return false, nil
	}
	pc := s.PC
	if uint64(pc)+riscv.InstrSize > uint64(s.ProgramSize) {
		m.halt(HaltEndOfProgram)
		return false, nil
	}
	instr, err := s.Memory.Load(pc, 32)
	if err != nil {
		return false, &StepError{Step: s.Step, PC: pc, Instr: 0, Err: err}
	}
	s.PC = pc + riscv.InstrSize

	rec, err := Execute(s, instr)
	rec.Step = s.Step
	if err != nil {
		return false, &StepError{Step: s.Step, PC: pc, Instr: instr, Err: err}
	}
	if m.strict && !rec.Supported() {
		in := Decode(instr)
		return false, &StepError{Step: s.Step, PC: pc, Instr: instr, Err: &UnsupportedInstructionError{
			Instr: instr, Opcode: in.Opcode, Funct3: in.Funct3, Funct7: in.Funct7,
		}}
	}
	s.Step++
	m.lastRecord = rec

	if m.sink != nil {
		if err := m.sink.Put(rec); err != nil {
			return true, &StepError{Step: rec.Step, PC: pc, Instr: instr, Err: err}
		}
	}
	if s.PC == 0 {
		m.halt(HaltJumpToZero)
	}
	return true, nil
}

// Run steps until the machine halts, a fault occurs or ctx is done.
func (m *InstrumentedState) Run(ctx context.Context) error {
	for !m.state.Exited {
		if m.state.Step%100 == 0 { // don't do the ctx err check too often
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if _, err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// IsFault reports whether err is a machine fault, as opposed to cancellation.
func IsFault(err error) bool {
	var stepErr *StepError
	return errors.As(err, &stepErr)
}
