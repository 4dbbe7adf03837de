package vm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateJSON(t *testing.T) {
	s, err := LoadProgram(program(
		addi(1, 0, 5),
		addi(2, 0, 7),
		add(3, 1, 2),
		sw(0, 3, 0x200),
		addi(4, 0, 1),
	), testMemSize)
	require.NoError(t, err)
	us := NewInstrumentedState(s, WithMaxSteps(4))
	require.NoError(t, us.Run(context.Background()))

	dat, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded VMState
	require.NoError(t, json.Unmarshal(dat, &decoded))

	require.Equal(t, s.PC, decoded.PC)
	require.Equal(t, s.ProgramSize, decoded.ProgramSize)
	require.Equal(t, s.Step, decoded.Step)
	require.Equal(t, s.Exited, decoded.Exited)
	require.Equal(t, s.HaltReason, decoded.HaltReason)
	require.Equal(t, s.Registers, decoded.Registers)
	require.Equal(t, s.Memory.Capacity(), decoded.Memory.Capacity())
	require.Equal(t, s.EncodeWitness(), decoded.EncodeWitness())

	// a resumed state picks up where the first run stopped
	decoded.Exited = false
	decoded.HaltReason = HaltNone
	require.NoError(t, NewInstrumentedState(&decoded).Run(context.Background()))
	require.Equal(t, HaltEndOfProgram, decoded.HaltReason)
	require.Equal(t, uint64(5), decoded.Step)
	require.Equal(t, uint32(1), decoded.Registers.Get(4))
}

func TestStateWitness(t *testing.T) {
	s, err := LoadProgram(program(addi(1, 0, 5), sw(0, 1, 0x100)), testMemSize)
	require.NoError(t, err)

	w := s.EncodeWitness()
	require.Len(t, w, StateWitnessSize)
	h := w.StateHash()
	require.Equal(t, h, s.EncodeWitness().StateHash(), "hash must be deterministic")

	us := NewInstrumentedState(s)
	_, err = us.Step()
	require.NoError(t, err)
	afterReg := s.EncodeWitness().StateHash()
	require.NotEqual(t, h, afterReg)

	_, err = us.Step()
	require.NoError(t, err)
	afterStore := s.EncodeWitness()
	require.NotEqual(t, afterReg, afterStore.StateHash())
	require.NotEqual(t, []byte(w[:32]), []byte(afterStore[:32]), "memory hash must change on store")

	// x0 always encodes as zero
	s.Registers[0] = 0xFFFFFFFF
	require.Equal(t, afterStore, s.EncodeWitness())
}
