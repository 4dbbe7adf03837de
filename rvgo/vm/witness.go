package vm

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// StateWitness is the flat encoding of a VMState that its hash commits to:
//
//	memHash     [32]byte  keccak256 of the full RAM
//	capacity    uint32
//	pc          uint32
//	programSize uint32
//	step        uint64
//	exited      uint8
//	registers   [32]uint32
//
// All numbers are big-endian.
type StateWitness []byte

const StateWitnessSize = 32 + 4 + 4 + 4 + 8 + 1 + 32*4

func (m *Memory) Hash() common.Hash {
	return crypto.Keccak256Hash(m.data)
}

func (state *VMState) EncodeWitness() StateWitness {
	out := make([]byte, 0, StateWitnessSize)
	memHash := state.Memory.Hash()
	out = append(out, memHash[:]...)
	out = binary.BigEndian.AppendUint32(out, state.Memory.Capacity())
	out = binary.BigEndian.AppendUint32(out, state.PC)
	out = binary.BigEndian.AppendUint32(out, state.ProgramSize)
	out = binary.BigEndian.AppendUint64(out, state.Step)
	if state.Exited {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	for i := range state.Registers {
		out = binary.BigEndian.AppendUint32(out, state.Registers.Get(uint8(i)))
	}
	return out
}

func (sw StateWitness) StateHash() common.Hash {
	return crypto.Keccak256Hash(sw)
}
