package vm

// Registers is the x0..x31 integer register file.
// Index 0 may be written, but Get always reports it as zero and
// Execute clears it before every instruction.
type Registers [32]uint32

func (r *Registers) Get(idx uint8) uint32 {
	if idx == 0 {
		return 0
	}
	return r[idx&0x1F]
}

func (r *Registers) Set(idx uint8, v uint32) {
	r[idx&0x1F] = v
}
