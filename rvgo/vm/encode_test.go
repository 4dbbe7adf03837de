package vm

import "encoding/binary"

// Instruction encoders, test use only.

func encR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	i := uint32(imm)
	return (i>>5&0x7F)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (i&0x1F)<<7 | opcode
}

func encB(funct3, rs1, rs2 uint32, imm int32) uint32 {
	i := uint32(imm)
	return (i>>12&1)<<31 | (i>>5&0x3F)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (i>>1&0xF)<<8 | (i>>11&1)<<7 | 0x63
}

func encU(opcode, rd uint32, imm int32) uint32 {
	return uint32(imm)&0xFFFFF000 | rd<<7 | opcode
}

func encJ(rd uint32, imm int32) uint32 {
	i := uint32(imm)
	return (i>>20&1)<<31 | (i>>1&0x3FF)<<21 | (i>>11&1)<<20 | (i>>12&0xFF)<<12 | rd<<7 | 0x6F
}

func addi(rd, rs1 uint32, imm int32) uint32 { return encI(0x13, rd, 0, rs1, imm) }
func add(rd, rs1, rs2 uint32) uint32        { return encR(0x33, rd, 0, rs1, rs2, 0) }
func sw(rs1, rs2 uint32, imm int32) uint32  { return encS(0x23, 2, rs1, rs2, imm) }
func jal(rd uint32, imm int32) uint32       { return encJ(rd, imm) }

func program(words ...uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}
