package vm

// Functions to parse the instruction field values from different types of RISC-V instructions.
// All of them are total: every 32-bit word yields some value.

func parseOpcode(instr uint32) uint8 {
	return uint8(instr & 0x7F)
}

func parseRd(instr uint32) uint8 {
	return uint8((instr >> 7) & 0x1F)
}

func parseFunct3(instr uint32) uint8 {
	return uint8((instr >> 12) & 0x7)
}

func parseRs1(instr uint32) uint8 {
	return uint8((instr >> 15) & 0x1F)
}

func parseRs2(instr uint32) uint8 {
	return uint8((instr >> 20) & 0x1F)
}

func parseFunct7(instr uint32) uint8 {
	return uint8(instr >> 25)
}

// ParseImmTypeI returns instr[31:20], sign-extended.
func ParseImmTypeI(instr uint32) int32 {
	return int32(instr) >> 20
}

// ParseImmTypeS returns {instr[31:25], instr[11:7]}, sign-extended.
func ParseImmTypeS(instr uint32) int32 {
	return (int32(instr&0xFE000000) >> 20) | int32((instr>>7)&0x1F)
}

// ParseImmTypeU returns instr[31:12] in place, the low 12 bits cleared.
func ParseImmTypeU(instr uint32) int32 {
	return int32(instr & 0xFFFFF000)
}

// ParseImmTypeJ returns {instr[31], instr[19:12], instr[20], instr[30:21], 0}, sign-extended.
func ParseImmTypeJ(instr uint32) int32 {
	return int32(uint32(int32(instr&0x80000000)>>11) |
		(instr & 0xFF000) | // [19:12]
		((instr >> 9) & 0x800) | // [20] -> 11
		((instr >> 20) & 0x7FE)) // [30:21] -> 10:1
}

// ParseImmTypeB returns {instr[31], instr[7], instr[30:25], instr[11:8], 0}, sign-extended.
func ParseImmTypeB(instr uint32) int32 {
	return int32(uint32(int32(instr&0x80000000)>>19) |
		((instr & 0x80) << 4) | // [7] -> 11
		((instr >> 20) & 0x7E0) | // [30:25] -> 10:5
		((instr >> 7) & 0x1E)) // [11:8] -> 4:1
}
