package vm

// Op identifies the operation an instruction word resolved to.
// OpNone marks words outside the supported set.
type Op uint8

const (
	OpNone Op = iota

	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpLWU

	OpSB
	OpSH
	OpSW

	OpADDI
	OpXORI
	OpORI
	OpANDI

	OpADD
	OpMUL
	OpSUB
	OpXOR
	OpOR
	OpAND

	OpLUI
	OpAUIPC
	OpJAL
	OpJALR

	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
)

var opNames = [...]string{
	OpNone:  "",
	OpLB:    "LB",
	OpLH:    "LH",
	OpLW:    "LW",
	OpLBU:   "LBU",
	OpLHU:   "LHU",
	OpLWU:   "LWU",
	OpSB:    "SB",
	OpSH:    "SH",
	OpSW:    "SW",
	OpADDI:  "ADDI",
	OpXORI:  "XORI",
	OpORI:   "ORI",
	OpANDI:  "ANDI",
	OpADD:   "ADD",
	OpMUL:   "MUL",
	OpSUB:   "SUB",
	OpXOR:   "XOR",
	OpOR:    "OR",
	OpAND:   "AND",
	OpLUI:   "LUI",
	OpAUIPC: "AUIPC",
	OpJAL:   "JAL",
	OpJALR:  "JALR",
	OpBEQ:   "BEQ",
	OpBNE:   "BNE",
	OpBLT:   "BLT",
	OpBGE:   "BGE",
	OpBLTU:  "BLTU",
	OpBGEU:  "BGEU",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return ""
}

type opKey struct {
	funct3 uint8
	funct7 uint8
}

// register-register ops are keyed by both funct fields
var regOps = map[opKey]Op{
	{0, 0x00}: OpADD,
	{0, 0x01}: OpMUL,
	{0, 0x20}: OpSUB,
	{4, 0x00}: OpXOR,
	{6, 0x00}: OpOR,
	{7, 0x00}: OpAND,
}

// Resolve maps a decoded instruction to its operation, or OpNone.
func Resolve(in Instruction) Op {
	switch in.Opcode {
	case 0x03: // 000_0011: memory loading
		switch in.Funct3 {
		case 0: // 000 = LB
			return OpLB
		case 1: // 001 = LH
			return OpLH
		case 2: // 010 = LW
			return OpLW
		case 4: // 100 = LBU
			return OpLBU
		case 5: // 101 = LHU
			return OpLHU
		case 6: // 110 = LWU
			return OpLWU
		}
	case 0x23: // 010_0011: memory storing
		switch in.Funct3 {
		case 0: // 000 = SB
			return OpSB
		case 1: // 001 = SH
			return OpSH
		case 2: // 010 = SW
			return OpSW
		}
	case 0x13: // 001_0011: immediate arithmetic and logic
		switch in.Funct3 {
		case 0: // 000 = ADDI
			return OpADDI
		case 4: // 100 = XORI
			return OpXORI
		case 6: // 110 = ORI
			return OpORI
		case 7: // 111 = ANDI
			return OpANDI
		}
	case 0x33: // 011_0011: register arithmetic and logic
		return regOps[opKey{in.Funct3, in.Funct7}]
	case 0x37: // 011_0111: LUI = Load upper immediate
		return OpLUI
	case 0x17: // 001_0111: AUIPC = Add upper immediate to PC
		return OpAUIPC
	case 0x6F: // 110_1111: JAL = Jump and link
		return OpJAL
	case 0x67: // 110_0111: JALR = Jump and link register
		return OpJALR
	case 0x63: // 110_0011: branching
		switch in.Funct3 {
		case 0: // 000 = BEQ
			return OpBEQ
		case 1: // 001 = BNE
			return OpBNE
		case 4: // 100 = BLT
			return OpBLT
		case 5: // 101 = BGE
			return OpBGE
		case 6: // 110 = BLTU
			return OpBLTU
		case 7: // 111 = BGEU
			return OpBGEU
		}
	}
	return OpNone
}
