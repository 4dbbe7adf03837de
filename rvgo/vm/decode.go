package vm

// Instruction holds the structural fields of one instruction word.
// Fields that do not apply to the opcode's format are still populated.
type Instruction struct {
	Raw    uint32
	Opcode uint8
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Funct3 uint8
	Funct7 uint8
}

// Decode splits an instruction word into its fields. It never fails;
// whether the opcode is supported is decided at dispatch.
func Decode(instr uint32) Instruction {
	return Instruction{
		Raw:    instr,
		Opcode: parseOpcode(instr),
		Rd:     parseRd(instr),
		Rs1:    parseRs1(instr),
		Rs2:    parseRs2(instr),
		Funct3: parseFunct3(instr),
		Funct7: parseFunct7(instr),
	}
}

func (in Instruction) ImmI() int32 { return ParseImmTypeI(in.Raw) }
func (in Instruction) ImmS() int32 { return ParseImmTypeS(in.Raw) }
func (in Instruction) ImmU() int32 { return ParseImmTypeU(in.Raw) }
func (in Instruction) ImmJ() int32 { return ParseImmTypeJ(in.Raw) }
func (in Instruction) ImmB() int32 { return ParseImmTypeB(in.Raw) }
