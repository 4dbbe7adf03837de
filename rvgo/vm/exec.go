package vm

// Execute applies one instruction word to the state. The caller must have
// already advanced s.PC past the word; PC-relative operations use s.PC-4.
//
// Unsupported words change nothing and come back with OpNone. On a memory
// fault the error is returned and neither rd nor PC are touched.
func Execute(s *VMState, instr uint32) (TraceRecord, error) {
	regs := &s.Registers
	regs[0] = 0

	in := Decode(instr)
	op := Resolve(in)
	pc := s.PC - 4 // address of this instruction

	rec := TraceRecord{
		PC:       pc,
		Instr:    instr,
		Opcode:   in.Opcode,
		Funct3:   in.Funct3,
		Op:       op,
		Rd:       in.Rd,
		Rs1:      in.Rs1,
		Rs1Value: regs.Get(in.Rs1),
		Rs2:      in.Rs2,
		Rs2Value: regs.Get(in.Rs2),
	}
	rs1Value, rs2Value := rec.Rs1Value, rec.Rs2Value

	switch in.Opcode {
	case 0x03: // LOAD
		imm := in.ImmI()
		rec.Imm = imm
		if op == OpNone {
			break
		}
		addr := rs1Value + uint32(imm)
		var width uint8
		switch op {
		case OpLB, OpLBU:
			width = 8
		case OpLH, OpLHU:
			width = 16
		default:
			width = 32
		}
		v, err := s.Memory.Load(addr, width)
		if err != nil {
			rec.RdValue = regs.Get(in.Rd)
			rec.NextPC = s.PC
			return rec, err
		}
		switch op {
		case OpLB:
			v = uint32(int32(int8(v)))
		case OpLH:
			v = uint32(int32(int16(v)))
		}
		regs.Set(in.Rd, v)
	case 0x23: // STORE
		imm := in.ImmS()
		rec.Imm = imm
		if op == OpNone {
			break
		}
		addr := rs1Value + uint32(imm)
		width := uint8(8) << in.Funct3 // 0 -> 8, 1 -> 16, 2 -> 32
		if err := s.Memory.Store(addr, rs2Value, width); err != nil {
			rec.RdValue = regs.Get(in.Rd)
			rec.NextPC = s.PC
			return rec, err
		}
	case 0x13: // OP-IMM
		imm := in.ImmI()
		rec.Imm = imm
		switch op {
		case OpADDI:
			regs.Set(in.Rd, rs1Value+uint32(imm))
		case OpXORI:
			regs.Set(in.Rd, rs1Value^uint32(imm))
		case OpORI:
			regs.Set(in.Rd, rs1Value|uint32(imm))
		case OpANDI:
			regs.Set(in.Rd, rs1Value&uint32(imm))
		}
	case 0x33: // OP
		switch op {
		case OpADD:
			regs.Set(in.Rd, rs1Value+rs2Value)
		case OpMUL:
			regs.Set(in.Rd, rs1Value*rs2Value)
		case OpSUB:
			regs.Set(in.Rd, rs1Value-rs2Value)
		case OpXOR:
			regs.Set(in.Rd, rs1Value^rs2Value)
		case OpOR:
			regs.Set(in.Rd, rs1Value|rs2Value)
		case OpAND:
			regs.Set(in.Rd, rs1Value&rs2Value)
		}
	case 0x37: // LUI
		imm := in.ImmU()
		rec.Imm = imm
		regs.Set(in.Rd, uint32(imm))
	case 0x17: // AUIPC
		imm := in.ImmU()
		rec.Imm = imm
		regs.Set(in.Rd, pc+uint32(imm))
	case 0x6F: // JAL
		imm := in.ImmJ()
		rec.Imm = imm
		regs.Set(in.Rd, s.PC)
		s.PC = pc + uint32(imm)
	case 0x67: // JALR
		imm := in.ImmI()
		rec.Imm = imm
		// target is taken from rs1 before rd is written, rd may alias rs1
		target := rs1Value + uint32(imm)
		regs.Set(in.Rd, s.PC)
		s.PC = target
	case 0x63: // BRANCH
		imm := in.ImmB()
		rec.Imm = imm
		var taken bool
		switch op {
		case OpBEQ:
			taken = rs1Value == rs2Value
		case OpBNE:
			taken = rs1Value != rs2Value
		case OpBLT:
			taken = int32(rs1Value) < int32(rs2Value)
		case OpBGE:
			taken = int32(rs1Value) >= int32(rs2Value)
		case OpBLTU:
			taken = rs1Value < rs2Value
		case OpBGEU:
			taken = rs1Value >= rs2Value
		}
		if taken {
			s.PC = pc + uint32(imm)
		}
	}

	rec.RdValue = regs.Get(in.Rd)
	rec.NextPC = s.PC
	return rec, nil
}
