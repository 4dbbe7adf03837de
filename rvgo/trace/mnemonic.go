package trace

import (
	"fmt"

	"github.com/rv32im/rvtrace/rvgo/riscv"
	"github.com/rv32im/rvtrace/rvgo/vm"
)

// Mnemonic renders the operation of a record: family tag, operation,
// registers and immediate. Unknown opcodes render as an empty string.
func Mnemonic(rec *vm.TraceRecord) string {
	op := rec.Op.String()
	switch rec.Opcode {
	case riscv.OpcodeLoad:
		return fmt.Sprintf("LOAD____dest=%02d_width=%02d_base=%02d_offset=%04d", rec.Rd, rec.Funct3, rec.Rs1, rec.Imm)
	case riscv.OpcodeStore:
		return fmt.Sprintf("STORE___width=%02d_base=%02d_src=%02d_offset=%04d", rec.Funct3, rec.Rs1, rec.Rs2, rec.Imm)
	case riscv.OpcodeOpImm:
		return fmt.Sprintf("OP-IMM__dest=%02d_func=%s_src=%02d_I-imm=%04d", rec.Rd, op, rec.Rs1, rec.Imm)
	case riscv.OpcodeOp:
		return fmt.Sprintf("OP______dest=%02d_func=%s_src1=%02d_src2=%02d", rec.Rd, op, rec.Rs1, rec.Rs2)
	case riscv.OpcodeLUI:
		return fmt.Sprintf("LUI_____dest=%02d_U-imm=%07d", rec.Rd, rec.Imm)
	case riscv.OpcodeAUIPC:
		return fmt.Sprintf("AUIPC___dest=%02d_U-imm=%07d", rec.Rd, rec.Imm)
	case riscv.OpcodeJAL:
		return fmt.Sprintf("JAL_____dest=%02d_offset=%07d", rec.Rd, rec.Imm)
	case riscv.OpcodeJALR:
		return fmt.Sprintf("JALR____dest=%02d_base=%02d_offset=%07d", rec.Rd, rec.Rs1, rec.Imm)
	case riscv.OpcodeBranch:
		return fmt.Sprintf("BRANCH__func=%s_src1=%02d_src2=%02d_offset=%07d", op, rec.Rs1, rec.Rs2, rec.Imm)
	default:
		return ""
	}
}
