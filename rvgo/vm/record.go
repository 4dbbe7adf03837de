package vm

// TraceRecord captures one executed instruction. Source register values
// are taken before the instruction ran, RdValue after it.
type TraceRecord struct {
	Step  uint64 `json:"step"`
	PC    uint32 `json:"pc"`
	Instr uint32 `json:"instr"`

	Opcode uint8 `json:"opcode"`
	Funct3 uint8 `json:"funct3"`
	Op     Op    `json:"op"`
	Imm    int32 `json:"imm"`

	Rd       uint8  `json:"rd"`
	RdValue  uint32 `json:"rdValue"`
	Rs1      uint8  `json:"rs1"`
	Rs1Value uint32 `json:"rs1Value"`
	Rs2      uint8  `json:"rs2"`
	Rs2Value uint32 `json:"rs2Value"`

	NextPC uint32 `json:"nextPC"`
}

// Supported reports whether the word resolved to a known operation.
func (r *TraceRecord) Supported() bool {
	return r.Op != OpNone
}
