package riscv

const (
	OpcodeLoad   = 0x03
	OpcodeOpImm  = 0x13
	OpcodeAUIPC  = 0x17
	OpcodeStore  = 0x23
	OpcodeOp     = 0x33
	OpcodeLUI    = 0x37
	OpcodeBranch = 0x63
	OpcodeJALR   = 0x67
	OpcodeJAL    = 0x6F

	Funct7Base = 0x00
	Funct7MulD = 0x01
	Funct7Alt  = 0x20

	RegZero = 0
	RegRA   = 1
	RegSP   = 2

	// DefaultMemorySize is the RAM capacity in bytes; x2 starts here.
	DefaultMemorySize = 8_192_000

	// DefaultTraceCapacity is the number of records the trace queue holds.
	DefaultTraceCapacity = 100

	InstrSize = 4
)
