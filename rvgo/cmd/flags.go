package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/rv32im/rvtrace/rvgo/riscv"
)

var (
	LoadBinPathFlag = &cli.PathFlag{
		Name:      "path",
		Usage:     "Path to flat rv32im binary file",
		TakesFile: true,
		Required:  true,
	}
	LoadELFPathFlag = &cli.PathFlag{
		Name:      "path",
		Usage:     "Path to rv32 ELF executable",
		TakesFile: true,
		Required:  true,
	}
	LoadBinOutFlag = &cli.PathFlag{
		Name:     "out",
		Usage:    "Output path to JSON state",
		Value:    "state.json",
		Required: false,
	}
	MemorySizeFlag = &cli.UintFlag{
		Name:  "memory-size",
		Usage: "RAM capacity in bytes, the stack pointer starts at this address",
		Value: riscv.DefaultMemorySize,
	}
	RunBinFlag = &cli.PathFlag{
		Name:      "bin",
		Usage:     "Flat rv32im binary to run, loaded at address 0",
		TakesFile: true,
	}
	RunInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "JSON state to resume from, instead of --bin",
		TakesFile: true,
	}
	RunOutputFlag = &cli.PathFlag{
		Name:  "output",
		Usage: "Output path for the final JSON state, empty to skip",
	}
	RunTraceFlag = &cli.PathFlag{
		Name:  "trace",
		Usage: "Output path of the execution trace, '-' for stdout",
		Value: "log.txt",
	}
	RunTraceFormatFlag = &cli.StringFlag{
		Name:  "trace-format",
		Usage: "Trace format: text or json",
		Value: "text",
	}
	RunTraceCapacityFlag = &cli.IntFlag{
		Name:  "trace-capacity",
		Usage: "Number of trace records the queue between executor and writer holds",
		Value: riscv.DefaultTraceCapacity,
	}
	RunTraceBufferedFlag = &cli.BoolFlag{
		Name:  "trace-buffered",
		Usage: "Buffer the whole trace and write it after the run; a full queue aborts the run",
	}
	RunMaxStepsFlag = &cli.Uint64Flag{
		Name:  "max-steps",
		Usage: "Stop after this many instructions, 0 for no limit",
	}
	RunStrictFlag = &cli.BoolFlag{
		Name:  "strict",
		Usage: "Fail on unsupported instructions instead of skipping them",
	}
	RunInfoAtFlag = &cli.Uint64Flag{
		Name:  "info-at",
		Usage: "Log progress every N steps, 0 to disable",
	}
	RunPProfCPU = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "Enable pprof cpu profiling",
	}
	RunStatsAddrFlag = &cli.StringFlag{
		Name:  "stats.addr",
		Usage: "Serve live runtime stats at this address (e.g. localhost:12600), empty to disable",
	}
	LogLevelFlag = &cli.StringFlag{
		Name:  "log.level",
		Usage: "Log level: trace, debug, info, warn, error",
		Value: "info",
	}
	WitnessInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "path of input JSON state",
		TakesFile: true,
		Required:  true,
	}
	WitnessOutputFlag = &cli.PathFlag{
		Name:  "output",
		Usage: "path to write witness JSON to, '-' for stdout",
	}
)
