package cmd

import (
	"debug/elf"
	"fmt"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/urfave/cli/v2"

	"github.com/rv32im/rvtrace/rvgo/vm"
)

func LoadELF(ctx *cli.Context) error {
	memSize, err := memorySize(ctx)
	if err != nil {
		return err
	}
	elfPath := ctx.Path(LoadELFPathFlag.Name)
	elfProgram, err := elf.Open(elfPath)
	if err != nil {
		return fmt.Errorf("failed to open ELF file %q: %w", elfPath, err)
	}
	defer elfProgram.Close()
	state, err := vm.LoadELF(elfProgram, memSize)
	if err != nil {
		return fmt.Errorf("failed to load ELF data into VM state: %w", err)
	}
	return jsonutil.WriteJSON[*vm.VMState](ctx.Path(LoadBinOutFlag.Name), state, OutFilePerm)
}

var LoadELFCommand = &cli.Command{
	Name:        "load-elf",
	Usage:       "Load ELF file into JSON state",
	Description: "Load the PT_LOAD segments of an rv32 ELF executable into a JSON VM state, starting at its entry point",
	Action:      LoadELF,
	Flags: []cli.Flag{
		LoadELFPathFlag,
		LoadBinOutFlag,
		MemorySizeFlag,
	},
}
