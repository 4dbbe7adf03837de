package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/urfave/cli/v2"

	"github.com/rv32im/rvtrace/rvgo/vm"
)

var OutFilePerm = os.FileMode(0o755)

func memorySize(ctx *cli.Context) (uint32, error) {
	size := ctx.Uint(MemorySizeFlag.Name)
	if size == 0 || uint64(size) > math.MaxUint32 {
		return 0, fmt.Errorf("memory size must be within 1..%d bytes, got %d", uint64(math.MaxUint32), size)
	}
	return uint32(size), nil
}

// loadBinary reads a flat program image into a fresh VM state.
func loadBinary(path string, memSize uint32) (*vm.VMState, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program %q: %w", path, err)
	}
	state, err := vm.LoadProgram(image, memSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load program %q: %w", path, err)
	}
	return state, nil
}

func LoadBin(ctx *cli.Context) error {
	memSize, err := memorySize(ctx)
	if err != nil {
		return err
	}
	state, err := loadBinary(ctx.Path(LoadBinPathFlag.Name), memSize)
	if err != nil {
		return err
	}
	return jsonutil.WriteJSON[*vm.VMState](ctx.Path(LoadBinOutFlag.Name), state, OutFilePerm)
}

var LoadBinCommand = &cli.Command{
	Name:        "load-bin",
	Usage:       "Load a flat binary into JSON state",
	Description: "Load a flat rv32im binary at address 0 into a JSON VM state, with the stack pointer at the top of memory",
	Action:      LoadBin,
	Flags: []cli.Flag{
		LoadBinPathFlag,
		LoadBinOutFlag,
		MemorySizeFlag,
	},
}
