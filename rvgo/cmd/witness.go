package cmd

import (
	"fmt"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/rv32im/rvtrace/rvgo/vm"
)

type WitnessOutput struct {
	Witness   hexutil.Bytes `json:"witness"`
	StateHash common.Hash   `json:"stateHash"`
}

func Witness(ctx *cli.Context) error {
	input := ctx.Path(WitnessInputFlag.Name)
	output := ctx.Path(WitnessOutputFlag.Name)
	state, err := jsonutil.LoadJSON[vm.VMState](input)
	if err != nil {
		return fmt.Errorf("invalid input state (%v): %w", input, err)
	}
	if state.Memory == nil {
		return fmt.Errorf("invalid input state (%v): missing memory", input)
	}
	witness := state.EncodeWitness()
	stateHash := witness.StateHash()
	if output != "" {
		witnessOutput := &WitnessOutput{
			Witness:   hexutil.Bytes(witness),
			StateHash: stateHash,
		}
		if err := jsonutil.WriteJSON[*WitnessOutput](output, witnessOutput, OutFilePerm); err != nil {
			return fmt.Errorf("failed to write witness output: %w", err)
		}
	}
	fmt.Fprintln(ctx.App.Writer, stateHash.Hex())
	return nil
}

var WitnessCommand = &cli.Command{
	Name:        "witness",
	Usage:       "Convert a JSON state into a binary witness",
	Description: "Convert a JSON state into a binary witness. The state hash is written to stdout",
	Action:      Witness,
	Flags: []cli.Flag{
		WitnessInputFlag,
		WitnessOutputFlag,
	},
}
