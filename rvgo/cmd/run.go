package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rv32im/rvtrace/rvgo/trace"
	"github.com/rv32im/rvtrace/rvgo/vm"
)

func loadState(ctx *cli.Context) (*vm.VMState, error) {
	binPath := ctx.Path(RunBinFlag.Name)
	inputPath := ctx.Path(RunInputFlag.Name)
	switch {
	case binPath != "" && inputPath != "":
		return nil, fmt.Errorf("--%s and --%s are mutually exclusive", RunBinFlag.Name, RunInputFlag.Name)
	case binPath != "":
		memSize, err := memorySize(ctx)
		if err != nil {
			return nil, err
		}
		return loadBinary(binPath, memSize)
	case inputPath != "":
		state, err := jsonutil.LoadJSON[vm.VMState](inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load state %q: %w", inputPath, err)
		}
		if state.Memory == nil {
			return nil, fmt.Errorf("state %q has no memory", inputPath)
		}
		// a step limit halt can be lifted by a later run
		if state.HaltReason == vm.HaltStepLimit {
			state.Exited = false
			state.HaltReason = vm.HaltNone
		}
		return state, nil
	default:
		return nil, fmt.Errorf("one of --%s or --%s is required", RunBinFlag.Name, RunInputFlag.Name)
	}
}

func openTrace(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace output %q: %w", path, err)
	}
	return f, f.Close, nil
}

type runner struct {
	log    log.Logger
	us     *vm.InstrumentedState
	infoAt uint64
}

// loop steps the VM until it halts. It mirrors InstrumentedState.Run,
// with progress logging in between steps.
func (r *runner) loop(ctx context.Context) error {
	state := r.us.State()
	start := time.Now()
	startStep := state.Step
	for !state.Exited {
		if state.Step%100 == 0 { // don't do the ctx err check too often
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if r.infoAt != 0 && state.Step%r.infoAt == 0 {
			delta := time.Since(start)
			r.log.Info("processing",
				"step", state.Step,
				"pc", HexU32(state.PC),
				"insn", HexU32(state.Instr()),
				"ips", float64(state.Step-startStep)/(float64(delta)/float64(time.Second)),
				"mem", state.Memory.Usage(),
			)
		}
		if _, err := r.us.Step(); err != nil {
			return err
		}
	}
	return nil
}

func Run(ctx *cli.Context) error {
	if ctx.Bool(RunPProfCPU.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	lvl, err := ParseLevel(ctx.String(LogLevelFlag.Name))
	if err != nil {
		return err
	}
	l := Logger(os.Stderr, lvl)

	if addr := ctx.String(RunStatsAddrFlag.Name); addr != "" {
		defer startStatsView(addr, l)()
	}

	format, err := trace.ParseFormat(ctx.String(RunTraceFormatFlag.Name))
	if err != nil {
		return err
	}

	state, err := loadState(ctx)
	if err != nil {
		return err
	}
	l.Info("loaded program", "size", state.ProgramSize, "memory", state.Memory.Capacity(), "pc", HexU32(state.PC))

	out, closeOut, err := openTrace(ctx.Path(RunTraceFlag.Name))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeOut(); err != nil {
			l.Error("failed to close trace output", "err", err)
		}
	}()
	tw := trace.NewWriter(out, format)
	q := trace.NewQueue(ctx.Int(RunTraceCapacityFlag.Name))

	opts := []vm.Option{
		vm.WithStrict(ctx.Bool(RunStrictFlag.Name)),
		vm.WithMaxSteps(ctx.Uint64(RunMaxStepsFlag.Name)),
	}
	buffered := ctx.Bool(RunTraceBufferedFlag.Name)
	if buffered {
		opts = append(opts, vm.WithSink(trace.SinkFunc(q.TryPut)))
	} else {
		opts = append(opts, vm.WithSink(q))
	}
	r := &runner{
		log:    l,
		us:     vm.NewInstrumentedState(state, opts...),
		infoAt: ctx.Uint64(RunInfoAtFlag.Name),
	}

	var runErr error
	if buffered {
		runErr = r.loop(ctx.Context)
		// records of a failed run are still worth writing out
		if err := trace.DrainAvailable(q, tw); err != nil {
			return errors.Join(runErr, err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx.Context)
		g.Go(func() error {
			defer q.Close()
			return r.loop(gctx)
		})
		g.Go(func() error {
			return trace.Drain(q, tw)
		})
		runErr = g.Wait()
	}
	if runErr != nil {
		if vm.IsFault(runErr) {
			l.Error("vm fault", "step", state.Step, "pc", HexU32(state.PC), "err", runErr)
		}
		return runErr
	}

	l.Info("halted",
		"reason", state.HaltReason,
		"steps", state.Step,
		"pc", HexU32(state.PC),
		"traced", tw.Count(),
		"stateHash", state.EncodeWitness().StateHash(),
	)

	if outPath := ctx.Path(RunOutputFlag.Name); outPath != "" {
		if err := jsonutil.WriteJSON[*vm.VMState](outPath, state, OutFilePerm); err != nil {
			return fmt.Errorf("failed to write state output: %w", err)
		}
	}
	return nil
}

var RunCommand = &cli.Command{
	Name:        "run",
	Usage:       "Run a program and write its execution trace",
	Description: "Run an rv32im program from a flat binary or JSON state, writing one trace record per executed instruction.",
	Action:      Run,
	Flags: []cli.Flag{
		RunBinFlag,
		RunInputFlag,
		RunOutputFlag,
		MemorySizeFlag,
		RunTraceFlag,
		RunTraceFormatFlag,
		RunTraceCapacityFlag,
		RunTraceBufferedFlag,
		RunMaxStepsFlag,
		RunStrictFlag,
		RunInfoAtFlag,
		RunPProfCPU,
		RunStatsAddrFlag,
		LogLevelFlag,
	},
}
