package cmd

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/rv32im/rvtrace/rvgo/trace"
	"github.com/rv32im/rvtrace/rvgo/vm"
)

// addi x1, x0, 5; addi x2, x0, 7; add x3, x1, x2; sw x3, 0x100(x0)
var sumProgram = []uint32{0x00500093, 0x00700113, 0x002081B3, 0x10302023}

func writeBin(t *testing.T, words ...uint32) string {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	path := filepath.Join(t.TempDir(), "program.bin")
	require.NoError(t, os.WriteFile(path, out, 0o644))
	return path
}

func runApp(args ...string) (string, error) {
	var out bytes.Buffer
	app := cli.NewApp()
	app.Name = "rvgo"
	app.Writer = &out
	app.Commands = []*cli.Command{LoadBinCommand, LoadELFCommand, RunCommand, WitnessCommand}
	err := app.Run(append([]string{"rvgo"}, args...))
	return out.String(), err
}

func TestLoadBin(t *testing.T) {
	bin := writeBin(t, sumProgram...)
	out := filepath.Join(t.TempDir(), "state.json")

	_, err := runApp("load-bin", "--path", bin, "--out", out, "--memory-size", "65536")
	require.NoError(t, err)

	state, err := jsonutil.LoadJSON[vm.VMState](out)
	require.NoError(t, err)
	require.Equal(t, uint32(16), state.ProgramSize)
	require.Equal(t, uint32(65536), state.Memory.Capacity())
	require.Equal(t, uint32(65536), state.Registers.Get(2))
	require.Equal(t, sumProgram[0], state.Instr())

	t.Run("zero memory", func(t *testing.T) {
		_, err := runApp("load-bin", "--path", bin, "--out", out, "--memory-size", "0")
		require.ErrorContains(t, err, "memory size")
	})

	t.Run("does not fit", func(t *testing.T) {
		_, err := runApp("load-bin", "--path", bin, "--out", out, "--memory-size", "8")
		require.ErrorContains(t, err, "does not fit")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runApp("load-bin", "--path", filepath.Join(t.TempDir(), "nope.bin"), "--out", out)
		require.ErrorContains(t, err, "failed to read program")
	})
}

func TestLoadELF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "state.json")

	// a flat binary is not an ELF file
	_, err := runApp("load-elf", "--path", writeBin(t, sumProgram...), "--out", out)
	require.ErrorContains(t, err, "failed to open ELF file")
}

func TestRun(t *testing.T) {
	bin := writeBin(t, sumProgram...)
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "log.txt")
	outPath := filepath.Join(dir, "out.json")

	_, err := runApp("run", "--bin", bin, "--trace", tracePath, "--output", outPath, "--trace-capacity", "2")
	require.NoError(t, err)

	dat, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	text := string(dat)
	require.Equal(t, 4, strings.Count(text, "PC="))
	require.True(t, strings.HasPrefix(text, "PC=00000000\n[00500093]\nx01=00000005\n"))
	require.Contains(t, text, "STORE___width=02_base=00_src=03_offset=0256\n")

	state, err := jsonutil.LoadJSON[vm.VMState](outPath)
	require.NoError(t, err)
	require.True(t, state.Exited)
	require.Equal(t, vm.HaltEndOfProgram, state.HaltReason)
	require.Equal(t, uint64(4), state.Step)
	require.Equal(t, uint32(12), state.Registers.Get(3))
	v, err := state.Memory.Load(0x100, 32)
	require.NoError(t, err)
	require.Equal(t, uint32(12), v)
}

func TestRunResume(t *testing.T) {
	bin := writeBin(t, sumProgram...)
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	midPath := filepath.Join(dir, "mid.json")
	finalPath := filepath.Join(dir, "final.json")
	tracePath := filepath.Join(dir, "log.txt")

	_, err := runApp("load-bin", "--path", bin, "--out", statePath)
	require.NoError(t, err)

	_, err = runApp("run", "--input", statePath, "--output", midPath, "--trace", tracePath, "--max-steps", "2")
	require.NoError(t, err)
	mid, err := jsonutil.LoadJSON[vm.VMState](midPath)
	require.NoError(t, err)
	require.Equal(t, vm.HaltStepLimit, mid.HaltReason)
	require.Equal(t, uint64(2), mid.Step)
	require.Equal(t, uint32(8), mid.PC)

	_, err = runApp("run", "--input", midPath, "--output", finalPath, "--trace", tracePath, "--trace-format", "json")
	require.NoError(t, err)
	final, err := jsonutil.LoadJSON[vm.VMState](finalPath)
	require.NoError(t, err)
	require.Equal(t, vm.HaltEndOfProgram, final.HaltReason)
	require.Equal(t, uint32(12), final.Registers.Get(3))

	dat, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(dat)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"step":2`)
}

func TestRunErrors(t *testing.T) {
	bin := writeBin(t, sumProgram...)
	tracePath := filepath.Join(t.TempDir(), "log.txt")

	t.Run("no input", func(t *testing.T) {
		_, err := runApp("run", "--trace", tracePath)
		require.ErrorContains(t, err, "is required")
	})

	t.Run("both inputs", func(t *testing.T) {
		_, err := runApp("run", "--bin", bin, "--input", bin, "--trace", tracePath)
		require.ErrorContains(t, err, "mutually exclusive")
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := runApp("run", "--bin", bin, "--trace", tracePath, "--trace-format", "xml")
		require.ErrorContains(t, err, "unknown trace format")
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := runApp("run", "--bin", bin, "--trace", tracePath, "--log.level", "loud")
		require.ErrorContains(t, err, "unknown log level")
	})

	t.Run("strict", func(t *testing.T) {
		ecall := writeBin(t, 0x00500093, 0x00000073)
		_, err := runApp("run", "--bin", ecall, "--trace", tracePath)
		require.NoError(t, err)
		_, err = runApp("run", "--bin", ecall, "--trace", tracePath, "--strict")
		require.ErrorIs(t, err, vm.ErrUnsupportedInstruction)
	})

	t.Run("memory fault", func(t *testing.T) {
		// lw x2, -4(x0)
		fault := writeBin(t, 0xFFC02103)
		_, err := runApp("run", "--bin", fault, "--trace", tracePath)
		require.ErrorIs(t, err, vm.ErrOutOfBounds)
	})
}

func TestRunBuffered(t *testing.T) {
	bin := writeBin(t, sumProgram...)
	tracePath := filepath.Join(t.TempDir(), "log.txt")

	_, err := runApp("run", "--bin", bin, "--trace", tracePath, "--trace-buffered", "--trace-capacity", "4")
	require.NoError(t, err)
	dat, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Equal(t, 4, strings.Count(string(dat), "PC="))

	_, err = runApp("run", "--bin", bin, "--trace", tracePath, "--trace-buffered", "--trace-capacity", "2")
	require.ErrorIs(t, err, trace.ErrQueueFull)
	// records accepted before the queue filled up are still written
	dat, err = os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(dat), "PC="))
}

func TestWitness(t *testing.T) {
	bin := writeBin(t, sumProgram...)
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	witnessPath := filepath.Join(dir, "witness.json")

	_, err := runApp("run", "--bin", bin, "--trace", filepath.Join(dir, "log.txt"), "--output", statePath)
	require.NoError(t, err)
	state, err := jsonutil.LoadJSON[vm.VMState](statePath)
	require.NoError(t, err)
	expected := state.EncodeWitness()

	stdout, err := runApp("witness", "--input", statePath, "--output", witnessPath)
	require.NoError(t, err)
	require.Equal(t, expected.StateHash().Hex()+"\n", stdout)

	out, err := jsonutil.LoadJSON[WitnessOutput](witnessPath)
	require.NoError(t, err)
	require.Len(t, out.Witness, vm.StateWitnessSize)
	require.Equal(t, []byte(expected), []byte(out.Witness))
	require.Equal(t, expected.StateHash(), out.StateHash)

	t.Run("no output file", func(t *testing.T) {
		stdout, err := runApp("witness", "--input", statePath)
		require.NoError(t, err)
		require.Equal(t, expected.StateHash().Hex()+"\n", stdout)
	})

	t.Run("missing memory", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(empty, []byte(`{"pc":0}`), 0o644))
		_, err := runApp("witness", "--input", empty)
		require.ErrorContains(t, err, "missing memory")
	})
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"trace", "debug", "info", "warn", "error", "INFO", ""} {
		_, err := ParseLevel(name)
		require.NoError(t, err, name)
	}
	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestHexU32(t *testing.T) {
	require.Equal(t, "0000abcd", HexU32(0xABCD).String())
	text, err := HexU32(0xFFFFFFFF).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "ffffffff", string(text))
}
