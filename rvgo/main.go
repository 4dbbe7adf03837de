package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/rv32im/rvtrace/rvgo/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "rvgo"
	app.Usage = "rv32im trace interpreter"
	app.Description = "Runs flat rv32im binaries and writes a per-instruction execution trace"
	app.Commands = []*cli.Command{
		cmd.LoadBinCommand,
		cmd.LoadELFCommand,
		cmd.RunCommand,
		cmd.WitnessCommand,
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			<-c
			cancel()
			fmt.Println("\r\nExiting...")
		}
	}()

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			_, _ = fmt.Fprintf(os.Stderr, "command interrupted")
			os.Exit(130)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v", err)
			os.Exit(1)
		}
	}
}
