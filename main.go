package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/rvuser/rvemu/rvgo/cmd"
)

func main() {
	app := &cli.App{
		Name:        "rvemu",
		Usage:       "a user-mode RISC-V instruction-set emulator",
		Description: "loads a statically linked RISC-V ELF and runs it to completion, forwarding a minimal syscall set to the host",
		// Help is handled by cmd.HelpFlag/cmd.Run so -h/--help can exit 9
		// per spec.md §6, instead of urfave/cli's built-in exit-0 help.
		HideHelp:        true,
		HideHelpCommand: true,
		Commands:        []*cli.Command{cmd.RunCommand},
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		if ctx.Err() != nil {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(9)
	}
}
