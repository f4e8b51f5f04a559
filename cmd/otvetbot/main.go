package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/otvetbot/internal/buildinfo"
	"github.com/dmitrijs2005/otvetbot/internal/cli"
	"github.com/dmitrijs2005/otvetbot/internal/config"
	"golang.org/x/term"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code: 0 when the question stream ends or the
// process is interrupted, 1 on startup failure or exhausted quota.
func run() int {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// A second interrupt kills the process if shutdown hangs.
	context.AfterFunc(ctx, stop)

	// An interrupted password prompt leaves echo off.
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		if st, err := term.GetState(fd); err == nil {
			defer term.Restore(fd, st)
		}
	}

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	app, err := cli.NewApp(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		return 1
	}

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}
