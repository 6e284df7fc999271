// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/muster-ops/muster/cmd/muster/cli"
	"github.com/muster-ops/muster/cmd/muster/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that have already written their own report return a
		// bare ExitError; don't add a redundant error line for those.
		var exit *cli.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}

		fmt.Fprintf(os.Stderr, "muster: %v\n", err)

		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run() error {
	// Ctrl-C and SIGTERM cancel the run context: workers stop pulling
	// hosts, in-flight sessions are torn down, and completed results
	// stay reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Root().Execute(ctx, os.Args[1:], cli.NewCommandLogger())
}
