// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/muster-ops/muster/cmd/muster/cli"
	"github.com/muster-ops/muster/lib/version"
)

// Root builds and returns the complete muster command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "muster",
		Description: `Muster: run a script on many hosts in parallel over SSH.

A host pattern like 'web{01..20}.example.com' expands to a host set.
Every host gets the same script streamed to a non-interactive shell
over its own SSH connection, and each host's outcome is reported as a
single line.`,
		Subcommands: []*cli.Command{
			runCommand(),
			expandCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Printf("muster %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Check uptime across a numbered fleet",
				Command:     "muster run --script uptime.sh 'web{01..20}.example.com'",
			},
			{
				Description: "Reach two racks through a bastion",
				Command:     "muster run -s restart.sh -J bastion.example.com 'db{1..4}.{east,west}.example.com'",
			},
			{
				Description: "Preview an expansion without connecting anywhere",
				Command:     "muster expand 'app{a,b}{1..3}'",
			},
		},
	}
}
