// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/muster-ops/muster/cmd/muster/cli"
	"github.com/muster-ops/muster/lib/hostpattern"
)

func expandCommand() *cli.Command {
	return &cli.Command{
		Name:    "expand",
		Summary: "Print the hosts a pattern expands to",
		Description: `Expand a host pattern and print the resulting hosts one per line, in
the order a run would enqueue them. No connections are made; use this
to preview a pattern before handing it to 'muster run'.`,
		Usage: "muster expand <host-pattern>",
		Examples: []cli.Example{
			{
				Description: "Numbered range with zero-padding",
				Command:     "muster expand 'web{01..04}.example.com'",
			},
			{
				Description: "Cross product of two groups",
				Command:     "muster expand '{a,b}serv{1,2}'",
			},
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) == 0 {
				return cli.Setup("host pattern argument required\n\nUsage: muster expand <host-pattern>")
			}
			if len(args) > 1 {
				return cli.Setup("unexpected argument: %s", args[1])
			}
			return runExpand(os.Stdout, args[0])
		},
	}
}

// runExpand writes the expansion of pattern to w, one host per line.
func runExpand(w io.Writer, pattern string) error {
	hosts, err := hostpattern.Expand(pattern)
	if err != nil {
		return cli.Setup("expand host pattern: %w", err)
	}
	for _, host := range hosts {
		fmt.Fprintln(w, host)
	}
	return nil
}
