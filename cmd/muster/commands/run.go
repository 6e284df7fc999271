// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/user"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/muster-ops/muster/cmd/muster/cli"
	"github.com/muster-ops/muster/lib/config"
	"github.com/muster-ops/muster/lib/fanout"
	"github.com/muster-ops/muster/lib/hostpattern"
	"github.com/muster-ops/muster/lib/report"
	"github.com/muster-ops/muster/lib/script"
	"github.com/muster-ops/muster/lib/sshexec"
)

// progressInterval is how often an in-flight run logs its tally.
const progressInterval = 10 * time.Second

// runOptions holds the fully resolved inputs for a run: flags merged
// over config file values, with environment defaults applied.
type runOptions struct {
	pattern        string
	scriptPath     string
	workers        int
	jumpbox        string
	login          string
	identityFile   string
	knownHostsFile string
	connectTimeout time.Duration
	port           int
	jsonOutput     bool
	color          bool
}

func runCommand() *cli.Command {
	var (
		scriptPath     string
		workers        int
		jumpbox        string
		login          string
		identityFile   string
		connectTimeout time.Duration
		port           int
		knownHosts     string
		jsonOutput     bool
		noColor        bool
		configPath     string
	)

	// Execute invokes Flags before Run, so by the time the Run closure
	// uses parsedFlags it refers to the set Parse consumed. Changed()
	// distinguishes values the user set from flag defaults during the
	// config merge.
	var parsedFlags *pflag.FlagSet

	return &cli.Command{
		Name:    "run",
		Summary: "Execute a script across a host set",
		Description: `Expand a host pattern, then execute a local script on every host in
the set over SSH. The script is streamed to a non-interactive shell on
each host; nothing is copied to the target filesystem. A bounded worker
pool caps how many hosts are in flight at once.

Each host produces exactly one report line on stdout: the flattened
combined output on success, or a failure kind and detail when the host
could not be reached, authentication failed, or the script exited
non-zero. Line order is completion order, not host order.

Authentication is batch-mode only: an identity file, the local SSH
agent, or both. Muster never prompts for a password.`,
		Usage: "muster run --script <file> [flags] <host-pattern>",
		Examples: []cli.Example{
			{
				Description: "Check disk usage on twenty web hosts, four at a time",
				Command:     "muster run -s df.sh -w 4 'web{01..20}.example.com'",
			},
			{
				Description: "Use a bastion and a specific login",
				Command:     "muster run -s deploy.sh -J bastion.example.com -l deploy 'app{1..8}.internal'",
			},
			{
				Description: "Machine-readable output for a pipeline",
				Command:     "muster run -s audit.sh --json 'db{1..3}.example.com'",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringVarP(&scriptPath, "script", "s", "", "path to the script streamed to every host (required)")
			flagSet.IntVarP(&workers, "workers", "w", 16, "maximum concurrent SSH sessions")
			flagSet.StringVarP(&jumpbox, "jumpbox", "J", "", "bastion host to tunnel every connection through")
			flagSet.StringVarP(&login, "login", "l", "", "SSH login name (default: current user)")
			flagSet.StringVarP(&identityFile, "identity", "i", "", "private key file (default: ssh-agent)")
			flagSet.DurationVar(&connectTimeout, "connect-timeout", 10*time.Second, "per-host dial and handshake deadline")
			flagSet.IntVar(&port, "port", 22, "SSH port for hosts without an explicit one")
			flagSet.StringVar(&knownHosts, "known-hosts", "", `known_hosts file for host key checks ("none" disables)`)
			flagSet.BoolVar(&jsonOutput, "json", false, "emit one JSON object per host instead of text lines")
			flagSet.BoolVar(&noColor, "no-color", false, "disable coloring even on a terminal")
			flagSet.StringVar(&configPath, "config", "", "config file (default: ~/.config/muster/config.yaml)")
			parsedFlags = flagSet
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Setup("host pattern argument required\n\nUsage: muster run --script <file> [flags] <host-pattern>")
			}
			if len(args) > 1 {
				return cli.Setup("unexpected argument: %s", args[1])
			}
			if scriptPath == "" {
				return cli.Setup("--script is required")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return cli.Setup("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return cli.Setup("config: %w", err)
			}

			// Flags the user set win; the config file fills the rest.
			if !parsedFlags.Changed("workers") && cfg.Workers != 0 {
				workers = cfg.Workers
			}
			if !parsedFlags.Changed("jumpbox") && cfg.Jumpbox != "" {
				jumpbox = cfg.Jumpbox
			}
			if !parsedFlags.Changed("login") && cfg.Login != "" {
				login = cfg.Login
			}
			if !parsedFlags.Changed("identity") && cfg.IdentityFile != "" {
				identityFile = cfg.IdentityFile
			}
			if !parsedFlags.Changed("port") && cfg.Port != 0 {
				port = cfg.Port
			}
			if !parsedFlags.Changed("known-hosts") {
				knownHosts = cfg.KnownHosts()
			}
			if !parsedFlags.Changed("connect-timeout") {
				timeout, err := cfg.Timeout()
				if err != nil {
					return cli.Setup("config: %w", err)
				}
				connectTimeout = timeout
			}
			if knownHosts == "none" {
				knownHosts = ""
			}

			if login == "" {
				current, err := user.Current()
				if err != nil {
					return cli.Setup("resolve current user: %w", err)
				}
				login = current.Username
			}

			opts := runOptions{
				pattern:        args[0],
				scriptPath:     scriptPath,
				workers:        workers,
				jumpbox:        jumpbox,
				login:          login,
				identityFile:   identityFile,
				knownHostsFile: knownHosts,
				connectTimeout: connectTimeout,
				port:           port,
				jsonOutput:     jsonOutput,
				color:          !noColor && term.IsTerminal(int(os.Stdout.Fd())),
			}
			return executeRun(ctx, opts, nil, os.Stdout, logger)
		},
	}
}

// executeRun performs the pre-flight checks and dispatches the run. All
// validation happens before any network activity, so a failure here
// means no host was contacted and nothing was reported. The runner
// parameter exists for tests; nil builds the real SSH executor.
func executeRun(ctx context.Context, opts runOptions, runner fanout.Runner, stdout io.Writer, logger *slog.Logger) error {
	hosts, err := hostpattern.Expand(opts.pattern)
	if err != nil {
		return cli.Setup("expand host pattern: %w", err)
	}
	if opts.workers < 1 {
		return cli.Setup("%w: workers must be at least 1, got %d", fanout.ErrInvalidWorkerCount, opts.workers)
	}
	if opts.connectTimeout <= 0 {
		return cli.Setup("connect timeout must be positive, got %s", opts.connectTimeout)
	}
	if opts.port < 1 || opts.port > 65535 {
		return cli.Setup("port %d is out of range", opts.port)
	}
	sc, err := script.Load(opts.scriptPath)
	if err != nil {
		return cli.Setup("load script: %w", err)
	}

	logger.Info("starting run",
		"script", sc.Name,
		"digest", sc.ShortDigest(),
		"hosts", len(hosts),
		"workers", opts.workers)

	if runner == nil {
		runner = &sshexec.Executor{
			Login:          opts.login,
			IdentityFile:   opts.identityFile,
			KnownHostsFile: opts.knownHostsFile,
			Port:           opts.port,
			ConnectTimeout: opts.connectTimeout,
			Logger:         logger,
		}
	}

	dispatcher := &fanout.Dispatcher{
		Workers:          opts.workers,
		Jumpbox:          opts.jumpbox,
		Runner:           runner,
		Reporter:         report.New(stdout, report.Options{JSON: opts.jsonOutput, Color: opts.color}),
		Logger:           logger,
		ProgressInterval: progressInterval,
	}
	tally, err := dispatcher.Dispatch(ctx, hosts, sc)
	if err != nil {
		// The run started, so a partial run exits like a failed one.
		logger.Warn("run interrupted",
			"completed", tally.Completed,
			"failed", tally.Failed,
			"total", len(hosts))
		return &cli.ExitError{Code: 1}
	}
	if tally.Failed > 0 {
		logger.Warn("run completed with failures",
			"failed", tally.Failed,
			"total", len(hosts))
		return &cli.ExitError{Code: 1}
	}
	logger.Info("run completed", "hosts", tally.Completed)
	return nil
}
