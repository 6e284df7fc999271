// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	var gotLogger *slog.Logger

	root := &Command{
		Name: "muster",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "expand",
				Run: func(_ context.Context, args []string, logger *slog.Logger) error {
					called = "expand"
					gotLogger = logger
					return nil
				},
			},
		},
	}

	logger := testLogger()
	if err := root.Execute(context.Background(), []string{"expand"}, logger); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "expand" {
		t.Errorf("dispatched to %q, want %q", called, "expand")
	}
	if gotLogger != logger {
		t.Error("Run did not receive the logger passed to Execute")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "muster",
		Subcommands: []*Command{
			{
				Name: "config",
				Subcommands: []*Command{
					{
						Name: "show",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							called = "config show"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"config", "show", "extra-arg"}, testLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "config show" {
		t.Errorf("dispatched to %q, want %q", called, "config show")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var scriptPath string
	var pattern string

	command := &Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringVar(&scriptPath, "script", "", "script to execute")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				pattern = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--script", "ping.sh", "web{1..3}"}, testLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if scriptPath != "ping.sh" {
		t.Errorf("scriptPath = %q, want %q", scriptPath, "ping.sh")
	}
	if pattern != "web{1..3}" {
		t.Errorf("pattern = %q, want %q", pattern, "web{1..3}")
	}
}

func TestCommand_Execute_ShorthandFlags(t *testing.T) {
	var scriptPath string
	var workers int

	command := &Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringVarP(&scriptPath, "script", "s", "", "script to execute")
			flagSet.IntVarP(&workers, "workers", "w", 16, "worker count")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error { return nil },
	}

	if err := command.Execute(context.Background(), []string{"-s", "ping.sh", "-w", "4", "web1"}, testLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if scriptPath != "ping.sh" {
		t.Errorf("scriptPath = %q, want %q", scriptPath, "ping.sh")
	}
	if workers != 4 {
		t.Errorf("workers = %d, want 4", workers)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.String("jumpbox", "", "bastion host")
			flagSet.String("script", "", "script to execute")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--jumpbpx", "bastion"}, testLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --jumpbox") {
		t.Errorf("error = %q, want suggestion for '--jumpbox'", errStr)
	}
	if !strings.Contains(errStr, "jumpbpx") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}

	var setup *SetupError
	if !errors.As(err, &setup) {
		t.Fatalf("error type = %T, want *SetupError", err)
	}
	if setup.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", setup.ExitCode())
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.String("script", "", "script to execute")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--zzzzzzzzz"}, testLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "muster",
		Subcommands: []*Command{
			{Name: "run"},
			{Name: "expand"},
			{Name: "version"},
		},
	}

	err := root.Execute(context.Background(), []string{"expnad"}, testLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"expand\"") {
		t.Errorf("error = %q, want suggestion for 'expand'", err.Error())
	}

	var setup *SetupError
	if !errors.As(err, &setup) {
		t.Fatalf("error type = %T, want *SetupError", err)
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "muster",
		Subcommands: []*Command{
			{Name: "run"},
			{Name: "expand"},
		},
	}

	err := root.Execute(context.Background(), []string{"zzzzzzz"}, testLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "muster",
				Summary: "Run a script on many hosts over SSH",
				Subcommands: []*Command{
					{Name: "run", Summary: "Execute a script across hosts"},
				},
			}

			if err := root.Execute(context.Background(), []string{helpArg}, testLogger()); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "muster",
		Subcommands: []*Command{
			{Name: "run", Summary: "Execute a script across hosts"},
		},
	}

	err := root.Execute(context.Background(), nil, testLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}

	var setup *SetupError
	if !errors.As(err, &setup) {
		t.Fatalf("error type = %T, want *SetupError", err)
	}
	if setup.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", setup.ExitCode())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "muster",
		Description: "Run a script on many hosts in parallel over SSH.",
		Subcommands: []*Command{
			{Name: "run", Summary: "Execute a script across a host set"},
			{Name: "expand", Summary: "Print the hosts a pattern expands to"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Check uptime across a numbered fleet",
				Command:     "muster run --script uptime.sh 'web{01..20}.example.com'",
			},
			{
				Description: "Preview an expansion without connecting anywhere",
				Command:     "muster expand 'db{1..3}.{east,west}'",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Run a script on many hosts in parallel over SSH.",
		"Usage:",
		"muster <command> [flags]",
		"Commands:",
		"run",
		"Execute a script across a host set",
		"expand",
		"Print the hosts a pattern expands to",
		"Examples:",
		"muster run --script uptime.sh",
		"muster expand 'db{1..3}.{east,west}'",
		"Run 'muster <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "run",
		Summary: "Execute a script across a host set",
		Usage:   "muster run <pattern> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringP("script", "s", "", "script to execute on every host")
			flagSet.IntP("workers", "w", 16, "maximum concurrent connections")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"muster run <pattern> [flags]",
		"Flags:",
		"script",
		"workers",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "muster"}
	run := &Command{Name: "run", parent: root}

	if got := root.fullName(); got != "muster" {
		t.Errorf("root.fullName() = %q, want %q", got, "muster")
	}
	if got := run.fullName(); got != "muster run" {
		t.Errorf("run.fullName() = %q, want %q", got, "muster run")
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 1}
	if err.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", err.ExitCode())
	}
	if !strings.Contains(err.Error(), "1") {
		t.Errorf("Error() = %q, should mention the code", err.Error())
	}
}

func TestSetupErrorWrapping(t *testing.T) {
	cause := errors.New("pattern broken")
	err := Setup("expand host pattern: %w", cause)

	if !errors.Is(err, cause) {
		t.Error("Setup() does not unwrap to its cause")
	}
	if err.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", err.ExitCode())
	}
	if got := err.Error(); got != "expand host pattern: pattern broken" {
		t.Errorf("Error() = %q", got)
	}
}
