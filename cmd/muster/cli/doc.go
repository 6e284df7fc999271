// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the command framework behind the muster
// binary: a tree of subcommands with pflag parsing, tabwriter help
// output, typo suggestions for unknown commands and flags, and the
// error types that decide the process exit code.
package cli
