// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Muster runs a script on many hosts in parallel over SSH. A host
// pattern like 'web{01..20}.example.com' expands to a host set, a
// bounded worker pool streams the script to a non-interactive shell on
// every host, and each host's outcome is reported as a single line.
// Subcommands: run (fan a script out), expand (preview a pattern),
// version (build metadata).
package main
