// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package sshexec executes scripts on remote hosts over SSH.
//
// The executor runs in batch mode only. Authentication uses an
// identity file, the local SSH agent, or both; no code path ever
// prompts for a password. The script body is streamed to the remote
// shell over stdin, so nothing is staged on the target filesystem.
// Every failure is classified into one of the fanout failure kinds
// and reported as a Result rather than returned as an error.
package sshexec
