// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without printing an extra
// error message: the command has already written its own report. The
// run command returns code 1 through here when hosts failed, keeping
// "ran with failures" distinguishable from an unexpected error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this interface on
// returned errors to pick the process exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// SetupError marks failures from before any host was contacted: bad
// flags, an invalid host pattern, an unreadable script, a broken
// config file. Nothing has run and nothing will, so these exit with
// code 2 rather than the code-1 "ran with failures" status.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }

// Unwrap lets errors.Is and errors.As walk through to the cause.
func (e *SetupError) Unwrap() error { return e.Err }

// ExitCode returns 2, the could-not-run status.
func (e *SetupError) ExitCode() int { return 2 }

// Setup builds a *SetupError from a format string. The %w verb behaves
// as in fmt.Errorf, so sentinel causes stay reachable through the
// wrapper.
func Setup(format string, args ...any) *SetupError {
	return &SetupError{Err: fmt.Errorf(format, args...)}
}
