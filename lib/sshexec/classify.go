// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package sshexec

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/muster-ops/muster/lib/fanout"
)

// dialError marks failures from before a session existed: TCP dialing
// and the SSH handshake.
type dialError struct{ err error }

func (e *dialError) Error() string { return e.err.Error() }
func (e *dialError) Unwrap() error { return e.err }

// authError marks failures preparing credentials, before any network
// traffic.
type authError struct{ err error }

func (e *authError) Error() string { return e.err.Error() }
func (e *authError) Unwrap() error { return e.err }

// classify maps an execution error onto the failure taxonomy shown to
// the user. The mapping is total: unknown dial failures count as
// unreachable hosts and unknown session failures count as script
// errors, so every error lands in exactly one bucket.
func classify(err error) (fanout.FailureKind, string) {
	if err == nil {
		return fanout.FailureNone, ""
	}

	var auth *authError
	if errors.As(err, &auth) {
		return fanout.AuthenticationFailure, auth.err.Error()
	}
	var dial *dialError
	if errors.As(err, &dial) {
		return classifyDial(dial.err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fanout.RunCancelled, "interrupted before completion"
	}

	var exitErr interface{ ExitStatus() int }
	if errors.As(err, &exitErr) {
		return fanout.ScriptExecutionError, fmt.Sprintf("exit status %d", exitErr.ExitStatus())
	}
	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		return fanout.ScriptExecutionError, "remote exited without status"
	}
	return fanout.ScriptExecutionError, err.Error()
}

// classifyDial distinguishes the connection-phase failures. The SSH
// handshake surfaces authentication rejections and host key mismatches
// as opaque handshake errors, so those are matched before the generic
// timeout and reachability buckets.
func classifyDial(err error) (fanout.FailureKind, string) {
	if errors.Is(err, context.Canceled) {
		return fanout.RunCancelled, "interrupted before completion"
	}

	message := err.Error()

	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) ||
		strings.Contains(message, "unable to authenticate") ||
		strings.Contains(message, "no supported methods remain") {
		return fanout.AuthenticationFailure, message
	}

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) ||
		errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(message, "i/o timeout") {
		return fanout.ConnectionTimeout, message
	}

	return fanout.HostUnreachable, message
}
