// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package fanout

import (
	"time"

	"github.com/muster-ops/muster/lib/script"
)

// Job is one unit of work: run the script on one host. Jobs are
// immutable once created and each is consumed by exactly one worker.
type Job struct {
	// Host is the target hostname, with an optional ":port" suffix.
	Host string

	// Script is the shared script snapshot streamed to the host.
	Script script.Script

	// Jumpbox, when non-empty, routes the connection through this
	// intermediate host. It is carried on every Job rather than held
	// as shared state so the executor never consults anything ambient.
	Jumpbox string
}

// FailureKind classifies why a job failed. The zero value means the
// job succeeded.
type FailureKind int

const (
	// FailureNone marks a successful job.
	FailureNone FailureKind = iota

	// ConnectionTimeout: no connection established within the bound.
	ConnectionTimeout

	// HostUnreachable: network-level failure before the SSH handshake
	// (DNS, refused, no route).
	HostUnreachable

	// AuthenticationFailure: the handshake completed but the host
	// rejected our credentials, or auth material could not be loaded.
	AuthenticationFailure

	// ScriptExecutionError: the session ran and the remote command
	// exited non-zero or died abnormally.
	ScriptExecutionError

	// RunCancelled: the whole run was interrupted while this job was
	// in flight.
	RunCancelled
)

// String returns the form printed in report lines.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case ConnectionTimeout:
		return "connection timeout"
	case HostUnreachable:
		return "host unreachable"
	case AuthenticationFailure:
		return "authentication failure"
	case ScriptExecutionError:
		return "script error"
	case RunCancelled:
		return "cancelled"
	default:
		return "unknown failure"
	}
}

// Token returns the machine-readable form used in JSON output. Empty
// for FailureNone.
func (k FailureKind) Token() string {
	switch k {
	case ConnectionTimeout:
		return "connection_timeout"
	case HostUnreachable:
		return "host_unreachable"
	case AuthenticationFailure:
		return "authentication_failure"
	case ScriptExecutionError:
		return "script_error"
	case RunCancelled:
		return "cancelled"
	default:
		return ""
	}
}

// Result is the terminal record of one job. Exactly one is produced
// per dispatched host on a completed run, success or failure; the
// executor never lets an error escape without producing one.
type Result struct {
	// Host is the job's target, as dispatched.
	Host string

	// Output is the captured combined stdout and stderr. May be
	// non-empty on failure if the command produced output before
	// dying.
	Output string

	// Kind classifies the failure. FailureNone on success.
	Kind FailureKind

	// Detail is the failure description shown in the report line.
	// Empty on success.
	Detail string

	// Duration is the wall-clock time the job took, stamped by the
	// dispatcher.
	Duration time.Duration
}

// OK reports whether the job succeeded.
func (r Result) OK() bool { return r.Kind == FailureNone }
