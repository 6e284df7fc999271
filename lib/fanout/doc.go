// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package fanout dispatches one script to many hosts under a bounded
// worker pool.
//
// A Dispatcher seeds a queue with the expanded host list, starts
// exactly Workers goroutines, and has each worker pull a host, run
// the job through a Runner, and hand the Result to a Reporter. It
// returns only after the queue is drained and every in-flight job has
// reported, so a completed Dispatch means one Result per host.
//
// Results reach the Reporter in completion order, which depends on
// network latency and is not the queue order. Callers that need a
// stable order must sort downstream; the dispatcher will not.
//
// Cancelling the context stops workers from pulling new hosts and is
// observed by in-flight executions. Dispatch then returns early with
// the context's error and a tally of what completed; hosts never
// started produce no Result.
package fanout
