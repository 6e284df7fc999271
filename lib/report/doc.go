// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders per-host results onto a shared writer.
//
// Results arrive from concurrent workers in completion order, which is
// not host order. Each result becomes exactly one output line, with
// embedded newlines flattened to spaces, and writes are serialized so
// lines from different hosts never interleave.
package report
