// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so individual tests never hang on a channel that a bug left
// unserviced. The timeouts here are the only real wall-clock waits in
// the test suite; everything timer-driven goes through lib/clock.
//
// Helpers call t.Fatalf on failure rather than returning errors, since
// a test cannot recover from its fixtures not arriving.
package testutil
