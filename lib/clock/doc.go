// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so timer-driven
// code can be tested without real waiting.
//
// Production code takes a Clock instead of calling time.Now,
// time.Since, or time.NewTicker directly. Real() is the standard
// library behavior; Fake() stands still until Advance is called.
//
// The dispatcher's progress ticker is the main consumer: a test
// starts a run against a FakeClock, waits for the ticker to register
// with WaitForTickers, then fires it deterministically with Advance.
// Per-job durations come from Now/Since on the same clock, so fake
// runs report exact, reproducible timings.
package clock
