// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package script loads the local script that a run streams to every
// remote host.
//
// The file is read exactly once, before dispatch, so every host
// executes the same snapshot even if the file changes mid-run. The
// BLAKE3 digest computed at load time is logged at run start, letting
// operators tie a report back to the exact script content.
package script
