// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the muster command tree: run, expand, and
// version. Each command wires flags and config resolution to the
// libraries that do the work; the execution logic lives in lib/.
package commands
