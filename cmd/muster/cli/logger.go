// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger handed to command Run
// functions. When stderr is a terminal, it uses slog.TextHandler for
// human-readable output. When stderr is piped or redirected (CI, cron,
// scripts), it switches to slog.JSONHandler so consumers get
// machine-parseable lines.
//
// Commands scope the logger with run-specific context via With():
//
//	logger := cli.NewCommandLogger().With("script", sc.Name)
func NewCommandLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
