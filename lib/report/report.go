// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/muster-ops/muster/lib/fanout"
)

// Options controls how results are rendered.
type Options struct {
	// JSON emits one JSON object per result instead of a text line.
	JSON bool

	// Color styles the host name of failed results. Output is plain
	// text when false.
	Color bool
}

// Reporter serializes results onto a single writer. It implements
// fanout.Reporter and is safe for concurrent use: each result is
// rendered off-lock and written under the mutex, so every result
// occupies exactly one uninterleaved line.
type Reporter struct {
	mu        sync.Mutex
	w         io.Writer
	json      bool
	failStyle lipgloss.Style
}

var _ fanout.Reporter = (*Reporter)(nil)

// New returns a Reporter writing to w. The renderer is pinned to an
// explicit profile so output does not depend on the environment lipgloss
// would otherwise detect.
func New(w io.Writer, opts Options) *Reporter {
	profile := termenv.Ascii
	if opts.Color {
		profile = termenv.ANSI256
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	return &Reporter{
		w:    w,
		json: opts.JSON,
		failStyle: renderer.NewStyle().
			Foreground(lipgloss.Color("196")). // bright red
			Bold(true),
	}
}

// Report writes one line for the result.
func (r *Reporter) Report(result fanout.Result) {
	var line string
	if r.json {
		line = r.jsonLine(result)
	} else {
		line = r.textLine(result)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, line)
}

func (r *Reporter) textLine(result fanout.Result) string {
	if result.OK() {
		return result.Host + ", " + flatten(result.Output)
	}
	return r.failStyle.Render(result.Host) + ", " + result.Kind.String() + ": " + flatten(result.Detail)
}

type jsonEntry struct {
	Host       string `json:"host"`
	OK         bool   `json:"ok"`
	Output     string `json:"output,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func (r *Reporter) jsonLine(result fanout.Result) string {
	entry := jsonEntry{
		Host:       result.Host,
		OK:         result.OK(),
		Output:     result.Output,
		Kind:       result.Kind.Token(),
		Error:      result.Detail,
		DurationMS: result.Duration.Milliseconds(),
	}
	// The entry holds only strings, a bool, and an int64, so Marshal
	// cannot fail on it.
	encoded, _ := json.Marshal(entry)
	return string(encoded)
}

// flatten collapses a possibly multi-line remote output into a single
// line: terminal escape sequences are stripped, every line break
// becomes one space, and surrounding whitespace is trimmed.
func flatten(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
