// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package hostpattern

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPattern is wrapped by every error Expand returns. Callers
// match it with errors.Is to distinguish malformed patterns from other
// failures.
var ErrInvalidPattern = errors.New("invalid host pattern")

// Expand turns a host pattern into the list of hostnames it denotes.
// The list is fully materialized and its length is the product of the
// group sizes, so a pattern like "rack{1..40}node{01..24}" yields 960
// entries.
func Expand(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: pattern is empty", ErrInvalidPattern)
	}

	segments, err := parse(pattern)
	if err != nil {
		return nil, err
	}

	hosts := []string{""}
	for _, alternatives := range segments {
		next := make([]string, 0, len(hosts)*len(alternatives))
		for _, prefix := range hosts {
			for _, alt := range alternatives {
				next = append(next, prefix+alt)
			}
		}
		hosts = next
	}
	return hosts, nil
}

// parse splits the pattern into segments. Each segment is the list of
// alternatives it contributes to the cross product; a literal segment
// contributes exactly one.
func parse(pattern string) ([][]string, error) {
	var segments [][]string
	var literal strings.Builder

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '}':
			return nil, fmt.Errorf("%w: unmatched %q at position %d", ErrInvalidPattern, "}", i)
		case '{':
			end := strings.IndexByte(pattern[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed %q at position %d", ErrInvalidPattern, "{", i)
			}
			body := pattern[i+1 : i+1+end]
			if strings.ContainsRune(body, '{') {
				return nil, fmt.Errorf("%w: nested group in %q", ErrInvalidPattern, "{"+body)
			}
			if literal.Len() > 0 {
				segments = append(segments, []string{literal.String()})
				literal.Reset()
			}
			alternatives, err := expandGroup(body)
			if err != nil {
				return nil, err
			}
			segments = append(segments, alternatives)
			i += end + 1
		default:
			literal.WriteByte(pattern[i])
		}
	}

	if literal.Len() > 0 {
		segments = append(segments, []string{literal.String()})
	}
	return segments, nil
}

// expandGroup expands the body of one brace group into its
// alternatives. A body containing ".." and no comma is an integer
// range; anything else is a comma alternation.
func expandGroup(body string) ([]string, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty group", ErrInvalidPattern)
	}

	if strings.Contains(body, "..") && !strings.Contains(body, ",") {
		return expandRange(body)
	}

	alternatives := strings.Split(body, ",")
	for _, alt := range alternatives {
		if alt == "" {
			return nil, fmt.Errorf("%w: empty alternative in {%s}", ErrInvalidPattern, body)
		}
	}
	return alternatives, nil
}

// expandRange expands "m..n" into the integers m through n inclusive.
// If either endpoint carries a leading zero, every value is padded to
// the wider endpoint's width.
func expandRange(body string) ([]string, error) {
	bounds := strings.SplitN(body, "..", 2)
	startText, endText := bounds[0], bounds[1]

	start, err := parseBound(startText, body)
	if err != nil {
		return nil, err
	}
	end, err := parseBound(endText, body)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, fmt.Errorf("%w: inverted range {%s}", ErrInvalidPattern, body)
	}

	width := 0
	if zeroPadded(startText) || zeroPadded(endText) {
		width = max(len(startText), len(endText))
	}

	values := make([]string, 0, end-start+1)
	for v := start; v <= end; v++ {
		if width > 0 {
			values = append(values, fmt.Sprintf("%0*d", width, v))
		} else {
			values = append(values, strconv.Itoa(v))
		}
	}
	return values, nil
}

func parseBound(text, body string) (int, error) {
	if text == "" {
		return 0, fmt.Errorf("%w: missing range bound in {%s}", ErrInvalidPattern, body)
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, fmt.Errorf("%w: non-numeric range bound %q in {%s}", ErrInvalidPattern, text, body)
		}
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: range bound %q in {%s}: %v", ErrInvalidPattern, text, body, err)
	}
	return value, nil
}

func zeroPadded(text string) bool {
	return len(text) > 1 && text[0] == '0'
}
