// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1}, // substitution
		{"abc", "ab", 1},  // deletion
		{"ab", "abc", 1},  // insertion
		{"abc", "bac", 2}, // transposition, counted as two edits
		{"kitten", "sitting", 3},
		{"expand", "expnad", 2},
		{"version", "vrsion", 1},
		{"run", "rnu", 2},
	}

	for _, test := range tests {
		t.Run(test.a+"/"+test.b, func(t *testing.T) {
			got := levenshtein(test.a, test.b)
			if got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestLevenshtein_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"abc", "abd"},
		{"hello", "helo"},
		{"expand", "expnad"},
	}

	for _, pair := range pairs {
		forward := levenshtein(pair[0], pair[1])
		reverse := levenshtein(pair[1], pair[0])
		if forward != reverse {
			t.Errorf("levenshtein(%q, %q) = %d, but reverse = %d",
				pair[0], pair[1], forward, reverse)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "run"},
		{Name: "expand"},
		{Name: "version"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"rnu", "run"},        // transposition
		{"expnad", "expand"},  // transposition
		{"expandd", "expand"}, // extra letter
		{"vrsion", "version"}, // missing letter
		{"zzzzzzzzz", ""},     // nothing close
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got := suggestCommand(test.input, commands)
			if got != test.want {
				t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestSuggestFlag(t *testing.T) {
	makeFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
		flagSet.StringP("script", "s", "", "")
		flagSet.StringP("jumpbox", "J", "", "")
		flagSet.String("known-hosts", "", "")
		flagSet.IntP("workers", "w", 16, "")
		flagSet.Bool("json", false, "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "close typo with double dash",
			args: []string{"--jumpbpx"},
			want: "--jumpbox",
		},
		{
			name: "close typo with single dash",
			args: []string{"-jumpbpx"},
			want: "--jumpbox",
		},
		{
			name: "workers typo",
			args: []string{"--wokers"},
			want: "--workers",
		},
		{
			name: "script typo with equals",
			args: []string{"--scirpt=ping.sh"},
			want: "--script",
		},
		{
			name: "nothing close",
			args: []string{"--zzzzzzzzz"},
			want: "",
		},
		{
			name: "no flags",
			args: []string{"web1"},
			want: "",
		},
		{
			name: "defined shorthand is skipped",
			args: []string{"-w", "--wokers"},
			want: "--workers",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := suggestFlag(test.args, makeFlagSet())
			if got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
