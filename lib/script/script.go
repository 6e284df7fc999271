// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Script is a loaded script file. The Body slice is shared read-only
// across every job in a run; nothing mutates it after Load returns.
type Script struct {
	// Name is the base name of the source file, used in logs.
	Name string

	// Path is the path the script was loaded from.
	Path string

	// Body is the full file content, streamed to each host's stdin.
	Body []byte

	// Digest is the hex-encoded BLAKE3 hash of Body.
	Digest string
}

// Load reads the script at path. A missing, unreadable, or
// non-regular file is an error; an empty file is not (it runs
// trivially on every host).
func Load(path string) (Script, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("reading script: %w", err)
	}
	sum := blake3.Sum256(body)
	return Script{
		Name:   filepath.Base(path),
		Path:   path,
		Body:   body,
		Digest: hex.EncodeToString(sum[:]),
	}, nil
}

// ShortDigest returns the first 12 hex characters of the digest, the
// form used in log lines.
func (s Script) ShortDigest() string {
	if len(s.Digest) < 12 {
		return s.Digest
	}
	return s.Digest[:12]
}
