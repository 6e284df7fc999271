// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
	if d, err := cfg.Timeout(); err != nil || d != 10*time.Second {
		t.Errorf("Timeout() = %v, %v; want 10s, nil", d, err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
login: deploy
jumpbox: bastion.example.com
workers: 32
connect_timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Login != "deploy" {
		t.Errorf("Login = %q, want %q", cfg.Login, "deploy")
	}
	if cfg.Jumpbox != "bastion.example.com" {
		t.Errorf("Jumpbox = %q, want %q", cfg.Jumpbox, "bastion.example.com")
	}
	if cfg.Workers != 32 {
		t.Errorf("Workers = %d, want 32", cfg.Workers)
	}
	// Unset fields keep their defaults.
	if cfg.Port != 22 {
		t.Errorf("Port = %d, want default 22", cfg.Port)
	}
	if d, err := cfg.Timeout(); err != nil || d != 5*time.Second {
		t.Errorf("Timeout() = %v, %v; want 5s, nil", d, err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadFile() of a missing file succeeded, want error")
	}
}

func TestExpandVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
identity_file: ${MUSTER_TEST_KEYDIR}/id_ed25519
known_hosts_file: ${MUSTER_TEST_ABSENT:-/etc/ssh/ssh_known_hosts}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	t.Setenv("MUSTER_TEST_KEYDIR", "/home/deploy/.ssh")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if got, want := cfg.IdentityFile, "/home/deploy/.ssh/id_ed25519"; got != want {
		t.Errorf("IdentityFile = %q, want %q", got, want)
	}
	if got, want := cfg.KnownHostsFile, "/etc/ssh/ssh_known_hosts"; got != want {
		t.Errorf("KnownHostsFile = %q, want %q", got, want)
	}
}

func TestKnownHostsNoneDisables(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.KnownHostsFile = "none"
	if got := cfg.KnownHosts(); got != "" {
		t.Errorf("KnownHosts() = %q, want empty", got)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := &Config{Port: 0, Workers: 0, ConnectTimeout: "soon"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	message := err.Error()
	for _, fragment := range []string{"port", "workers", "connect_timeout"} {
		if !strings.Contains(message, fragment) {
			t.Errorf("Validate() error %q missing %q", message, fragment)
		}
	}
}

func TestLoadPrefersExplicitPath(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("login: fromflag\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	envPath := filepath.Join(dir, "env.yaml")
	if err := os.WriteFile(envPath, []byte("login: fromenv\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	t.Setenv("MUSTER_CONFIG", envPath)

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Login != "fromflag" {
		t.Errorf("Login = %q, want %q (explicit path wins)", cfg.Login, "fromflag")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Login != "fromenv" {
		t.Errorf("Login = %q, want %q (MUSTER_CONFIG)", cfg.Login, "fromenv")
	}
}
