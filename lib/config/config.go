// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds site defaults for a run. Every field can be overridden
// by the corresponding flag.
type Config struct {
	// Login is the SSH login name. Empty means the current user.
	Login string `yaml:"login"`

	// IdentityFile is a private key file. Empty means ssh-agent only.
	IdentityFile string `yaml:"identity_file"`

	// KnownHostsFile is the known_hosts file used to verify host keys.
	// The literal value "none" disables verification.
	KnownHostsFile string `yaml:"known_hosts_file"`

	// Jumpbox routes every connection through this host when set.
	Jumpbox string `yaml:"jumpbox"`

	// Port is the SSH port for hosts without an explicit one.
	Port int `yaml:"port"`

	// Workers is the default worker pool size.
	Workers int `yaml:"workers"`

	// ConnectTimeout is the per-host connection deadline, as a
	// duration string ("10s", "1m").
	ConnectTimeout string `yaml:"connect_timeout"`
}

// Default returns the built-in configuration used when no config file
// exists.
func Default() *Config {
	return &Config{
		KnownHostsFile: "${HOME}/.ssh/known_hosts",
		Port:           22,
		Workers:        16,
		ConnectTimeout: "10s",
	}
}

// Load resolves and loads the configuration. An explicit path (from
// the --config flag) must exist; the MUSTER_CONFIG environment
// variable must point at an existing file when set; otherwise the
// default path is used if present and the built-in defaults if not.
func Load(explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		path = os.Getenv("MUSTER_CONFIG")
	}
	if path == "" {
		candidate, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(candidate); err != nil {
			cfg := Default()
			cfg.expandVariables()
			return cfg, nil
		}
		path = candidate
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path, layered over the built-in
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// DefaultPath returns ~/.config/muster/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "muster", "config.yaml"), nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	c.IdentityFile = expandVars(c.IdentityFile)
	c.KnownHostsFile = expandVars(c.KnownHostsFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Timeout parses the connect timeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.ConnectTimeout)
	if err != nil {
		return 0, fmt.Errorf("connect_timeout: %w", err)
	}
	return d, nil
}

// KnownHosts returns the known_hosts path, or "" when verification is
// disabled with the literal value "none".
func (c *Config) KnownHosts() string {
	if c.KnownHostsFile == "none" {
		return ""
	}
	return c.KnownHostsFile
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if d, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("connect_timeout must be positive, got %s", d))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
