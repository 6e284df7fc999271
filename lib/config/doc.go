// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads site defaults for muster runs.
//
// The config file is optional. It is found through, in order: the
// --config flag, the MUSTER_CONFIG environment variable, and
// ~/.config/muster/config.yaml. When none exists, built-in defaults
// apply. Flags always override config values, and config values
// override the built-ins; the file never silently wins over an
// explicit flag.
//
// Values may reference environment variables with ${VAR} or
// ${VAR:-fallback}, which is mainly useful for identity and
// known-hosts paths under ${HOME}.
package config
