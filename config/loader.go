// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoaderOptions controls where Load reads a config file and an optional
// .env file from.
type LoaderOptions struct {
	ConfigPath string
	EnvFile    string
}

// DefaultLoaderOptions looks for config.yaml and .env in the current
// directory, matching where cmd/ca-server and cmd/sdtp-peer run from by
// default.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		ConfigPath: "config.yaml",
		EnvFile:    ".env",
	}
}

// Load reads opts.EnvFile into the process environment (if present),
// then loads and defaults opts.ConfigPath, then applies SDTP_*
// environment variable overrides on top — the same three-layer
// precedence order (file defaults, then file content, then environment)
// the teacher's loader used for its blockchain config.
func Load(opts LoaderOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: load env file %s: %w", opts.EnvFile, err)
		}
	}

	var cfg *Config
	if opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); err == nil {
			cfg, err = LoadFromFile(opts.ConfigPath)
			if err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", opts.ConfigPath, err)
		}
	}
	if cfg == nil {
		cfg = &Config{}
		setDefaults(cfg)
	}

	applyEnvironmentOverrides(cfg)
	return cfg, nil
}

// LoadForEnvironment is a convenience wrapper that sets SDTP_ENV before
// calling Load, for callers (tests, multi-environment CLIs) that select
// a named environment without editing the process's own environment
// ahead of time.
func LoadForEnvironment(environment string, opts LoaderOptions) (*Config, error) {
	if err := os.Setenv(environmentVarName, environment); err != nil {
		return nil, fmt.Errorf("config: set %s: %w", environmentVarName, err)
	}
	return Load(opts)
}

// MustLoad calls Load and panics on error, for CLI main functions where
// a misconfigured deployment should fail fast and loud.
func MustLoad(opts LoaderOptions) *Config {
	cfg, err := Load(opts)
	if err != nil {
		panic(err)
	}
	return cfg
}

// applyEnvironmentOverrides lets a handful of environment variables win
// over whatever the config file set, for values operators commonly
// inject via the deployment environment rather than checking into a
// file: the CA's listen address, key path and snapshot path; the peer's
// id, key path, certificate path, CA public key path, receive directory
// and compression default; the log level; and metrics enablement and
// address. The Postgres DSN has no override here: it is always read
// from the variable CA.PostgresDSNEnv names (see PostgresDSN).
func applyEnvironmentOverrides(cfg *Config) {
	if v := os.Getenv("SDTP_CA_LISTEN_ADDR"); v != "" {
		cfg.CA.ListenAddr = v
	}
	if v := os.Getenv("SDTP_CA_KEY_PATH"); v != "" {
		cfg.CA.KeyPath = v
	}
	if v := os.Getenv("SDTP_CA_SNAPSHOT_PATH"); v != "" {
		cfg.CA.SnapshotPath = v
	}
	if v := os.Getenv("SDTP_PEER_ID"); v != "" {
		cfg.Peer.ID = v
	}
	if v := os.Getenv("SDTP_PEER_KEY_PATH"); v != "" {
		cfg.Peer.KeyPath = v
	}
	if v := os.Getenv("SDTP_PEER_CERT_PATH"); v != "" {
		cfg.Peer.CertPath = v
	}
	if v := os.Getenv("SDTP_PEER_CA_PUBLIC_KEY_PATH"); v != "" {
		cfg.Peer.CAPublicKeyPath = v
	}
	if v := os.Getenv("SDTP_PEER_RECEIVE_DIR"); v != "" {
		cfg.Peer.ReceiveDir = v
	}
	if v := os.Getenv("SDTP_PEER_COMPRESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Peer.Compress = b
		}
	}
	if v := os.Getenv("SDTP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SDTP_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("SDTP_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

// PostgresDSN resolves the CA's Postgres connection string from the
// environment variable named by CA.PostgresDSNEnv, or reports
// ErrMissingPostgresDSN if the field is set but the named variable is
// empty. An empty PostgresDSNEnv means the CA should use the in-memory
// Database instead of PostgresDatabase.
func (c *Config) PostgresDSN() (string, error) {
	if c.CA.PostgresDSNEnv == "" {
		return "", nil
	}
	dsn := os.Getenv(c.CA.PostgresDSNEnv)
	if dsn == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingPostgresDSN, c.CA.PostgresDSNEnv)
	}
	return dsn, nil
}

// ErrMissingPostgresDSN is returned by Config.PostgresDSN when
// CA.PostgresDSNEnv names an environment variable that is unset.
var ErrMissingPostgresDSN = errors.New("config: postgres dsn environment variable is unset")

// ValidateConfiguration checks that a Config is internally consistent
// enough to start a server or peer: a listen address for the CA, and a
// positive chunk size for the peer. It does not check filesystem paths
// exist, since Load may run before the key material it names has been
// provisioned.
func ValidateConfiguration(cfg *Config) error {
	if cfg.CA.ListenAddr == "" {
		return fmt.Errorf("config: ca.listen_addr must not be empty")
	}
	if cfg.Peer.MaxChunk <= 0 {
		return fmt.Errorf("config: peer.max_chunk must be positive")
	}
	if cfg.CA.KeyBits > 0 && cfg.CA.KeyBits < 512 {
		return fmt.Errorf("config: ca.key_bits must be at least 512")
	}
	return nil
}
