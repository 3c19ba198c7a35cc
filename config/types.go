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

// Package config loads the YAML configuration files for the two SDTP
// entrypoints (a CA enrollment server and a peer), layering environment
// variable substitution and overrides on top, in the teacher's
// LoadFromFile/env-substitution/applyEnvironmentOverrides style.
package config

// CAConfig configures the CA enrollment server (cmd/ca-server,
// SPEC_FULL.md §5): its listen address, where its RSA key pair lives on
// disk, and its optional durable client-table backend.
type CAConfig struct {
	ListenAddr          string `yaml:"listen_addr"`
	KeyPath             string `yaml:"key_path"`
	KeyPassphraseEnv    string `yaml:"key_passphrase_env"`
	KeyBits             int    `yaml:"key_bits"`
	SnapshotPath        string `yaml:"snapshot_path"`
	PostgresDSNEnv      string `yaml:"postgres_dsn_env"`
	BootstrapSecretEnv  string `yaml:"bootstrap_secret_env"`
	MaxInFlightRequests int    `yaml:"max_in_flight_requests"`
}

// PeerConfig configures a peer process (cmd/sdtp-peer): its own
// enrollment identity, which CA public key to trust for
// certificate-mode handshakes, and the session defaults it opens new
// sessions with.
type PeerConfig struct {
	ID               string `yaml:"id"`
	KeyPath          string `yaml:"key_path"`
	KeyPassphraseEnv string `yaml:"key_passphrase_env"`
	CertPath         string `yaml:"cert_path"`
	CAPublicKeyPath  string `yaml:"ca_public_key_path"`
	Compress         bool   `yaml:"compress"`
	MaxChunk         int    `yaml:"max_chunk"`
	ReceiveDir       string `yaml:"receive_dir"`
}

// LoggingConfig carries the logging section of a config file; Load
// lets SDTP_LOG_LEVEL override Level. Nothing in this module applies
// these values to internal/logger, whose NewDefaultLogger reads only
// SDTP_LOG_LEVEL from the environment.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	PrettyPrint bool   `yaml:"pretty_print"`
}

// MetricsConfig controls whether and where the Prometheus metrics
// registry (metrics.go) is exposed.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Config is the top-level configuration document. Exactly one of CA or
// Peer is normally populated for a given process, but both are left
// addressable so a single file can describe a whole local deployment
// for integration testing.
type Config struct {
	Environment string        `yaml:"environment"`
	CA          CAConfig      `yaml:"ca"`
	Peer        PeerConfig    `yaml:"peer"`
	Logging     LoggingConfig `yaml:"logging"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
