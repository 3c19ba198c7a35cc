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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads and parses a YAML config file, applies ${VAR}
// substitution, and fills in defaults for anything left unset. It does
// not apply the SDTP_* environment overrides Load layers on top — call
// Load instead unless a caller specifically wants the raw file content.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	substituted := SubstituteEnvVars(string(data))
	var cfg Config
	if err := yaml.Unmarshal([]byte(substituted), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	setDefaults(&cfg)
	return &cfg, nil
}

// SaveToFile writes cfg to path as YAML, with 0600 permissions since a
// CAConfig.KeyPassphraseEnv/BootstrapSecretEnv referenced name is
// typically adjacent to a real secret in the same deployment directory.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// setDefaults fills in the zero-value fields a fresh deployment is
// unlikely to want left blank.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = GetEnvironment()
	}
	if cfg.CA.ListenAddr == "" {
		cfg.CA.ListenAddr = "0.0.0.0:8443"
	}
	if cfg.CA.KeyBits <= 0 {
		cfg.CA.KeyBits = 2048
	}
	if cfg.CA.MaxInFlightRequests <= 0 {
		cfg.CA.MaxInFlightRequests = 64
	}
	if cfg.Peer.MaxChunk <= 0 {
		cfg.Peer.MaxChunk = 32 * 1024
	}
	if cfg.Peer.ReceiveDir == "" {
		cfg.Peer.ReceiveDir = "."
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = "127.0.0.1:9090"
	}
}
