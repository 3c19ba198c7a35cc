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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileSubstitutesEnvAndDefaults(t *testing.T) {
	t.Setenv("TEST_LISTEN_ADDR", "127.0.0.1:9443")

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "ca:\n  listen_addr: \"${TEST_LISTEN_ADDR}\"\n  key_path: \"${MISSING_VAR:/etc/sdtp/ca.pem}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9443", cfg.CA.ListenAddr)
	assert.Equal(t, "/etc/sdtp/ca.pem", cfg.CA.KeyPath)
	assert.Equal(t, 2048, cfg.CA.KeyBits)
	assert.Equal(t, 32*1024, cfg.Peer.MaxChunk)
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("SDTP_CA_LISTEN_ADDR", "0.0.0.0:7000")
	t.Setenv("SDTP_PEER_COMPRESS", "true")
	t.Setenv("SDTP_METRICS_ENABLED", "true")

	cfg, err := Load(LoaderOptions{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.CA.ListenAddr)
	assert.True(t, cfg.Peer.Compress)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestValidateConfiguration(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	assert.NoError(t, ValidateConfiguration(cfg))

	cfg.CA.ListenAddr = ""
	assert.Error(t, ValidateConfiguration(cfg))
}

func TestPostgresDSNResolution(t *testing.T) {
	cfg := &Config{}
	dsn, err := cfg.PostgresDSN()
	require.NoError(t, err)
	assert.Empty(t, dsn)

	cfg.CA.PostgresDSNEnv = "TEST_PG_DSN"
	_, err = cfg.PostgresDSN()
	assert.ErrorIs(t, err, ErrMissingPostgresDSN)

	t.Setenv("TEST_PG_DSN", "postgres://localhost/sdtp")
	dsn, err = cfg.PostgresDSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/sdtp", dsn)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.CA.ListenAddr = "127.0.0.1:8443"

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.CA.ListenAddr, loaded.CA.ListenAddr)
}

func TestGetEnvironmentDefaultsToDevelopment(t *testing.T) {
	os.Unsetenv("SDTP_ENV")
	os.Unsetenv("ENVIRONMENT")
	assert.Equal(t, "development", GetEnvironment())
	assert.True(t, IsDevelopment())
	assert.False(t, IsProduction())
}
