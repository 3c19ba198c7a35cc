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

package primitives

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadPrivateKeyPEMPlain(t *testing.T) {
	kp, err := GenerateKeyPair(KeyOptions{Bits: 1024})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key.pem")

	require.NoError(t, SavePrivateKeyPEM(path, kp, nil))
	loaded, err := LoadPrivateKeyPEM(path, nil)
	require.NoError(t, err)
	assert.Equal(t, kp.Private.D, loaded.Private.D)
	assert.Equal(t, kp.ID(), loaded.ID())
}

func TestSaveLoadPrivateKeyPEMEncrypted(t *testing.T) {
	kp, err := GenerateKeyPair(KeyOptions{Bits: 1024})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key.pem")
	passphrase := []byte("correct horse battery staple")

	require.NoError(t, SavePrivateKeyPEM(path, kp, passphrase))
	loaded, err := LoadPrivateKeyPEM(path, passphrase)
	require.NoError(t, err)
	assert.Equal(t, kp.Private.D, loaded.Private.D)

	_, err = LoadPrivateKeyPEM(path, []byte("wrong passphrase"))
	assert.Error(t, err)

	_, err = LoadPrivateKeyPEM(path, nil)
	assert.Error(t, err)
}

func TestSaveLoadPublicKeyPEMRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair(KeyOptions{Bits: 1024})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key.pub.pem")

	require.NoError(t, SavePublicKeyPEM(path, kp))
	loaded, err := LoadPublicKeyPEM(path)
	require.NoError(t, err)
	assert.Equal(t, kp.Public.N, loaded.Public.N)
	assert.Equal(t, kp.ID(), loaded.ID())
}
