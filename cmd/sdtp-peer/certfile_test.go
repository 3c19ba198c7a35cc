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

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmrider/SDTP/cert"
)

func TestSaveLoadCertificateRoundTrip(t *testing.T) {
	c := &cert.Certificate{
		SubjectID:        "agent-1",
		SubjectPublicKey: []byte{1, 2, 3, 4},
		Validity:         cert.Validity{NotBeforeMS: 1000, NotAfterMS: 2000},
		Signature:        []byte{5, 6, 7, 8},
	}
	path := filepath.Join(t.TempDir(), "cert.json")

	require.NoError(t, saveCertificate(path, c))
	loaded, err := loadCertificate(path)
	require.NoError(t, err)
	assert.Equal(t, c.SubjectID, loaded.SubjectID)
	assert.Equal(t, c.SubjectPublicKey, loaded.SubjectPublicKey)
	assert.Equal(t, c.Validity, loaded.Validity)
	assert.Equal(t, c.Signature, loaded.Signature)
}

func TestLoadCertificateMissingFile(t *testing.T) {
	_, err := loadCertificate(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
}
