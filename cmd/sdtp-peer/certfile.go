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
	"encoding/json"
	"fmt"
	"os"

	"github.com/strmrider/SDTP/cert"
)

// certRecord is the on-disk shape of a granted Certificate, mirroring
// ca.Database's snapshot-file convention: plaintext JSON at 0600, since
// a certificate and its signature are not secrets, only the subject's
// own private key is.
type certRecord struct {
	SubjectID        string `json:"subject_id"`
	SubjectPublicKey []byte `json:"subject_public_key"`
	NotBeforeMS      int64  `json:"not_before_ms"`
	NotAfterMS       int64  `json:"not_after_ms"`
	Signature        []byte `json:"signature"`
}

// saveCertificate writes c to path as JSON, 0600.
func saveCertificate(path string, c *cert.Certificate) error {
	record := certRecord{
		SubjectID:        c.SubjectID,
		SubjectPublicKey: c.SubjectPublicKey,
		NotBeforeMS:      c.Validity.NotBeforeMS,
		NotAfterMS:       c.Validity.NotAfterMS,
		Signature:        c.Signature,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal certificate: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// loadCertificate reads back a certificate written by saveCertificate.
func loadCertificate(path string) (*cert.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	var record certRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal certificate: %w", err)
	}
	return &cert.Certificate{
		SubjectID:        record.SubjectID,
		SubjectPublicKey: record.SubjectPublicKey,
		Validity: cert.Validity{
			NotBeforeMS: record.NotBeforeMS,
			NotAfterMS:  record.NotAfterMS,
		},
		Signature: record.Signature,
	}, nil
}
