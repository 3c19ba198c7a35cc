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

package ca

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/strmrider/SDTP/cert"
)

// snapshotRecord is the on-disk shape of a Client. It round-trips every
// field spec.md §6 names (id, password_hash, is_active,
// recent_public_key, validity, access_time). This is infrastructure
// data, not network-exposed, so it is plaintext JSON rather than
// encrypted — matching the teacher's FileVault test contract
// (crypto/vault/secure_storage_test.go) in permission discipline
// (0600) but not its encryption, since that vault has no corresponding
// implementation in the retrieved pack to adapt.
type snapshotRecord struct {
	ID              string `json:"id"`
	PasswordHash    []byte `json:"password_hash"`
	Active          bool   `json:"active"`
	RecentPublicKey []byte `json:"recent_public_key,omitempty"`
	HasValidity     bool   `json:"has_validity"`
	NotBeforeMS     int64  `json:"not_before_ms,omitempty"`
	NotAfterMS      int64  `json:"not_after_ms,omitempty"`
	LastAccessUnix  int64  `json:"last_access_unix"`
}

// SaveSnapshot writes every enrolled client to path as JSON, with 0600
// permissions. Snapshot save/load are exclusive with all other
// Database operations per spec.md §5 (the method holds the database's
// write lock while it copies the records out; marshaling and the file
// write happen after the lock is released).
func (d *Database) SaveSnapshot(path string) error {
	d.mu.Lock()
	records := make([]snapshotRecord, 0, len(d.clients))
	for _, c := range d.clients {
		records = append(records, snapshotRecord{
			ID:              c.ID,
			PasswordHash:    append([]byte(nil), c.PasswordHash[:]...),
			Active:          c.Active,
			RecentPublicKey: c.RecentPublicKey,
			HasValidity:     c.HasValidity,
			NotBeforeMS:     c.Validity.NotBeforeMS,
			NotAfterMS:      c.Validity.NotAfterMS,
			LastAccessUnix:  c.LastAccess.Unix(),
		})
	}
	d.mu.Unlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("ca: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("ca: write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the database's contents with the records
// persisted at path by a prior SaveSnapshot call.
func (d *Database) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ca: read snapshot: %w", err)
	}
	var records []snapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("ca: unmarshal snapshot: %w", err)
	}

	clients := make(map[string]*Client, len(records))
	for _, r := range records {
		c := &Client{
			ID:              r.ID,
			Active:          r.Active,
			RecentPublicKey: r.RecentPublicKey,
			HasValidity:     r.HasValidity,
			Validity:        cert.Validity{NotBeforeMS: r.NotBeforeMS, NotAfterMS: r.NotAfterMS},
			LastAccess:      time.Unix(r.LastAccessUnix, 0),
		}
		copy(c.PasswordHash[:], r.PasswordHash)
		clients[r.ID] = c
	}

	d.mu.Lock()
	d.clients = clients
	d.mu.Unlock()
	return nil
}
