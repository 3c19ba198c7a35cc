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
	"context"
	"crypto/sha256"
	"sort"
	"sync"
	"time"

	"github.com/strmrider/SDTP/cert"
)

// Client is the CADatabase entity: a pre-registered enrollee, keyed by
// ID, with a salted-ish password hash (SHA-256 of the UTF-8 password;
// no cleartext password is ever stored).
type Client struct {
	ID               string
	PasswordHash     [32]byte
	Active           bool
	RecentPublicKey  []byte // most recently presented subject public key, or nil
	Validity         cert.Validity
	HasValidity      bool
	LastAccess       time.Time
}

// HashPassword computes the stored comparison value for a password.
func HashPassword(password string) [32]byte {
	return sha256.Sum256([]byte(password))
}

// Database is an in-memory, mutex-guarded client table. It is the sole
// cross-worker mutable resource in the CA server: every operation is
// serialized under a single lock held for the call's duration, per
// spec.md §5. Structurally grounded on the teacher's
// memoryKeyStorage (crypto/storage/memory.go) map+RWMutex CRUD idiom.
type Database struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewDatabase returns an empty client table.
func NewDatabase() *Database {
	return &Database{clients: make(map[string]*Client)}
}

// Add enrolls a new client. It fails with ErrClientExists if id is
// already present — identifier is the sole primary key. ctx is accepted
// to satisfy ClientStore alongside PostgresDatabase but is not used: the
// in-memory map has no cancellable I/O.
func (d *Database) Add(_ context.Context, id, password string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.clients[id]; exists {
		return ErrClientExists
	}
	d.clients[id] = &Client{
		ID:           id,
		PasswordHash: HashPassword(password),
		Active:       true,
		LastAccess:   time.Now(),
	}
	return nil
}

// Exists reports whether id is enrolled.
func (d *Database) Exists(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.clients[id]
	return ok
}

// Get returns a copy of the client record for id.
func (d *Database) Get(id string) (Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.clients[id]
	if !ok {
		return Client{}, ErrClientNotFound
	}
	return *c, nil
}

// Remove deletes the client record named by id. The Python original
// this module ports referenced an undefined name in its remove path
// (spec.md §9); this implementation uses the given id argument exactly
// and does not reproduce that bug.
func (d *Database) Remove(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.clients[id]; !ok {
		return ErrClientNotFound
	}
	delete(d.clients, id)
	return nil
}

// Verify reports true iff id exists, is active, and the password's
// SHA-256 matches the stored hash.
func (d *Database) Verify(_ context.Context, id, password string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.clients[id]
	if !ok || !c.Active {
		return false
	}
	return c.PasswordHash == HashPassword(password)
}

// Grant records a successful certificate issuance: refreshes the
// validity window, remembers the subject's most recent public key, and
// updates the access time. Called by the CA server while holding no
// other lock than Database's own.
func (d *Database) Grant(_ context.Context, id string, subjectPub []byte, validity cert.Validity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.clients[id]
	if !ok {
		return ErrClientNotFound
	}
	c.RecentPublicKey = subjectPub
	c.Validity = validity
	c.HasValidity = true
	c.LastAccess = time.Now()
	return nil
}

// List returns all enrolled client IDs in sorted order.
func (d *Database) List() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.clients))
	for id := range d.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
