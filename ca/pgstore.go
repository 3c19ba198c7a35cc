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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strmrider/SDTP/cert"
)

// PostgresDatabase is an optional durable CADatabase backend, an
// alternative to Database's in-memory map for deployments that need
// the client table to survive a process restart without relying on
// SaveSnapshot/LoadSnapshot. It satisfies the same verbs Database
// exposes (Add/Exists/Get/Remove/Verify/Grant) but each call is its own
// round trip rather than a mutex-guarded map access — concurrency
// safety comes from Postgres row-level locking, not an in-process lock.
type PostgresDatabase struct {
	pool *pgxpool.Pool
}

// NewPostgresDatabase wraps an existing pool. Schema is expected to
// pre-exist: one "ca_clients" table with columns matching the fields
// below.
func NewPostgresDatabase(pool *pgxpool.Pool) *PostgresDatabase {
	return &PostgresDatabase{pool: pool}
}

// Add enrolls a new client, failing with ErrClientExists on a duplicate
// id (relying on a unique constraint on the id column).
func (p *PostgresDatabase) Add(ctx context.Context, id, password string) error {
	hash := HashPassword(password)
	_, err := p.pool.Exec(ctx, `
		INSERT INTO ca_clients (id, password_hash, active, last_access)
		VALUES ($1, $2, true, $3)
	`, id, hash[:], time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrClientExists
		}
		return fmt.Errorf("ca: postgres add: %w", err)
	}
	return nil
}

// Verify reports true iff id exists, is active, and password matches.
func (p *PostgresDatabase) Verify(ctx context.Context, id, password string) bool {
	var storedHash []byte
	var active bool
	err := p.pool.QueryRow(ctx, `
		SELECT password_hash, active FROM ca_clients WHERE id = $1
	`, id).Scan(&storedHash, &active)
	if err != nil {
		return false
	}
	hash := HashPassword(password)
	return active && string(storedHash) == string(hash[:])
}

// Grant records a successful certificate issuance.
func (p *PostgresDatabase) Grant(ctx context.Context, id string, subjectPub []byte, validity cert.Validity) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE ca_clients
		SET recent_public_key = $2, not_before_ms = $3, not_after_ms = $4, last_access = $5
		WHERE id = $1
	`, id, subjectPub, validity.NotBeforeMS, validity.NotAfterMS, time.Now())
	if err != nil {
		return fmt.Errorf("ca: postgres grant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Remove deletes the client record named by id.
func (p *PostgresDatabase) Remove(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM ca_clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ca: postgres remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Exists reports whether id is enrolled.
func (p *PostgresDatabase) Exists(ctx context.Context, id string) bool {
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ca_clients WHERE id = $1)`, id).Scan(&exists)
	return err == nil && exists
}

// Get fetches the client record for id.
func (p *PostgresDatabase) Get(ctx context.Context, id string) (Client, error) {
	var c Client
	var hash []byte
	var notBefore, notAfter *int64
	err := p.pool.QueryRow(ctx, `
		SELECT id, password_hash, active, recent_public_key, not_before_ms, not_after_ms, last_access
		FROM ca_clients WHERE id = $1
	`, id).Scan(&c.ID, &hash, &c.Active, &c.RecentPublicKey, &notBefore, &notAfter, &c.LastAccess)
	if err == pgx.ErrNoRows {
		return Client{}, ErrClientNotFound
	}
	if err != nil {
		return Client{}, fmt.Errorf("ca: postgres get: %w", err)
	}
	copy(c.PasswordHash[:], hash)
	if notBefore != nil && notAfter != nil {
		c.HasValidity = true
		c.Validity = cert.Validity{NotBeforeMS: *notBefore, NotAfterMS: *notAfter}
	}
	return c, nil
}
