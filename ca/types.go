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

// Package ca implements the certificate enrollment protocol: a small
// request/response exchange between a pre-registered client and a CA
// server, backed by an in-memory (optionally Postgres-backed) client
// table.
package ca

import (
	"context"
	"errors"

	"github.com/strmrider/SDTP/cert"
)

// ClientStore is the subset of Database's client-table operations the
// enrollment server itself drives on the wire (Server.handleOne,
// HandleBootstrap): verify a presented credential, enroll a new client,
// and record a granted certificate. Both Database (in-memory) and
// PostgresDatabase implement it, so Server can run against either
// backend without knowing which one it was given.
type ClientStore interface {
	Add(ctx context.Context, id, password string) error
	Verify(ctx context.Context, id, password string) bool
	Grant(ctx context.Context, id string, subjectPub []byte, validity cert.Validity) error
}

// Wire tags for the enrollment protocol (spec.md §4.4/§6). Exact values
// are implementation-private; they only need to agree between this
// module's own client and server.
const (
	tagRequestCertificate byte = 0x01
	tagCertificateGranted byte = 0x02
	tagCertificateDenied  byte = 0x03
)

// Sentinel errors, matching spec.md §7's flat error-kind design.
var (
	ErrCertificateDenied = errors.New("ca: certificate request denied")
	ErrProtocolError     = errors.New("ca: protocol error")
	ErrClientExists      = errors.New("ca: client already enrolled")
	ErrClientNotFound    = errors.New("ca: client not found")
	ErrInactiveClient    = errors.New("ca: client is inactive")
)

// certValidityDays is the CA's standard grant window.
const certValidityDays = 5
