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

// Package handshake implements the two key-exchange modes SDTP sessions
// bootstrap from: a plain, unauthenticated RSA key exchange and a
// certificate-verified mode backed by the ca package. Both modes are
// driven from either role (client or server) over a shared netframe.Conn.
package handshake

import (
	"errors"

	"github.com/strmrider/SDTP/cert"
)

// Wire tags for the handshake's own frames (spec.md §4.5/§6). The
// enrollment tags (REQUEST_CERTIFICATE etc) belong to the ca package's
// separate connection; these are the ones exchanged on the session
// connection itself.
const (
	tagSendCertificate byte = 0x10
	tagCertSucceeded   byte = 0x11
	tagCertFailed      byte = 0x12
	tagSendSessionKey  byte = 0x13
)

// State is the handshake's linear per-role state machine (spec.md
// §4.5): INIT → KeyExchangeInProgress → Established, or Failed on any
// crypto/IO error. There are no retries and no partial state survives a
// failed handshake.
type State int

const (
	StateInit State = iota
	StateKeyExchangeInProgress
	StateEstablished
	StateFailed
)

// Sentinel errors, matching spec.md §7's flat error-kind design.
var (
	ErrCertificateRejected = errors.New("handshake: certificate rejected")
	ErrProtocolError       = errors.New("handshake: protocol error")
)

// Result is what a successful handshake hands to the caller: the
// negotiated 16-byte session key and, in certificate mode, the peer
// certificate that was verified.
type Result struct {
	SessionKey []byte
	PeerCert   *cert.Certificate // nil in plain mode
	FinalState State
}
