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

package handshake

import (
	"encoding/binary"

	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

// ServerPlain runs the listener side of the unauthenticated key
// exchange: export the server's public key, wait for the wrapped
// session key, and return it. Trust model: none — this mode
// authenticates neither party (spec.md §4.5).
func ServerPlain(conn *netframe.Conn, serverKey *primitives.KeyPair) (*Result, error) {
	return run("server", "plain", func() (*Result, error) {
		pubDER, err := encodePublicKey(serverKey)
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}

		lenHeader := make([]byte, 4)
		binary.BigEndian.PutUint32(lenHeader, uint32(len(pubDER)))
		if err := conn.Send(append(lenHeader, pubDER...)); err != nil {
			return &Result{FinalState: StateFailed}, err
		}

		sessionKey, err := receiveSessionKey(conn, serverKey)
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		return &Result{SessionKey: sessionKey, FinalState: StateEstablished}, nil
	})
}

// ClientPlain runs the connector side: read the server's public key,
// wrap a caller-supplied session key under it, send it, and return the
// key. sessionKey must be exactly primitives.AESKeySize bytes.
func ClientPlain(conn *netframe.Conn, sessionKey []byte) (*Result, error) {
	return run("client", "plain", func() (*Result, error) {
		lenBytes, err := conn.ReadExact(4)
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		pubLen := binary.BigEndian.Uint32(lenBytes)

		pubDER, err := conn.ReadExact(int(pubLen))
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		serverPub, err := decodePublicKey(pubDER)
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}

		if err := sendSessionKey(conn, serverPub, sessionKey); err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		return &Result{SessionKey: sessionKey, FinalState: StateEstablished}, nil
	})
}
