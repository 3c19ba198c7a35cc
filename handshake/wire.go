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

	"github.com/strmrider/SDTP/cert"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

func encodePublicKey(kp *primitives.KeyPair) ([]byte, error) {
	return cert.EncodePublicKey(kp)
}

func decodePublicKey(der []byte) (*primitives.KeyPair, error) {
	return cert.DecodePublicKey(der)
}

// sendSessionKey wraps sessionKey under peerPub with RSA-OAEP and
// frames it per spec.md §6: header_length=5, header = tag(1) ||
// key_len(u32); body = OAEP(peerPub, sessionKey).
func sendSessionKey(conn *netframe.Conn, peerPub *primitives.KeyPair, sessionKey []byte) error {
	wrapped, err := peerPub.Encrypt(sessionKey)
	if err != nil {
		return err
	}
	header := make([]byte, 5)
	header[0] = tagSendSessionKey
	binary.BigEndian.PutUint32(header[1:5], uint32(len(wrapped)))
	return conn.WriteFrame(header, wrapped)
}

// receiveSessionKey reads a SEND_SESSION_KEY frame and OAEP-decrypts it
// under ownKey's private half.
func receiveSessionKey(conn *netframe.Conn, ownKey *primitives.KeyPair) ([]byte, error) {
	header, err := conn.ReadHeader()
	if err != nil {
		return nil, err
	}
	if len(header) != 5 || header[0] != tagSendSessionKey {
		return nil, ErrProtocolError
	}
	keyLen := binary.BigEndian.Uint32(header[1:5])
	if keyLen > netframe.MaxSegmentSize {
		return nil, ErrProtocolError
	}
	wrapped, err := conn.ReadExact(int(keyLen))
	if err != nil {
		return nil, err
	}
	return ownKey.Decrypt(wrapped)
}
