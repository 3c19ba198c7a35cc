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
	"encoding/binary"
	"fmt"

	"github.com/strmrider/SDTP/cert"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

// RequestCertificate performs the client side of the enrollment
// protocol over a freshly dialed Conn: encrypt id and password under
// the CA's public key, send the subject's own public key in the clear,
// and either return the granted Certificate or ErrCertificateDenied.
func RequestCertificate(conn *netframe.Conn, caPub *primitives.KeyPair, id, password string, subjectPub *primitives.KeyPair) (*cert.Certificate, error) {
	idCipher, err := caPub.Encrypt([]byte(id))
	if err != nil {
		return nil, fmt.Errorf("ca: encrypt id: %w", err)
	}
	pwCipher, err := caPub.Encrypt([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("ca: encrypt password: %w", err)
	}
	subjectKeyBytes, err := cert.EncodePublicKey(subjectPub)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 13)
	header[0] = tagRequestCertificate
	binary.BigEndian.PutUint32(header[1:5], uint32(len(idCipher)))
	binary.BigEndian.PutUint32(header[5:9], uint32(len(pwCipher)))
	binary.BigEndian.PutUint32(header[9:13], uint32(len(subjectKeyBytes)))

	body := make([]byte, 0, len(idCipher)+len(pwCipher)+len(subjectKeyBytes))
	body = append(body, idCipher...)
	body = append(body, pwCipher...)
	body = append(body, subjectKeyBytes...)

	if err := conn.WriteFrame(header, body); err != nil {
		return nil, err
	}

	respHeader, err := conn.ReadHeader()
	if err != nil {
		return nil, err
	}
	if len(respHeader) == 0 {
		return nil, ErrProtocolError
	}

	switch respHeader[0] {
	case tagCertificateDenied:
		return nil, ErrCertificateDenied
	case tagCertificateGranted:
		if len(respHeader) != 9 {
			return nil, ErrProtocolError
		}
		certLen := binary.BigEndian.Uint32(respHeader[1:5])
		sigLen := binary.BigEndian.Uint32(respHeader[5:9])

		certBytes, err := conn.ReadExact(int(certLen))
		if err != nil {
			return nil, err
		}
		sig, err := conn.ReadExact(int(sigLen))
		if err != nil {
			return nil, err
		}

		c, err := cert.Deserialize(certBytes)
		if err != nil {
			return nil, err
		}
		c.Signature = sig
		return c, nil
	default:
		return nil, ErrProtocolError
	}
}
