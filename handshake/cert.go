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
	"time"

	"github.com/strmrider/SDTP/cert"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

// ServerCert runs the listener side of the certificate-verified key
// exchange (spec.md §4.5): present serverCert (issued by the CA for
// serverKey's public half), wait for the client's success/failure
// verdict, and only then proceed to the session-key exchange. A
// CERT_FAILED verdict ends the handshake without ever exchanging a
// session key.
func ServerCert(conn *netframe.Conn, serverKey *primitives.KeyPair, serverCert *cert.Certificate) (*Result, error) {
	return run("server", "certificate", func() (*Result, error) {
		certBytes := serverCert.Serialize()
		sig := serverCert.Signature

		header := make([]byte, 9)
		header[0] = tagSendCertificate
		binary.BigEndian.PutUint32(header[1:5], uint32(len(certBytes)))
		binary.BigEndian.PutUint32(header[5:9], uint32(len(sig)))
		body := make([]byte, 0, len(certBytes)+len(sig))
		body = append(body, certBytes...)
		body = append(body, sig...)
		if err := conn.WriteFrame(header, body); err != nil {
			return &Result{FinalState: StateFailed}, err
		}

		verdict, err := conn.ReadHeader()
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		if len(verdict) != 1 || verdict[0] != tagCertSucceeded {
			return &Result{FinalState: StateFailed}, ErrCertificateRejected
		}

		sessionKey, err := receiveSessionKey(conn, serverKey)
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		return &Result{SessionKey: sessionKey, FinalState: StateEstablished}, nil
	})
}

// ClientCert runs the connector side: read the server's certificate,
// verify it against caPub and check its validity window, tell the
// server whether it was accepted, and — only on acceptance — wrap
// sessionKey under the certificate's subject public key.
func ClientCert(conn *netframe.Conn, caPub *primitives.KeyPair, sessionKey []byte) (*Result, error) {
	return run("client", "certificate", func() (*Result, error) {
		header, err := conn.ReadHeader()
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		if len(header) != 9 || header[0] != tagSendCertificate {
			return &Result{FinalState: StateFailed}, ErrProtocolError
		}
		certLen := binary.BigEndian.Uint32(header[1:5])
		sigLen := binary.BigEndian.Uint32(header[5:9])

		body, err := conn.ReadExact(int(certLen) + int(sigLen))
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		certBytes, sig := body[:certLen], body[certLen:]

		peerCert, err := cert.Deserialize(certBytes)
		if err != nil {
			return &Result{FinalState: StateFailed}, rejectCert(conn)
		}
		peerCert.Signature = sig

		if err := peerCert.Verify(caPub); err != nil {
			return &Result{FinalState: StateFailed}, rejectCert(conn)
		}
		if !peerCert.IsWithinValidity(time.Now()) {
			return &Result{FinalState: StateFailed}, rejectCert(conn)
		}

		if err := conn.WriteFrame([]byte{tagCertSucceeded}, nil); err != nil {
			return &Result{FinalState: StateFailed}, err
		}

		subjectKey, err := decodePublicKey(peerCert.SubjectPublicKey)
		if err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		if err := sendSessionKey(conn, subjectKey, sessionKey); err != nil {
			return &Result{FinalState: StateFailed}, err
		}
		return &Result{SessionKey: sessionKey, PeerCert: peerCert, FinalState: StateEstablished}, nil
	})
}

// rejectCert sends CERT_FAILED and always returns ErrCertificateRejected,
// regardless of whether the notification itself succeeds — the
// handshake is failing either way.
func rejectCert(conn *netframe.Conn) error {
	_ = conn.WriteFrame([]byte{tagCertFailed}, nil)
	return ErrCertificateRejected
}
