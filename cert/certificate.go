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

// Package cert implements the CA-issued certificate value object: a
// subject id, subject public key, and validity window, bound together
// by a deterministic serialization the CA signs and every verifier
// reproduces byte-for-byte.
package cert

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/strmrider/SDTP/primitives"
)

// ErrMalformed is returned when a wire-encoded certificate fails to parse.
var ErrMalformed = errors.New("cert: malformed certificate encoding")

// Validity is a closed timestamp interval, in milliseconds since the
// Unix epoch, matching the wire's two 64-bit fields.
type Validity struct {
	NotBeforeMS int64
	NotAfterMS  int64
}

// Contains reports whether now falls within [NotBefore, NotAfter].
func (v Validity) Contains(now time.Time) bool {
	ms := now.UnixMilli()
	return ms >= v.NotBeforeMS && ms <= v.NotAfterMS
}

// FiveDayValidity returns a validity window starting now and lasting
// five days, the CA's standard grant per spec.
func FiveDayValidity(now time.Time) Validity {
	return Validity{
		NotBeforeMS: now.UnixMilli(),
		NotAfterMS:  now.Add(5 * 24 * time.Hour).UnixMilli(),
	}
}

// Certificate binds a subject identity to a public key for a bounded
// time window. It is immutable after issuance; Signature is a detached
// RSA-PSS signature over Serialize() produced by the CA.
type Certificate struct {
	SubjectID        string
	SubjectPublicKey []byte // PKIX DER-encoded RSA public key
	Validity         Validity
	Signature        []byte
}

// Serialize produces the deterministic TLV encoding of (id, pubkey,
// validity) that the CA signs and every verifier reproduces. A
// hand-rolled length-prefixed triple is used rather than a generic
// encoder (CBOR, gob): spec.md §9 requires exactly one canonical,
// reproducible encoding, and two u32-length-prefixed fields plus two
// fixed-width 64-bit timestamps need nothing a generic encoder would add.
func (c *Certificate) Serialize() []byte {
	idBytes := []byte(c.SubjectID)
	buf := make([]byte, 0, 4+len(idBytes)+4+len(c.SubjectPublicKey)+16)

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(idBytes)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, idBytes...)

	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c.SubjectPublicKey)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, c.SubjectPublicKey...)

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(c.Validity.NotBeforeMS))
	buf = append(buf, tsBuf[:]...)
	binary.BigEndian.PutUint64(tsBuf[:], uint64(c.Validity.NotAfterMS))
	buf = append(buf, tsBuf[:]...)

	return buf
}

// Deserialize parses the TLV encoding Serialize produces. Signature is
// not part of this encoding; callers set it separately (it travels as a
// companion value alongside the serialized bytes on the wire).
func Deserialize(data []byte) (*Certificate, error) {
	r := data
	id, rest, err := readLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	pub, rest2, err := readLenPrefixed(rest)
	if err != nil {
		return nil, err
	}
	if len(rest2) != 16 {
		return nil, ErrMalformed
	}
	notBefore := int64(binary.BigEndian.Uint64(rest2[0:8]))
	notAfter := int64(binary.BigEndian.Uint64(rest2[8:16]))

	return &Certificate{
		SubjectID:        string(id),
		SubjectPublicKey: pub,
		Validity:         Validity{NotBeforeMS: notBefore, NotAfterMS: notAfter},
	}, nil
}

func readLenPrefixed(data []byte) (field, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, ErrMalformed
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if uint32(len(data)) < n {
		return nil, nil, ErrMalformed
	}
	return data[:n], data[n:], nil
}

// Verify checks the certificate's signature under the CA's public key
// and returns nil iff the signature verifies over Serialize()'s SHA-256
// digest. Validity is checked separately by IsWithinValidity, per spec.
func (c *Certificate) Verify(caPub *primitives.KeyPair) error {
	return caPub.Verify(c.Serialize(), c.Signature)
}

// IsWithinValidity reports Validity.Contains(now).
func (c *Certificate) IsWithinValidity(now time.Time) bool {
	return c.Validity.Contains(now)
}

// EncodePublicKey renders an RSA public key to the PKIX DER bytes that
// travel inside a Certificate and inside SEND_SESSION_KEY handshakes.
func EncodePublicKey(kp *primitives.KeyPair) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.Public)
	if err != nil {
		return nil, fmt.Errorf("cert: marshal public key: %w", err)
	}
	return der, nil
}

// DecodePublicKey parses PKIX DER bytes back into a usable key pair
// (public half only — used to verify/encrypt against a peer's key).
func DecodePublicKey(der []byte) (*primitives.KeyPair, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("cert: parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("cert: public key is not RSA")
	}
	return primitives.ImportPublicKey(rsaPub), nil
}
