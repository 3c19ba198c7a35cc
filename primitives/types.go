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

// Package primitives wraps the raw cryptographic operations SDTP builds on:
// RSA key pairs for the handshake and certificate signatures, and an AEAD
// cipher for framed session messages.
package primitives

import "errors"

// Sentinel errors returned by this package. Callers wrap these with
// fmt.Errorf("...: %w", err) so errors.Is still matches at any layer.
var (
	ErrInvalidKeySize    = errors.New("primitives: invalid RSA key size")
	ErrInvalidSignature  = errors.New("primitives: invalid signature")
	ErrDecryptionFailed  = errors.New("primitives: decryption failed")
	ErrCiphertextTooShort = errors.New("primitives: ciphertext shorter than nonce")
	ErrKeySize           = errors.New("primitives: invalid AEAD key size")
)

// KeyOptions configures RSA key generation. The zero value selects the
// package default of 1024 bits, matching the constant used by this
// module's existing deployments (see SPEC_FULL.md open question on RSA
// key size); pass Bits: 2048 for new deployments that don't need to
// match that constant.
type KeyOptions struct {
	Bits int
}

const defaultRSABits = 1024

func (o KeyOptions) bits() int {
	if o.Bits <= 0 {
		return defaultRSABits
	}
	return o.Bits
}

// AESKeySize is the symmetric session key length SDTP negotiates during
// the handshake: 16 bytes, AES-128.
const AESKeySize = 16
