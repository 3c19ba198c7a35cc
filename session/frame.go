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

package session

import (
	"github.com/strmrider/SDTP/metrics"
	"github.com/strmrider/SDTP/primitives"
)

// sealPlaintext optionally zlib-compresses plaintext, then seals it
// under the session's AEAD key.
func (s *Session) sealPlaintext(plaintext []byte, compress bool) (primitives.Sealed, error) {
	data := plaintext
	if compress {
		compressed, err := zlibCompress(plaintext)
		if err != nil {
			return primitives.Sealed{}, err
		}
		data = compressed
	}
	return s.aead.Seal(data, nil)
}

// openPlaintext reverses sealPlaintext: AEAD-opens then, if compress is
// set, zlib-decompresses.
func (s *Session) openPlaintext(nonce, mac, ciphertext []byte, compress bool) ([]byte, error) {
	plain, err := s.aead.Open(nonce, mac, ciphertext, nil)
	if err != nil {
		metrics.VerificationFailures.Inc()
		return nil, err
	}
	if compress {
		return zlibDecompress(plain)
	}
	return plain, nil
}
