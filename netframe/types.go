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

// Package netframe implements the length-prefixed frame boundary SDTP
// layers everything else on top of: read exactly n bytes, read a
// one-byte-length-prefixed header, and write a payload either
// synchronously or through a cooperative non-blocking queue.
package netframe

import "errors"

// ErrConnectionLost is returned by any read or write that observes EOF
// or a short read/write it cannot recover from. It corresponds to
// spec's ConnectionLost error kind.
var ErrConnectionLost = errors.New("netframe: connection lost")

// ErrSegmentTooLarge is returned by ReadExact when asked to read more
// than MaxSegmentSize bytes in one call. It is ReadExact's own backstop
// against a corrupt or hostile length field; callers that parse a
// length out of a frame header should still check it against
// MaxSegmentSize themselves and fail with their own package's
// ErrProtocolError before ever calling ReadExact, so a bad length is
// reported as a protocol violation rather than a netframe internal.
var ErrSegmentTooLarge = errors.New("netframe: segment exceeds maximum size")

// MaxHeaderLen is the largest value the single header-length prefix
// byte can encode.
const MaxHeaderLen = 255

// MaxSegmentSize bounds any single length-prefixed segment (a
// ciphertext, a chunk, a wrapped key, a serialized certificate) this
// module reads before allocating a buffer for it — spec.md §7's
// ProtocolError covers "length exceeding reasonable bounds", and
// without a cap a corrupt or hostile header's u32 length field can
// claim up to 4 GiB. 64 MiB comfortably covers SendCompleteFile's
// single-frame file transfers while refusing anything implausible.
const MaxSegmentSize = 64 * 1024 * 1024
