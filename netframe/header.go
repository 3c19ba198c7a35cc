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

package netframe

import "fmt"

// WriteFrame prepends the one-byte header-length prefix to header and
// writes header||body as a single Send call, so a non-blocking queue
// never splits a frame across two enqueued payloads.
func (c *Conn) WriteFrame(header, body []byte) error {
	if len(header) > MaxHeaderLen {
		return fmt.Errorf("netframe: header length %d exceeds %d", len(header), MaxHeaderLen)
	}
	frame := make([]byte, 0, 1+len(header)+len(body))
	frame = append(frame, byte(len(header)))
	frame = append(frame, header...)
	frame = append(frame, body...)
	return c.Send(frame)
}
