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

import (
	"net"
	"time"
)

// Selector is a convenience readiness primitive for an external event
// loop driving many Conns without dedicating a goroutine to each one.
// Go's standard library has no portable select()/poll() binding over
// arbitrary net.Conn, so IsReadable is implemented with a one-byte read
// against a short deadline, keeping any byte it reads for the next read
// — a best-effort synchronous poll, not a true
// multiplexer. The protocol layer (handshake, ca, session) never uses
// this; it is consumed only by the ServiceShell accept-loop plumbing.
type Selector struct {
	c *Conn
}

// NewSelector wraps a Conn for readiness polling.
func NewSelector(c *Conn) *Selector { return &Selector{c: c} }

// IsReadable reports whether a subsequent read is likely to return data
// without blocking for longer than the given poll window.
func (s *Selector) IsReadable(poll time.Duration) bool {
	conn := s.c.conn
	_ = conn.SetReadDeadline(time.Now().Add(poll))
	defer conn.SetReadDeadline(time.Time{})

	one := make([]byte, 1)
	n, err := conn.Read(one)
	if n > 0 {
		// Can't push the byte back onto the socket; stash it so the
		// next ReadExact sees it first. This selector is a best-effort
		// convenience, not part of the protocol's own read path.
		s.c.queueMu.Lock()
		s.c.pending = append(one[:n], s.c.pending...)
		s.c.queueMu.Unlock()
		return true
	}
	if err == nil {
		return true
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return false
	}
	return true // any other error: let the caller's next read surface it
}

// IsWritable always reports true: Conn's Send already buffers under a
// queue when non-blocking mode is armed, so the socket accepting more
// queued writers is the common case this selector is used for.
func (s *Selector) IsWritable() bool { return true }
