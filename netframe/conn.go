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
	"fmt"
	"io"
	"net"
	"sync"
)

// Conn wraps a net.Conn with the framing primitives the rest of SDTP
// builds on. It performs no interpretation of frame contents — callers
// (handshake, ca, session) own the header layouts.
//
// Conn exclusively owns the underlying socket: once wrapped, callers
// should not read or write conn directly.
type Conn struct {
	conn net.Conn

	sendMu sync.Mutex

	queueMu sync.Mutex
	queue   [][]byte
	nonBlocking bool
	pending []byte // bytes peeked by Selector.IsReadable, consumed first
}

// New wraps an established net.Conn for framed blocking I/O.
func New(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Raw exposes the underlying socket for the ServiceShell's accept-loop
// plumbing (deadlines, readiness polling); the protocol layer itself
// never calls this.
func (c *Conn) Raw() net.Conn { return c.conn }

// Close releases the underlying socket.
func (c *Conn) Close() error { return c.conn.Close() }

// ReadExact returns exactly n bytes from the stream, or ErrConnectionLost
// if the peer closes (or any I/O error occurs) before n bytes arrive.
func (c *Conn) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 || n > MaxSegmentSize {
		return nil, ErrSegmentTooLarge
	}
	buf := make([]byte, 0, n)

	c.queueMu.Lock()
	if len(c.pending) > 0 {
		take := len(c.pending)
		if take > n {
			take = n
		}
		buf = append(buf, c.pending[:take]...)
		c.pending = c.pending[take:]
	}
	c.queueMu.Unlock()

	if len(buf) < n {
		rest := make([]byte, n-len(buf))
		if _, err := io.ReadFull(c.conn, rest); err != nil {
			return nil, fmt.Errorf("netframe: read exact %d bytes: %w", n, ErrConnectionLost)
		}
		buf = append(buf, rest...)
	}
	return buf, nil
}

// ReadHeader reads the one-byte header-length prefix, then reads exactly
// that many header bytes, and returns them.
func (c *Conn) ReadHeader() ([]byte, error) {
	lenByte, err := c.ReadExact(1)
	if err != nil {
		return nil, err
	}
	headerLen := int(lenByte[0])
	if headerLen == 0 {
		return nil, nil
	}
	return c.ReadExact(headerLen)
}

// Send writes payload to the socket. In blocking mode (the default and
// the only mode the protocol layer itself assumes) it writes
// synchronously; once EnableNonBlocking has been called, it instead
// appends the payload atomically to an outbound queue for DrainOne to
// flush. Send never partially enqueues or partially writes a payload.
func (c *Conn) Send(payload []byte) error {
	c.queueMu.Lock()
	nonBlocking := c.nonBlocking
	if nonBlocking {
		c.queue = append(c.queue, payload)
	}
	c.queueMu.Unlock()
	if nonBlocking {
		return nil
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("netframe: write: %w", err)
	}
	return nil
}

// EnableNonBlocking arms the cooperative outbound queue used by an
// external event loop (ServiceShell); see DrainOne. The protocol layer
// never calls this itself.
func (c *Conn) EnableNonBlocking() {
	c.queueMu.Lock()
	c.nonBlocking = true
	c.queueMu.Unlock()
}

// DrainOne dequeues and writes one previously enqueued payload. It is
// the single-producer/single-consumer counterpart to Send's enqueue
// path and must only be called by the goroutine that owns this Conn.
// It returns (false, nil) when the queue is empty.
func (c *Conn) DrainOne() (bool, error) {
	c.queueMu.Lock()
	if len(c.queue) == 0 {
		c.queueMu.Unlock()
		return false, nil
	}
	payload := c.queue[0]
	c.queue = c.queue[1:]
	c.queueMu.Unlock()

	if _, err := c.conn.Write(payload); err != nil {
		return false, fmt.Errorf("netframe: drain write: %w", err)
	}
	return true, nil
}
