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
	"sync"
	"sync/atomic"
	"time"

	"github.com/strmrider/SDTP/internal/logger"
	"github.com/strmrider/SDTP/metrics"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

// Session owns one netframe.Conn and the symmetric key negotiated by a
// handshake. Sends serialize on one mutex and receives on another, so
// one sender and one receiver run concurrently while concurrent senders
// (or receivers) take turns, one operation at a time (spec.md §5).
type Session struct {
	conn   *netframe.Conn
	aead   *primitives.AEAD
	config Config

	sendMu sync.Mutex
	recvMu sync.Mutex

	createdAt time.Time
	closed    atomic.Bool
}

// New wraps conn with an AEAD session keyed by sessionKey (the 16-byte
// key a handshake produced). The key is copied into the AEAD cipher;
// Session keeps no other reference to it, and Close only closes the
// connection.
func New(conn *netframe.Conn, sessionKey []byte, config Config) (*Session, error) {
	aead, err := primitives.NewAEAD(sessionKey)
	if err != nil {
		return nil, err
	}
	metrics.SessionsActive.Inc()
	return &Session{
		conn:      conn,
		aead:      aead,
		config:    config,
		createdAt: time.Now(),
	}, nil
}

// Close releases the underlying connection. Subsequent Send*/Receive
// calls return ErrSessionClosed.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	metrics.SessionsActive.Dec()
	logger.GetDefaultLogger().Debug("session closed")
	return s.conn.Close()
}

func (s *Session) checkOpen() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return nil
}
