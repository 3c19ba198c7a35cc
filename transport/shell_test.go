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

package transport

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmrider/SDTP/netframe"
)

func TestServeHandlesConnectionsUntilCancelled(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var handled atomic.Int32
	shell := New(listener, func(_ context.Context, conn *netframe.Conn) error {
		handled.Add(1)
		return conn.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- shell.Serve(ctx) }()

	for i := 0; i < 3; i++ {
		c, err := net.Dial("tcp", listener.Addr().String())
		require.NoError(t, err)
		c.Close()
	}
	time.Sleep(50 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(3), handled.Load())
}

func TestServeReturnsNilWhenListenerClosedExternally(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	shell := New(listener, func(_ context.Context, _ *netframe.Conn) error { return nil })

	require.NoError(t, listener.Close())
	err = shell.Serve(context.Background())
	assert.NoError(t, err)
}
