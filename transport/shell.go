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

// Package transport hosts the ServiceShell: the TCP accept loop that
// wraps each connection a raw net.Listener accepts in a netframe.Conn
// and hands it to a caller-supplied handler, which runs the handshake
// and session itself. It is a collaborator external to the core
// protocol modules (spec.md §6) — the handshake and session packages
// never import it.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/strmrider/SDTP/internal/logger"
	"github.com/strmrider/SDTP/netframe"
)

// ConnHandler processes one accepted, framed connection. It owns the
// conn's lifecycle; ServiceShell never closes it on the handler's
// behalf, and on shutdown only cancels the ctx passed to the handler.
type ConnHandler func(ctx context.Context, conn *netframe.Conn) error

// ServiceShell runs a blocking accept loop over a net.Listener,
// dispatching each connection to handler on its own goroutine. Serve
// returns nil on a clean shutdown (ctx cancellation) and a non-nil
// error on bind/accept failure, matching the CA server CLI's documented
// exit-code contract (SPEC_FULL.md §5).
type ServiceShell struct {
	Listener net.Listener
	Handler  ConnHandler
	Log      logger.Logger
}

// New builds a ServiceShell bound to an already-created listener.
func New(listener net.Listener, handler ConnHandler) *ServiceShell {
	return &ServiceShell{
		Listener: listener,
		Handler:  handler,
		Log:      logger.GetDefaultLogger(),
	}
}

// Serve accepts connections until ctx is cancelled or the listener
// fails. Each connection runs handler in its own errgroup-managed
// goroutine so a panic-free handler error is logged but never aborts
// the accept loop; only listener failure or ctx cancellation does.
func (s *ServiceShell) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-groupCtx.Done()
		_ = s.Listener.Close() // unblocks Accept; a second Close error is expected and ignored
		return nil
	})

	var acceptErr error
	for {
		raw, err := s.Listener.Accept()
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, net.ErrClosed) {
				break
			}
			acceptErr = fmt.Errorf("transport: accept: %w", err)
			break
		}

		conn := netframe.New(raw)
		group.Go(func() error {
			if err := s.Handler(groupCtx, conn); err != nil {
				s.Log.Warn("connection handler failed", logger.Error(err))
			}
			return nil
		})
	}

	cancel() // ensure the listener-closer goroutine unblocks on every exit path
	if err := group.Wait(); err != nil {
		return err
	}
	return acceptErr
}
