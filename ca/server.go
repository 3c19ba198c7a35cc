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

package ca

import (
	"context"
	"encoding/binary"
	"net"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/strmrider/SDTP/cert"
	"github.com/strmrider/SDTP/internal/logger"
	"github.com/strmrider/SDTP/metrics"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

// Server is the CA enrollment listener. It owns a client store (an
// in-memory Database or a PostgresDatabase) and a CA key pair; the
// store is the only cross-worker mutable resource
// (spec.md §5) and is safe for concurrent access from the worker
// goroutines Server spawns, one per accepted connection.
type Server struct {
	DB   ClientStore
	Key  *primitives.KeyPair
	Log  logger.Logger
	sema *semaphore.Weighted
}

// MaxInFlightRequests bounds how many enrollment requests this server
// services concurrently, via golang.org/x/sync/semaphore, so a burst of
// connections can't spawn unbounded goroutines doing RSA operations.
const MaxInFlightRequests = 64

// NewServer constructs a Server around an existing client store (an
// in-memory *Database or a *PostgresDatabase) and CA key.
func NewServer(db ClientStore, key *primitives.KeyPair) *Server {
	return &Server{
		DB:   db,
		Key:  key,
		Log:  logger.GetDefaultLogger(),
		sema: semaphore.NewWeighted(MaxInFlightRequests),
	}
}

// Serve accepts connections on listener until it is closed or ctx is
// canceled, handling each on its own short-lived worker goroutine.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		rawConn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handle(ctx, netframe.New(rawConn))
	}
}

func (s *Server) handle(ctx context.Context, conn *netframe.Conn) {
	defer conn.Close()

	if err := s.sema.Acquire(ctx, 1); err != nil {
		return
	}
	defer s.sema.Release(1)

	requestID := uuid.NewString()
	if err := s.handleOne(ctx, conn, requestID); err != nil {
		s.Log.Warn("ca: request failed", logger.String("request_id", requestID), logger.Error(err))
	}
}

// handleOne runs a single request/response exchange per spec.md §4.4.
func (s *Server) handleOne(ctx context.Context, conn *netframe.Conn, requestID string) error {
	header, err := conn.ReadHeader()
	if err != nil {
		return err
	}
	if len(header) != 13 || header[0] != tagRequestCertificate {
		return ErrProtocolError
	}

	idLen := binary.BigEndian.Uint32(header[1:5])
	pwLen := binary.BigEndian.Uint32(header[5:9])
	keyLen := binary.BigEndian.Uint32(header[9:13])
	if idLen > netframe.MaxSegmentSize || pwLen > netframe.MaxSegmentSize || keyLen > netframe.MaxSegmentSize {
		return ErrProtocolError
	}

	idCipher, err := conn.ReadExact(int(idLen))
	if err != nil {
		return err
	}
	pwCipher, err := conn.ReadExact(int(pwLen))
	if err != nil {
		return err
	}
	subjectKeyBytes, err := conn.ReadExact(int(keyLen))
	if err != nil {
		return err
	}

	idPlain, err := s.Key.Decrypt(idCipher)
	if err != nil {
		return err
	}
	pwPlain, err := s.Key.Decrypt(pwCipher)
	if err != nil {
		return err
	}
	id, password := string(idPlain), string(pwPlain)

	if !s.DB.Verify(ctx, id, password) {
		metrics.CertificatesDenied.Inc()
		s.Log.Info("ca: certificate denied", logger.String("request_id", requestID), logger.String("client_id", id))
		return conn.WriteFrame([]byte{tagCertificateDenied}, nil)
	}

	validity := cert.FiveDayValidity(time.Now())
	c := &cert.Certificate{
		SubjectID:        id,
		SubjectPublicKey: subjectKeyBytes,
		Validity:         validity,
	}
	serialized := c.Serialize()
	sig, err := s.Key.Sign(serialized)
	if err != nil {
		return err
	}
	if err := s.DB.Grant(ctx, id, subjectKeyBytes, validity); err != nil {
		return err
	}

	respHeader := make([]byte, 9)
	respHeader[0] = tagCertificateGranted
	binary.BigEndian.PutUint32(respHeader[1:5], uint32(len(serialized)))
	binary.BigEndian.PutUint32(respHeader[5:9], uint32(len(sig)))

	body := make([]byte, 0, len(serialized)+len(sig))
	body = append(body, serialized...)
	body = append(body, sig...)

	metrics.CertificatesGranted.Inc()
	s.Log.Info("ca: certificate granted", logger.String("request_id", requestID), logger.String("client_id", id))
	return conn.WriteFrame(respHeader, body)
}
