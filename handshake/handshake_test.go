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

package handshake

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmrider/SDTP/cert"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

func pipeConns(t *testing.T) (*netframe.Conn, *netframe.Conn) {
	t.Helper()
	a, b := net.Pipe()
	return netframe.New(a), netframe.New(b)
}

func TestPlainHandshakeSharesIdenticalSessionKey(t *testing.T) {
	serverKey, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	sessionKey, err := primitives.GenerateSessionKey()
	require.NoError(t, err)

	serverConn, clientConn := pipeConns(t)

	type outcome struct {
		res *Result
		err error
	}
	serverCh := make(chan outcome, 1)
	go func() {
		res, err := ServerPlain(serverConn, serverKey)
		serverCh <- outcome{res, err}
	}()

	clientRes, clientErr := ClientPlain(clientConn, sessionKey)
	require.NoError(t, clientErr)

	serverOut := <-serverCh
	require.NoError(t, serverOut.err)

	assert.Equal(t, StateEstablished, clientRes.FinalState)
	assert.Equal(t, StateEstablished, serverOut.res.FinalState)
	assert.Equal(t, sessionKey, clientRes.SessionKey)
	assert.Equal(t, sessionKey, serverOut.res.SessionKey)
}

func issueCert(t *testing.T, ca *primitives.KeyPair, subject *primitives.KeyPair, validity cert.Validity) *cert.Certificate {
	t.Helper()
	pubDER, err := cert.EncodePublicKey(subject)
	require.NoError(t, err)
	c := &cert.Certificate{
		SubjectID:        "server-1",
		SubjectPublicKey: pubDER,
		Validity:         validity,
	}
	sig, err := ca.Sign(c.Serialize())
	require.NoError(t, err)
	c.Signature = sig
	return c
}

func TestCertHandshakeSharesIdenticalSessionKey(t *testing.T) {
	caKey, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	serverKey, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	sessionKey, err := primitives.GenerateSessionKey()
	require.NoError(t, err)

	serverCert := issueCert(t, caKey, serverKey, cert.FiveDayValidity(time.Now()))
	serverConn, clientConn := pipeConns(t)

	type outcome struct {
		res *Result
		err error
	}
	serverCh := make(chan outcome, 1)
	go func() {
		res, err := ServerCert(serverConn, serverKey, serverCert)
		serverCh <- outcome{res, err}
	}()

	clientRes, clientErr := ClientCert(clientConn, caKey, sessionKey)
	require.NoError(t, clientErr)

	serverOut := <-serverCh
	require.NoError(t, serverOut.err)

	assert.Equal(t, sessionKey, clientRes.SessionKey)
	assert.Equal(t, sessionKey, serverOut.res.SessionKey)
	require.NotNil(t, clientRes.PeerCert)
	assert.Equal(t, "server-1", clientRes.PeerCert.SubjectID)
}

func TestCertHandshakeRejectsWrongCA(t *testing.T) {
	realCA, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	impostorCA, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	serverKey, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	sessionKey, err := primitives.GenerateSessionKey()
	require.NoError(t, err)

	// certificate is signed by impostorCA, but the client trusts realCA.
	serverCert := issueCert(t, impostorCA, serverKey, cert.FiveDayValidity(time.Now()))
	serverConn, clientConn := pipeConns(t)

	serverCh := make(chan error, 1)
	go func() {
		_, err := ServerCert(serverConn, serverKey, serverCert)
		serverCh <- err
	}()

	_, clientErr := ClientCert(clientConn, realCA, sessionKey)
	assert.ErrorIs(t, clientErr, ErrCertificateRejected)

	serverErr := <-serverCh
	assert.ErrorIs(t, serverErr, ErrCertificateRejected)
}

func TestCertHandshakeRejectsExpiredCertificate(t *testing.T) {
	caKey, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	serverKey, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	sessionKey, err := primitives.GenerateSessionKey()
	require.NoError(t, err)

	expired := cert.Validity{
		NotBeforeMS: time.Now().Add(-48 * time.Hour).UnixMilli(),
		NotAfterMS:  time.Now().Add(-24 * time.Hour).UnixMilli(),
	}
	serverCert := issueCert(t, caKey, serverKey, expired)
	serverConn, clientConn := pipeConns(t)

	serverCh := make(chan error, 1)
	go func() {
		_, err := ServerCert(serverConn, serverKey, serverCert)
		serverCh <- err
	}()

	_, clientErr := ClientCert(clientConn, caKey, sessionKey)
	assert.ErrorIs(t, clientErr, ErrCertificateRejected)
	assert.ErrorIs(t, <-serverCh, ErrCertificateRejected)
}
