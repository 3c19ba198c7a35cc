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
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

func pairedSessions(t *testing.T, cfg Config) (*Session, *Session) {
	t.Helper()
	key, err := primitives.GenerateSessionKey()
	require.NoError(t, err)
	a, b := net.Pipe()

	sendSide, err := New(netframe.New(a), key, cfg)
	require.NoError(t, err)
	recvSide, err := New(netframe.New(b), key, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		sendSide.Close()
		recvSide.Close()
	})
	return sendSide, recvSide
}

func TestSendBytesRoundTrip(t *testing.T) {
	send, recv := pairedSessions(t, Config{})
	done := make(chan error, 1)
	go func() { done <- send.SendBytes([]byte("hello sdtp")) }()

	msg, err := recv.Receive()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, KindBytes, msg.Kind)
	assert.Equal(t, []byte("hello sdtp"), msg.Bytes)
}

func TestSendTextRoundTripCompressed(t *testing.T) {
	send, recv := pairedSessions(t, Config{Compress: true})
	payload := "the quick brown fox jumps over the lazy dog, repeatedly, many times, to compress well"
	done := make(chan error, 1)
	go func() { done <- send.SendText(payload) }()

	msg, err := recv.Receive()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, KindText, msg.Kind)
	assert.Equal(t, payload, msg.Text)
}

func TestSendFileChunkedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "input.bin")
	content := make([]byte, 200*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(srcPath, content, 0o600))

	recvDir := t.TempDir()
	send, recv := pairedSessions(t, Config{MaxChunk: 64 * 1024, ReceiveDir: recvDir})

	done := make(chan error, 1)
	go func() { done <- send.SendFile(srcPath) }()

	msg, err := recv.Receive()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, KindFile, msg.Kind)

	got, err := os.ReadFile(msg.FilePath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSendCompleteFileRoundTrip(t *testing.T) {
	send, recv := pairedSessions(t, Config{Compress: true})
	data := []byte("small in-memory file contents")
	done := make(chan error, 1)
	go func() { done <- send.SendCompleteFile("notes.txt", data) }()

	msg, err := recv.Receive()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, KindSavedFile, msg.Kind)
	assert.Equal(t, "notes.txt", msg.SavedFileName)
	assert.Equal(t, data, msg.SavedFileData)
}

func TestSendObjectRoundTrip(t *testing.T) {
	send, recv := pairedSessions(t, Config{})
	obj := map[string]interface{}{"id": "abc", "count": float64(3)}
	done := make(chan error, 1)
	go func() { done <- send.SendObject(obj) }()

	msg, err := recv.Receive()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, KindObject, msg.Kind)
	assert.Equal(t, obj, msg.Object)
}

func TestSendListRoundTrip(t *testing.T) {
	send, recv := pairedSessions(t, Config{Compress: true})
	list := []interface{}{"a", float64(1), true}
	done := make(chan error, 1)
	go func() { done <- send.SendList(list) }()

	msg, err := recv.Receive()
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, KindList, msg.Kind)
	assert.Equal(t, list, msg.List)
}

func TestReceiveUnknownTagIsProtocolError(t *testing.T) {
	send, recv := pairedSessions(t, Config{})
	done := make(chan error, 1)
	go func() { done <- send.conn.WriteFrame([]byte{0xFF}, nil) }()

	_, err := recv.Receive()
	assert.ErrorIs(t, err, ErrProtocolError)
	require.NoError(t, <-done)
}

func TestClosedSessionRejectsOperations(t *testing.T) {
	send, recv := pairedSessions(t, Config{})
	require.NoError(t, send.Close())
	require.NoError(t, recv.Close())

	assert.ErrorIs(t, send.SendBytes([]byte("x")), ErrSessionClosed)
	_, err := recv.Receive()
	assert.ErrorIs(t, err, ErrSessionClosed)
}
