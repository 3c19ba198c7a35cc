package netframe

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipePair(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	return New(a), New(b)
}

func TestWriteFrameReadHeader(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()
	defer server.Close()

	go func() {
		_ = client.WriteFrame([]byte{0x07, 0x00, 0x00, 0x00, 0x03}, []byte("hey"))
	}()

	header, err := server.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x00, 0x00, 0x00, 0x03}, header)

	body, err := server.ReadExact(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("hey"), body)
}

func TestReadExactFailsOnClose(t *testing.T) {
	client, server := pipePair(t)
	require.NoError(t, client.Close())

	_, err := server.ReadExact(4)
	assert.ErrorIs(t, err, ErrConnectionLost)
}

func TestHeaderTooLongRejected(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()
	defer server.Close()

	err := client.WriteFrame(make([]byte, 256), nil)
	assert.Error(t, err)
}
