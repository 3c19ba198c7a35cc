package ca

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmrider/SDTP/cert"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

func TestDatabaseAddVerifyRemove(t *testing.T) {
	db := NewDatabase()
	require.NoError(t, db.Add(context.Background(), "svc1", "pw"))
	assert.True(t, db.Verify(context.Background(), "svc1", "pw"))
	assert.False(t, db.Verify(context.Background(), "svc1", "wrong"))
	assert.ErrorIs(t, db.Add(context.Background(), "svc1", "pw"), ErrClientExists)

	require.NoError(t, db.Remove("svc1"))
	assert.False(t, db.Exists("svc1"))
	assert.ErrorIs(t, db.Remove("svc1"), ErrClientNotFound)
}

func TestDatabaseConcurrentAccessNoDuplicateKeys(t *testing.T) {
	db := NewDatabase()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = db.Add(context.Background(), "client", "pw")
		}(i)
	}
	wg.Wait()
	assert.Len(t, db.List(), 1)
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := NewDatabase()
	require.NoError(t, db.Add(context.Background(), "svc1", "pw"))
	require.NoError(t, db.Grant(context.Background(), "svc1", []byte("pubkey-bytes"), cert.FiveDayValidity(time.Now())))

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, db.SaveSnapshot(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored := NewDatabase()
	require.NoError(t, restored.LoadSnapshot(path))
	c, err := restored.Get("svc1")
	require.NoError(t, err)
	assert.True(t, c.Active)
	assert.True(t, c.HasValidity)
}

func TestEnrollmentGrantedEndToEnd(t *testing.T) {
	db := NewDatabase()
	require.NoError(t, db.Add(context.Background(), "svc1", "pw"))

	caKey, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	srv := NewServer(db, caKey)

	clientRaw, serverRaw := net.Pipe()
	clientConn := netframe.New(clientRaw)
	serverConn := netframe.New(serverRaw)
	defer clientConn.Close()
	defer serverConn.Close()

	go func() { _ = srv.handleOne(context.Background(), serverConn, "test-request") }()

	subject, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)

	c, err := RequestCertificate(clientConn, caKey, "svc1", "pw", subject)
	require.NoError(t, err)
	assert.Equal(t, "svc1", c.SubjectID)
	assert.NoError(t, c.Verify(caKey))
}

func TestEnrollmentDeniedEndToEnd(t *testing.T) {
	db := NewDatabase()
	caKey, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	srv := NewServer(db, caKey)

	clientRaw, serverRaw := net.Pipe()
	clientConn := netframe.New(clientRaw)
	serverConn := netframe.New(serverRaw)
	defer clientConn.Close()
	defer serverConn.Close()

	go func() { _ = srv.handleOne(context.Background(), serverConn, "test-request") }()

	subject, _ := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	_, err = RequestCertificate(clientConn, caKey, "unknown", "pw", subject)
	assert.ErrorIs(t, err, ErrCertificateDenied)
}

func TestBootstrapTokenEnrollsClient(t *testing.T) {
	db := NewDatabase()
	caKey, _ := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	srv := NewServer(db, caKey)
	secret := []byte("bootstrap-secret")

	token, err := MintBootstrapToken(secret, "svc2", "pw", time.Minute)
	require.NoError(t, err)
	require.NoError(t, srv.HandleBootstrap(context.Background(), secret, token, "pw"))
	assert.True(t, db.Verify(context.Background(), "svc2", "pw"))
}
