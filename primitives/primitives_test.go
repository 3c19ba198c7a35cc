package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSAEncryptDecryptRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair(KeyOptions{Bits: 1024})
	require.NoError(t, err)

	msg := []byte("a 16-byte sessn!")
	ct, err := kp.Encrypt(msg)
	require.NoError(t, err)

	pt, err := kp.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, msg, pt)
}

func TestRSASignVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair(KeyOptions{})
	require.NoError(t, err)

	msg := []byte("certificate bytes to sign")
	sig, err := kp.Sign(msg)
	require.NoError(t, err)
	assert.NoError(t, kp.Verify(msg, sig))

	other, err := GenerateKeyPair(KeyOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, other.Verify(msg, sig), ErrInvalidSignature)
}

func TestAEADRoundTrip(t *testing.T) {
	key, err := GenerateSessionKey()
	require.NoError(t, err)
	aead, err := NewAEAD(key)
	require.NoError(t, err)

	plaintext := []byte("hello session layer")
	sealed, err := aead.Seal(plaintext, nil)
	require.NoError(t, err)

	opened, err := aead.Open(sealed.Nonce, sealed.MAC, sealed.Ciphertext, nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestAEADTamperDetection(t *testing.T) {
	key, _ := GenerateSessionKey()
	aead, _ := NewAEAD(key)

	sealed, err := aead.Seal([]byte("do not tamper"), nil)
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed.Ciphertext...)
	tampered[0] ^= 0xFF
	_, err = aead.Open(sealed.Nonce, sealed.MAC, tampered, nil)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestAEADFreshNoncePerSeal(t *testing.T) {
	key, _ := GenerateSessionKey()
	aead, _ := NewAEAD(key)

	a, err := aead.Seal([]byte("same plaintext"), nil)
	require.NoError(t, err)
	b, err := aead.Seal([]byte("same plaintext"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestAEADRejectsWrongKeySize(t *testing.T) {
	_, err := NewAEAD([]byte("too-short"))
	assert.ErrorIs(t, err, ErrKeySize)
}
