package cert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmrider/SDTP/primitives"
)

func TestCertificateSignAndVerify(t *testing.T) {
	ca, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)
	subject, err := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	require.NoError(t, err)

	pubDER, err := EncodePublicKey(subject)
	require.NoError(t, err)

	c := &Certificate{
		SubjectID:        "svc1",
		SubjectPublicKey: pubDER,
		Validity:         FiveDayValidity(time.Now()),
	}
	sig, err := ca.Sign(c.Serialize())
	require.NoError(t, err)
	c.Signature = sig

	assert.NoError(t, c.Verify(ca))
	assert.True(t, c.IsWithinValidity(time.Now()))
}

func TestCertificateWrongSignerFailsVerify(t *testing.T) {
	ca, _ := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	imposter, _ := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	subject, _ := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	pubDER, _ := EncodePublicKey(subject)

	c := &Certificate{SubjectID: "svc1", SubjectPublicKey: pubDER, Validity: FiveDayValidity(time.Now())}
	sig, _ := imposter.Sign(c.Serialize())
	c.Signature = sig

	assert.ErrorIs(t, c.Verify(ca), primitives.ErrInvalidSignature)
}

func TestCertificateExpired(t *testing.T) {
	c := &Certificate{
		Validity: Validity{
			NotBeforeMS: time.Now().Add(-2 * time.Hour).UnixMilli(),
			NotAfterMS:  time.Now().Add(-1 * time.Second).UnixMilli(),
		},
	}
	assert.False(t, c.IsWithinValidity(time.Now()))
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	subject, _ := primitives.GenerateKeyPair(primitives.KeyOptions{Bits: 1024})
	pubDER, _ := EncodePublicKey(subject)
	want := &Certificate{
		SubjectID:        "svc1",
		SubjectPublicKey: pubDER,
		Validity:         FiveDayValidity(time.Now()),
	}

	got, err := Deserialize(want.Serialize())
	require.NoError(t, err)
	assert.Equal(t, want.SubjectID, got.SubjectID)
	assert.Equal(t, want.SubjectPublicKey, got.SubjectPublicKey)
	assert.Equal(t, want.Validity, got.Validity)
}
