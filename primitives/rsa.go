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

package primitives

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeyPair is an RSA key pair used for session-key transport (OAEP) and
// certificate/handshake signatures (PSS), both over SHA-256.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
	id      string
}

// GenerateKeyPair creates a new RSA key pair. opts.Bits defaults to 1024
// (see KeyOptions); the CA and new peer deployments should pass 2048.
func GenerateKeyPair(opts KeyOptions) (*KeyPair, error) {
	bits := opts.bits()
	if bits < 512 {
		return nil, ErrInvalidKeySize
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("primitives: generate RSA key: %w", err)
	}
	return newKeyPair(priv), nil
}

func newKeyPair(priv *rsa.PrivateKey) *KeyPair {
	pub := &priv.PublicKey
	modHash := sha256.Sum256(pub.N.Bytes())
	return &KeyPair{
		Private: priv,
		Public:  pub,
		id:      hex.EncodeToString(modHash[:8]),
	}
}

// ImportPublicKey wraps an externally-received public key (e.g. one read
// off the wire inside a certificate) for use with Encrypt/Verify.
func ImportPublicKey(pub *rsa.PublicKey) *KeyPair {
	modHash := sha256.Sum256(pub.N.Bytes())
	return &KeyPair{
		Public: pub,
		id:     hex.EncodeToString(modHash[:8]),
	}
}

// ID returns a short fingerprint of the public modulus, useful for logs.
func (kp *KeyPair) ID() string { return kp.id }

// Sign produces an RSA-PSS/SHA-256 signature over message.
func (kp *KeyPair) Sign(message []byte) ([]byte, error) {
	if kp.Private == nil {
		return nil, fmt.Errorf("primitives: sign: %w", ErrInvalidSignature)
	}
	hash := sha256.Sum256(message)
	sig, err := rsa.SignPSS(rand.Reader, kp.Private, crypto.SHA256, hash[:], nil)
	if err != nil {
		return nil, fmt.Errorf("primitives: sign: %w", err)
	}
	return sig, nil
}

// Verify checks an RSA-PSS/SHA-256 signature produced by Sign.
func (kp *KeyPair) Verify(message, signature []byte) error {
	hash := sha256.Sum256(message)
	if err := rsa.VerifyPSS(kp.Public, crypto.SHA256, hash[:], signature, nil); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// Encrypt wraps data (typically a freshly generated AES session key) for
// this key pair's public key using RSA-OAEP/SHA-256.
func (kp *KeyPair) Encrypt(data []byte) ([]byte, error) {
	out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, kp.Public, data, nil)
	if err != nil {
		return nil, fmt.Errorf("primitives: encrypt: %w", err)
	}
	return out, nil
}

// Decrypt reverses Encrypt using this key pair's private key.
func (kp *KeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	if kp.Private == nil {
		return nil, fmt.Errorf("primitives: decrypt: %w", ErrDecryptionFailed)
	}
	out, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, kp.Private, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("primitives: %w", ErrDecryptionFailed)
	}
	return out, nil
}
