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
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/crypto/scrypt"
)

const (
	pemBlockPlain     = "RSA PRIVATE KEY"
	pemBlockEncrypted = "SDTP ENCRYPTED RSA PRIVATE KEY"
	scryptSaltSize    = 16
	scryptN           = 1 << 15
	scryptR           = 8
	scryptP           = 1
)

// SavePrivateKeyPEM writes kp's private key to path in PKCS#8 DER form,
// PEM-encoded. A non-empty passphrase seals the DER under a scrypt-derived
// AES-128-GCM key (see AEAD) rather than relying on the long-deprecated
// PEM-native encryption, which offers no authentication. The file is
// written with 0600 permissions; an empty passphrase stores the key
// unencrypted, for local development only.
func SavePrivateKeyPEM(path string, kp *KeyPair, passphrase []byte) error {
	der, err := x509.MarshalPKCS8PrivateKey(kp.Private)
	if err != nil {
		return fmt.Errorf("primitives: marshal private key: %w", err)
	}

	if len(passphrase) == 0 {
		block := &pem.Block{Type: pemBlockPlain, Bytes: der}
		return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
	}

	salt := make([]byte, scryptSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("primitives: salt: %w", err)
	}
	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, AESKeySize)
	if err != nil {
		return fmt.Errorf("primitives: derive key: %w", err)
	}
	aead, err := NewAEAD(key)
	if err != nil {
		return err
	}
	sealed, err := aead.Seal(der, nil)
	if err != nil {
		return fmt.Errorf("primitives: seal private key: %w", err)
	}

	block := &pem.Block{
		Type: pemBlockEncrypted,
		Headers: map[string]string{
			"Salt":  fmt.Sprintf("%x", salt),
			"Nonce": fmt.Sprintf("%x", sealed.Nonce),
			"Mac":   fmt.Sprintf("%x", sealed.MAC),
		},
		Bytes: sealed.Ciphertext,
	}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
}

// LoadPrivateKeyPEM reads back a key written by SavePrivateKeyPEM.
// passphrase must match what Save was called with, empty or not.
func LoadPrivateKeyPEM(path string, passphrase []byte) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("primitives: read key file: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("primitives: %s is not PEM encoded", path)
	}

	var der []byte
	switch block.Type {
	case pemBlockPlain:
		der = block.Bytes
	case pemBlockEncrypted:
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("primitives: %s requires a passphrase", path)
		}
		var salt, nonce, mac []byte
		if _, err := fmt.Sscanf(block.Headers["Salt"], "%x", &salt); err != nil {
			return nil, fmt.Errorf("primitives: malformed salt header: %w", err)
		}
		if _, err := fmt.Sscanf(block.Headers["Nonce"], "%x", &nonce); err != nil {
			return nil, fmt.Errorf("primitives: malformed nonce header: %w", err)
		}
		if _, err := fmt.Sscanf(block.Headers["Mac"], "%x", &mac); err != nil {
			return nil, fmt.Errorf("primitives: malformed mac header: %w", err)
		}
		key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, AESKeySize)
		if err != nil {
			return nil, fmt.Errorf("primitives: derive key: %w", err)
		}
		aead, err := NewAEAD(key)
		if err != nil {
			return nil, err
		}
		der, err = aead.Open(nonce, mac, block.Bytes, nil)
		if err != nil {
			return nil, fmt.Errorf("primitives: decrypt private key: %w", err)
		}
	default:
		return nil, fmt.Errorf("primitives: unrecognized PEM block type %q", block.Type)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("primitives: parse private key: %w", err)
	}
	rsaPriv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("primitives: %s does not contain an RSA key", path)
	}
	return newKeyPair(rsaPriv), nil
}

const pemBlockPublic = "RSA PUBLIC KEY"

// SavePublicKeyPEM writes kp's public half to path in PKIX DER form,
// PEM-encoded. Used to hand a CA's or peer's public key to the other
// side out of band (a trust anchor a fresh connection has no other way
// to obtain).
func SavePublicKeyPEM(path string, kp *KeyPair) error {
	der, err := x509.MarshalPKIXPublicKey(kp.Public)
	if err != nil {
		return fmt.Errorf("primitives: marshal public key: %w", err)
	}
	block := &pem.Block{Type: pemBlockPublic, Bytes: der}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o644)
}

// LoadPublicKeyPEM reads back a key written by SavePublicKeyPEM.
func LoadPublicKeyPEM(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("primitives: read public key file: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("primitives: %s is not PEM encoded", path)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("primitives: parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("primitives: %s does not contain an RSA key", path)
	}
	return ImportPublicKey(rsaPub), nil
}
