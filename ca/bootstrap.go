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
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// bootstrapClaims is the payload of a self-enrollment bootstrap token:
// an operator mints one naming a client id and its intended password
// hash, and a client can present it to Server.HandleBootstrap instead
// of requiring the operator to call Database.Add directly first. This
// is additive to spec.md — it does not change any wire tag, frame
// layout, or invariant, only who is allowed to call Add.
type bootstrapClaims struct {
	jwt.RegisteredClaims
	ClientID     string `json:"client_id"`
	PasswordHash string `json:"password_hash_hex"`
}

// MintBootstrapToken signs a short-lived JWT authorizing the holder to
// self-enroll as clientID with the given password. secret is the HMAC
// key the CA operator configures out of band.
func MintBootstrapToken(secret []byte, clientID, password string, ttl time.Duration) (string, error) {
	hash := HashPassword(password)
	claims := bootstrapClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   clientID,
		},
		ClientID:     clientID,
		PasswordHash: fmt.Sprintf("%x", hash),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// HandleBootstrap validates tokenString and, if valid and not expired,
// enrolls the named client with the password hash it carries. The
// caller (a small HTTP or CLI surface, not the core wire protocol)
// supplies the password itself since the token only carries a hash for
// the operator's own bookkeeping — Add always re-hashes the plaintext
// password it's given.
func (s *Server) HandleBootstrap(ctx context.Context, secret []byte, tokenString, password string) error {
	var claims bootstrapClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("ca: bootstrap token invalid: %w", err)
	}
	expectedHash := HashPassword(password)
	if fmt.Sprintf("%x", expectedHash) != claims.PasswordHash {
		return ErrInactiveClient
	}
	return s.DB.Add(ctx, claims.ClientID, password)
}
