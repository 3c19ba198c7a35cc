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

package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/strmrider/SDTP/config"
	"github.com/strmrider/SDTP/primitives"
)

// loadOrCreatePeerKey loads the peer's private key from
// PeerConfig.KeyPath, generating and persisting a fresh key of the
// primitives package's default size (1024 bits) on first run. Mirrors
// cmd/ca-server's loadOrCreateCAKey.
func loadOrCreatePeerKey(cfg *config.Config) (*primitives.KeyPair, error) {
	passphrase, err := resolvePassphrase(cfg.Peer.KeyPassphraseEnv, "Peer key passphrase (leave empty for none): ")
	if err != nil {
		return nil, err
	}

	if cfg.Peer.KeyPath == "" {
		return primitives.GenerateKeyPair(primitives.KeyOptions{})
	}
	if _, err := os.Stat(cfg.Peer.KeyPath); err == nil {
		return primitives.LoadPrivateKeyPEM(cfg.Peer.KeyPath, passphrase)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	key, err := primitives.GenerateKeyPair(primitives.KeyOptions{})
	if err != nil {
		return nil, err
	}
	if err := primitives.SavePrivateKeyPEM(cfg.Peer.KeyPath, key, passphrase); err != nil {
		return nil, err
	}
	return key, nil
}

// resolvePassphrase reads a passphrase from the named environment
// variable, or prompts on the terminal if it is unset and stdin is a
// terminal; otherwise returns nil (no passphrase).
func resolvePassphrase(envVar, prompt string) ([]byte, error) {
	if envVar == "" {
		return nil, nil
	}
	if v, ok := os.LookupEnv(envVar); ok {
		return []byte(v), nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	return pass, nil
}
