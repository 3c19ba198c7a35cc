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
	"net"

	"github.com/spf13/cobra"

	"github.com/strmrider/SDTP/config"
	"github.com/strmrider/SDTP/handshake"
	"github.com/strmrider/SDTP/internal/logger"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
	"github.com/strmrider/SDTP/session"
)

var (
	connectConfigPath string
	connectEnvFile    string
	connectCert       bool
)

var connectCmd = &cobra.Command{
	Use:   "connect <addr>",
	Short: "Dial a peer and open an interactive session",
	Long: `connect dials addr, runs the key exchange as the connecting role, and
then pipes stdin lines into the session as text messages, printing
whatever the other side sends back. With --cert it verifies the
listener's certificate against peer.ca_public_key_path instead of
trusting whatever key it presents.`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVarP(&connectConfigPath, "config", "c", "config.yaml", "Path to config file")
	connectCmd.Flags().StringVarP(&connectEnvFile, "env-file", "e", ".env", "Path to .env file")
	connectCmd.Flags().BoolVar(&connectCert, "cert", false, "Verify the listener's certificate (certificate mode)")
}

func runConnect(cmd *cobra.Command, args []string) error {
	addr := args[0]
	cfg, err := config.Load(config.LoaderOptions{ConfigPath: connectConfigPath, EnvFile: connectEnvFile})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.GetDefaultLogger()

	rawConn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	conn := netframe.New(rawConn)

	sessionKey, err := primitives.GenerateSessionKey()
	if err != nil {
		conn.Close()
		return fmt.Errorf("generate session key: %w", err)
	}

	var result *handshake.Result
	if connectCert {
		if cfg.Peer.CAPublicKeyPath == "" {
			conn.Close()
			return fmt.Errorf("--cert requires peer.ca_public_key_path in config")
		}
		caPub, err := primitives.LoadPublicKeyPEM(cfg.Peer.CAPublicKeyPath)
		if err != nil {
			conn.Close()
			return fmt.Errorf("ca public key: %w", err)
		}
		result, err = handshake.ClientCert(conn, caPub, sessionKey)
		if err != nil {
			conn.Close()
			return fmt.Errorf("handshake: %w", err)
		}
		log.Info("peer certificate verified", logger.String("subject", result.PeerCert.SubjectID))
	} else {
		result, err = handshake.ClientPlain(conn, sessionKey)
		if err != nil {
			conn.Close()
			return fmt.Errorf("handshake: %w", err)
		}
	}

	sess, err := session.New(conn, result.SessionKey, session.Config{
		Compress:   cfg.Peer.Compress,
		MaxChunk:   cfg.Peer.MaxChunk,
		ReceiveDir: cfg.Peer.ReceiveDir,
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("open session: %w", err)
	}

	log.Info("session established", logger.String("addr", addr))
	return runREPL(sess)
}
