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
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/strmrider/SDTP/cert"
	"github.com/strmrider/SDTP/config"
	"github.com/strmrider/SDTP/handshake"
	"github.com/strmrider/SDTP/internal/logger"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
	"github.com/strmrider/SDTP/session"
	"github.com/strmrider/SDTP/transport"
)

var (
	listenConfigPath string
	listenEnvFile    string
	listenAddr       string
	listenCert       bool
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Accept one incoming connection and open an interactive session",
	Long: `listen binds addr, accepts a single connection, runs the key exchange
as the listening role, and then pipes stdin lines into the session as
text messages, printing whatever the other side sends back. With
--cert it presents the certificate at peer.cert_path instead of an
unauthenticated key.`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().StringVarP(&listenConfigPath, "config", "c", "config.yaml", "Path to config file")
	listenCmd.Flags().StringVarP(&listenEnvFile, "env-file", "e", ".env", "Path to .env file")
	listenCmd.Flags().StringVarP(&listenAddr, "addr", "a", "0.0.0.0:9443", "Address to listen on")
	listenCmd.Flags().BoolVar(&listenCert, "cert", false, "Present a certificate (certificate mode)")
}

func runListen(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigPath: listenConfigPath, EnvFile: listenEnvFile})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.GetDefaultLogger()

	key, err := loadOrCreatePeerKey(cfg)
	if err != nil {
		return fmt.Errorf("peer key: %w", err)
	}

	var ownCert *cert.Certificate
	if listenCert {
		if cfg.Peer.CertPath == "" {
			return fmt.Errorf("--cert requires peer.cert_path in config")
		}
		ownCert, err = loadCertificate(cfg.Peer.CertPath)
		if err != nil {
			return fmt.Errorf("load certificate: %w", err)
		}
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shell := transport.New(listener, func(ctx context.Context, conn *netframe.Conn) error {
		defer cancel()
		return handleIncoming(conn, key, ownCert, cfg, log)
	})
	shell.Log = log

	log.Info("sdtp-peer listening", logger.String("addr", listenAddr))
	return shell.Serve(ctx)
}

// handleIncoming runs the listening side of the key exchange (plain or
// certificate mode per whether ownCert is set) and then the
// interactive session loop. One connection is handled per listen
// invocation; the accept loop is cancelled as soon as it returns.
func handleIncoming(conn *netframe.Conn, key *primitives.KeyPair, ownCert *cert.Certificate, cfg *config.Config, log logger.Logger) error {
	var result *handshake.Result
	var err error

	if ownCert != nil {
		result, err = handshake.ServerCert(conn, key, ownCert)
	} else {
		result, err = handshake.ServerPlain(conn, key)
	}
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	sess, err := session.New(conn, result.SessionKey, session.Config{
		Compress:   cfg.Peer.Compress,
		MaxChunk:   cfg.Peer.MaxChunk,
		ReceiveDir: cfg.Peer.ReceiveDir,
	})
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	log.Info("session established")
	return runREPL(sess)
}
