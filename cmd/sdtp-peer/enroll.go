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
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/strmrider/SDTP/ca"
	"github.com/strmrider/SDTP/config"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

var (
	enrollConfigPath  string
	enrollEnvFile     string
	enrollCAAddr      string
	enrollCAPublicKey string
	enrollClientID    string
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Request a certificate from a CA server",
	Long: `enroll dials a CA server's enrollment listener, authenticates with a
client id and password the CA operator pre-registered (see
ca-server enroll/bootstrap-token), and saves the granted certificate to
the path named by the config file's peer.cert_path.`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	enrollCmd.Flags().StringVarP(&enrollConfigPath, "config", "c", "config.yaml", "Path to config file")
	enrollCmd.Flags().StringVarP(&enrollEnvFile, "env-file", "e", ".env", "Path to .env file")
	enrollCmd.Flags().StringVar(&enrollCAAddr, "ca-addr", "", "CA server address (host:port)")
	enrollCmd.Flags().StringVar(&enrollCAPublicKey, "ca-pubkey", "", "Path to the CA's public key PEM (overrides config)")
	enrollCmd.Flags().StringVar(&enrollClientID, "id", "", "Client id to enroll as (overrides config)")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigPath: enrollConfigPath, EnvFile: enrollEnvFile})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	clientID := enrollClientID
	if clientID == "" {
		clientID = cfg.Peer.ID
	}
	if clientID == "" {
		return fmt.Errorf("no client id given (pass --id or set peer.id)")
	}

	caPubPath := enrollCAPublicKey
	if caPubPath == "" {
		caPubPath = cfg.Peer.CAPublicKeyPath
	}
	if caPubPath == "" {
		return fmt.Errorf("no CA public key given (pass --ca-pubkey or set peer.ca_public_key_path)")
	}
	caPub, err := primitives.LoadPublicKeyPEM(caPubPath)
	if err != nil {
		return fmt.Errorf("ca public key: %w", err)
	}

	if enrollCAAddr == "" {
		return fmt.Errorf("--ca-addr is required")
	}

	subjectKey, err := loadOrCreatePeerKey(cfg)
	if err != nil {
		return fmt.Errorf("peer key: %w", err)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	rawConn, err := net.Dial("tcp", enrollCAAddr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", enrollCAAddr, err)
	}
	defer rawConn.Close()
	conn := netframe.New(rawConn)

	granted, err := ca.RequestCertificate(conn, caPub, clientID, string(password), subjectKey)
	if err != nil {
		return fmt.Errorf("request certificate: %w", err)
	}

	certPath := cfg.Peer.CertPath
	if certPath == "" {
		certPath = "peer-cert.json"
	}
	if err := saveCertificate(certPath, granted); err != nil {
		return fmt.Errorf("save certificate: %w", err)
	}

	fmt.Printf("enrolled %s, certificate saved to %s\n", clientID, certPath)
	return nil
}
