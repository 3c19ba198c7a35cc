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
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/strmrider/SDTP/ca"
)

var (
	bootstrapSecretEnv string
	bootstrapTTL        time.Duration
)

var bootstrapTokenCmd = &cobra.Command{
	Use:   "bootstrap-token <client-id>",
	Short: "Mint a self-enrollment bootstrap token for a client",
	Long: `bootstrap-token signs a short-lived JWT that ca.Server.HandleBootstrap
accepts in place of a prior enroll call, letting its holder self-enroll
as client-id. HandleBootstrap is a Go API, not part of the wire
enrollment protocol, and the serve subcommand does not expose it. The
HMAC secret is read from the environment variable named by --secret-env.`,
	Args: cobra.ExactArgs(1),
	RunE: runBootstrapToken,
}

func init() {
	rootCmd.AddCommand(bootstrapTokenCmd)
	bootstrapTokenCmd.Flags().StringVar(&bootstrapSecretEnv, "secret-env", "SDTP_CA_BOOTSTRAP_SECRET", "Environment variable holding the bootstrap HMAC secret")
	bootstrapTokenCmd.Flags().DurationVar(&bootstrapTTL, "ttl", time.Hour, "Token validity window")
}

func runBootstrapToken(cmd *cobra.Command, args []string) error {
	clientID := args[0]

	secret := os.Getenv(bootstrapSecretEnv)
	if secret == "" {
		return fmt.Errorf("%s is not set", bootstrapSecretEnv)
	}

	fmt.Fprint(os.Stderr, "Password for new client: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	token, err := ca.MintBootstrapToken([]byte(secret), clientID, string(password), bootstrapTTL)
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}

	fmt.Println(token)
	return nil
}
