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
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/strmrider/SDTP/ca"
)

var enrollSnapshotPath string

var enrollCmd = &cobra.Command{
	Use:   "enroll <client-id>",
	Short: "Pre-register a client in the CA's snapshot file",
	Long: `enroll adds a client id and password directly to the client-table
snapshot file, without going through the wire enrollment protocol. Run
it before starting the server, or restart the server afterward to pick
up the change — it does not reach into an already-running process.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	enrollCmd.Flags().StringVarP(&enrollSnapshotPath, "snapshot", "s", "ca-clients.json", "Path to the client-table snapshot file")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	clientID := args[0]

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	db := ca.NewDatabase()
	if _, err := os.Stat(enrollSnapshotPath); err == nil {
		if err := db.LoadSnapshot(enrollSnapshotPath); err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := db.Add(context.Background(), clientID, string(password)); err != nil {
		return fmt.Errorf("enroll %s: %w", clientID, err)
	}
	if err := db.SaveSnapshot(enrollSnapshotPath); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	fmt.Printf("enrolled %s\n", clientID)
	return nil
}
