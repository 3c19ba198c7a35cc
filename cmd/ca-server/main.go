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

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ca-server",
	Short: "SDTP certificate authority — enrollment server and client table admin",
	Long: `ca-server runs the SDTP certificate enrollment listener, and offers a
handful of operator subcommands for managing its client table out of
band from the wire protocol.

This tool supports:
- Running the enrollment listener (serve)
- Enrolling a client directly (enroll)
- Minting a self-enrollment bootstrap token (bootstrap-token)`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Note: Commands are registered in their respective files
	// - serve.go: serveCmd
	// - enroll.go: enrollCmd
	// - bootstrap.go: bootstrapTokenCmd
}
