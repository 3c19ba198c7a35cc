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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/strmrider/SDTP/session"
)

// runREPL pipes stdin lines into sess.SendText and prints every
// received message to stdout until either direction hits EOF or an
// error. It blocks until the session ends.
func runREPL(sess *session.Session) error {
	done := make(chan error, 2)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := sess.SendText(scanner.Text()); err != nil {
				done <- err
				return
			}
		}
		done <- scanner.Err()
	}()

	go func() {
		for {
			msg, err := sess.Receive()
			if err != nil {
				if errors.Is(err, io.EOF) {
					done <- nil
					return
				}
				done <- err
				return
			}
			printMessage(msg)
		}
	}()

	err := <-done
	sess.Close()
	return err
}

func printMessage(msg *session.Message) {
	switch msg.Kind {
	case session.KindText:
		fmt.Printf("peer: %s\n", msg.Text)
	case session.KindBytes:
		fmt.Printf("peer sent %d raw bytes\n", len(msg.Bytes))
	case session.KindFile:
		fmt.Printf("peer sent a file, saved to %s\n", msg.FilePath)
	case session.KindSavedFile:
		fmt.Printf("peer sent file %q (%d bytes)\n", msg.SavedFileName, len(msg.SavedFileData))
	case session.KindObject:
		fmt.Printf("peer sent object: %v\n", msg.Object)
	case session.KindList:
		fmt.Printf("peer sent list: %v\n", msg.List)
	}
}
