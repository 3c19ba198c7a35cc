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

package session

// Receive reads one frame header, switches on its type tag, and
// dispatches to the matching unpack routine (spec.md §4.6's "common
// receive dispatch"). An unrecognized tag fails with ErrProtocolError.
func (s *Session) Receive() (*Message, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.recvMu.Lock()
	defer s.recvMu.Unlock()

	header, err := s.conn.ReadHeader()
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, ErrProtocolError
	}

	switch header[0] {
	case tagSendBytes:
		plain, err := s.readBytesFrame(header)
		if err != nil {
			return nil, err
		}
		return &Message{Kind: KindBytes, Bytes: plain}, nil

	case tagSendText:
		plain, err := s.readBytesFrame(header)
		if err != nil {
			return nil, err
		}
		return &Message{Kind: KindText, Text: string(plain)}, nil

	case tagSendFile:
		path, err := s.receiveFile(header)
		if err != nil {
			return nil, err
		}
		return &Message{Kind: KindFile, FilePath: path}, nil

	case tagSendCompleteFile:
		name, data, err := s.receiveCompleteFile(header)
		if err != nil {
			return nil, err
		}
		return &Message{Kind: KindSavedFile, SavedFileName: name, SavedFileData: data}, nil

	case tagSendObject:
		obj, err := s.receiveObject(header)
		if err != nil {
			return nil, err
		}
		return &Message{Kind: KindObject, Object: obj}, nil

	case tagSendList:
		list, err := s.receiveList(header)
		if err != nil {
			return nil, err
		}
		return &Message{Kind: KindList, List: list}, nil

	default:
		return nil, ErrProtocolError
	}
}
