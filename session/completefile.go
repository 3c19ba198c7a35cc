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

import (
	"encoding/binary"

	"github.com/strmrider/SDTP/netframe"
)

// SendCompleteFile seals filename and data under two independent
// nonces and sends them as a single SEND_COMPLETE_FILE frame. data is
// zlib-compressed first iff the session's Config.Compress is set; the
// compression flag always travels in the header (spec.md §9's preferred
// resolution for SEND_COMPLETE_FILE's ambiguous compression-flag
// placement).
func (s *Session) SendCompleteFile(filename string, data []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	nameSealed, err := s.sealPlaintext([]byte(filename), false)
	if err != nil {
		return err
	}
	dataSealed, err := s.sealPlaintext(data, s.config.Compress)
	if err != nil {
		return err
	}

	header := make([]byte, 26)
	header[0] = tagSendCompleteFile
	if s.config.Compress {
		header[1] = 1
	}
	binary.BigEndian.PutUint32(header[2:6], uint32(len(nameSealed.Nonce)))
	binary.BigEndian.PutUint32(header[6:10], uint32(len(nameSealed.MAC)))
	binary.BigEndian.PutUint32(header[10:14], uint32(len(nameSealed.Ciphertext)))
	binary.BigEndian.PutUint32(header[14:18], uint32(len(dataSealed.Nonce)))
	binary.BigEndian.PutUint32(header[18:22], uint32(len(dataSealed.MAC)))
	binary.BigEndian.PutUint32(header[22:26], uint32(len(dataSealed.Ciphertext)))

	body := make([]byte, 0, len(nameSealed.Nonce)+len(nameSealed.MAC)+len(nameSealed.Ciphertext)+
		len(dataSealed.Nonce)+len(dataSealed.MAC)+len(dataSealed.Ciphertext))
	body = append(body, nameSealed.Nonce...)
	body = append(body, nameSealed.MAC...)
	body = append(body, nameSealed.Ciphertext...)
	body = append(body, dataSealed.Nonce...)
	body = append(body, dataSealed.MAC...)
	body = append(body, dataSealed.Ciphertext...)
	return s.conn.WriteFrame(header, body)
}

func (s *Session) receiveCompleteFile(header []byte) (filename string, data []byte, err error) {
	if len(header) != 26 {
		return "", nil, ErrProtocolError
	}
	compress := header[1] == 1
	nameNonceLen := binary.BigEndian.Uint32(header[2:6])
	nameMACLen := binary.BigEndian.Uint32(header[6:10])
	nameCipherLen := binary.BigEndian.Uint32(header[10:14])
	fileNonceLen := binary.BigEndian.Uint32(header[14:18])
	fileMACLen := binary.BigEndian.Uint32(header[18:22])
	fileCipherLen := binary.BigEndian.Uint32(header[22:26])

	totalLen := uint64(nameNonceLen) + uint64(nameMACLen) + uint64(nameCipherLen) +
		uint64(fileNonceLen) + uint64(fileMACLen) + uint64(fileCipherLen)
	if totalLen > netframe.MaxSegmentSize {
		return "", nil, ErrProtocolError
	}
	body, err := s.conn.ReadExact(int(totalLen))
	if err != nil {
		return "", nil, err
	}

	off := uint32(0)
	take := func(n uint32) []byte {
		seg := body[off : off+n]
		off += n
		return seg
	}
	nameNonce := take(nameNonceLen)
	nameMAC := take(nameMACLen)
	nameCipher := take(nameCipherLen)
	fileNonce := take(fileNonceLen)
	fileMAC := take(fileMACLen)
	fileCipher := take(fileCipherLen)

	nameBytes, err := s.openPlaintext(nameNonce, nameMAC, nameCipher, false)
	if err != nil {
		return "", nil, err
	}
	fileBytes, err := s.openPlaintext(fileNonce, fileMAC, fileCipher, compress)
	if err != nil {
		return "", nil, err
	}
	return string(nameBytes), fileBytes, nil
}
