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

	"github.com/strmrider/SDTP/metrics"
	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

// SendBytes seals data and sends it as a SEND_BYTES frame, compressing
// first iff the session's Config.Compress is set.
func (s *Session) SendBytes(data []byte) error {
	return s.sendBytesFrame(tagSendBytes, data)
}

// SendText is SendBytes for a UTF-8 string, tagged SEND_TEXT so the
// receiver knows to deliver a string rather than an opaque slice.
func (s *Session) SendText(text string) error {
	return s.sendBytesFrame(tagSendText, []byte(text))
}

func (s *Session) sendBytesFrame(tag byte, plaintext []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	sealed, err := s.sealPlaintext(plaintext, s.config.Compress)
	if err != nil {
		return err
	}
	if err := s.writeBytesFrame(tag, s.config.Compress, sealed); err != nil {
		return err
	}
	metrics.BytesSent.Add(float64(len(plaintext)))
	return nil
}

// writeBytesFrame emits the 14-byte SEND_BYTES/SEND_TEXT/chunk header
// (tag, compression_flag, nonce_len, mac_len, data_len) and its body
// (nonce || mac || ciphertext). Shared by bytes/text sends and by
// SendFile's chunk stream.
func (s *Session) writeBytesFrame(tag byte, compress bool, sealed primitives.Sealed) error {
	header := make([]byte, 14)
	header[0] = tag
	if compress {
		header[1] = 1
	}
	binary.BigEndian.PutUint32(header[2:6], uint32(len(sealed.Nonce)))
	binary.BigEndian.PutUint32(header[6:10], uint32(len(sealed.MAC)))
	binary.BigEndian.PutUint32(header[10:14], uint32(len(sealed.Ciphertext)))

	body := make([]byte, 0, len(sealed.Nonce)+len(sealed.MAC)+len(sealed.Ciphertext))
	body = append(body, sealed.Nonce...)
	body = append(body, sealed.MAC...)
	body = append(body, sealed.Ciphertext...)
	return s.conn.WriteFrame(header, body)
}

// readBytesFrame reads a SEND_BYTES/SEND_TEXT-shaped 14-byte header
// (the header itself, already consumed by the caller) plus its body,
// and returns the recovered plaintext.
func (s *Session) readBytesFrame(header []byte) ([]byte, error) {
	if len(header) != 14 {
		return nil, ErrProtocolError
	}
	compress := header[1] == 1
	nonceLen := binary.BigEndian.Uint32(header[2:6])
	macLen := binary.BigEndian.Uint32(header[6:10])
	dataLen := binary.BigEndian.Uint32(header[10:14])
	if uint64(nonceLen)+uint64(macLen)+uint64(dataLen) > netframe.MaxSegmentSize {
		return nil, ErrProtocolError
	}

	body, err := s.conn.ReadExact(int(nonceLen) + int(macLen) + int(dataLen))
	if err != nil {
		return nil, err
	}
	nonce := body[:nonceLen]
	mac := body[nonceLen : nonceLen+macLen]
	ciphertext := body[nonceLen+macLen:]

	plain, err := s.openPlaintext(nonce, mac, ciphertext, compress)
	if err != nil {
		return nil, err
	}
	metrics.BytesReceived.Add(float64(len(plain)))
	return plain, nil
}
