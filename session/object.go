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
	"encoding/json"

	"github.com/strmrider/SDTP/netframe"
	"github.com/strmrider/SDTP/primitives"
)

// SendObject serializes obj as JSON, seals it, and sends it as a
// SEND_OBJECT frame. JSON is the chosen inner-payload encoding (spec.md
// §9 leaves it open): it round-trips Go maps without a schema and needs
// no dependency beyond the standard library, matching every other fixed
// encoding choice this module makes (cert's TLV, the file announce
// tuple).
func (s *Session) SendObject(obj map[string]interface{}) error {
	return s.sendContainer(tagSendObject, obj)
}

// SendList is SendObject for an ordered sequence, tagged SEND_LIST.
func (s *Session) SendList(list []interface{}) error {
	return s.sendContainer(tagSendList, list)
}

func (s *Session) sendContainer(tag byte, value interface{}) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	inner, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	sealed, err := s.sealPlaintext(inner, s.config.Compress)
	if err != nil {
		return err
	}

	outer := encodeOuterContainer(sealed)
	header := make([]byte, 6)
	header[0] = tag
	if s.config.Compress {
		header[1] = 1
	}
	binary.BigEndian.PutUint32(header[2:6], uint32(len(outer)))
	return s.conn.WriteFrame(header, outer)
}

// encodeOuterContainer renders the "single outer serialized container"
// spec.md §4.6 describes as holding nonce/mac/object fields: a
// length-prefixed triple, the same discipline used everywhere else in
// this module a field tuple needs an exact, reproducible byte image.
func encodeOuterContainer(sealed primitives.Sealed) []byte {
	buf := make([]byte, 0, 8+len(sealed.Nonce)+len(sealed.MAC)+len(sealed.Ciphertext))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(sealed.Nonce)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, sealed.Nonce...)
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(sealed.MAC)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, sealed.MAC...)
	buf = append(buf, sealed.Ciphertext...)
	return buf
}

func decodeOuterContainer(data []byte) (nonce, mac, ciphertext []byte, err error) {
	if len(data) < 8 {
		return nil, nil, nil, ErrProtocolError
	}
	nonceLen := binary.BigEndian.Uint32(data[0:4])
	if uint32(len(data)) < 4+nonceLen+4 {
		return nil, nil, nil, ErrProtocolError
	}
	nonce = data[4 : 4+nonceLen]
	rest := data[4+nonceLen:]
	macLen := binary.BigEndian.Uint32(rest[0:4])
	if uint32(len(rest)) < 4+macLen {
		return nil, nil, nil, ErrProtocolError
	}
	mac = rest[4 : 4+macLen]
	ciphertext = rest[4+macLen:]
	return nonce, mac, ciphertext, nil
}

func (s *Session) receiveContainer(header []byte) (compress bool, plain []byte, err error) {
	if len(header) != 6 {
		return false, nil, ErrProtocolError
	}
	compress = header[1] == 1
	dataLen := binary.BigEndian.Uint32(header[2:6])
	if dataLen > netframe.MaxSegmentSize {
		return false, nil, ErrProtocolError
	}

	outer, err := s.conn.ReadExact(int(dataLen))
	if err != nil {
		return false, nil, err
	}
	nonce, mac, ciphertext, err := decodeOuterContainer(outer)
	if err != nil {
		return false, nil, err
	}
	plain, err = s.openPlaintext(nonce, mac, ciphertext, compress)
	return compress, plain, err
}

func (s *Session) receiveObject(header []byte) (map[string]interface{}, error) {
	_, plain, err := s.receiveContainer(header)
	if err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(plain, &obj); err != nil {
		return nil, ErrProtocolError
	}
	return obj, nil
}

func (s *Session) receiveList(header []byte) ([]interface{}, error) {
	_, plain, err := s.receiveContainer(header)
	if err != nil {
		return nil, err
	}
	var list []interface{}
	if err := json.Unmarshal(plain, &list); err != nil {
		return nil, ErrProtocolError
	}
	return list, nil
}
