// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package sc

import (
	"github.com/SnellerInc/sparsebits/bitarray"
	"github.com/SnellerInc/sparsebits/ints"
)

const (
	reservedMask = 0xe0
	bigFlag      = 0x10
	lenMask      = 0x0f
)

// Header is the stream header: the bit
// order and the declared length in bits.
type Header struct {
	Endian bitarray.Endian
	Bits   uint64
}

// AppendHeader appends the encoded form of h to dst.
func AppendHeader(dst []byte, h Header) []byte {
	n := ints.ByteLen(h.Bits)
	tag := byte(n)
	if h.Endian == bitarray.Big {
		tag |= bigFlag
	}
	dst = append(dst, tag)
	for v := h.Bits; n > 0; n-- {
		dst = append(dst, byte(v))
		v >>= 8
	}
	return dst
}

// ParseHeader decodes the header at the start of src
// and returns it along with the number of bytes it occupies.
func ParseHeader(src []byte) (Header, int, error) {
	s := &memSource{buf: src}
	h, err := readHeader(s)
	return h, int(s.offset()), err
}

func readHeader(src source) (Header, error) {
	var h Header
	tag, err := src.readByte()
	if err != nil {
		if !isEOF(err) {
			return h, err
		}
		return h, formatErr(ecTruncated, src.offset())
	}
	if tag&reservedMask != 0 {
		return h, headErr(ecInvalidHeader, src.offset()-1, tag)
	}
	if tag&bigFlag != 0 {
		h.Endian = bitarray.Big
	}
	n := int(tag & lenMask)
	for j := 0; j < n; j++ {
		c, err := src.readByte()
		if err != nil {
			if !isEOF(err) {
				return h, err
			}
			return h, formatErr(ecShortLength, src.offset())
		}
		if j >= 8 {
			// the length must still fit in 64 bits
			if c != 0 {
				return h, &FormatError{code: ecInvalidHeader, Offset: src.offset() - 1, Head: tag, Detail: "length overflows 64 bits"}
			}
			continue
		}
		h.Bits |= uint64(c) << (8 * j)
	}
	return h, nil
}
