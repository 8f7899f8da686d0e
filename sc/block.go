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
	"fmt"
)

// Kind is a block type.
type Kind uint8

const (
	// Raw blocks hold literal bit data.
	Raw Kind = iota
	// Pos1 blocks hold up to 31 one-byte positions.
	Pos1
	// Pos2 blocks hold up to 255 two-byte positions.
	Pos2
	// Pos3 blocks hold up to 255 three-byte positions.
	Pos3
	// Pos4 blocks hold up to 255 four-byte positions.
	Pos4

	// NumKinds is the number of block types.
	NumKinds = 5
)

const (
	stopByte = 0x00
	maxRaw   = 0x80 // also the largest raw head
	pos1Base = 0xa0
	maxPos1  = 0x1f
	posNBase = 0xc0
	maxPosN  = 0xff
)

// Width returns the size in bytes of a position
// stored in a block of kind k, or 0 for Raw.
func (k Kind) Width() int { return int(k) }

func (k Kind) String() string {
	switch k {
	case Raw:
		return "raw"
	case Pos1, Pos2, Pos3, Pos4:
		return fmt.Sprintf("type %d", int(k))
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// maxItems is the largest item count a block of kind k can carry.
func (k Kind) maxItems() int {
	switch k {
	case Raw:
		return maxRaw
	case Pos1:
		return maxPos1
	default:
		return maxPosN
	}
}

// headBytes is the number of bytes preceding the payload.
func (k Kind) headBytes() int {
	if k.Width() >= 2 {
		return 2
	}
	return 1
}

// payloadSize is the number of payload bytes
// following the head of a block of kind k with count items.
func (k Kind) payloadSize(count int) int {
	if k == Raw {
		return count
	}
	return k.Width() * count
}

// segmentBytes returns the number of buffer bytes
// covered by a positions block of kind k, before
// clamping to the end of the buffer: 2^(8w) bits.
func (k Kind) segmentBytes() uint64 {
	return 32 << (8 * uint(k.Width()-1))
}

// headClass is the classification of a block head byte.
type headClass uint8

const (
	headInvalid headClass = iota
	headStop
	headInline  // the item count is part of the head
	headCounted // a count byte follows the head
)

// classify maps every possible head byte to
// exactly one class. For headInline the returned
// count is the item count (bytes for Raw).
func classify(head byte) (headClass, Kind, int) {
	switch {
	case head == stopByte:
		return headStop, 0, 0
	case head <= maxRaw:
		return headInline, Raw, int(head)
	case head >= pos1Base && head <= pos1Base+maxPos1:
		return headInline, Pos1, int(head - pos1Base)
	case head >= posNBase+2 && head <= posNBase+4:
		return headCounted, Kind(head - posNBase), 0
	default:
		// 0x81..0x9f, 0xc0, 0xc1, 0xc5..0xff
		return headInvalid, 0, 0
	}
}

// appendHead appends the head of a block of
// kind k with count items.
func appendHead(dst []byte, k Kind, count int) []byte {
	if count < 0 || count > k.maxItems() || (k == Raw && count == 0) {
		panic(fmt.Sprintf("sc: cannot encode %s block with %d items", k, count))
	}
	switch k {
	case Raw:
		return append(dst, byte(count))
	case Pos1:
		return append(dst, byte(pos1Base+count))
	case Pos2, Pos3, Pos4:
		return append(dst, byte(posNBase+int(k)), byte(count))
	default:
		panic(fmt.Sprintf("sc: bad block kind %d", k))
	}
}
