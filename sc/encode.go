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

// window is the granularity (in bytes) at which
// the encoder decides between raw and positions blocks;
// it is the segment size of a Pos1 block.
const window = 32

// Encoder compresses bit arrays.
// The zero value is ready to use. An Encoder
// must not be used by more than one goroutine at a time.
type Encoder struct {
	pos []uint64
}

// Encode appends the compressed form of a to dst.
func Encode(dst []byte, a *bitarray.Bits) []byte {
	var e Encoder
	return e.Encode(dst, a)
}

// Encode appends the compressed form of a to dst.
func (e *Encoder) Encode(dst []byte, a *bitarray.Bits) []byte {
	dst = AppendHeader(dst, Header{Endian: a.Endian(), Bits: a.Len()})
	buf := a.Bytes()
	for len(buf) > 0 {
		var n int
		dst, n = e.block(dst, buf, a.Endian())
		buf = buf[n:]
	}
	return append(dst, stopByte)
}

// block appends one block covering a prefix
// of rest and returns the number of bytes covered.
//
// A window whose popcount is at least its length
// costs no more as raw data than as positions, so
// it is dense; anything else is sparse.
func (e *Encoder) block(dst, rest []byte, endian bitarray.Endian) ([]byte, int) {
	w := ints.Min(window, len(rest))
	if ints.OnesCount(rest[:w]) >= uint64(w) {
		n := rawLen(rest)
		dst = appendHead(dst, Raw, n)
		return append(dst, rest[:n]...), n
	}
	return e.positions(dst, rest, endian)
}

// rawLen extends a raw block over consecutive
// dense windows, up to the raw block limit.
func rawLen(rest []byte) int {
	n := ints.Min(window, len(rest))
	for n < maxRaw && n < len(rest) {
		next := ints.Min(n+window, len(rest))
		next = ints.Min(next, maxRaw)
		if ints.OnesCount(rest[n:next]) < uint64(next-n) {
			break
		}
		n = next
	}
	return n
}

// positions appends the positions block that covers
// the most bytes per encoded byte.
func (e *Encoder) positions(dst, rest []byte, endian bitarray.Endian) ([]byte, int) {
	best := Kind(0)
	bestSeg, bestCost := 0, 0
	for k := Pos1; k <= Pos4; k++ {
		seg := int(ints.Min(k.segmentBytes(), uint64(len(rest))))
		c, ok := ints.OnesCountLimit(rest[:seg], uint64(k.maxItems()))
		if !ok {
			// segments nest, so no wider one fits either
			break
		}
		cost := k.headBytes() + k.Width()*int(c)
		if best == 0 || denser(seg, cost, bestSeg, bestCost) {
			best, bestSeg, bestCost = k, seg, cost
		}
		if seg == len(rest) {
			break
		}
	}
	if best == 0 {
		panic("sc: sparse window does not fit a positions block")
	}
	e.pos = endian.AppendOnes(e.pos[:0], rest[:bestSeg], 0)
	dst = appendHead(dst, best, len(e.pos))
	for _, p := range e.pos {
		dst = appendPosition(dst, p, best.Width(), endian)
	}
	return dst, bestSeg
}

// denser reports whether covering seg bytes at cost
// beats covering bestSeg bytes at bestCost. The products
// reach 2^39 for Pos4 segments, so they are taken in uint64.
func denser(seg, cost, bestSeg, bestCost int) bool {
	return uint64(seg)*uint64(bestCost) > uint64(bestSeg)*uint64(cost)
}

func appendPosition(dst []byte, p uint64, w int, endian bitarray.Endian) []byte {
	if endian == bitarray.Big {
		for j := w - 1; j >= 0; j-- {
			dst = append(dst, byte(p>>(8*j)))
		}
		return dst
	}
	for j := 0; j < w; j++ {
		dst = append(dst, byte(p>>(8*j)))
	}
	return dst
}
