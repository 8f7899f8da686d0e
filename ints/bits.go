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

package ints

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// LSB-first addressing puts bit k of a byte slice
// at in[k/8] & (1 << (k%8)); MSB-first addressing
// puts it at in[k/8] & (0x80 >> (k%8)).

// TestBit checks if the k-th bit (LSB-first) is set in "in"
func TestBit[K constraints.Integer](in []byte, k K) bool {
	return in[uint64(k)>>3]&(1<<(uint64(k)&7)) != 0
}

// SetBit sets the k-th bit (LSB-first) in "in"
func SetBit[K constraints.Integer](in []byte, k K) {
	in[uint64(k)>>3] |= 1 << (uint64(k) & 7)
}

// ClearBit clears the k-th bit (LSB-first) in "in"
func ClearBit[K constraints.Integer](in []byte, k K) {
	in[uint64(k)>>3] &^= 1 << (uint64(k) & 7)
}

// TestBitMSB checks if the k-th bit (MSB-first) is set in "in"
func TestBitMSB[K constraints.Integer](in []byte, k K) bool {
	return in[uint64(k)>>3]&(0x80>>(uint64(k)&7)) != 0
}

// SetBitMSB sets the k-th bit (MSB-first) in "in"
func SetBitMSB[K constraints.Integer](in []byte, k K) {
	in[uint64(k)>>3] |= 0x80 >> (uint64(k) & 7)
}

// ClearBitMSB clears the k-th bit (MSB-first) in "in"
func ClearBitMSB[K constraints.Integer](in []byte, k K) {
	in[uint64(k)>>3] &^= 0x80 >> (uint64(k) & 7)
}

// LowMask returns a byte mask selecting the
// first n bits (0 <= n <= 8) of a byte in LSB-first order.
func LowMask(n uint) byte {
	return byte((1 << n) - 1)
}

// HighMask returns a byte mask selecting the
// first n bits (0 <= n <= 8) of a byte in MSB-first order.
func HighMask(n uint) byte {
	return ^byte(0xff >> n)
}

// OnesCount returns the number of set bits in buf.
func OnesCount(buf []byte) uint64 {
	n, _ := OnesCountLimit(buf, ^uint64(0))
	return n
}

// OnesCountLimit counts the set bits in buf
// but stops early once the count exceeds limit.
// The returned bool is false if the limit was exceeded,
// in which case the returned count is only a lower bound.
func OnesCountLimit(buf []byte, limit uint64) (uint64, bool) {
	var n uint64
	for len(buf) >= 64 {
		for i := 0; i < 64; i += 8 {
			n += uint64(bits.OnesCount64(binary.LittleEndian.Uint64(buf[i:])))
		}
		if n > limit {
			return n, false
		}
		buf = buf[64:]
	}
	for len(buf) >= 8 {
		n += uint64(bits.OnesCount64(binary.LittleEndian.Uint64(buf)))
		buf = buf[8:]
	}
	for _, b := range buf {
		n += uint64(bits.OnesCount8(b))
	}
	return n, n <= limit
}
