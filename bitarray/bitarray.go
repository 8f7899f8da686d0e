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

// Package bitarray implements a fixed-length
// sequence of bits backed by a byte buffer.
//
// A Bits value has a declared length in bits
// (which may exceed 2^32) and a bit order that
// determines where bit i lives inside byte i/8:
// for Little it is the bit with weight 1<<(i%8),
// for Big it is the bit with weight 0x80>>(i%8).
// Pad bits past the declared length are always zero.
package bitarray

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/SnellerInc/sparsebits/ints"
)

// Endian is the order of bits within a byte.
type Endian uint8

const (
	// Little places bit 0 of each byte in the least significant position.
	Little Endian = iota
	// Big places bit 0 of each byte in the most significant position.
	Big
)

func (e Endian) String() string {
	switch e {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return fmt.Sprintf("Endian(%d)", uint8(e))
	}
}

// ParseEndian parses "little" or "big".
func ParseEndian(s string) (Endian, error) {
	switch s {
	case "little", "le":
		return Little, nil
	case "big", "be":
		return Big, nil
	default:
		return 0, fmt.Errorf("bitarray: unknown bit order %q", s)
	}
}

// TestBit reports whether bit k of buf is set
// according to the bit order e.
func (e Endian) TestBit(buf []byte, k uint64) bool {
	if e == Big {
		return ints.TestBitMSB(buf, k)
	}
	return ints.TestBit(buf, k)
}

// SetBit sets bit k of buf according to the bit order e.
func (e Endian) SetBit(buf []byte, k uint64) {
	if e == Big {
		ints.SetBitMSB(buf, k)
	} else {
		ints.SetBit(buf, k)
	}
}

// ClearBit clears bit k of buf according to the bit order e.
func (e Endian) ClearBit(buf []byte, k uint64) {
	if e == Big {
		ints.ClearBitMSB(buf, k)
	} else {
		ints.ClearBit(buf, k)
	}
}

// headMask returns the mask selecting
// the first n bits (0 <= n <= 8) of a byte.
func (e Endian) headMask(n uint) byte {
	if e == Big {
		return ints.HighMask(n)
	}
	return ints.LowMask(n)
}

// AppendOnes appends base+i to dst for every
// set bit i of buf (in ascending order of i)
// and returns the extended slice.
func (e Endian) AppendOnes(dst []uint64, buf []byte, base uint64) []uint64 {
	for j, c := range buf {
		if c == 0 {
			continue
		}
		off := base + uint64(j)*8
		for i := uint64(0); i < 8; i++ {
			if e.TestBit(buf[j:j+1], i) {
				dst = append(dst, off+i)
			}
		}
	}
	return dst
}

// Bits is a bit sequence with a declared length.
type Bits struct {
	endian Endian
	n      uint64
	buf    []byte
}

// New returns a zeroed bit sequence of n bits.
func New(n uint64, e Endian) *Bits {
	return &Bits{endian: e, n: n, buf: make([]byte, ints.ChunkCount[uint64](n, 8))}
}

// Ones returns a bit sequence of n bits, all set.
func Ones(n uint64, e Endian) *Bits {
	b := New(n, e)
	b.SetRange(0, n)
	return b
}

// FromBytes wraps buf as a bit sequence of n bits.
// The returned Bits takes ownership of buf;
// bytes past ceil(n/8) are dropped and pad bits
// in the final byte are cleared.
func FromBytes(buf []byte, n uint64, e Endian) (*Bits, error) {
	want := ints.ChunkCount[uint64](n, 8)
	if uint64(len(buf)) < want {
		return nil, fmt.Errorf("bitarray: %d bytes cannot hold %d bits", len(buf), n)
	}
	b := &Bits{endian: e, n: n, buf: buf[:want]}
	b.clearPad()
	return b, nil
}

func (b *Bits) clearPad() {
	if r := uint(b.n & 7); r != 0 {
		b.buf[len(b.buf)-1] &= b.endian.headMask(r)
	}
}

// Len returns the number of bits in b.
func (b *Bits) Len() uint64 { return b.n }

// Endian returns the bit order of b.
func (b *Bits) Endian() Endian { return b.endian }

// Bytes returns the backing buffer of b.
// It holds ceil(b.Len()/8) bytes and aliases b.
func (b *Bits) Bytes() []byte { return b.buf }

func (b *Bits) check(i uint64) {
	if i >= b.n {
		panic(fmt.Sprintf("bitarray: index %d out of range [0:%d]", i, b.n))
	}
}

// Get returns bit i.
func (b *Bits) Get(i uint64) bool {
	b.check(i)
	return b.endian.TestBit(b.buf, i)
}

// Set sets bit i to v.
func (b *Bits) Set(i uint64, v bool) {
	b.check(i)
	if v {
		b.endian.SetBit(b.buf, i)
	} else {
		b.endian.ClearBit(b.buf, i)
	}
}

// SetRange sets the bits [lo, hi).
func (b *Bits) SetRange(lo, hi uint64) {
	if lo > hi || hi > b.n {
		panic(fmt.Sprintf("bitarray: bad range [%d:%d] with length %d", lo, hi, b.n))
	}
	for lo < hi && lo&7 != 0 {
		b.endian.SetBit(b.buf, lo)
		lo++
	}
	for ; lo+8 <= hi; lo += 8 {
		b.buf[lo>>3] = 0xff
	}
	for ; lo < hi; lo++ {
		b.endian.SetBit(b.buf, lo)
	}
}

// Count returns the number of set bits.
func (b *Bits) Count() uint64 {
	return ints.OnesCount(b.buf)
}

// Equal reports whether a and b hold the same
// bits. Sequences with different bit orders compare
// by bit value, not by byte representation.
func (b *Bits) Equal(a *Bits) bool {
	if b.n != a.n {
		return false
	}
	if b.endian == a.endian {
		return bytes.Equal(b.buf, a.buf)
	}
	for i := uint64(0); i < b.n; i++ {
		if b.endian.TestBit(b.buf, i) != a.endian.TestBit(a.buf, i) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of b.
func (b *Bits) Clone() *Bits {
	return &Bits{endian: b.endian, n: b.n, buf: append([]byte(nil), b.buf...)}
}

const maxShown = 64

func (b *Bits) String() string {
	var sb strings.Builder
	sb.WriteString("bitarray('")
	show := ints.Min(b.n, maxShown)
	for i := uint64(0); i < show; i++ {
		if b.endian.TestBit(b.buf, i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	if show < b.n {
		fmt.Fprintf(&sb, "...(%d bits)", b.n)
	}
	fmt.Fprintf(&sb, "', %s)", b.endian)
	return sb.String()
}
