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

// Package sc implements sparse compression of bit arrays.
//
// The compressed form is designed for bit arrays with very
// skewed densities: long runs of zeros with rare or clustered
// set bits. A stream can be decoded back into a bitarray.Bits
// with Decode, or scanned with ReadStats to obtain the declared
// length, the bit order and a histogram of block types without
// materializing any bits.
//
// ## Stream Format
//
// A stream is a header, a sequence of blocks and a
// terminating zero byte:
//
//   stream := header block* 0x00
//
// The header is one tag byte followed by 0 to 15
// little-endian length bytes:
//
//   tag := (order << 4) | L
//
// where order is 1 for big-endian bit order and 0 for
// little-endian, and L is the minimal number of bytes needed
// to represent the length in bits (so L is 0 for an empty array).
// The top three bits of the tag are reserved and must be zero.
//
// Every block starts with a head byte that determines
// the block type and the exact size of the payload that follows:
//
//   0x01..0x80  raw: head bytes of literal bit data
//   0xa0..0xbf  type 1: (head-0xa0) one-byte positions
//   0xc2..0xc4  type 2..4: a count byte follows, then
//               count positions of (head-0xc0) bytes each
//
// All other head values are reserved and rejected.
//
// Blocks cover consecutive byte-aligned segments of the
// bit array's buffer. A raw block covers exactly its payload
// bytes, which are copied verbatim (so the placement of bits
// within a byte follows the bit order). A block of type n
// covers the next 32*256^(n-1) bytes (2^(8n) bits), or
// whatever remains of the buffer if that is less, and lists
// the offsets of the set bits relative to the first bit of
// the segment in ascending order. Multi-byte offsets are
// serialized in the stream's bit order.
//
// For example, the 10-bit little-endian array with only
// bit 9 set encodes as
//
//   0x01 0x0a  0xa1 0x09  0x00
//
// (header with L=1 and length 10, one type 1 block holding
// offset 9, and the stop byte).
package sc
