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
	"io"
	"strings"

	"github.com/SnellerInc/sparsebits/bitarray"
)

// Stats describes a compressed stream.
type Stats struct {
	// Endian is the declared bit order.
	Endian bitarray.Endian
	// Bits is the declared length in bits.
	Bits uint64
	// Blocks is the number of blocks of each Kind.
	Blocks [NumKinds]uint64
	// PayloadBytes is the number of payload bytes
	// across all blocks (excluding block heads).
	PayloadBytes uint64
	// StreamBytes is the size of the whole stream.
	StreamBytes uint64
}

// Count returns the number of blocks of kind k.
func (s Stats) Count(k Kind) uint64 { return s.Blocks[k] }

// Total returns the number of blocks of all kinds.
func (s Stats) Total() uint64 {
	var n uint64
	for _, c := range s.Blocks {
		n += c
	}
	return n
}

// Ratio returns the size of the stream
// relative to the size of the uncompressed buffer.
func (s Stats) Ratio() float64 {
	if s.Bits == 0 {
		return 0
	}
	return float64(s.StreamBytes) / (float64(s.Bits) / 8)
}

func (s Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "endian: %s\n", s.Endian)
	fmt.Fprintf(&sb, "nbits:  %d\n", s.Bits)
	for k := Kind(0); k < NumKinds; k++ {
		fmt.Fprintf(&sb, "         block type %d  %8d\n", k, s.Blocks[k])
	}
	fmt.Fprintf(&sb, "total number of blocks %8d\n", s.Total())
	return sb.String()
}

// tally keeps the Stats common to both consumption modes.
type tally struct {
	stats Stats
}

func (t *tally) start(h Header) error {
	t.stats = Stats{Endian: h.Endian, Bits: h.Bits}
	return nil
}

func (t *tally) count(k Kind, count int) {
	t.stats.Blocks[k]++
	t.stats.PayloadBytes += uint64(k.payloadSize(count))
}

func (t *tally) finish(streamBytes int64) error {
	t.stats.StreamBytes = uint64(streamBytes)
	return nil
}

// skipper is the statistics-only visitor:
// payloads are skipped, never read.
type skipper struct {
	tally
}

func (s *skipper) wantPayload() bool { return false }

func (s *skipper) visit(k Kind, count int, _ []byte, _ int64) error {
	s.count(k, count)
	return nil
}

// ReadStats scans the stream in src and returns
// its header and block statistics without
// reconstructing the bit array. Like Decode, it
// rejects streams with data after the stop byte.
func ReadStats(src []byte) (Stats, error) {
	var s skipper
	if err := walk(&memSource{buf: src}, &s); err != nil {
		return Stats{}, err
	}
	return s.stats, nil
}

// ReadStatsFrom is like ReadStats but reads
// the stream from r until EOF.
func ReadStatsFrom(r io.Reader) (Stats, error) {
	var s skipper
	if err := walk(newReaderSource(r), &s); err != nil {
		return Stats{}, err
	}
	return s.stats, nil
}
