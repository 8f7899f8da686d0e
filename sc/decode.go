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

	"github.com/SnellerInc/sparsebits/bitarray"
	"github.com/SnellerInc/sparsebits/ints"
)

// initial buffer capacity cap; the buffer
// grows as blocks are decoded so that a bogus
// header alone cannot force a huge allocation
const maxPrealloc = 1 << 20

// builder is the reconstructing visitor.
type builder struct {
	tally
	limit  uint64
	endian bitarray.Endian
	nbits  uint64
	nbytes uint64
	buf    []byte
	out    *bitarray.Bits
}

func (b *builder) start(h Header) error {
	b.tally.start(h)
	if b.limit != 0 && h.Bits > b.limit {
		return &FormatError{code: ecTooLarge, Detail: fmt.Sprintf("header declares %d bits", h.Bits)}
	}
	b.endian = h.Endian
	b.nbits = h.Bits
	b.nbytes = ints.ChunkCount[uint64](h.Bits, 8)
	b.buf = make([]byte, 0, ints.Min(b.nbytes, maxPrealloc))
	return nil
}

func (b *builder) wantPayload() bool { return true }

func (b *builder) visit(k Kind, count int, payload []byte, at int64) error {
	b.count(k, count)
	off := uint64(len(b.buf))
	if off >= b.nbytes {
		return mismatch(at, "%s block past the end of %d bits", k, b.nbits)
	}
	if k == Raw {
		if off+uint64(count) > b.nbytes {
			return mismatch(at, "raw block of %d bytes overruns %d bits", count, b.nbits)
		}
		b.extend(uint64(count))
		copy(b.buf[off:], payload)
		return nil
	}
	seg := ints.Min(k.segmentBytes(), b.nbytes-off)
	b.extend(seg)
	w := k.Width()
	base := off * 8
	for i := 0; i < count; i++ {
		p := b.position(payload[i*w : (i+1)*w])
		if p >= seg*8 || base+p >= b.nbits {
			return mismatch(at, "position %d outside segment at bit %d", p, base)
		}
		b.endian.SetBit(b.buf, base+p)
	}
	return nil
}

// extend appends n zero bytes to the buffer,
// never growing it past the declared length
func (b *builder) extend(n uint64) {
	size := uint64(len(b.buf)) + n
	if size > uint64(cap(b.buf)) {
		c := ints.Clamp(2*uint64(cap(b.buf)), size, b.nbytes)
		nb := make([]byte, len(b.buf), c)
		copy(nb, b.buf)
		b.buf = nb
	}
	old := len(b.buf)
	b.buf = b.buf[:size]
	clear(b.buf[old:])
}

// position decodes one position in the stream's byte order.
func (b *builder) position(src []byte) uint64 {
	var v uint64
	if b.endian == bitarray.Big {
		for _, c := range src {
			v = v<<8 | uint64(c)
		}
		return v
	}
	for j := len(src) - 1; j >= 0; j-- {
		v = v<<8 | uint64(src[j])
	}
	return v
}

func (b *builder) finish(streamBytes int64) error {
	if err := b.tally.finish(streamBytes); err != nil {
		return err
	}
	if uint64(len(b.buf)) != b.nbytes {
		return mismatch(streamBytes, "blocks cover %d bytes, want %d", len(b.buf), b.nbytes)
	}
	out, err := bitarray.FromBytes(b.buf, b.nbits, b.endian)
	if err != nil {
		return err
	}
	b.out = out
	return nil
}

// Decoder reconstructs bit arrays from compressed streams.
// The zero value is ready to use. A Decoder must not be
// used by more than one goroutine at a time.
type Decoder struct {
	// MaxBits, if non-zero, is the largest declared
	// length the Decoder will accept. Streams declaring
	// more bits fail with ErrTooLarge.
	MaxBits uint64

	stats Stats
}

// Decode reconstructs the bit array in src.
// The whole of src must be one stream.
func (d *Decoder) Decode(src []byte) (*bitarray.Bits, error) {
	return d.run(&memSource{buf: src})
}

// DecodeFrom is like Decode but reads the stream from r until EOF.
func (d *Decoder) DecodeFrom(r io.Reader) (*bitarray.Bits, error) {
	return d.run(newReaderSource(r))
}

func (d *Decoder) run(src source) (*bitarray.Bits, error) {
	b := builder{limit: d.MaxBits}
	d.stats = Stats{}
	if err := walk(src, &b); err != nil {
		return nil, err
	}
	d.stats = b.stats
	return b.out, nil
}

// Stats returns the statistics of the most
// recent successful call to Decode or DecodeFrom.
func (d *Decoder) Stats() Stats { return d.stats }

// Decode reconstructs the bit array in src
// using a zero-value Decoder.
func Decode(src []byte) (*bitarray.Bits, error) {
	var d Decoder
	return d.Decode(src)
}
