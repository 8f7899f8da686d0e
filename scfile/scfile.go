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

// Package scfile implements a self-checking
// container around sparse-compressed bit arrays.
//
// A frame is laid out as
//
//   magic    4 bytes  0x83 's' 'c' 'f'
//   flags    1 byte   bit 0: blake2b-256 checksum
//   algo     1 byte   outer compression (see compr.Algo)
//   id      16 bytes  stream id (a random UUID)
//   rawsize  8 bytes  little-endian size of the sc stream
//   bodysize 8 bytes  little-endian size of body
//   body              the sc stream, compressed with algo
//   sum     16 or 32 bytes
//
// The checksum covers the uncompressed sc stream. By
// default it is the 128-bit SipHash-2-4 of the stream keyed
// by the stream id; frames with the strong flag use
// blake2b-256 keyed by the stream id instead.
package scfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/dchest/siphash"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/SnellerInc/sparsebits/bitarray"
	"github.com/SnellerInc/sparsebits/compr"
	"github.com/SnellerInc/sparsebits/ints"
	"github.com/SnellerInc/sparsebits/sc"
)

var magic = []byte{0x83, 's', 'c', 'f'}

const (
	flagStrong = 1 << 0
	knownFlags = flagStrong

	headerSize = 4 + 1 + 1 + 16 + 8 + 8
	weakSum    = 16
	strongSum  = blake2b.Size256
)

// initial decompression buffer size; the buffer
// grows with the output
const maxPrealloc = 1 << 20

// MaxStreamSize is the largest sc stream
// size a frame may declare.
const MaxStreamSize = 1 << 36

var (
	// ErrBadMagic is returned when a buffer
	// does not start with a frame.
	ErrBadMagic = errors.New("scfile: bad magic")
	// ErrChecksum is returned when the stream
	// does not match the frame's checksum.
	ErrChecksum = errors.New("scfile: checksum mismatch")
	// ErrUnknownAlgo is returned for frames using
	// an unknown compression algorithm or flag.
	ErrUnknownAlgo = errors.New("scfile: unknown algorithm or flags")
	// ErrSize is returned when a compressed body
	// does not decompress to the declared stream size.
	ErrSize = errors.New("scfile: body does not match declared size")
	// ErrTruncated is returned for frames
	// shorter than their header declares.
	ErrTruncated = errors.New("scfile: truncated frame")
)

// IsMagic returns true if x begins with
// the 4-byte magic number of a frame.
func IsMagic(x []byte) bool {
	return len(x) >= len(magic) && string(x[:len(magic)]) == string(magic)
}

// Info describes a frame.
type Info struct {
	ID     uuid.UUID
	Algo   compr.Algo
	Strong bool
	// RawSize is the size of the sc stream.
	RawSize uint64
	// BodySize is the size of the stored
	// (possibly compressed) stream.
	BodySize uint64
	// FrameSize is the size of the whole frame.
	FrameSize int
}

func (i *Info) sumSize() int {
	if i.Strong {
		return strongSum
	}
	return weakSum
}

func checksum(dst []byte, id uuid.UUID, strong bool, stream []byte) []byte {
	if strong {
		h, err := blake2b.New256(id[:])
		if err != nil {
			panic(err)
		}
		h.Write(stream)
		return h.Sum(dst)
	}
	k0 := binary.LittleEndian.Uint64(id[:8])
	k1 := binary.LittleEndian.Uint64(id[8:])
	lo, hi := siphash.Hash128(k0, k1, stream)
	dst = binary.LittleEndian.AppendUint64(dst, lo)
	return binary.LittleEndian.AppendUint64(dst, hi)
}

// Writer appends frames.
// The zero value writes uncompressed frames
// with the default checksum and random ids.
type Writer struct {
	// Algo is the outer compression algorithm.
	Algo compr.Algo
	// Strong selects the blake2b-256 checksum.
	Strong bool
	// ID, if not uuid.Nil, is used as the id of
	// every frame instead of a random one.
	ID uuid.UUID
	// Logf, if non-nil, receives a line per frame written.
	Logf func(f string, args ...any)

	enc    sc.Encoder
	comp   compr.Compressor
	compOf compr.Algo
	stream []byte
}

func (w *Writer) compressor() (compr.Compressor, error) {
	if w.comp == nil || w.compOf != w.Algo {
		c := w.Algo.Compressor()
		if c == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAlgo, w.Algo)
		}
		w.comp, w.compOf = c, w.Algo
	}
	return w.comp, nil
}

// Append encodes a and appends it
// to dst as a single frame.
func (w *Writer) Append(dst []byte, a *bitarray.Bits) ([]byte, error) {
	comp, err := w.compressor()
	if err != nil {
		return dst, err
	}
	id := w.ID
	if id == uuid.Nil {
		id, err = uuid.NewRandom()
		if err != nil {
			return dst, fmt.Errorf("scfile: generating stream id: %w", err)
		}
	}
	w.stream = w.enc.Encode(w.stream[:0], a)

	start := len(dst)
	var flags byte
	if w.Strong {
		flags |= flagStrong
	}
	dst = append(dst, magic...)
	dst = append(dst, flags, byte(w.Algo))
	dst = append(dst, id[:]...)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(w.stream)))
	sizepos := len(dst)
	dst = binary.LittleEndian.AppendUint64(dst, 0)
	body := len(dst)
	dst = comp.Compress(w.stream, dst)
	binary.LittleEndian.PutUint64(dst[sizepos:], uint64(len(dst)-body))
	dst = checksum(dst, id, w.Strong, w.stream)
	if w.Logf != nil {
		w.Logf("scfile %s: %d bits -> %d byte stream -> %d byte %s frame",
			id, a.Len(), len(w.stream), len(dst)-start, w.Algo)
	}
	return dst, nil
}

// ParseInfo decodes the header of the frame
// at the start of src without verifying its contents.
func ParseInfo(src []byte) (*Info, error) {
	if !IsMagic(src) {
		return nil, ErrBadMagic
	}
	if len(src) < headerSize {
		return nil, ErrTruncated
	}
	flags, algo := src[4], compr.Algo(src[5])
	if flags&^knownFlags != 0 || !algo.Valid() {
		return nil, fmt.Errorf("%w: flags 0x%02x algo %d", ErrUnknownAlgo, flags, algo)
	}
	info := &Info{
		Algo:     algo,
		Strong:   flags&flagStrong != 0,
		RawSize:  binary.LittleEndian.Uint64(src[22:]),
		BodySize: binary.LittleEndian.Uint64(src[30:]),
	}
	copy(info.ID[:], src[6:22])
	if info.RawSize > MaxStreamSize || info.BodySize > MaxStreamSize {
		return nil, fmt.Errorf("scfile: declared size %d/%d exceeds %d", info.RawSize, info.BodySize, MaxStreamSize)
	}
	if algo == compr.None && info.RawSize != info.BodySize {
		return nil, fmt.Errorf("scfile: uncompressed body of %d bytes declares %d", info.BodySize, info.RawSize)
	}
	// sizes are up to 2^36, which overflows int on 32-bit platforms
	frame := headerSize + info.BodySize + uint64(info.sumSize())
	if uint64(len(src)) < frame {
		return nil, ErrTruncated
	}
	info.FrameSize = int(frame)
	return info, nil
}

// Open verifies the frame at the start of src and
// returns its description and the sc stream it contains.
// Bytes following the frame (see Info.FrameSize) are ignored.
// For uncompressed frames the returned stream aliases src.
func Open(src []byte) (*Info, []byte, error) {
	info, err := ParseInfo(src)
	if err != nil {
		return nil, nil, err
	}
	end := headerSize + int(info.BodySize)
	body := src[headerSize:end]
	stream := body
	if info.Algo != compr.None {
		stream, err = expand(info, body)
		if err != nil {
			return nil, nil, err
		}
	}
	want := src[end:info.FrameSize]
	got := checksum(nil, info.ID, info.Strong, stream)
	if string(got) != string(want) {
		return nil, nil, ErrChecksum
	}
	return info, stream, nil
}

// expand decompresses body without trusting info.RawSize
// for the allocation: the buffer only grows as output is
// produced, and decoding stops past info.RawSize bytes.
func expand(info *Info, body []byte) ([]byte, error) {
	if info.RawSize > math.MaxInt {
		return nil, fmt.Errorf("%w: %d bytes declared", ErrSize, info.RawSize)
	}
	limit := int(info.RawSize)
	stream, err := info.Algo.Expander().Expand(body, make([]byte, 0, ints.Min(limit, maxPrealloc)), limit)
	if errors.Is(err, compr.ErrLimit) {
		return nil, fmt.Errorf("%w: %s body exceeds %d bytes", ErrSize, info.Algo, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("scfile: %s body: %w", info.Algo, err)
	}
	if len(stream) != limit {
		return nil, fmt.Errorf("%w: %s body holds %d bytes, header declares %d", ErrSize, info.Algo, len(stream), limit)
	}
	return stream, nil
}

// Read verifies and decodes the frame at the start
// of src with d (or a zero Decoder if d is nil).
func Read(src []byte, d *sc.Decoder) (*bitarray.Bits, *Info, error) {
	info, stream, err := Open(src)
	if err != nil {
		return nil, nil, err
	}
	if d == nil {
		d = new(sc.Decoder)
	}
	a, err := d.Decode(stream)
	if err != nil {
		return nil, nil, fmt.Errorf("scfile %s: %w", info.ID, err)
	}
	return a, info, nil
}

// Stat verifies the frame at the start of src and
// returns the statistics of its stream without
// reconstructing the bit array.
func Stat(src []byte) (*Info, sc.Stats, error) {
	info, stream, err := Open(src)
	if err != nil {
		return nil, sc.Stats{}, err
	}
	stats, err := sc.ReadStats(stream)
	if err != nil {
		return nil, sc.Stats{}, fmt.Errorf("scfile %s: %w", info.ID, err)
	}
	return info, stats, nil
}
