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

// Package compr provides a unified interface wrapping
// third-party compression libraries.
//
// The registry is used to wrap sparse-compressed
// streams in an outer general-purpose compressor and
// to measure those compressors against sparse
// compression on raw bit buffers.
package compr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"runtime"
	"unsafe"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Compressor describes the interface
// that a compression algorithm implements.
type Compressor interface {
	// Name is the name of the compression algorithm.
	Name() string
	// Compress should append the compressed contents
	// of src to dst and return the result.
	Compress(src, dst []byte) []byte
}

// Decompressor is the interface that a
// reader uses to decompress blocks.
type Decompressor interface {
	// Name is the name of the compression algorithm.
	// See also Compressor.Name.
	Name() string
	// Decompress decompresses source data
	// into dst. It should error out if
	// dst is not exactly the size of the
	// decoded source data.
	//
	// It must be safe to make multiple
	// calls to Decompress simultaneously
	// from different goroutines.
	Decompress(src, dst []byte) error
}

// Expander is implemented by every Decompressor in
// this package. Expand appends the decompressed form of
// src to dst without trusting any size declared by the
// caller or the data: memory grows with the output
// actually produced, and decoding fails with ErrLimit
// once more than limit bytes would be appended.
type Expander interface {
	Decompressor
	Expand(src, dst []byte, limit int) ([]byte, error)
}

// ErrLimit is returned by Expand when the
// decompressed data exceeds the limit.
var ErrLimit = errors.New("compr: decompressed data exceeds limit")

// readLimit appends the contents of r to dst,
// growing dst as data arrives.
func readLimit(r io.Reader, dst []byte, limit int) ([]byte, error) {
	start := len(dst)
	for {
		if len(dst) == cap(dst) {
			dst = append(dst, 0)[:len(dst)]
		}
		n, err := r.Read(dst[len(dst):cap(dst)])
		dst = dst[:len(dst)+n]
		if len(dst)-start > limit {
			return dst[:start+limit], ErrLimit
		}
		if err == io.EOF {
			return dst, nil
		}
		if err != nil {
			return dst, err
		}
	}
}

type zstdCompressor struct {
	name string
	enc  *zstd.Encoder
}

func (z zstdCompressor) Compress(src, dst []byte) []byte {
	return z.enc.EncodeAll(src, dst)
}

func (z zstdCompressor) Name() string { return z.name }

var zstdDecoder *zstd.Decoder

func init() {
	// by default, concurrency is set to min(4, GOMAXPROCS);
	// we'd like it to *always* be GOMAXPROCS
	z, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = z
}

type zstdDecompressor zstd.Decoder

func (z *zstdDecompressor) Name() string { return "zstd" }

func (z *zstdDecompressor) Decompress(src, dst []byte) error {
	into := dst[:0:len(dst)]
	ret, err := (*zstd.Decoder)(z).DecodeAll(src, into)
	if err != nil {
		return err
	}
	return checkSize("zstd", ret, dst)
}

func (z *zstdDecompressor) Expand(src, dst []byte, limit int) ([]byte, error) {
	// DecodeAll on the shared decoder preallocates
	// the frame content size declared in the data
	d, err := zstd.NewReader(bytes.NewReader(src),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(limit)+1))
	if err != nil {
		return dst, err
	}
	defer d.Close()
	dst, err = readLimit(d, dst, limit)
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
		err = ErrLimit
	}
	return dst, err
}

type s2Compressor struct{}

func (s2Compressor) Compress(src, dst []byte) []byte {
	tail := dst[len(dst):cap(dst)]
	// s2 requires non-overlapping src and dst
	if overlaps(src, tail) {
		tail = nil
	}
	got := s2.Encode(tail, src)
	if len(dst) == 0 {
		return got
	}
	if len(tail) > 0 && len(got) > 0 && &tail[0] == &got[0] {
		return dst[:len(dst)+len(got)]
	}
	return append(dst, got...)
}

func (s2Compressor) Decompress(src, dst []byte) error {
	into := dst[:0:len(dst)]
	ret, err := s2.Decode(into, src)
	if err != nil {
		return err
	}
	return checkSize("s2", ret, dst)
}

// s2MaxExpansion bounds the output of an s2 block
// per input byte: a 4-byte repeat copies at most
// 2^24+65540 bytes.
const s2MaxExpansion = 1 << 23

func (s2Compressor) Expand(src, dst []byte, limit int) ([]byte, error) {
	// s2 blocks declare their size up front and
	// the decoder allocates it in one go
	n, err := s2.DecodedLen(src)
	if err != nil {
		return dst, err
	}
	if n > limit {
		return dst, ErrLimit
	}
	if uint64(n) > uint64(len(src))*s2MaxExpansion {
		return dst, fmt.Errorf("s2 decompress: %d bytes cannot expand to %d", len(src), n)
	}
	ret, err := s2.Decode(nil, src)
	if err != nil {
		return dst, err
	}
	return append(dst, ret...), nil
}

func (s2Compressor) Name() string { return "s2" }

type gzipCompressor struct {
	level int
}

func (g gzipCompressor) Name() string { return "gzip" }

func (g gzipCompressor) Compress(src, dst []byte) []byte {
	buf := bytes.NewBuffer(dst)
	w, err := gzip.NewWriterLevel(buf, g.level)
	if err != nil {
		panic(err)
	}
	// writes to a bytes.Buffer cannot fail
	w.Write(src)
	w.Close()
	return buf.Bytes()
}

func (g gzipCompressor) Decompress(src, dst []byte) error {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return err
	}
	defer r.Close()
	if _, err := io.ReadFull(r, dst); err != nil {
		return fmt.Errorf("gzip decompress: %w", err)
	}
	// reading to EOF verifies the trailer checksum
	var extra [1]byte
	n, err := r.Read(extra[:])
	if n != 0 {
		return fmt.Errorf("gzip decompress: more than %d bytes of output", len(dst))
	}
	if err != nil && err != io.EOF {
		return fmt.Errorf("gzip decompress: %w", err)
	}
	return nil
}

func (g gzipCompressor) Expand(src, dst []byte, limit int) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return dst, err
	}
	defer r.Close()
	dst, err = readLimit(r, dst, limit)
	if err != nil && err != ErrLimit {
		err = fmt.Errorf("gzip decompress: %w", err)
	}
	return dst, err
}

// noCompressor stores data as-is.
type noCompressor struct{}

func (noCompressor) Name() string { return "none" }

func (noCompressor) Compress(src, dst []byte) []byte { return append(dst, src...) }

func (noCompressor) Decompress(src, dst []byte) error {
	if len(src) != len(dst) {
		return fmt.Errorf("expected %d bytes; got %d", len(dst), len(src))
	}
	copy(dst, src)
	return nil
}

func (noCompressor) Expand(src, dst []byte, limit int) ([]byte, error) {
	if len(src) > limit {
		return dst, ErrLimit
	}
	return append(dst, src...), nil
}

func checkSize(name string, ret, dst []byte) error {
	if len(ret) != len(dst) {
		return fmt.Errorf("expected %d bytes decompressed; got %d", len(dst), len(ret))
	}
	if len(ret) == 0 {
		return nil
	}
	// the decoder should not have had to
	// realloc the buffer
	if &ret[0] != &dst[0] {
		return fmt.Errorf("%s decompress: output buffer realloc'd", name)
	}
	return nil
}

var compressors = map[string]func() Compressor{
	"none": func() Compressor { return noCompressor{} },
	"zstd": func() Compressor {
		z, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		return zstdCompressor{"zstd", z}
	},
	"zstd-better": func() Compressor {
		z, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderConcurrency(1))
		return zstdCompressor{"zstd-better", z}
	},
	"s2":   func() Compressor { return s2Compressor{} },
	"gzip": func() Compressor { return gzipCompressor{level: gzip.BestCompression} },
}

// Compression selects a compression algorithm by name.
// The returned Compressor will return the same value
// for Compressor.Name as the specified name.
// Compression returns nil for unknown names.
func Compression(name string) Compressor {
	mk, ok := compressors[name]
	if !ok {
		return nil
	}
	return mk()
}

// Decompression selects a decompression algorithm by name.
// Streams produced by "zstd-better" are decompressed by "zstd".
// Every returned Decompressor is also an Expander.
func Decompression(name string) Decompressor {
	switch name {
	case "zstd", "zstd-better":
		return (*zstdDecompressor)(zstdDecoder)
	case "s2":
		return s2Compressor{}
	case "gzip":
		return gzipCompressor{}
	case "none":
		return noCompressor{}
	default:
		return nil
	}
}

// Names returns the sorted names accepted by Compression.
func Names() []string {
	names := maps.Keys(compressors)
	slices.Sort(names)
	return names
}

func overlaps(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	a0 := uintptr(unsafe.Pointer(&a[0]))
	a1 := a0 + uintptr(len(a))
	b0 := uintptr(unsafe.Pointer(&b[0]))
	b1 := b0 + uintptr(len(b))
	return a0 < b1 && b0 < a1
}
