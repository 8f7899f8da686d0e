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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/SnellerInc/sparsebits/bitarray"
	"github.com/SnellerInc/sparsebits/compr"
	"github.com/SnellerInc/sparsebits/sc"
	"github.com/SnellerInc/sparsebits/scfile"
)

type encodeOpts struct {
	endian bitarray.Endian
	bits   int64 // -1 means all of the input
	algo   compr.Algo
	strong bool
	bare   bool
}

// encodeBuf compresses the raw bit buffer buf.
func encodeBuf(dst, buf []byte, opts *encodeOpts) ([]byte, error) {
	n := uint64(len(buf)) * 8
	if opts.bits >= 0 {
		if uint64(opts.bits) > n {
			return nil, fmt.Errorf("-bits %d exceeds the %d bits of input", opts.bits, n)
		}
		n = uint64(opts.bits)
	}
	// FromBytes takes ownership and clears pad bits,
	// so hand it a copy of (possibly mmapped) input
	a, err := bitarray.FromBytes(append([]byte(nil), buf...), n, opts.endian)
	if err != nil {
		return nil, err
	}
	if opts.bare {
		return sc.Encode(dst, a), nil
	}
	w := scfile.Writer{Algo: opts.algo, Strong: opts.strong, Logf: verbose()}
	return w.Append(dst, a)
}

// decodeBuf decompresses an scf frame or a bare stream.
func decodeBuf(buf []byte, maxbits uint64) (*bitarray.Bits, error) {
	d := sc.Decoder{MaxBits: maxbits}
	if scfile.IsMagic(buf) {
		a, info, err := scfile.Read(buf, &d)
		if err != nil {
			return nil, err
		}
		if info.FrameSize != len(buf) {
			return nil, fmt.Errorf("%d bytes following the frame", len(buf)-info.FrameSize)
		}
		return a, nil
	}
	return d.Decode(buf)
}

func encodeCmd(args []string) {
	var dasho, dashz, dashendian string
	var opts encodeOpts
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.StringVar(&dasho, "o", "-", "output file (\"-\" means stdout)")
	flags.StringVar(&dashz, "z", "none", "outer compression algorithm")
	flags.StringVar(&dashendian, "endian", "little", "bit order of the input (little or big)")
	flags.Int64Var(&opts.bits, "bits", -1, "number of bits of input to encode (default: all)")
	flags.BoolVar(&opts.strong, "strong", false, "use a blake2b checksum")
	flags.BoolVar(&opts.bare, "bare", false, "write a bare sc stream instead of a frame")
	flags.Parse(args[1:])
	args = flags.Args()
	if len(args) != 1 {
		exitf("usage: encode [flags] <file>")
	}
	var err error
	opts.endian, err = bitarray.ParseEndian(dashendian)
	if err != nil {
		exitf("%s", err)
	}
	opts.algo, err = compr.ParseAlgo(dashz)
	if err != nil {
		exitf("%s", err)
	}
	in, err := load(args[0])
	if err != nil {
		exitf("reading input: %s", err)
	}
	defer in.close()
	out, err := encodeBuf(nil, in.buf, &opts)
	if err != nil {
		exitf("encode: %s", err)
	}
	if dashv {
		logf("%s: %d bytes -> %d bytes", args[0], len(in.buf), len(out))
	}
	writeOut(dasho, out)
}

func decodeCmd(args []string) {
	var dasho string
	var dashmax uint64
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.StringVar(&dasho, "o", "-", "output file (\"-\" means stdout)")
	flags.Uint64Var(&dashmax, "max", 0, "reject streams declaring more bits (0 means no limit)")
	flags.Parse(args[1:])
	args = flags.Args()
	if len(args) != 1 {
		exitf("usage: decode [flags] <file>")
	}
	in, err := load(args[0])
	if err != nil {
		exitf("reading input: %s", err)
	}
	defer in.close()
	a, err := decodeBuf(in.buf, dashmax)
	if err != nil {
		exitf("decode %s: %s", args[0], err)
	}
	if dashv {
		logf("%s: %d bits (%s), %d set", args[0], a.Len(), a.Endian(), a.Count())
	}
	writeOut(dasho, a.Bytes())
}

func writeOut(path string, buf []byte) {
	out, err := create(path)
	if err != nil {
		exitf("creating output: %s", err)
	}
	if _, err := out.Write(buf); err != nil {
		exitf("writing output: %s", err)
	}
	if err := out.Close(); err != nil {
		exitf("closing output: %s", err)
	}
}

// statsFile prints the statistics of every stream in path.
// Bare streams are scanned straight from the file;
// frames are verified, which needs the whole frame in memory.
func statsFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	br := bufio.NewReader(f)
	head, _ := br.Peek(4)
	if !scfile.IsMagic(head) {
		stats, err := sc.ReadStatsFrom(br)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s:\n%s", path, stats)
		return nil
	}
	in, err := load(path)
	if err != nil {
		return err
	}
	defer in.close()
	buf := in.buf
	for i := 0; len(buf) > 0; i++ {
		info, stats, err := scfile.Stat(buf)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		fmt.Fprintf(w, "%s[%d] id %s algo %s (%d -> %d bytes):\n%s",
			path, i, info.ID, info.Algo, info.RawSize, info.BodySize, stats)
		buf = buf[info.FrameSize:]
	}
	return nil
}

func statsCmd(args []string) {
	if len(args) < 2 {
		exitf("usage: stats <file>...")
	}
	for _, path := range args[1:] {
		if err := statsFile(os.Stdout, path); err != nil {
			exitf("%s: %s", path, err)
		}
	}
}
