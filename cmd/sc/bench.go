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
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/SnellerInc/sparsebits/bitarray"
	"github.com/SnellerInc/sparsebits/compr"
	"github.com/SnellerInc/sparsebits/sc"
)

type benchResult struct {
	name       string
	compress   time.Duration
	decompress time.Duration
	size       int
}

func (r *benchResult) ratio(raw int) float64 {
	if raw == 0 {
		return 0
	}
	return float64(r.size) / float64(raw)
}

func benchSC(a *bitarray.Bits) (benchResult, error) {
	r := benchResult{name: "sc"}
	var enc sc.Encoder
	start := time.Now()
	buf := enc.Encode(nil, a)
	r.compress = time.Since(start)
	r.size = len(buf)
	start = time.Now()
	got, err := sc.Decode(buf)
	r.decompress = time.Since(start)
	if err != nil {
		return r, err
	}
	if !got.Equal(a) {
		return r, fmt.Errorf("sc: round trip mismatch")
	}
	return r, nil
}

func benchCompr(name string, raw []byte) (benchResult, error) {
	r := benchResult{name: name}
	comp, dec := compr.Compression(name), compr.Decompression(name)
	start := time.Now()
	buf := comp.Compress(raw, nil)
	r.compress = time.Since(start)
	r.size = len(buf)
	out := make([]byte, len(raw))
	start = time.Now()
	err := dec.Decompress(buf, out)
	r.decompress = time.Since(start)
	if err != nil {
		return r, fmt.Errorf("%s: %w", name, err)
	}
	if !bytes.Equal(out, raw) {
		return r, fmt.Errorf("%s: round trip mismatch", name)
	}
	return r, nil
}

// bench compares sparse compression of a with the
// general-purpose compressors applied to its raw buffer.
func bench(w io.Writer, a *bitarray.Bits) error {
	raw := a.Bytes()
	results := make([]benchResult, 0, 1+len(compr.Names()))
	r, err := benchSC(a)
	if err != nil {
		return err
	}
	results = append(results, r)
	for _, name := range compr.Names() {
		if name == "none" {
			continue
		}
		r, err := benchCompr(name, raw)
		if err != nil {
			return err
		}
		results = append(results, r)
	}
	fmt.Fprintf(w, "%20s%s\n", "", "compress (ms)   decompress (ms)             ratio")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 70))
	for i := range results {
		r := &results[i]
		fmt.Fprintf(w, "    %-11s  %16.3f  %16.3f  %16.4f\n", r.name,
			float64(r.compress)/float64(time.Millisecond),
			float64(r.decompress)/float64(time.Millisecond),
			r.ratio(len(raw)))
	}
	return nil
}

func benchCmd(args []string) {
	var dashn uint64
	var dashp float64
	var dashseed int64
	var dashendian string
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.Uint64Var(&dashn, "n", 1<<26, "number of bits")
	flags.Float64Var(&dashp, "p", 1.0/512, "probability of a bit being set")
	flags.Int64Var(&dashseed, "seed", 1, "random seed")
	flags.StringVar(&dashendian, "endian", "little", "bit order (little or big)")
	flags.Parse(args[1:])
	e, err := bitarray.ParseEndian(dashendian)
	if err != nil {
		exitf("%s", err)
	}
	a := bitarray.Random(rand.New(rand.NewSource(dashseed)), dashn, dashp, e)
	if dashv {
		logf("%d bits, %d set", a.Len(), a.Count())
	}
	if err := bench(os.Stdout, a); err != nil {
		exitf("bench: %s", err)
	}
}
