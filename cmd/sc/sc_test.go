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
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SnellerInc/sparsebits/bitarray"
	"github.com/SnellerInc/sparsebits/compr"
	"github.com/SnellerInc/sparsebits/sc"
)

func TestParseSweep(t *testing.T) {
	yamlText := `
bits: 4096
start: 0.001
stop: 0.5
factor: 2
endian: big
`
	jsonText := `{"bits": 4096, "start": 0.001, "stop": 0.5, "factor": 2, "endian": "big"}`
	for _, text := range []string{yamlText, jsonText} {
		c, err := parseSweep([]byte(text))
		if err != nil {
			t.Fatal(err)
		}
		want := sweepConfig{Bits: 4096, Start: 0.001, Stop: 0.5, Factor: 2, Endian: "big", Seed: 1}
		if *c != want {
			t.Errorf("got %+v, want %+v", *c, want)
		}
	}

	// missing fields keep their defaults
	c, err := parseSweep([]byte("factor: 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := defaultSweep()
	if c.Factor != 3 || c.Bits != def.Bits || c.Start != def.Start || c.Endian != def.Endian {
		t.Errorf("unexpected config %+v", *c)
	}

	bad := []string{
		"factor: 1\n",
		"start: 0\n",
		"start: 0.5\nstop: 0.1\n",
		"bits: 0\n",
		"endian: middle\n",
		"unknown: 1\n",
		"bits: [1, 2]\n",
	}
	for _, text := range bad {
		if _, err := parseSweep([]byte(text)); err == nil {
			t.Errorf("%q: expected an error", text)
		}
	}
}

func TestSweep(t *testing.T) {
	c := &sweepConfig{
		Bits:   1 << 14,
		Start:  1e-4,
		Stop:   1.0,
		Factor: 4,
		Endian: "little",
		Seed:   7,
	}
	var out bytes.Buffer
	if err := sweep(&out, c); err != nil {
		t.Fatal(err)
	}
	steps := 0
	for p := c.Start; p < c.Stop; p *= c.Factor {
		steps++
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != steps+2 {
		t.Errorf("got %d lines, want %d:\n%s", len(lines), steps+2, out.String())
	}
}

func TestBench(t *testing.T) {
	a := bitarray.Random(rand.New(rand.NewSource(3)), 1<<16, 1.0/64, bitarray.Little)
	var out bytes.Buffer
	if err := bench(&out, a); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	for _, name := range append([]string{"sc"}, compr.Names()...) {
		if name == "none" {
			if strings.Contains(text, " none ") {
				t.Error("bench should skip the none compressor")
			}
			continue
		}
		if !strings.Contains(text, " "+name+" ") {
			t.Errorf("missing result for %s:\n%s", name, text)
		}
	}
}

func TestEncodeDecodeBuf(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	raw := make([]byte, 5000)
	for i := 0; i < 300; i++ {
		raw[rng.Intn(len(raw))] |= 1 << rng.Intn(8)
	}
	orig := append([]byte(nil), raw...)
	for _, opts := range []encodeOpts{
		{endian: bitarray.Little, bits: -1, algo: compr.None},
		{endian: bitarray.Big, bits: -1, algo: compr.Zstd, strong: true},
		{endian: bitarray.Little, bits: 39997, algo: compr.S2},
		{endian: bitarray.Big, bits: 13, bare: true},
		{endian: bitarray.Little, bits: 0, algo: compr.Gzip},
		{endian: bitarray.Big, bits: -1, algo: compr.ZstdBetter},
	} {
		enc, err := encodeBuf(nil, raw, &opts)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(raw, orig) {
			t.Fatal("encodeBuf modified its input")
		}
		a, err := decodeBuf(enc, 0)
		if err != nil {
			t.Fatalf("%+v: %s", opts, err)
		}
		n := uint64(len(raw)) * 8
		if opts.bits >= 0 {
			n = uint64(opts.bits)
		}
		want, err := bitarray.FromBytes(append([]byte(nil), raw...), n, opts.endian)
		if err != nil {
			t.Fatal(err)
		}
		if !a.Equal(want) || a.Endian() != opts.endian {
			t.Errorf("%+v: round trip mismatch", opts)
		}

		if !opts.bare {
			_, err := decodeBuf(append(enc, 0), 0)
			if err == nil {
				t.Errorf("%+v: trailing bytes after a frame accepted", opts)
			}
		}
		if n > 8 {
			_, err := decodeBuf(enc, 8)
			if err == nil {
				t.Errorf("%+v: limit of 8 bits not enforced", opts)
			}
		}
	}

	_, err := encodeBuf(nil, raw, &encodeOpts{bits: int64(len(raw))*8 + 1})
	if err == nil {
		t.Error("expected an error for -bits beyond the input")
	}
}

func TestStatsFile(t *testing.T) {
	dir := t.TempDir()
	a := bitarray.Random(rand.New(rand.NewSource(5)), 100000, 0.002, bitarray.Little)

	bare := filepath.Join(dir, "bare.sc")
	if err := os.WriteFile(bare, sc.Encode(nil, a), 0644); err != nil {
		t.Fatal(err)
	}
	var frames []byte
	for _, algo := range []compr.Algo{compr.None, compr.Zstd} {
		var err error
		frames, err = encodeBuf(frames, a.Bytes(), &encodeOpts{bits: -1, algo: algo})
		if err != nil {
			t.Fatal(err)
		}
	}
	framed := filepath.Join(dir, "frames.scf")
	if err := os.WriteFile(framed, frames, 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := statsFile(&out, bare); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "nbits:  100000") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	if err := statsFile(&out, framed); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if strings.Count(text, "total number of blocks") != 2 {
		t.Errorf("expected two frames:\n%s", text)
	}
	if !strings.Contains(text, "algo zstd") || !strings.Contains(text, "algo none") {
		t.Errorf("missing algorithms:\n%s", text)
	}

	corrupt := filepath.Join(dir, "corrupt.scf")
	frames[len(frames)-1] ^= 0xff
	if err := os.WriteFile(corrupt, frames, 0644); err != nil {
		t.Fatal(err)
	}
	if err := statsFile(&out, corrupt); err == nil {
		t.Error("expected an error for a corrupt frame")
	}
	if err := statsFile(&out, filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
