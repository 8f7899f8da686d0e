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

package compr

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestS2(t *testing.T) {
	comp := Compression("s2")
	if _, ok := comp.(s2Compressor); !ok {
		t.Fatalf("bad compressor for s2: %T", comp)
	} else if n := comp.Name(); n != "s2" {
		t.Fatalf("bad compressor name %q", n)
	}
	dec := Decompression("s2")
	if _, ok := dec.(s2Compressor); !ok {
		t.Fatalf("bad decompressor for s2: %T", dec)
	}
	// test overlapping buffers
	ctl := bytes.Repeat([]byte("foo"), 1000)
	src := append([]byte(nil), ctl...)
	dst := make([]byte, len(src))
	cmp := comp.Compress(src[10:], src[:8])
	if err := dec.Decompress(cmp[8:], dst[10:]); err != nil {
		t.Error(err)
	} else if string(ctl[10:]) != string(dst[10:]) {
		t.Error("mismatch")
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	inputs := map[string][]byte{
		"empty":  {},
		"repeat": bytes.Repeat([]byte("sparse"), 5000),
		"zeros":  make([]byte, 1<<16),
		"random": func() []byte {
			b := make([]byte, 4096)
			rng.Read(b)
			return b
		}(),
	}
	for _, name := range Names() {
		comp := Compression(name)
		if comp == nil || comp.Name() != name {
			t.Fatalf("Compression(%q) = %v", name, comp)
		}
		dec := Decompression(name)
		if dec == nil {
			t.Fatalf("no decompressor for %q", name)
		}
		for iname, in := range inputs {
			prefix := []byte("hdr")
			out := comp.Compress(in, append([]byte(nil), prefix...))
			if !bytes.HasPrefix(out, prefix) {
				t.Fatalf("%s/%s: prefix clobbered", name, iname)
			}
			got := make([]byte, len(in))
			if err := dec.Decompress(out[len(prefix):], got); err != nil {
				t.Fatalf("%s/%s: %s", name, iname, err)
			}
			if !bytes.Equal(got, in) {
				t.Fatalf("%s/%s: mismatch", name, iname)
			}
			// a destination of the wrong size must be rejected
			if len(in) > 0 {
				short := make([]byte, len(in)-1)
				if err := dec.Decompress(out[len(prefix):], short); err == nil {
					t.Errorf("%s/%s: short destination accepted", name, iname)
				}
			}
		}
	}
}

func TestExpand(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	random := make([]byte, 5000)
	rng.Read(random)
	inputs := map[string][]byte{
		"repeat": bytes.Repeat([]byte("sparse"), 5000),
		"zeros":  make([]byte, 1<<20),
		"random": random,
	}
	for _, name := range Names() {
		ex, ok := Decompression(name).(Expander)
		if !ok {
			t.Fatalf("%s: not an Expander", name)
		}
		comp := Compression(name)
		for iname, in := range inputs {
			enc := comp.Compress(in, nil)
			prefix := []byte("hdr")
			got, err := ex.Expand(enc, append([]byte(nil), prefix...), len(in))
			if err != nil {
				t.Fatalf("%s/%s: %s", name, iname, err)
			}
			if !bytes.Equal(got, append(prefix, in...)) {
				t.Fatalf("%s/%s: mismatch", name, iname)
			}
			_, err = ex.Expand(enc, nil, len(in)-1)
			if !errors.Is(err, ErrLimit) {
				t.Errorf("%s/%s: limit %d: got %v", name, iname, len(in)-1, err)
			}
		}
	}
	for _, a := range []Algo{Zstd, S2, Gzip} {
		if _, err := a.Expander().Expand([]byte("not compressed"), nil, 1<<20); err == nil {
			t.Errorf("%s: garbage accepted", a)
		}
	}
}

func TestAlgo(t *testing.T) {
	for a := None; a < numAlgos; a++ {
		got, err := ParseAlgo(a.String())
		if err != nil || got != a {
			t.Fatalf("ParseAlgo(%q) = %v, %v", a, got, err)
		}
		if a.Compressor() == nil || a.Decompressor() == nil {
			t.Fatalf("%s: missing codec", a)
		}
		// the level chosen by name must survive the
		// trip through the frame identifier
		if name := a.Compressor().Name(); name != a.String() {
			t.Fatalf("%s: compressor %q", a, name)
		}
	}
	if a, err := ParseAlgo("zstd-better"); err != nil || a != ZstdBetter {
		t.Fatalf("zstd-better: %v %v", a, err)
	}
	if _, err := ParseAlgo("lz4"); err == nil {
		t.Fatal("expected an error")
	}
	if Algo(200).Valid() || Algo(200).Compressor() != nil {
		t.Fatal("Algo(200) should be invalid")
	}
	if Compression("lz4") != nil || Decompression("lz4") != nil {
		t.Fatal("unknown names should return nil")
	}
}

func TestOverlaps(t *testing.T) {
	// trivial case
	a := make([]byte, 10)
	b := make([]byte, 20)
	if overlaps(a, b) {
		t.Error("overlaps(a, b) should be false")
	}
	// a and b are adjacent (no overlap)
	a = make([]byte, 10, 30)
	b = a[10:]
	if overlaps(a, b) {
		t.Error("overlaps(a, b) should be false")
	} else if overlaps(b, a) {
		t.Error("overlaps(b, a) should be false")
	}
	// a and b overlap by 5
	b = a[5:]
	if !overlaps(a, b) {
		t.Error("overlaps(a, b) should be true")
	} else if !overlaps(b, a) {
		t.Error("overlaps(b, a) should be true")
	}
}
