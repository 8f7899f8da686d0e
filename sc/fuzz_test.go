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
	"errors"
	"testing"

	"github.com/SnellerInc/sparsebits/bitarray"
)

func FuzzDecode(f *testing.F) {
	f.Add([]byte{0x00, 0x00})
	f.Add([]byte{0x01, 0x0a, 0xa1, 0x09, 0x00})
	f.Add([]byte{0x11, 0x0c, 0x02, 0xff, 0xf0, 0x00})
	f.Add([]byte{0x03, 0x00, 0x00, 0x02, 0xc2, 0x01, 0x2c, 0x01, 0xc2, 0x01, 0x70, 0x11, 0x00})
	f.Add([]byte{0x05, 0, 0, 0, 0, 2, 0xc4, 0x00, 0xc4, 0x00, 0x00})
	f.Add(Encode(nil, bitarray.Ones(3000, bitarray.Little)))
	f.Fuzz(func(t *testing.T, b []byte) {
		stats, serr := ReadStats(b)
		d := Decoder{MaxBits: 1 << 24}
		out, derr := d.Decode(b)
		if errors.Is(derr, ErrTooLarge) {
			return
		}
		if derr != nil {
			var fe *FormatError
			if !errors.As(derr, &fe) {
				t.Fatalf("non-format error %T: %v", derr, derr)
			}
			return
		}
		// anything the decoder accepts the scanner must accept too
		if serr != nil {
			t.Fatalf("decoded but scan failed: %s", serr)
		}
		if stats != d.Stats() {
			t.Fatalf("scanner %+v != decoder %+v", stats, d.Stats())
		}
		if out.Len() != stats.Bits {
			t.Fatalf("decoded %d bits, header says %d", out.Len(), stats.Bits)
		}
		again, err := Decode(Encode(nil, out))
		if err != nil {
			t.Fatal(err)
		}
		if !again.Equal(out) {
			t.Fatal("re-encoding changed the array")
		}
	})
}
