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
)

func TestClassifyAll(t *testing.T) {
	for i := 0; i < 256; i++ {
		head := byte(i)
		class, k, count := classify(head)
		switch {
		case head == 0:
			if class != headStop {
				t.Errorf("0x%02x: got class %d", head, class)
			}
		case head <= 0x80:
			if class != headInline || k != Raw || count != i {
				t.Errorf("0x%02x: got %d %s %d", head, class, k, count)
			}
		case head >= 0xa0 && head <= 0xbf:
			if class != headInline || k != Pos1 || count != i-0xa0 {
				t.Errorf("0x%02x: got %d %s %d", head, class, k, count)
			}
		case head >= 0xc2 && head <= 0xc4:
			if class != headCounted || k.Width() != i-0xc0 {
				t.Errorf("0x%02x: got %d %s", head, class, k)
			}
		default:
			if class != headInvalid {
				t.Errorf("0x%02x: should be rejected", head)
			}
		}
	}
}

func TestAppendHead(t *testing.T) {
	for _, k := range []Kind{Raw, Pos1, Pos2, Pos3, Pos4} {
		lo := 0
		if k == Raw {
			lo = 1
		}
		for _, n := range []int{lo, k.maxItems()} {
			buf := appendHead(nil, k, n)
			class, got, count := classify(buf[0])
			if class == headCounted {
				count = int(buf[1])
			}
			if got != k || count != n || len(buf) != k.headBytes() {
				t.Errorf("%s/%d: encoded %x decodes as %s/%d", k, n, buf, got, count)
			}
		}
	}
}

func TestAppendHeadLimits(t *testing.T) {
	bad := []struct {
		k Kind
		n int
	}{
		{Raw, 0},
		{Raw, 129},
		{Pos1, 32},
		{Pos2, 256},
		{Pos4, -1},
	}
	for _, c := range bad {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s/%d: expected a panic", c.k, c.n)
				}
			}()
			appendHead(nil, c.k, c.n)
		}()
	}
}

func TestReservedBlockHeads(t *testing.T) {
	for _, head := range []byte{0x81, 0x9f, 0xc0, 0xc1, 0xc5, 0xff} {
		in := []byte{0x01, 0x08, head, 0x00}
		_, err := Decode(in)
		if !errors.Is(err, ErrInvalidBlockHead) {
			t.Errorf("0x%02x: Decode returned %v", head, err)
		}
		var fe *FormatError
		if !errors.As(err, &fe) || fe.Head != head || fe.Offset != 2 {
			t.Errorf("0x%02x: bad error detail %#v", head, err)
		}
		if _, err := ReadStats(in); !errors.Is(err, ErrInvalidBlockHead) {
			t.Errorf("0x%02x: ReadStats returned %v", head, err)
		}
	}
}

func TestSegmentBytes(t *testing.T) {
	want := []uint64{0, 32, 8192, 2 << 20, 512 << 20}
	for k := Pos1; k <= Pos4; k++ {
		if got := k.segmentBytes(); got != want[k] {
			t.Errorf("%s: segment %d bytes, want %d", k, got, want[k])
		}
		if got := k.segmentBytes() * 8; got != 1<<(8*uint(k.Width())) {
			t.Errorf("%s: segment %d bits", k, got)
		}
	}
}
