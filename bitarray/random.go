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

package bitarray

import (
	"math/rand"
)

// below this density it is cheaper to pick
// p*n random positions than to draw every bit
const sparseCutoff = 0.05

// Random returns n bits where each bit is set
// with probability p, drawn from rng.
func Random(rng *rand.Rand, n uint64, p float64, e Endian) *Bits {
	b := New(n, e)
	switch {
	case n == 0 || p <= 0:
	case p >= 1:
		b.SetRange(0, n)
	case p == 0.5:
		rng.Read(b.buf)
		b.clearPad()
	case p < sparseCutoff:
		k := uint64(p * float64(n))
		for i := uint64(0); i < k; i++ {
			e.SetBit(b.buf, uint64(rng.Int63n(int64(n))))
		}
	default:
		for i := uint64(0); i < n; i++ {
			if rng.Float64() < p {
				e.SetBit(b.buf, i)
			}
		}
	}
	return b
}
