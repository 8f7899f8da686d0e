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
	"fmt"
)

// Algo is the on-disk identifier of a
// compression algorithm. The values are
// part of the scfile frame format and must
// not be renumbered.
type Algo uint8

const (
	None Algo = iota
	Zstd
	S2
	Gzip
	// ZstdBetter frames hold ordinary zstd data
	// written at a higher compression level.
	ZstdBetter

	numAlgos
)

var algoNames = [numAlgos]string{
	None:       "none",
	Zstd:       "zstd",
	S2:         "s2",
	Gzip:       "gzip",
	ZstdBetter: "zstd-better",
}

func (a Algo) String() string {
	if a < numAlgos {
		return algoNames[a]
	}
	return fmt.Sprintf("Algo(%d)", uint8(a))
}

// Valid reports whether a is a known algorithm.
func (a Algo) Valid() bool { return a < numAlgos }

// ParseAlgo returns the Algo for a compressor name.
func ParseAlgo(name string) (Algo, error) {
	for i, n := range algoNames {
		if n == name {
			return Algo(i), nil
		}
	}
	return 0, fmt.Errorf("compr: unknown algorithm %q", name)
}

// Compressor returns a new Compressor for a,
// or nil if a is not valid.
func (a Algo) Compressor() Compressor {
	if !a.Valid() {
		return nil
	}
	return Compression(algoNames[a])
}

// Decompressor returns the Decompressor for a,
// or nil if a is not valid.
func (a Algo) Decompressor() Decompressor {
	if !a.Valid() {
		return nil
	}
	return Decompression(algoNames[a])
}

// Expander returns the Expander for a,
// or nil if a is not valid.
func (a Algo) Expander() Expander {
	if !a.Valid() {
		return nil
	}
	return Decompression(algoNames[a]).(Expander)
}
