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

// Package ints provides integer and bit-addressing helpers
// shared by the bit array and codec packages.
package ints

import (
	"golang.org/x/exp/constraints"
)

// Min returns the smaller value of x and y
func Min[T constraints.Integer](x, y T) T {
	if x <= y {
		return x
	}
	return y
}

// Max returns the greater value of x and y
func Max[T constraints.Integer](x, y T) T {
	if x >= y {
		return x
	}
	return y
}

// Clamp returns x if it is in [lo, hi]. Otherwise, the nearest bounding value is returned
func Clamp[T constraints.Integer](x, lo, hi T) T {
	return Max(lo, Min(x, hi))
}

// ChunkCount returns the number of chunkSize-element chunks needed to store n elements.
// It does not overflow for n close to the maximum value of T.
func ChunkCount[T constraints.Unsigned](n, chunkSize T) T {
	q := n / chunkSize
	if n%chunkSize != 0 {
		q++
	}
	return q
}

// ByteLen returns the minimum number of bytes
// needed to represent v as an unsigned integer.
// ByteLen(0) is 0.
func ByteLen(v uint64) int {
	n := 0
	for v != 0 {
		n++
		v >>= 8
	}
	return n
}
