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

// Package sparsebits holds the sparse bit array
// compression packages and the sc command.
//
// The codec lives in package sc, operating on
// the bit arrays in package bitarray. Package scfile
// wraps encoded streams in checksummed frames,
// optionally compressed by one of the algorithms in
// package compr.
package sparsebits
