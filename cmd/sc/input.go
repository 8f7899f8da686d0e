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
	"io"
	"os"
)

// input is the contents of an input file.
type input struct {
	buf    []byte
	mapped bool
}

// minMapped is the smallest file that gets mmapped
// instead of read
const minMapped = 1 << 20

// load reads the file at path ("-" meaning stdin).
func load(path string) (*input, error) {
	if path == "-" {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return &input{buf: buf}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() >= minMapped {
		if mem, ok := mmap(f, info.Size()); ok {
			return &input{buf: mem, mapped: true}, nil
		}
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &input{buf: buf}, nil
}

func (in *input) close() {
	if in.mapped {
		unmap(in.buf)
	}
	in.buf = nil
}

// create opens path for writing ("-" meaning stdout).
func create(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
