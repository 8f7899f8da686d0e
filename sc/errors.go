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
	"fmt"
)

type errorCode uint8

const (
	ecOK errorCode = iota
	ecInvalidHeader
	ecShortLength
	ecInvalidBlockHead
	ecTruncated
	ecTrailingData
	ecLengthMismatch
	ecTooLarge
	ecLastCode
)

var errs = [ecLastCode]error{
	ecOK:               nil,
	ecInvalidHeader:    errors.New("sc: invalid header"),
	ecShortLength:      errors.New("sc: stream ends inside the length field"),
	ecInvalidBlockHead: errors.New("sc: invalid block head"),
	ecTruncated:        errors.New("sc: truncated stream"),
	ecTrailingData:     errors.New("sc: trailing data after stop byte"),
	ecLengthMismatch:   errors.New("sc: blocks do not match declared length"),
	ecTooLarge:         errors.New("sc: declared length exceeds limit"),
}

// Errors returned (wrapped in a *FormatError)
// when a stream cannot be decoded. Use errors.Is
// to test for them.
var (
	ErrInvalidHeader    = errs[ecInvalidHeader]
	ErrShortLength      = errs[ecShortLength]
	ErrInvalidBlockHead = errs[ecInvalidBlockHead]
	ErrTruncated        = errs[ecTruncated]
	ErrTrailingData     = errs[ecTrailingData]
	ErrLengthMismatch   = errs[ecLengthMismatch]
	ErrTooLarge         = errs[ecTooLarge]
)

// FormatError describes malformed input.
type FormatError struct {
	code errorCode
	// Offset is the position in the stream
	// at which the problem was detected.
	Offset int64
	// Head is the offending byte for
	// ErrInvalidHeader and ErrInvalidBlockHead.
	Head byte
	// Detail is optional extra context.
	Detail string
}

func (e *FormatError) Error() string {
	msg := errs[e.code].Error()
	switch e.code {
	case ecInvalidHeader, ecInvalidBlockHead:
		msg = fmt.Sprintf("%s 0x%02x", msg, e.Head)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("%s (at offset %d)", msg, e.Offset)
}

// Unwrap returns the sentinel error for e.
func (e *FormatError) Unwrap() error { return errs[e.code] }

func formatErr(code errorCode, off int64) *FormatError {
	return &FormatError{code: code, Offset: off}
}

func headErr(code errorCode, off int64, head byte) *FormatError {
	return &FormatError{code: code, Offset: off, Head: head}
}

func mismatch(off int64, f string, args ...any) *FormatError {
	return &FormatError{code: ecLengthMismatch, Offset: off, Detail: fmt.Sprintf(f, args...)}
}
