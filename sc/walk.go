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

// visitor is the per-mode policy plugged into walk.
// walk alone decides where blocks start and end;
// a visitor only sees what walk hands it.
type visitor interface {
	// start is called once with the decoded header.
	start(h Header) error
	// wantPayload reports whether visit needs
	// the payload bytes or whether they can be skipped.
	wantPayload() bool
	// visit is called once per block. The payload
	// is nil unless wantPayload returned true, and
	// is only valid for the duration of the call.
	visit(k Kind, count int, payload []byte, off int64) error
	// finish is called after the stop byte
	// once the stream is known to be exhausted.
	finish(streamBytes int64) error
}

// walk decodes the header and every block of src,
// handing each block to v.
func walk(src source, v visitor) error {
	h, err := readHeader(src)
	if err != nil {
		return err
	}
	if err := v.start(h); err != nil {
		return err
	}
	for {
		at := src.offset()
		head, err := src.readByte()
		if err != nil {
			return eofErr(err, src)
		}
		class, k, count := classify(head)
		switch class {
		case headStop:
			return end(src, v)
		case headInvalid:
			return headErr(ecInvalidBlockHead, at, head)
		case headCounted:
			c, err := src.readByte()
			if err != nil {
				return eofErr(err, src)
			}
			count = int(c)
		case headInline:
		}
		size := k.payloadSize(count)
		var payload []byte
		if v.wantPayload() {
			payload, err = src.next(size)
		} else {
			err = src.skip(size)
		}
		if err != nil {
			return eofErr(err, src)
		}
		if err := v.visit(k, count, payload, at); err != nil {
			return err
		}
	}
}

func end(src source, v visitor) error {
	eof, err := src.atEOF()
	if err != nil {
		return err
	}
	if !eof {
		return formatErr(ecTrailingData, src.offset())
	}
	return v.finish(src.offset())
}

// eofErr converts running out of input into ErrTruncated
// and passes any other error through.
func eofErr(err error, src source) error {
	if isEOF(err) {
		return formatErr(ecTruncated, src.offset())
	}
	return err
}
