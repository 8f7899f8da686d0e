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
	"bufio"
	"errors"
	"io"
)

// source is a forward-only cursor over a stream.
// Each decode or scan owns its own source.
type source interface {
	// readByte returns the next byte or io.EOF.
	readByte() (byte, error)
	// next returns the next n bytes. The returned
	// slice is only valid until the following call.
	next(n int) ([]byte, error)
	// skip advances past n bytes.
	skip(n int) error
	// atEOF reports whether the stream is exhausted.
	atEOF() (bool, error)
	// offset is the number of bytes consumed so far.
	offset() int64
}

// memSource reads from an in-memory buffer.
type memSource struct {
	buf []byte
	pos int
}

func (m *memSource) readByte() (byte, error) {
	if m.pos >= len(m.buf) {
		return 0, io.EOF
	}
	c := m.buf[m.pos]
	m.pos++
	return c, nil
}

func (m *memSource) next(n int) ([]byte, error) {
	if len(m.buf)-m.pos < n {
		m.pos = len(m.buf)
		return nil, io.ErrUnexpectedEOF
	}
	b := m.buf[m.pos : m.pos+n]
	m.pos += n
	return b, nil
}

func (m *memSource) skip(n int) error {
	_, err := m.next(n)
	return err
}

func (m *memSource) atEOF() (bool, error) { return m.pos >= len(m.buf), nil }

func (m *memSource) offset() int64 { return int64(m.pos) }

// readerSource reads from an io.Reader through a bufio.Reader.
type readerSource struct {
	r       *bufio.Reader
	pos     int64
	scratch []byte
}

func newReaderSource(r io.Reader) *readerSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &readerSource{r: br}
}

func (s *readerSource) readByte() (byte, error) {
	c, err := s.r.ReadByte()
	if err == nil {
		s.pos++
	}
	return c, err
}

func (s *readerSource) next(n int) ([]byte, error) {
	if cap(s.scratch) < n {
		s.scratch = make([]byte, n)
	}
	buf := s.scratch[:n]
	got, err := io.ReadFull(s.r, buf)
	s.pos += int64(got)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return buf, err
}

func (s *readerSource) skip(n int) error {
	got, err := s.r.Discard(n)
	s.pos += int64(got)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func (s *readerSource) atEOF() (bool, error) {
	_, err := s.r.Peek(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

func (s *readerSource) offset() int64 { return s.pos }

// isEOF reports whether err means the input ran out
// (as opposed to an I/O failure of the underlying reader).
func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
