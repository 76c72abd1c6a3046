// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bcs

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// MaxSequenceLength is the largest length prefix allowed on the wire
const MaxSequenceLength = 1<<31 - 1

// Marshaler is implemented by types that write themselves to an Encoder
type Marshaler interface {
	MarshalBCS(e *Encoder) error
}

type encodeConfig struct {
	maxSize int
}

// EncodeOption configures an Encoder
type EncodeOption func(*encodeConfig)

// WithMaxSize limits the total encoded size. Zero means no limit.
func WithMaxSize(size int) EncodeOption {
	return func(c *encodeConfig) {
		if size >= 0 {
			c.maxSize = size
		}
	}
}

// Encoder accumulates the encoding of one or more values. Write methods do
// not return errors; the first failure is kept and reported by Err, and any
// later writes are ignored.
type Encoder struct {
	buf     []byte
	maxSize int
	err     error
}

// NewEncoder returns an empty Encoder
func NewEncoder(opts ...EncodeOption) *Encoder {
	cfg := encodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Encoder{
		maxSize: cfg.maxSize,
	}
}

// Encode writes v to a new Encoder and returns the bytes
func Encode(v Marshaler, opts ...EncodeOption) ([]byte, error) {
	e := NewEncoder(opts...)
	if err := e.Write(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Bytes returns the encoded bytes. The slice aliases the Encoder's buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Err returns the first error encountered
func (e *Encoder) Err() error {
	return e.err
}

// Fail records err against the given path unless an earlier error exists
func (e *Encoder) Fail(path string, err error) {
	if e.err != nil {
		return
	}
	var encErr *EncodingError
	if errors.As(err, &encErr) {
		e.err = encErr
		return
	}
	e.err = &EncodingError{Path: path, Err: err}
}

// Write encodes v and returns the Encoder's error state
func (e *Encoder) Write(v Marshaler) error {
	if e.err != nil {
		return e.err
	}
	if err := v.MarshalBCS(e); err != nil {
		e.Fail("", err)
	}
	return e.err
}

func (e *Encoder) append(data ...byte) {
	if e.err != nil {
		return
	}
	if e.maxSize > 0 && len(e.buf)+len(data) > e.maxSize {
		e.err = &EncodingError{
			Err: fmt.Errorf("%w: %d bytes", ErrSizeLimitExceeded, e.maxSize),
		}
		return
	}
	e.buf = append(e.buf, data...)
}

func (e *Encoder) WriteU8(v uint8) {
	e.append(v)
}

func (e *Encoder) WriteU16(v uint16) {
	e.append(binary.LittleEndian.AppendUint16(nil, v)...)
}

func (e *Encoder) WriteU32(v uint32) {
	e.append(binary.LittleEndian.AppendUint32(nil, v)...)
}

func (e *Encoder) WriteU64(v uint64) {
	e.append(binary.LittleEndian.AppendUint64(nil, v)...)
}

// WriteU128 writes the low 128 bits of v. Values wider than 128 bits fail.
func (e *Encoder) WriteU128(v *uint256.Int) {
	if v.BitLen() > 128 {
		e.Fail("", fmt.Errorf("%w: %s does not fit in u128", ErrValueOutOfRange, v.Dec()))
		return
	}
	e.WriteU64(v[0])
	e.WriteU64(v[1])
}

func (e *Encoder) WriteU256(v *uint256.Int) {
	for i := range 4 {
		e.WriteU64(v[i])
	}
}

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.append(1)
	} else {
		e.append(0)
	}
}

// WriteUleb128 writes a raw ULEB128 value
func (e *Encoder) WriteUleb128(v uint32) {
	e.append(AppendUleb128(nil, v)...)
}

// WriteLength writes a sequence length prefix
func (e *Encoder) WriteLength(n int) {
	if n < 0 || n > MaxSequenceLength {
		e.Fail("", fmt.Errorf("%w: sequence length %d", ErrValueOutOfRange, n))
		return
	}
	e.WriteUleb128(uint32(n))
}

// WriteVariant writes an enum discriminant
func (e *Encoder) WriteVariant(index uint32) {
	e.WriteUleb128(index)
}

// WriteFixedBytes writes data without a length prefix
func (e *Encoder) WriteFixedBytes(data []byte) {
	e.append(data...)
}

// WriteBytes writes a length-prefixed byte sequence
func (e *Encoder) WriteBytes(data []byte) {
	e.WriteLength(len(data))
	e.append(data...)
}

// WriteString writes a length-prefixed UTF-8 string
func (e *Encoder) WriteString(s string) {
	e.WriteBytes([]byte(s))
}

// WriteSequence writes a length prefix followed by each item
func WriteSequence[T any](e *Encoder, items []T, fn func(*Encoder, T)) {
	e.WriteLength(len(items))
	for _, item := range items {
		if e.err != nil {
			return
		}
		fn(e, item)
	}
}

// WriteOption writes a presence flag followed by the value when v is non-nil
func WriteOption[T any](e *Encoder, v *T, fn func(*Encoder, T)) {
	if v == nil {
		e.WriteBool(false)
		return
	}
	e.WriteBool(true)
	fn(e, *v)
}
