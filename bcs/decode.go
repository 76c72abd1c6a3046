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
	"unicode/utf8"

	"github.com/holiman/uint256"
)

// Unmarshaler is implemented by types that read themselves from a Decoder
type Unmarshaler interface {
	UnmarshalBCS(d *Decoder) error
}

// Decoder reads values from a byte slice and tracks its position
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder returns a Decoder positioned at the start of data
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Decode parses data into v. All of data must be consumed.
func Decode(data []byte, v Unmarshaler) error {
	d := NewDecoder(data)
	if err := d.Read(v); err != nil {
		return err
	}
	if d.Remaining() > 0 {
		return d.errorf(ErrTrailingBytes, "%d bytes left", d.Remaining())
	}
	return nil
}

// Read decodes v at the current position
func (d *Decoder) Read(v Unmarshaler) error {
	start := d.pos
	if err := v.UnmarshalBCS(d); err != nil {
		var decErr *DecodingError
		if errors.As(err, &decErr) {
			return err
		}
		return &DecodingError{Offset: start, Err: err}
	}
	return nil
}

// Position returns the number of bytes consumed
func (d *Decoder) Position() int {
	return d.pos
}

// Remaining returns the number of bytes left
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

func (d *Decoder) errorf(err error, format string, args ...any) error {
	return &DecodingError{
		Offset: d.pos,
		Err:    fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)),
	}
}

// Errorf builds a DecodingError at the current position wrapping err
func (d *Decoder) Errorf(err error, format string, args ...any) error {
	return d.errorf(err, format, args...)
}

// InvalidVariant builds the error for an unknown discriminant of the named enum
func (d *Decoder) InvalidVariant(enum string, index uint32) error {
	return d.errorf(ErrInvalidVariant, "%s variant %d", enum, index)
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, d.errorf(ErrUnexpectedEOF, "need %d bytes, have %d", n, d.Remaining())
	}
	ret := d.data[d.pos : d.pos+n]
	d.pos += n
	return ret, nil
}

func (d *Decoder) ReadU8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) ReadU16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) ReadU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) ReadU64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) ReadU128() (*uint256.Int, error) {
	b, err := d.take(16)
	if err != nil {
		return nil, err
	}
	return &uint256.Int{
		binary.LittleEndian.Uint64(b[0:8]),
		binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

func (d *Decoder) ReadU256() (*uint256.Int, error) {
	b, err := d.take(32)
	if err != nil {
		return nil, err
	}
	ret := &uint256.Int{}
	for i := range 4 {
		ret[i] = binary.LittleEndian.Uint64(b[i*8 : (i+1)*8])
	}
	return ret, nil
}

// ReadBool accepts only 0 and 1
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadU8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		d.pos--
		return false, d.errorf(ErrNonCanonical, "bool byte 0x%02x", b)
	}
}

func (d *Decoder) ReadUleb128() (uint32, error) {
	v, n, err := ParseUleb128(d.data[d.pos:])
	if err != nil {
		return 0, d.errorf(err, "uleb128")
	}
	d.pos += n
	return v, nil
}

// ReadLength reads a sequence length prefix. Lengths larger than the bytes
// left in the input are rejected early, since every element takes at least
// one byte.
func (d *Decoder) ReadLength() (int, error) {
	v, err := d.ReadUleb128()
	if err != nil {
		return 0, err
	}
	if v > MaxSequenceLength {
		return 0, d.errorf(ErrValueOutOfRange, "sequence length %d", v)
	}
	if int(v) > d.Remaining() {
		return 0, d.errorf(ErrUnexpectedEOF, "sequence length %d exceeds input", v)
	}
	return int(v), nil
}

func (d *Decoder) ReadVariant() (uint32, error) {
	return d.ReadUleb128()
}

// ReadFixedBytes reads exactly n bytes and returns a copy
func (d *Decoder) ReadFixedBytes(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, n)
	copy(ret, b)
	return ret, nil
}

// ReadBytes reads a length-prefixed byte sequence
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadLength()
	if err != nil {
		return nil, err
	}
	return d.ReadFixedBytes(n)
}

func (d *Decoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", d.errorf(ErrNonCanonical, "invalid UTF-8 string")
	}
	return string(b), nil
}

// ReadSequence reads a length prefix followed by that many items. An empty
// sequence decodes to nil.
func ReadSequence[T any](d *Decoder, fn func(*Decoder) (T, error)) ([]T, error) {
	n, err := d.ReadLength()
	if err != nil || n == 0 {
		return nil, err
	}
	ret := make([]T, 0, n)
	for range n {
		item, err := fn(d)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

// ReadOption reads a presence flag and, when set, the value
func ReadOption[T any](d *Decoder, fn func(*Decoder) (T, error)) (*T, error) {
	present, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := fn(d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
