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
	"errors"
	"fmt"
)

var (
	// ErrSizeLimitExceeded is returned when encoded output grows past the configured maximum
	ErrSizeLimitExceeded = errors.New("encoded size limit exceeded")
	// ErrUnexpectedEOF is returned when input ends in the middle of a value
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrInvalidVariant is returned for an enum discriminant with no matching variant
	ErrInvalidVariant = errors.New("invalid enum variant")
	// ErrNonCanonical is returned for input that has a shorter valid encoding
	ErrNonCanonical = errors.New("non-canonical encoding")
	// ErrTrailingBytes is returned when input remains after the top-level value
	ErrTrailingBytes = errors.New("trailing bytes after value")
	// ErrValueOutOfRange is returned when a value does not fit its wire width
	ErrValueOutOfRange = errors.New("value out of range")
)

// EncodingError indicates that a value could not be written. Path names the
// field that failed, such as "inputs[3]", and may be empty.
type EncodingError struct {
	Path string
	Err  error
}

func (e *EncodingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("bcs encode: %v", e.Err)
	}
	return fmt.Sprintf("bcs encode %s: %v", e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError indicates that input bytes could not be parsed
type DecodingError struct {
	Offset int
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("bcs decode at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
