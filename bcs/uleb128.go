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
	"math"
)

// Max number of bytes in a ULEB128 encoded u32
const maxUleb128Len = 5

// AppendUleb128 appends the ULEB128 encoding of v to dst
func AppendUleb128(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Uleb128Size returns the number of bytes needed to encode v
func Uleb128Size(v uint32) int {
	size := 1
	for v >= 0x80 {
		v >>= 7
		size++
	}
	return size
}

// ParseUleb128 reads a ULEB128 encoded u32 from the start of data and returns
// the value and the number of bytes consumed. Encodings that are longer than
// necessary or that overflow 32 bits are rejected.
func ParseUleb128(data []byte) (uint32, int, error) {
	var value uint64
	for i := 0; i < maxUleb128Len; i++ {
		if i >= len(data) {
			return 0, 0, ErrUnexpectedEOF
		}
		b := data[i]
		value |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			// A zero final byte after the first means a shorter form existed
			if i > 0 && b == 0 {
				return 0, 0, ErrNonCanonical
			}
			if value > math.MaxUint32 {
				return 0, 0, ErrValueOutOfRange
			}
			return uint32(value), i + 1, nil
		}
	}
	return 0, 0, ErrValueOutOfRange
}
