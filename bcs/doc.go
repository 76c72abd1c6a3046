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

// Package bcs implements the Binary Canonical Serialization format used for
// transaction bytes, digests and signatures.
//
// Values are written with explicit Encoder and Decoder calls rather than by
// reflection, so every type on the wire controls its own field order.
// Integers are little-endian, sequence lengths and enum variant indices are
// ULEB128, options are a presence byte followed by the value, and there is
// exactly one valid encoding for every value.
//
// Example:
//
//	e := bcs.NewEncoder(bcs.WithMaxSize(128 * 1024))
//	e.WriteU64(42)
//	e.WriteString("hello")
//	if err := e.Err(); err != nil {
//	    return err
//	}
//	data := e.Bytes()
package bcs
