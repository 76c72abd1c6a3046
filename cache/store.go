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

package cache

import (
	"errors"
	"fmt"
)

// EntryKind partitions cache entries. Every Store keeps the partitions
// separate so that one can be cleared without touching the others.
type EntryKind uint8

const (
	EntryOwnedObject EntryKind = iota
	EntrySharedOrImmutableObject
	EntryMoveFunction

	entryKindCount = iota
)

var ErrInvalidEntryKind = errors.New("invalid cache entry kind")

func (k EntryKind) String() string {
	switch k {
	case EntryOwnedObject:
		return "OwnedObject"
	case EntrySharedOrImmutableObject:
		return "SharedOrImmutableObject"
	case EntryMoveFunction:
		return "MoveFunction"
	default:
		return fmt.Sprintf("EntryKind(%d)", uint8(k))
	}
}

func (k EntryKind) check() error {
	if k >= entryKindCount {
		return fmt.Errorf("%w: %d", ErrInvalidEntryKind, uint8(k))
	}
	return nil
}

// Store holds encoded cache records. Implementations must be safe for
// concurrent use and make each operation atomic per key.
type Store interface {
	// Get returns the record for key, or false when there is none
	Get(kind EntryKind, key string) ([]byte, bool, error)
	Set(kind EntryKind, key string, value []byte) error
	Delete(kind EntryKind, key string) error
	// Clear removes every record of the given kind
	Clear(kind EntryKind) error
	Close() error
}
