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
	"bytes"
	"sync"
)

// MemoryStore keeps records in maps. The zero value is not usable; use
// NewMemoryStore.
type MemoryStore struct {
	sync.RWMutex
	entries [entryKindCount]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.entries {
		s.entries[i] = make(map[string][]byte)
	}
	return s
}

func (s *MemoryStore) Get(kind EntryKind, key string) ([]byte, bool, error) {
	if err := kind.check(); err != nil {
		return nil, false, err
	}
	s.RLock()
	defer s.RUnlock()
	value, ok := s.entries[kind][key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

func (s *MemoryStore) Set(kind EntryKind, key string, value []byte) error {
	if err := kind.check(); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	s.entries[kind][key] = bytes.Clone(value)
	return nil
}

func (s *MemoryStore) Delete(kind EntryKind, key string) error {
	if err := kind.check(); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	delete(s.entries[kind], key)
	return nil
}

func (s *MemoryStore) Clear(kind EntryKind) error {
	if err := kind.check(); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	s.entries[kind] = make(map[string][]byte)
	return nil
}

// Len returns the number of records of the given kind
func (s *MemoryStore) Len(kind EntryKind) int {
	if kind.check() != nil {
		return 0
	}
	s.RLock()
	defer s.RUnlock()
	return len(s.entries[kind])
}

func (s *MemoryStore) Close() error {
	return nil
}
