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
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// RistrettoConfig sizes a RistrettoStore. The cost of a record is its
// encoded length.
type RistrettoConfig struct {
	// MaxCost is the byte budget of each entry kind
	MaxCost int64
	// AverageRecordSize is used to size the admission counters
	AverageRecordSize int64
}

func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		MaxCost:           32 << 20,
		AverageRecordSize: 128,
	}
}

// RistrettoStore is a bounded in-memory store. Records may be evicted, which
// a cache tolerates as a miss.
type RistrettoStore struct {
	caches [entryKindCount]*ristretto.Cache
}

func NewRistrettoStore(cfg RistrettoConfig) (*RistrettoStore, error) {
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = DefaultRistrettoConfig().MaxCost
	}
	if cfg.AverageRecordSize <= 0 {
		cfg.AverageRecordSize = DefaultRistrettoConfig().AverageRecordSize
	}
	s := &RistrettoStore{}
	for i := range s.caches {
		// Ristretto recommends ten counters per item held when full
		c, err := ristretto.NewCache(&ristretto.Config{
			NumCounters:        cfg.MaxCost / cfg.AverageRecordSize * 10,
			MaxCost:            cfg.MaxCost,
			BufferItems:        64,
			IgnoreInternalCost: true,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not initialize %s cache: %w", EntryKind(i), err)
		}
		s.caches[i] = c
	}
	return s, nil
}

func (s *RistrettoStore) Get(kind EntryKind, key string) ([]byte, bool, error) {
	if err := kind.check(); err != nil {
		return nil, false, err
	}
	value, ok := s.caches[kind].Get(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value.([]byte)), true, nil
}

func (s *RistrettoStore) Set(kind EntryKind, key string, value []byte) error {
	if err := kind.check(); err != nil {
		return err
	}
	c := s.caches[kind]
	c.Set(key, bytes.Clone(value), int64(len(value)))
	// Make the write visible to the next Get
	c.Wait()
	return nil
}

func (s *RistrettoStore) Delete(kind EntryKind, key string) error {
	if err := kind.check(); err != nil {
		return err
	}
	s.caches[kind].Del(key)
	return nil
}

func (s *RistrettoStore) Clear(kind EntryKind) error {
	if err := kind.check(); err != nil {
		return err
	}
	s.caches[kind].Clear()
	return nil
}

func (s *RistrettoStore) Close() error {
	for _, c := range s.caches {
		if c != nil {
			c.Close()
		}
	}
	return nil
}
