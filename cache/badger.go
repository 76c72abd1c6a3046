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

	"github.com/dgraph-io/badger/v2"
)

// Key prefixes of the entry kinds
const (
	prefixOwnedObject             = 1
	prefixSharedOrImmutableObject = 2
	prefixMoveFunction            = 3
)

var badgerPrefixes = [entryKindCount]byte{
	EntryOwnedObject:             prefixOwnedObject,
	EntrySharedOrImmutableObject: prefixSharedOrImmutableObject,
	EntryMoveFunction:            prefixMoveFunction,
}

// DefaultBadgerOptions returns options for a store in dir. An empty dir
// keeps the database in memory.
func DefaultBadgerOptions(dir string) badger.Options {
	return badger.DefaultOptions(dir).
		WithInMemory(dir == "").
		WithNumMemtables(1).
		WithNumLevelZeroTables(1).
		WithNumLevelZeroTablesStall(2).
		WithLogger(nil)
}

// BadgerStore persists records in a badger database
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open cache database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(kind EntryKind, key string) ([]byte, error) {
	if err := kind.check(); err != nil {
		return nil, err
	}
	ret := make([]byte, 0, len(key)+1)
	ret = append(ret, badgerPrefixes[kind])
	return append(ret, key...), nil
}

func (s *BadgerStore) Get(kind EntryKind, key string) ([]byte, bool, error) {
	dbKey, err := badgerKey(kind, key)
	if err != nil {
		return nil, false, err
	}
	var value []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not get %s %s: %w", kind, key, err)
	}
	return value, true, nil
}

func (s *BadgerStore) Set(kind EntryKind, key string, value []byte) error {
	dbKey, err := badgerKey(kind, key)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dbKey, value)
	})
	if err != nil {
		return fmt.Errorf("could not set %s %s: %w", kind, key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(kind EntryKind, key string) error {
	dbKey, err := badgerKey(kind, key)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(dbKey)
	})
	if err != nil {
		return fmt.Errorf("could not delete %s %s: %w", kind, key, err)
	}
	return nil
}

func (s *BadgerStore) Clear(kind EntryKind) error {
	if err := kind.check(); err != nil {
		return err
	}
	prefix := []byte{badgerPrefixes[kind]}
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not list %s: %w", kind, err)
	}
	wb := s.db.NewWriteBatch()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			wb.Cancel()
			return fmt.Errorf("could not clear %s: %w", kind, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("could not clear %s: %w", kind, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
