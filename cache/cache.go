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

// Package cache keeps object versions and Move function signatures seen by
// earlier builds so later builds can skip chain lookups.
package cache

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/suitx/types"
	"github.com/hashicorp/go-multierror"
)

// ObjectEntry is the cached state of one object. Owner is set for objects
// owned by an address; InitialSharedVersion is set for shared objects.
// Entries with neither are immutable.
type ObjectEntry struct {
	ObjectID             types.ObjectID
	Version              uint64
	Digest               types.Digest
	Owner                *types.Address
	InitialSharedVersion *uint64
}

func (e ObjectEntry) Ref() types.ObjectRef {
	return types.ObjectRef{
		ObjectID: e.ObjectID,
		Version:  e.Version,
		Digest:   e.Digest,
	}
}

func (e ObjectEntry) kind() EntryKind {
	if e.Owner != nil {
		return EntryOwnedObject
	}
	return EntrySharedOrImmutableObject
}

// ObjectCache is safe for concurrent use by multiple builds. Concurrent
// writes to the same key resolve as last write wins.
type ObjectCache struct {
	store   Store
	address *types.Address
	logger  *slog.Logger
}

func New(opts ...Option) *ObjectCache {
	c := &ObjectCache{}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Address returns the configured owner address, if any
func (c *ObjectCache) Address() (types.Address, bool) {
	if c.address == nil {
		return types.Address{}, false
	}
	return *c.address, true
}

// GetObject returns the cached entry for id, or nil when there is none.
// Owned entries take precedence.
func (c *ObjectCache) GetObject(id types.ObjectID) (*ObjectEntry, error) {
	for _, kind := range []EntryKind{EntryOwnedObject, EntrySharedOrImmutableObject} {
		data, ok, err := c.store.Get(kind, id.String())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		entry, err := decodeObject(data)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", id, err)
		}
		return entry, nil
	}
	return nil, nil
}

// GetObjects returns the cached entries for ids, skipping misses
func (c *ObjectCache) GetObjects(ids []types.ObjectID) (map[types.ObjectID]ObjectEntry, error) {
	ret := make(map[types.ObjectID]ObjectEntry, len(ids))
	for _, id := range ids {
		entry, err := c.GetObject(id)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			ret[id] = *entry
		}
	}
	return ret, nil
}

func (c *ObjectCache) AddObject(entry ObjectEntry) error {
	data, err := encodeObject(entry)
	if err != nil {
		return fmt.Errorf("encode object %s: %w", entry.ObjectID, err)
	}
	return c.store.Set(entry.kind(), entry.ObjectID.String(), data)
}

func (c *ObjectCache) AddObjects(entries []ObjectEntry) error {
	for _, entry := range entries {
		if err := c.AddObject(entry); err != nil {
			return err
		}
	}
	return nil
}

// DeleteObject removes id from both object partitions
func (c *ObjectCache) DeleteObject(id types.ObjectID) error {
	var merr *multierror.Error
	for _, kind := range []EntryKind{EntryOwnedObject, EntrySharedOrImmutableObject} {
		if err := c.store.Delete(kind, id.String()); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

func (c *ObjectCache) DeleteObjects(ids []types.ObjectID) error {
	var merr *multierror.Error
	for _, id := range ids {
		if err := c.DeleteObject(id); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

// GetMoveFunction returns the cached signature, or nil when there is none
func (c *ObjectCache) GetMoveFunction(pkg types.Address, module string, function string) (*types.MoveFunction, error) {
	key := types.MoveFunctionKey(pkg, module, function)
	data, ok, err := c.store.Get(EntryMoveFunction, key)
	if err != nil || !ok {
		return nil, err
	}
	ret, err := decodeMoveFunction(data)
	if err != nil {
		return nil, fmt.Errorf("move function %s: %w", key, err)
	}
	return ret, nil
}

func (c *ObjectCache) AddMoveFunction(fn types.MoveFunction) error {
	data, err := encodeMoveFunction(fn)
	if err != nil {
		return fmt.Errorf("encode move function %s: %w", fn.Key(), err)
	}
	return c.store.Set(EntryMoveFunction, fn.Key(), data)
}

// ClearOwnedObjects drops every owned object. Shared and immutable objects
// and Move functions are kept.
func (c *ObjectCache) ClearOwnedObjects() error {
	return c.store.Clear(EntryOwnedObject)
}

// Clear drops every entry
func (c *ObjectCache) Clear() error {
	var merr *multierror.Error
	for kind := EntryKind(0); kind < entryKindCount; kind++ {
		if err := c.store.Clear(kind); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

// ApplyEffects updates the cache with the objects written and deleted by an
// executed transaction. Objects that end up owned by another address or
// wrapped in another object are removed.
func (c *ObjectCache) ApplyEffects(effects *types.TransactionEffects) error {
	if effects == nil {
		return nil
	}
	var merr *multierror.Error
	var written, deleted int
	remove := func(id types.ObjectID) {
		deleted++
		if err := c.DeleteObject(id); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	for _, change := range effects.ChangedObjects {
		output := change.Output
		switch output.Kind {
		case types.OutputNotExist:
			remove(change.ObjectID)
		case types.OutputObjectWrite:
			entry := ObjectEntry{
				ObjectID: change.ObjectID,
				Version:  effects.LamportVersion,
				Digest:   output.Digest,
			}
			switch owner := output.Owner.(type) {
			case types.AddressOwner:
				if c.address != nil && owner.Address != *c.address {
					remove(change.ObjectID)
					continue
				}
				entry.Owner = &owner.Address
			case types.ObjectOwner:
				remove(change.ObjectID)
				continue
			case types.SharedOwner:
				entry.InitialSharedVersion = &owner.InitialSharedVersion
			}
			// An object moving between partitions must not stay in the old one
			if err := c.DeleteObject(change.ObjectID); err != nil {
				merr = multierror.Append(merr, err)
			}
			if err := c.AddObject(entry); err != nil {
				merr = multierror.Append(merr, err)
				continue
			}
			written++
		}
	}
	c.logger.Debug(
		"applied transaction effects to object cache",
		"digest", effects.TransactionDigest,
		"written", written,
		"deleted", deleted,
	)
	return merr.ErrorOrNil()
}
