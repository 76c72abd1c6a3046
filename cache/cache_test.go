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

package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/blinklabs-io/suitx/cache"
	"github.com/blinklabs-io/suitx/internal/test"
	"github.com/blinklabs-io/suitx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	testOwner = types.MustParseAddress("0xa")
	testOther = types.MustParseAddress("0xb")
)

func testID(n int) types.ObjectID {
	return types.MustParseAddress(fmt.Sprintf("0x%x", n))
}

func ptr[T any](v T) *T {
	return &v
}

func ownedEntry(id types.ObjectID, version uint64) cache.ObjectEntry {
	return cache.ObjectEntry{
		ObjectID: id,
		Version:  version,
		Digest:   test.Digest(fmt.Sprintf("%s/%d", id, version)),
		Owner:    ptr(testOwner),
	}
}

func TestObjectCacheAddGet(t *testing.T) {
	store := cache.NewMemoryStore()
	c := cache.New(cache.WithStore(store))

	missing, err := c.GetObject(testID(1))
	require.NoError(t, err)
	assert.Nil(t, missing)

	owned := ownedEntry(testID(1), 3)
	shared := cache.ObjectEntry{
		ObjectID:             testID(2),
		Version:              9,
		Digest:               test.Digest("shared"),
		InitialSharedVersion: ptr(uint64(4)),
	}
	immutable := cache.ObjectEntry{ObjectID: testID(3), Version: 1, Digest: test.Digest("pkg")}
	require.NoError(t, c.AddObjects([]cache.ObjectEntry{owned, shared, immutable}))
	assert.Equal(t, 1, store.Len(cache.EntryOwnedObject))
	assert.Equal(t, 2, store.Len(cache.EntrySharedOrImmutableObject))

	for _, want := range []cache.ObjectEntry{owned, shared, immutable} {
		got, err := c.GetObject(want.ObjectID)
		require.NoError(t, err)
		assert.Equal(t, &want, got)
	}

	got, err := c.GetObjects([]types.ObjectID{testID(1), testID(4)})
	require.NoError(t, err)
	assert.Equal(t, map[types.ObjectID]cache.ObjectEntry{testID(1): owned}, got)

	require.NoError(t, c.DeleteObjects([]types.ObjectID{testID(1), testID(2)}))
	assert.Equal(t, 0, store.Len(cache.EntryOwnedObject))
	assert.Equal(t, 1, store.Len(cache.EntrySharedOrImmutableObject))
}

func TestObjectCacheOwnedTakesPrecedence(t *testing.T) {
	store := cache.NewMemoryStore()
	c := cache.New(cache.WithStore(store))
	stale := cache.ObjectEntry{ObjectID: testID(1), Version: 1, Digest: test.Digest("old")}
	require.NoError(t, c.AddObject(stale))
	owned := ownedEntry(testID(1), 2)
	require.NoError(t, c.AddObject(owned))
	got, err := c.GetObject(testID(1))
	require.NoError(t, err)
	assert.Equal(t, &owned, got)
}

func TestObjectCacheMoveFunctions(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			c := cache.New(cache.WithStore(store))
			fn := types.MoveFunction{
				Package:  testID(0xc0ffee),
				Module:   "pool",
				Function: "deposit",
				Parameters: []types.OpenMoveTypeSignature{
					{
						Ref: types.RefMutable,
						Body: types.OpenMoveTypeSignatureBody{
							Kind: types.BodyDatatype,
							Datatype: &types.MoveDatatype{
								Package: testID(0xc0ffee),
								Module:  "pool",
								Type:    "Pool",
								TypeParameters: []types.OpenMoveTypeSignatureBody{
									{Kind: types.BodyTypeParameter, TypeParameter: 0},
								},
							},
						},
					},
					{
						Body: types.OpenMoveTypeSignatureBody{
							Kind:   types.BodyVector,
							Vector: &types.OpenMoveTypeSignatureBody{Kind: types.BodyU64},
						},
					},
				},
			}
			got, err := c.GetMoveFunction(fn.Package, fn.Module, fn.Function)
			require.NoError(t, err)
			assert.Nil(t, got)

			require.NoError(t, c.AddMoveFunction(fn))
			got, err = c.GetMoveFunction(fn.Package, fn.Module, fn.Function)
			require.NoError(t, err)
			assert.Equal(t, &fn, got)

			require.NoError(t, c.ClearOwnedObjects())
			got, err = c.GetMoveFunction(fn.Package, fn.Module, fn.Function)
			require.NoError(t, err)
			assert.NotNil(t, got)

			require.NoError(t, c.Clear())
			got, err = c.GetMoveFunction(fn.Package, fn.Module, fn.Function)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestObjectCacheCorruptRecord(t *testing.T) {
	store := cache.NewMemoryStore()
	c := cache.New(cache.WithStore(store))
	require.NoError(t, store.Set(cache.EntryOwnedObject, testID(1).String(), []byte{0xff}))
	_, err := c.GetObject(testID(1))
	assert.ErrorIs(t, err, cache.ErrInvalidRecord)
}

func TestApplyEffects(t *testing.T) {
	store := cache.NewMemoryStore()
	c := cache.New(cache.WithStore(store), cache.WithAddress(testOwner))
	// 1 is deleted, 2 is transferred away, 3 is wrapped, 4 stays owned,
	// 5 becomes shared and 6 is new and immutable
	for i := 1; i <= 5; i++ {
		require.NoError(t, c.AddObject(ownedEntry(testID(i), 1)))
	}
	effects := &types.TransactionEffects{
		TransactionDigest: test.Digest("tx"),
		Status:            types.ExecutionStatus{Success: true},
		LamportVersion:    8,
		ChangedObjects: []types.ChangedObject{
			{ObjectID: testID(1), Output: types.ObjectOutputState{Kind: types.OutputNotExist}},
			{ObjectID: testID(2), Output: types.ObjectOutputState{
				Kind:   types.OutputObjectWrite,
				Digest: test.Digest("2"),
				Owner:  types.AddressOwner{Address: testOther},
			}},
			{ObjectID: testID(3), Output: types.ObjectOutputState{
				Kind:   types.OutputObjectWrite,
				Digest: test.Digest("3"),
				Owner:  types.ObjectOwner{Address: testID(4)},
			}},
			{ObjectID: testID(4), Output: types.ObjectOutputState{
				Kind:   types.OutputObjectWrite,
				Digest: test.Digest("4"),
				Owner:  types.AddressOwner{Address: testOwner},
			}},
			{ObjectID: testID(5), Output: types.ObjectOutputState{
				Kind:   types.OutputObjectWrite,
				Digest: test.Digest("5"),
				Owner:  types.SharedOwner{InitialSharedVersion: 8},
			}},
			{ObjectID: testID(6), Output: types.ObjectOutputState{
				Kind:   types.OutputObjectWrite,
				Digest: test.Digest("6"),
				Owner:  types.ImmutableOwner{},
			}},
		},
	}
	require.NoError(t, c.ApplyEffects(effects))

	for _, i := range []int{1, 2, 3} {
		got, err := c.GetObject(testID(i))
		require.NoError(t, err)
		assert.Nil(t, got, "object %d", i)
	}
	got, err := c.GetObject(testID(4))
	require.NoError(t, err)
	assert.Equal(t, &cache.ObjectEntry{
		ObjectID: testID(4),
		Version:  8,
		Digest:   test.Digest("4"),
		Owner:    ptr(testOwner),
	}, got)
	got, err = c.GetObject(testID(5))
	require.NoError(t, err)
	assert.Equal(t, &cache.ObjectEntry{
		ObjectID:             testID(5),
		Version:              8,
		Digest:               test.Digest("5"),
		InitialSharedVersion: ptr(uint64(8)),
	}, got)
	got, err = c.GetObject(testID(6))
	require.NoError(t, err)
	assert.Equal(t, &cache.ObjectEntry{ObjectID: testID(6), Version: 8, Digest: test.Digest("6")}, got)
	assert.Equal(t, 1, store.Len(cache.EntryOwnedObject))
	assert.Equal(t, 2, store.Len(cache.EntrySharedOrImmutableObject))

	require.NoError(t, c.ClearOwnedObjects())
	assert.Equal(t, 0, store.Len(cache.EntryOwnedObject))
	assert.Equal(t, 2, store.Len(cache.EntrySharedOrImmutableObject))
}

func TestApplyEffectsWithoutAddress(t *testing.T) {
	c := cache.New()
	_, ok := c.Address()
	assert.False(t, ok)
	err := c.ApplyEffects(&types.TransactionEffects{
		LamportVersion: 2,
		ChangedObjects: []types.ChangedObject{
			{ObjectID: testID(1), Output: types.ObjectOutputState{
				Kind:   types.OutputObjectWrite,
				Digest: test.Digest("1"),
				Owner:  types.AddressOwner{Address: testOther},
			}},
		},
	})
	require.NoError(t, err)
	got, err := c.GetObject(testID(1))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, testOther, *got.Owner)
	assert.NoError(t, c.ApplyEffects(nil))
}

func TestObjectCacheConcurrentUse(t *testing.T) {
	defer goleak.VerifyNone(t, test.LeakOptions()...)
	c := cache.New(cache.WithAddress(testOwner))
	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := testID(i)
				assert.NoError(t, c.AddObject(ownedEntry(id, uint64(worker+1))))
				got, err := c.GetObject(id)
				assert.NoError(t, err)
				// Another worker may have deleted it in between
				if got != nil {
					assert.Equal(t, id, got.ObjectID)
				}
				if i%10 == 0 {
					assert.NoError(t, c.DeleteObject(id))
				}
			}
		}()
	}
	wg.Wait()
}
