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
	"context"
	"testing"

	"github.com/blinklabs-io/suitx/cache"
	"github.com/blinklabs-io/suitx/internal/test"
	"github.com/blinklabs-io/suitx/internal/test/mockresolver"
	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPackage = testID(0xc0ffee)
	testPool    = testID(0x3001)
	testToken   = testID(0x4001)
)

func depositFunction() types.MoveFunction {
	datatype := func(name string) types.OpenMoveTypeSignatureBody {
		return types.OpenMoveTypeSignatureBody{
			Kind: types.BodyDatatype,
			Datatype: &types.MoveDatatype{
				Package: testPackage,
				Module:  "pool",
				Type:    name,
			},
		}
	}
	return types.MoveFunction{
		Package:  testPackage,
		Module:   "pool",
		Function: "deposit",
		Parameters: []types.OpenMoveTypeSignature{
			{Ref: types.RefMutable, Body: datatype("Pool")},
			{Body: datatype("Token")},
		},
	}
}

func depositTransaction(t *testing.T) *transaction.Transaction {
	t.Helper()
	tx := transaction.New()
	tx.SetSender(testOwner)
	tx.SetGasPrice(1000)
	tx.SetGasBudget(5_000_000)
	tx.SetGasPayment([]types.ObjectRef{{ObjectID: testID(0x1001), Version: 1, Digest: test.Digest("gas")}})
	_, err := tx.MoveCall("0xc0ffee::pool::deposit", nil, tx.Object(testPool), tx.Object(testToken))
	require.NoError(t, err)
	return tx
}

func TestPluginUsesCache(t *testing.T) {
	resolver := mockresolver.New()
	resolver.AddSharedObject(testPool, 5, "0xc0ffee::pool::Pool")
	resolver.AddOwnedObject(testOwner, testToken, "0xc0ffee::pool::Token")
	resolver.AddMoveFunction(depositFunction())
	c := cache.New(cache.WithAddress(testOwner))
	opts := []transaction.BuildOption{
		transaction.WithResolver(resolver),
		transaction.WithPlugins(c.Plugin()),
	}

	_, err := depositTransaction(t).Build(context.Background(), opts...)
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.Calls(mockresolver.MethodGetObjects))
	assert.Equal(t, 1, resolver.Calls(mockresolver.MethodGetMoveFunction))
	fn, err := c.GetMoveFunction(testPackage, "pool", "deposit")
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, depositFunction().Parameters, fn.Parameters)

	require.NoError(t, c.AddObject(cache.ObjectEntry{
		ObjectID:             testPool,
		Version:              20,
		Digest:               test.Digest("pool"),
		InitialSharedVersion: ptr(uint64(5)),
	}))
	require.NoError(t, c.AddObject(ownedEntry(testToken, 7)))

	tx := depositTransaction(t)
	_, err = tx.Build(context.Background(), opts...)
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.Calls(mockresolver.MethodGetObjects))
	assert.Equal(t, 1, resolver.Calls(mockresolver.MethodGetMoveFunction))
	token := ownedEntry(testToken, 7)
	assert.Equal(t, []transaction.CallArg{
		transaction.NewSharedArg(testPool, 5, true),
		transaction.NewImmOrOwnedArg(testToken, 7, token.Digest),
	}, tx.Data().Inputs())
}

func TestPluginSkipsOnFailedBuild(t *testing.T) {
	resolver := mockresolver.New()
	resolver.AddMoveFunction(depositFunction())
	c := cache.New()
	// Objects are missing, so resolution fails after the function is fetched
	_, err := depositTransaction(t).Build(
		context.Background(),
		transaction.WithResolver(resolver),
		transaction.WithPlugins(c.Plugin()),
	)
	require.ErrorIs(t, err, transaction.ErrObjectNotFound)
	fn, err := c.GetMoveFunction(testPackage, "pool", "deposit")
	require.NoError(t, err)
	assert.Nil(t, fn)
}
