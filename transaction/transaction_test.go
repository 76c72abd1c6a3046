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

package transaction_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	data := resolvedData()
	txBytes, err := data.Bytes(0)
	require.NoError(t, err)

	t.Run("base64", func(t *testing.T) {
		tx, err := transaction.From(base64.StdEncoding.EncodeToString(txBytes))
		require.NoError(t, err)
		rebuilt, err := tx.Build(context.Background())
		require.NoError(t, err)
		assert.Equal(t, txBytes, rebuilt)
	})
	t.Run("json", func(t *testing.T) {
		serialized, err := transaction.FromData(data.Snapshot()).Serialize()
		require.NoError(t, err)
		tx, err := transaction.From("  " + string(serialized))
		require.NoError(t, err)
		rebuilt, err := tx.Build(context.Background())
		require.NoError(t, err)
		assert.Equal(t, txBytes, rebuilt)
	})
	t.Run("invalid base64", func(t *testing.T) {
		_, err := transaction.From("not base64!")
		assert.Error(t, err)
	})
}

func TestObjectInputsAreShared(t *testing.T) {
	tx := transaction.New()
	first := tx.Object(testCoinID)
	second := tx.Object(testCoinID)
	assert.Equal(t, first, second)
	assert.Len(t, tx.Data().Inputs(), 1)

	ref := tx.ObjectRef(testRef(testGasCoinID, 3))
	assert.Equal(t, transaction.Input(1), ref)
	assert.Equal(t, transaction.Input(2), tx.Pure(uint64(1)))
	assert.Equal(t, transaction.Input(3), tx.Pure(uint64(1)))
}

func TestSharedObjectMutabilityUpgrade(t *testing.T) {
	tx := transaction.New()
	first := tx.SharedObjectRef(testPoolID, 5, false)
	second := tx.SharedObjectRef(testPoolID, 5, true)
	third := tx.SharedObjectRef(testPoolID, 5, false)
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	require.Len(t, tx.Data().Inputs(), 1)
	assert.Equal(t, transaction.NewSharedArg(testPoolID, 5, true), tx.Data().Inputs()[0])
}

func TestExplicitRefMergesIntoUnresolvedObject(t *testing.T) {
	tx := transaction.New()
	pool := tx.Object(testPoolID)
	tx.SharedObjectRef(testPoolID, 5, true)
	tx.SharedObjectRef(testPoolID, 5, false)
	version := uint64(5)
	mutable := true
	assert.Equal(
		t,
		[]transaction.CallArg{transaction.UnresolvedObjectArg{
			ObjectID:             testPoolID,
			InitialSharedVersion: &version,
			Mutable:              &mutable,
		}},
		tx.Data().Inputs(),
	)

	ref := types.ObjectRef{ObjectID: testCoinID, Version: 3, Digest: testDigest("coin")}
	coin := tx.Object(testCoinID)
	assert.Equal(t, coin, tx.ObjectRef(ref))
	assert.NotEqual(t, pool, coin)
	assert.Equal(
		t,
		transaction.UnresolvedObjectArg{ObjectID: testCoinID, Version: &ref.Version, Digest: &ref.Digest},
		tx.Data().Inputs()[1],
	)
}

func TestTooManyInputs(t *testing.T) {
	tx := transaction.New()
	withFullGas(tx)
	for range transaction.MaxAddressable + 1 {
		tx.PureBytes([]byte{0x01})
	}
	_, err := tx.Build(context.Background())
	require.ErrorIs(t, err, transaction.ErrValidation)
	assert.ErrorIs(t, err, transaction.ErrTooManyInputs)

	_, err = tx.Data().Bytes(0)
	require.ErrorIs(t, err, transaction.ErrTooManyInputs)
	var encErr *bcs.EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestMoveCallArguments(t *testing.T) {
	tx := transaction.New()
	pool := tx.Object(testPoolID)
	result, err := tx.MoveCall(
		"0xc0ffee::pool::deposit",
		[]string{"0x2::sui::SUI"},
		pool,
		tx.PureU64(10),
	)
	require.NoError(t, err)
	assert.Equal(t, transaction.Result(0), result)
	call := tx.Data().Commands()[0].(*transaction.MoveCall)
	assert.Equal(t, testPackage, call.Package)
	assert.Equal(t, "pool", call.Module)
	assert.Equal(t, "deposit", call.Function)
	assert.Equal(t, []types.TypeTag{types.MustParseTypeTag("0x2::sui::SUI")}, call.TypeArguments)
	assert.Equal(t, []transaction.Argument{transaction.Input(0), transaction.Input(1)}, call.Arguments)
}

func TestMoveCallErrors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		typeArgs []string
		err      error
	}{
		{name: "missing function", target: "0x2::coin", err: transaction.ErrInvalidArgument},
		{name: "empty module", target: "0x2::::zero", err: transaction.ErrInvalidArgument},
		{name: "bad package", target: "0xzz::coin::zero", err: transaction.ErrInvalidArgument},
		{
			name:     "bad type argument",
			target:   "0x2::coin::zero",
			typeArgs: []string{"vector<"},
			err:      types.ErrInvalidTypeTag,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tx := transaction.New()
			_, err := tx.MoveCall(test.target, test.typeArgs)
			assert.ErrorIs(t, err, test.err)
			assert.Empty(t, tx.Data().Commands())
		})
	}
}

func TestPureHelpers(t *testing.T) {
	tx := transaction.New()
	tx.PureBool(true)
	tx.PureU8(7)
	tx.PureU16(0x0102)
	tx.PureU32(1)
	tx.PureU64(100)
	tx.PureString("sui")
	tx.PureAddress(testRecipient)
	_, err := tx.PureU128(uint256.NewInt(5))
	require.NoError(t, err)
	tx.PureU256(uint256.NewInt(1))
	assert.Equal(t, []transaction.CallArg{
		transaction.NewPureArg([]byte{1}),
		transaction.NewPureArg([]byte{7}),
		transaction.NewPureArg([]byte{2, 1}),
		transaction.NewPureArg([]byte{1, 0, 0, 0}),
		transaction.NewPureArg(u64Bytes(100)),
		transaction.NewPureArg([]byte{3, 's', 'u', 'i'}),
		transaction.NewPureArg(testRecipient.Bytes()),
		transaction.NewPureArg(append([]byte{5}, make([]byte, 15)...)),
		transaction.NewPureArg(append([]byte{1}, make([]byte, 31)...)),
	}, tx.Data().Inputs())

	overflow := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	_, err = tx.PureU128(overflow)
	assert.ErrorIs(t, err, transaction.ErrInvalidArgument)
	assert.Len(t, tx.Data().Inputs(), 9)
}

func TestSetGasPaymentCopies(t *testing.T) {
	tx := transaction.New()
	payment := []types.ObjectRef{testRef(testGasCoinID, 1)}
	tx.SetGasPayment(payment)
	payment[0].Version = 99
	assert.Equal(t, uint64(1), tx.Data().GasData().Payment[0].Version)
}

func TestGetDigestMatchesBytes(t *testing.T) {
	tx := transaction.FromData(resolvedData())
	txBytes, err := tx.Build(context.Background())
	require.NoError(t, err)
	digest, err := tx.GetDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, transaction.DigestFromBytes(txBytes), digest)
}
