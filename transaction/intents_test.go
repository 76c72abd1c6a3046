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
	"testing"

	"github.com/blinklabs-io/suitx/internal/test/mockresolver"
	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCoinType = "0xc0ffee::usdc::USDC"

func addTestCoin(resolver *mockresolver.Resolver, id string, balance uint64) types.Coin {
	objectID := types.MustParseAddress(id)
	coin := types.Coin{
		Ref:      testRef(objectID, 1),
		CoinType: testCoinType,
		Balance:  balance,
	}
	resolver.AddCoin(testSender, coin)
	return coin
}

func TestCoinWithBalanceFromGas(t *testing.T) {
	tx := transaction.New()
	withFullGas(tx)
	coin, err := tx.CoinWithBalance("0x2::sui::SUI", 100)
	require.NoError(t, err)
	tx.TransferObjects([]transaction.Argument{coin}, tx.PureAddress(testRecipient))

	txBytes, err := tx.Build(context.Background())
	require.NoError(t, err)
	decoded, err := transaction.FromBytes(txBytes)
	require.NoError(t, err)
	assert.Equal(t, []transaction.Command{
		&transaction.SplitCoins{
			Coin:    transaction.GasCoin(),
			Amounts: []transaction.Argument{transaction.Input(1)},
		},
		&transaction.TransferObjects{
			Objects: []transaction.Argument{transaction.NestedResult(0, 0)},
			Address: transaction.Input(0),
		},
	}, decoded.Commands())
	assert.Equal(t, transaction.NewPureArg(u64Bytes(100)), decoded.Inputs()[1])
}

func TestCoinWithBalanceMergesCoins(t *testing.T) {
	resolver := mockresolver.New()
	first := addTestCoin(resolver, "0x5001", 50)
	second := addTestCoin(resolver, "0x5002", 80)
	addTestCoin(resolver, "0x5003", 1000)

	tx := transaction.New()
	withFullGas(tx)
	coin, err := tx.CoinWithBalance(testCoinType, 100)
	require.NoError(t, err)
	tx.TransferObjects([]transaction.Argument{coin}, tx.PureAddress(testRecipient))

	_, err = tx.Build(context.Background(), transaction.WithResolver(resolver))
	require.NoError(t, err)
	assert.Equal(t, []transaction.CallArg{
		transaction.NewPureArg(testRecipient.Bytes()),
		transaction.NewImmOrOwnedArg(first.Ref.ObjectID, first.Ref.Version, first.Ref.Digest),
		transaction.NewImmOrOwnedArg(second.Ref.ObjectID, second.Ref.Version, second.Ref.Digest),
		transaction.NewPureArg(u64Bytes(100)),
	}, tx.Data().Inputs())
	assert.Equal(t, []transaction.Command{
		&transaction.MergeCoins{
			Destination: transaction.Input(1),
			Sources:     []transaction.Argument{transaction.Input(2)},
		},
		&transaction.SplitCoins{
			Coin:    transaction.Input(1),
			Amounts: []transaction.Argument{transaction.Input(3)},
		},
		&transaction.TransferObjects{
			Objects: []transaction.Argument{transaction.NestedResult(1, 0)},
			Address: transaction.Input(0),
		},
	}, tx.Data().Commands())
	assert.Equal(t, 1, resolver.Calls(mockresolver.MethodGetCoins))
}

func TestCoinWithBalanceSharesCoinsAcrossIntents(t *testing.T) {
	resolver := mockresolver.New()
	addTestCoin(resolver, "0x5001", 500)

	tx := transaction.New()
	withFullGas(tx)
	a, err := tx.CoinWithBalance(testCoinType, 100)
	require.NoError(t, err)
	b, err := tx.CoinWithBalance(testCoinType, 200)
	require.NoError(t, err)
	tx.TransferObjects([]transaction.Argument{a, b}, tx.PureAddress(testRecipient))

	_, err = tx.Build(context.Background(), transaction.WithResolver(resolver))
	require.NoError(t, err)
	cmds := tx.Data().Commands()
	require.Len(t, cmds, 3)
	first := cmds[0].(*transaction.SplitCoins)
	second := cmds[1].(*transaction.SplitCoins)
	assert.Equal(t, first.Coin, second.Coin)
	transfer := cmds[2].(*transaction.TransferObjects)
	assert.Equal(
		t,
		[]transaction.Argument{transaction.NestedResult(0, 0), transaction.NestedResult(1, 0)},
		transfer.Objects,
	)
}

func TestCoinWithBalanceZero(t *testing.T) {
	tx := transaction.New()
	withFullGas(tx)
	coin, err := tx.CoinWithBalance(testCoinType, 0)
	require.NoError(t, err)
	tx.TransferObjects([]transaction.Argument{coin}, tx.PureAddress(testRecipient))

	// No coins are needed, so no resolver either
	_, err = tx.Build(context.Background())
	require.NoError(t, err)
	cmds := tx.Data().Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, &transaction.MoveCall{
		Package:       types.SuiFrameworkAddress,
		Module:        "coin",
		Function:      "zero",
		TypeArguments: []types.TypeTag{types.MustParseTypeTag(testCoinType)},
	}, cmds[0])
	transfer := cmds[1].(*transaction.TransferObjects)
	assert.Equal(t, []transaction.Argument{transaction.Result(0)}, transfer.Objects)
}

func TestCoinWithBalanceErrors(t *testing.T) {
	t.Run("insufficient balance", func(t *testing.T) {
		resolver := mockresolver.New()
		addTestCoin(resolver, "0x5001", 50)
		tx := transaction.New()
		withFullGas(tx)
		_, err := tx.CoinWithBalance(testCoinType, 100)
		require.NoError(t, err)
		_, err = tx.Build(context.Background(), transaction.WithResolver(resolver))
		require.ErrorIs(t, err, transaction.ErrResolution)
		assert.ErrorIs(t, err, transaction.ErrInsufficientBalance)
	})
	t.Run("missing sender", func(t *testing.T) {
		tx := transaction.New()
		_, err := tx.CoinWithBalance(testCoinType, 100)
		require.NoError(t, err)
		_, err = tx.BuildKind(context.Background())
		assert.ErrorIs(t, err, transaction.ErrMissingSender)
	})
	t.Run("bad coin type", func(t *testing.T) {
		_, err := transaction.New().CoinWithBalance("0x2::coin::<", 1)
		assert.ErrorIs(t, err, types.ErrInvalidTypeTag)
	})
}

func TestIntentResolvers(t *testing.T) {
	t.Run("unknown intent", func(t *testing.T) {
		tx := transaction.New()
		withFullGas(tx)
		tx.AddIntent("Unknown", nil, nil)
		_, err := tx.Build(context.Background())
		require.ErrorIs(t, err, transaction.ErrValidation)
		assert.ErrorIs(t, err, transaction.ErrUnresolvedIntent)
	})
	t.Run("resolver leaves intent", func(t *testing.T) {
		tx := transaction.New()
		withFullGas(tx)
		tx.AddIntent("Lazy", nil, nil)
		tx.AddIntentResolver("Lazy", func(ctx context.Context, bc *transaction.BuildContext, next func() error) error {
			return next()
		})
		_, err := tx.Build(context.Background())
		assert.ErrorIs(t, err, transaction.ErrUnresolvedIntent)
	})
	t.Run("global resolver", func(t *testing.T) {
		transaction.RegisterGlobalIntentResolver("TestSplit", func(ctx context.Context, bc *transaction.BuildContext, next func() error) error {
			for i, cmd := range bc.Data.Commands() {
				intent, ok := cmd.(*transaction.Intent)
				if !ok || intent.Name != "TestSplit" {
					continue
				}
				amount := bc.Data.AddInput(transaction.UnresolvedPureArg{Value: intent.Data["amount"]})
				if err := bc.Data.ReplaceCommand(i, &transaction.SplitCoins{
					Coin:    transaction.GasCoin(),
					Amounts: []transaction.Argument{amount},
				}); err != nil {
					return err
				}
			}
			return next()
		})
		t.Cleanup(func() { transaction.UnregisterGlobalIntentResolver("TestSplit") })

		tx := transaction.New()
		withFullGas(tx)
		coin := tx.AddIntent("TestSplit", nil, map[string]any{"amount": 7})
		tx.TransferObjects([]transaction.Argument{coin}, tx.PureAddress(testRecipient))
		_, err := tx.Build(context.Background())
		require.NoError(t, err)
		assert.Equal(t, transaction.NewPureArg(u64Bytes(7)), tx.Data().Inputs()[1])
	})
}
