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

package transaction

import (
	"context"
	"fmt"
	"slices"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/types"
	"golang.org/x/sync/errgroup"
)

const (
	// CoinWithBalanceIntent names the intent that produces a coin of a
	// given type and balance
	CoinWithBalanceIntent = "CoinWithBalance"
	// GasCoinType in CoinWithBalance data draws the balance from the gas coin
	GasCoinType = "gas"
)

var suiCoinType = types.MustParseTypeTag("0x2::sui::SUI").String()

// CoinWithBalance adds an intent that resolves to a coin of coinType holding
// exactly balance. SUI is split from the gas coin.
func (t *Transaction) CoinWithBalance(coinType string, balance uint64) (Argument, error) {
	typ := GasCoinType
	if coinType != GasCoinType {
		normalized, err := types.NormalizeTypeString(coinType)
		if err != nil {
			return Argument{}, err
		}
		if normalized != suiCoinType {
			typ = normalized
		}
	}
	t.AddIntentResolver(CoinWithBalanceIntent, resolveCoinWithBalance)
	return t.AddIntent(
		CoinWithBalanceIntent,
		nil,
		map[string]any{
			"type":    typ,
			"balance": balance,
		},
	), nil
}

func coinWithBalanceData(intent *Intent) (string, uint64, error) {
	typ, ok := intent.Data["type"].(string)
	if !ok {
		return "", 0, fmt.Errorf("%w: coin intent without type", ErrInvalidArgument)
	}
	balance, err := toUint256(intent.Data["balance"])
	if err != nil {
		return "", 0, fmt.Errorf("%w: coin intent balance: %v", ErrInvalidArgument, err)
	}
	if !balance.IsUint64() {
		return "", 0, fmt.Errorf("%w: coin intent balance %s overflows u64", ErrInvalidArgument, balance.Dec())
	}
	return typ, balance.Uint64(), nil
}

// selectCoins picks coins in order, skipping used ones, until their balance
// reaches amount
func selectCoins(coins []types.Coin, used map[types.ObjectID]struct{}, amount uint64) ([]types.Coin, bool) {
	var ret []types.Coin
	var total uint64
	for _, coin := range coins {
		if total >= amount {
			break
		}
		if _, ok := used[coin.Ref.ObjectID]; ok {
			continue
		}
		ret = append(ret, coin)
		total += coin.Balance
	}
	return ret, total >= amount
}

func resolveCoinWithBalance(ctx context.Context, bc *BuildContext, next func() error) error {
	data := bc.Data
	sender, ok := data.Sender()
	if !ok {
		return newValidationError(-1, -1, fmt.Errorf("%w: needed for %s", ErrMissingSender, CoinWithBalanceIntent))
	}
	totals := make(map[string]uint64)
	var coinTypes []string
	for cmdIndex, cmd := range data.commands {
		intent, ok := cmd.(*Intent)
		if !ok || intent.Name != CoinWithBalanceIntent {
			continue
		}
		typ, balance, err := coinWithBalanceData(intent)
		if err != nil {
			return newValidationError(-1, cmdIndex, err)
		}
		if typ != GasCoinType && balance > 0 && !slices.Contains(coinTypes, typ) {
			coinTypes = append(coinTypes, typ)
		}
		totals[typ] += balance
	}
	coinsByType := make(map[string][]types.Coin, len(coinTypes))
	if len(coinTypes) > 0 {
		resolver, err := bc.Resolver()
		if err != nil {
			return newResolutionError(-1, -1, err)
		}
		coinResolver, ok := resolver.(CoinResolver)
		if !ok {
			return newResolutionError(-1, -1, fmt.Errorf("%w: resolver cannot list coins", ErrNoResolver))
		}
		used := inputObjectIDs(data)
		results := make([][]types.Coin, len(coinTypes))
		g, gctx := errgroup.WithContext(ctx)
		for i, coinType := range coinTypes {
			g.Go(func() error {
				coins, err := coinResolver.GetCoins(gctx, sender, coinType)
				if err != nil {
					return fmt.Errorf("get coins %s: %w", coinType, err)
				}
				selected, ok := selectCoins(coins, used, totals[coinType])
				if !ok {
					return newResolutionError(-1, -1, fmt.Errorf(
						"%w: %s needs %d",
						ErrInsufficientBalance,
						coinType,
						totals[coinType],
					))
				}
				results[i] = selected
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for i, coinType := range coinTypes {
			coinsByType[coinType] = results[i]
		}
	}
	merged := map[string]Argument{GasCoinType: GasCoin()}
	for index := 0; index < len(data.commands); index++ {
		intent, ok := data.commands[index].(*Intent)
		if !ok || intent.Name != CoinWithBalanceIntent {
			continue
		}
		typ, balance, _ := coinWithBalanceData(intent)
		if balance == 0 && typ != GasCoinType {
			tag, err := types.ParseTypeTag(typ)
			if err != nil {
				return newValidationError(-1, index, err)
			}
			if err := data.ReplaceCommand(index, &MoveCall{
				Package:       types.SuiFrameworkAddress,
				Module:        "coin",
				Function:      "zero",
				TypeArguments: []types.TypeTag{tag},
			}); err != nil {
				return err
			}
			continue
		}
		var cmds []Command
		if _, ok := merged[typ]; !ok {
			var refs []Argument
			for _, coin := range coinsByType[typ] {
				refs = append(refs, data.AddInput(NewImmOrOwnedArg(
					coin.Ref.ObjectID,
					coin.Ref.Version,
					coin.Ref.Digest,
				)))
			}
			if len(refs) > 1 {
				cmds = append(cmds, &MergeCoins{Destination: refs[0], Sources: refs[1:]})
			}
			merged[typ] = refs[0]
		}
		amount := bcs.NewEncoder()
		amount.WriteU64(balance)
		cmds = append(cmds, &SplitCoins{
			Coin:    merged[typ],
			Amounts: []Argument{data.AddInput(PureArg{Bytes: amount.Bytes()})},
		})
		split := uint16(index + len(cmds) - 1)
		if err := data.ReplaceCommandWithResult(index, cmds, NestedResult(split, 0)); err != nil {
			return err
		}
		index += len(cmds) - 1
	}
	return next()
}
