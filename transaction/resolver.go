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
	"errors"

	"github.com/blinklabs-io/suitx/types"
)

// ErrUnknownLimit is returned by DataResolver.GetProtocolLimit for limits it
// does not know, so the built-in default is used instead
var ErrUnknownLimit = errors.New("unknown protocol limit")

// DataResolver supplies chain data to the build pipeline. Implementations
// own retries and timeouts.
type DataResolver interface {
	// GetObjects returns the latest known state of the requested objects.
	// Objects that do not exist are left out of the result.
	GetObjects(ctx context.Context, ids []types.ObjectID) ([]types.ObjectInfo, error)
	GetReferenceGasPrice(ctx context.Context) (uint64, error)
	// GetGasCoins returns the SUI coins of owner in preferred order
	GetGasCoins(ctx context.Context, owner types.Address) ([]types.Coin, error)
	GetMoveFunction(ctx context.Context, pkg types.Address, module string, function string) (*types.MoveFunction, error)
	GetProtocolLimit(ctx context.Context, name string) (uint64, error)
	DryRun(ctx context.Context, txBytes []byte) (*types.TransactionEffects, error)
}

// CoinResolver is implemented by resolvers that can list coins of any type.
// It is needed for intents that draw from non-SUI coins.
type CoinResolver interface {
	GetCoins(ctx context.Context, owner types.Address, coinType string) ([]types.Coin, error)
}
