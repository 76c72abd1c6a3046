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

package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/suitx/cache"
	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
)

// SerialExecutor runs the transactions of one signer one at a time. The gas
// coin written by each transaction pays for the next, so no coin selection
// is needed after the first.
type SerialExecutor struct {
	mu               sync.Mutex
	executor         *CachingExecutor
	signer           transaction.Signer
	defaultGasBudget uint64
	logger           *slog.Logger
	gasCoin          *types.ObjectRef
}

func NewSerialExecutor(client Client, signer transaction.Signer, opts ...Option) *SerialExecutor {
	cfg := newConfig(opts)
	if cfg.Cache == nil {
		cfg.Cache = cache.New(
			cache.WithAddress(signer.Address()),
			cache.WithLogger(cfg.Logger),
		)
	}
	return &SerialExecutor{
		executor:         NewCachingExecutor(client, WithCache(cfg.Cache), WithLogger(cfg.Logger), WithBuildOptions(cfg.BuildOptions...)),
		signer:           signer,
		defaultGasBudget: cfg.DefaultGasBudget,
		logger:           cfg.Logger,
	}
}

func (e *SerialExecutor) Cache() *cache.ObjectCache {
	return e.executor.Cache()
}

// GasCoin returns the coin the next transaction will pay with, if known
func (e *SerialExecutor) GasCoin() (types.ObjectRef, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gasCoin == nil {
		return types.ObjectRef{}, false
	}
	return *e.gasCoin, true
}

// ResetCache forgets the gas coin and cached owned objects
func (e *SerialExecutor) ResetCache() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reset()
}

func (e *SerialExecutor) reset() error {
	e.gasCoin = nil
	return e.executor.Reset()
}

// prepare fills in what the executor knows and tx leaves unset
func (e *SerialExecutor) prepare(tx *transaction.Transaction) {
	tx.SetSenderIfNotSet(e.signer.Address())
	gasData := tx.Data().GasData()
	if gasData.Budget == nil && e.defaultGasBudget > 0 {
		tx.SetGasBudget(e.defaultGasBudget)
	}
	if len(gasData.Payment) == 0 && e.gasCoin != nil {
		tx.SetGasPayment([]types.ObjectRef{*e.gasCoin})
	}
}

// ExecuteTransaction builds, signs and executes tx. Calls are serialized.
func (e *SerialExecutor) ExecuteTransaction(ctx context.Context, tx *transaction.Transaction, opts ...transaction.BuildOption) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.prepare(tx)
	ret, err := e.executor.SignAndExecuteTransaction(ctx, tx, e.signer, opts...)
	if err != nil {
		// Versions of owned objects are unknown after a failure
		if resetErr := e.reset(); resetErr != nil {
			e.logger.Warn("could not reset object cache", "error", resetErr)
		}
		return ret, err
	}
	e.gasCoin = nil
	if ret.Effects != nil {
		if ref, ok := ret.Effects.GasCoinRef(); ok {
			e.gasCoin = &ref
		}
	}
	e.logger.Debug("serial transaction executed", "digest", ret.Digest, "gasCoin", e.gasCoin)
	return ret, nil
}

// Build builds tx the way ExecuteTransaction would, without executing it
func (e *SerialExecutor) Build(ctx context.Context, tx *transaction.Transaction, opts ...transaction.BuildOption) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prepare(tx)
	txBytes, err := e.executor.BuildTransaction(ctx, tx, opts...)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	return txBytes, nil
}
