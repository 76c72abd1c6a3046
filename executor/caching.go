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

	"github.com/blinklabs-io/suitx/cache"
	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
)

// CachingExecutor builds transactions against an object cache and feeds
// the effects of executed transactions back into it
type CachingExecutor struct {
	client       Client
	cache        *cache.ObjectCache
	logger       *slog.Logger
	buildOptions []transaction.BuildOption
}

func NewCachingExecutor(client Client, opts ...Option) *CachingExecutor {
	cfg := newConfig(opts)
	if cfg.Cache == nil {
		cfg.Cache = cache.New(cache.WithLogger(cfg.Logger))
	}
	return &CachingExecutor{
		client:       client,
		cache:        cfg.Cache,
		logger:       cfg.Logger,
		buildOptions: cfg.BuildOptions,
	}
}

func (e *CachingExecutor) Cache() *cache.ObjectCache {
	return e.cache
}

// Reset forgets owned objects, whose versions may have changed elsewhere
func (e *CachingExecutor) Reset() error {
	return e.cache.ClearOwnedObjects()
}

// BuildTransaction builds tx using the client as resolver and the cache
// plugin
func (e *CachingExecutor) BuildTransaction(ctx context.Context, tx *transaction.Transaction, opts ...transaction.BuildOption) ([]byte, error) {
	buildOpts := []transaction.BuildOption{
		transaction.WithResolver(e.client),
		transaction.WithLogger(e.logger),
		transaction.WithPlugins(e.cache.Plugin()),
	}
	buildOpts = append(buildOpts, e.buildOptions...)
	buildOpts = append(buildOpts, opts...)
	return tx.Build(ctx, buildOpts...)
}

// ExecuteTransaction submits signed bytes and applies the resulting effects
// to the cache. Effects of an aborted transaction are applied too, since
// gas was still charged.
func (e *CachingExecutor) ExecuteTransaction(ctx context.Context, txBytes []byte, signatures []string) (*Result, error) {
	effects, err := e.client.ExecuteTransaction(ctx, txBytes, signatures)
	if err != nil {
		return nil, fmt.Errorf("execute transaction: %w", err)
	}
	ret := &Result{
		Digest:  transaction.DigestFromBytes(txBytes),
		Bytes:   txBytes,
		Effects: effects,
	}
	if len(signatures) > 0 {
		ret.Signature = signatures[0]
	}
	if effects == nil {
		return ret, nil
	}
	if err := e.cache.ApplyEffects(effects); err != nil {
		e.logger.Warn("could not apply effects to object cache", "digest", ret.Digest, "error", err)
		if err := e.Reset(); err != nil {
			return ret, fmt.Errorf("reset object cache: %w", err)
		}
	}
	if !effects.Status.Success {
		return ret, fmt.Errorf("%w: %s", ErrTransactionFailed, effects.Status.Error)
	}
	return ret, nil
}

// SignAndExecuteTransaction builds tx with the signer as default sender,
// signs it and executes it
func (e *CachingExecutor) SignAndExecuteTransaction(ctx context.Context, tx *transaction.Transaction, signer transaction.Signer, opts ...transaction.BuildOption) (*Result, error) {
	tx.SetSenderIfNotSet(signer.Address())
	txBytes, err := e.BuildTransaction(ctx, tx, opts...)
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignTransaction(ctx, txBytes)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	ret, err := e.ExecuteTransaction(ctx, txBytes, []string{sig})
	if ret != nil {
		e.logger.Debug("executed transaction", "digest", ret.Digest, "error", err)
	}
	return ret, err
}

// GetObject returns the cached object, or nil on a miss
func (e *CachingExecutor) GetObject(id types.ObjectID) (*cache.ObjectEntry, error) {
	return e.cache.GetObject(id)
}
