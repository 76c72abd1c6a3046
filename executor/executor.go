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

// Package executor builds, signs and submits transactions while keeping an
// object cache in step with their effects.
package executor

import (
	"context"
	"errors"

	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
)

// ErrTransactionFailed is returned with the result of a transaction that
// executed but aborted
var ErrTransactionFailed = errors.New("transaction execution failed")

// Client resolves chain data and submits signed transactions
type Client interface {
	transaction.DataResolver
	ExecuteTransaction(ctx context.Context, txBytes []byte, signatures []string) (*types.TransactionEffects, error)
}

// Result describes one submitted transaction
type Result struct {
	Digest    types.Digest
	Bytes     []byte
	Signature string
	Effects   *types.TransactionEffects
}
