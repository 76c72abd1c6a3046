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

// Package mockresolver provides an in-memory chain for tests. It resolves
// objects, coins and Move functions, answers dry runs and executes
// transactions by bumping the versions of the objects they use.
package mockresolver

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
)

// Method names for Calls
const (
	MethodGetObjects           = "GetObjects"
	MethodGetReferenceGasPrice = "GetReferenceGasPrice"
	MethodGetGasCoins          = "GetGasCoins"
	MethodGetCoins             = "GetCoins"
	MethodGetMoveFunction      = "GetMoveFunction"
	MethodGetProtocolLimit     = "GetProtocolLimit"
	MethodDryRun               = "DryRun"
	MethodExecuteTransaction   = "ExecuteTransaction"
)

const DefaultGasPrice = 1000

var ErrExecutionFailed = errors.New("mock execution failed")

// Resolver is safe for concurrent use
type Resolver struct {
	mu         sync.Mutex
	gasPrice   uint64
	objects    map[types.ObjectID]types.ObjectInfo
	coins      map[types.Address][]types.Coin
	functions  map[string]*types.MoveFunction
	limits     map[string]uint64
	gasUsed    types.GasCostSummary
	dryRunErr  string
	executeErr error
	lamport    uint64
	calls      map[string]int
	objectIDs  [][]types.ObjectID
	executed   [][]byte
}

func New() *Resolver {
	return &Resolver{
		gasPrice:  DefaultGasPrice,
		objects:   make(map[types.ObjectID]types.ObjectInfo),
		coins:     make(map[types.Address][]types.Coin),
		functions: make(map[string]*types.MoveFunction),
		limits:    make(map[string]uint64),
		gasUsed: types.GasCostSummary{
			ComputationCost: 1_000_000,
			StorageCost:     2_000_000,
			StorageRebate:   500_000,
		},
		lamport: 100,
		calls:   make(map[string]int),
	}
}

func (r *Resolver) record(method string) {
	r.calls[method]++
}

// Calls returns how often method was called
func (r *Resolver) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// RequestedObjects returns the ids passed to each GetObjects call
func (r *Resolver) RequestedObjects() [][]types.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]types.ObjectID{}, r.objectIDs...)
}

// Executed returns the transaction bytes passed to ExecuteTransaction
func (r *Resolver) Executed() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte{}, r.executed...)
}

func (r *Resolver) SetGasPrice(price uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gasPrice = price
}

// SetGasUsed sets the cost reported by dry runs and executions
func (r *Resolver) SetGasUsed(summary types.GasCostSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gasUsed = summary
}

// SetDryRunError makes dry runs report a failed execution with msg
func (r *Resolver) SetDryRunError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dryRunErr = msg
}

// SetExecuteError makes ExecuteTransaction fail with err
func (r *Resolver) SetExecuteError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executeErr = err
}

func (r *Resolver) SetLimit(name string, value uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits[name] = value
}

func (r *Resolver) AddObject(obj types.ObjectInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[obj.ObjectID] = obj
}

// Object returns the current state of an object
func (r *Resolver) Object(id types.ObjectID) (types.ObjectInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[id]
	return obj, ok
}

// AddCoin adds a coin owned by owner. It is also registered as an object.
func (r *Resolver) AddCoin(owner types.Address, coin types.Coin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coins[owner] = append(r.coins[owner], coin)
	r.objects[coin.Ref.ObjectID] = types.ObjectInfo{
		ObjectID: coin.Ref.ObjectID,
		Version:  coin.Ref.Version,
		Digest:   coin.Ref.Digest,
		Owner:    types.AddressOwner{Address: owner},
		Type:     fmt.Sprintf("0x2::coin::Coin<%s>", coin.CoinType),
	}
}

// AddGasCoin adds a SUI coin at version 1 and returns it
func (r *Resolver) AddGasCoin(owner types.Address, id types.ObjectID, balance uint64) types.Coin {
	coin := types.Coin{
		Ref: types.ObjectRef{
			ObjectID: id,
			Version:  1,
			Digest:   objectDigest(id, 1),
		},
		CoinType: "0x2::sui::SUI",
		Balance:  balance,
	}
	r.AddCoin(owner, coin)
	return coin
}

// AddOwnedObject adds an object owned by owner at version 1 and returns it
func (r *Resolver) AddOwnedObject(owner types.Address, id types.ObjectID, typ string) types.ObjectInfo {
	obj := types.ObjectInfo{
		ObjectID: id,
		Version:  1,
		Digest:   objectDigest(id, 1),
		Owner:    types.AddressOwner{Address: owner},
		Type:     typ,
	}
	r.AddObject(obj)
	return obj
}

// AddSharedObject adds a shared object and returns it
func (r *Resolver) AddSharedObject(id types.ObjectID, initialSharedVersion uint64, typ string) types.ObjectInfo {
	obj := types.ObjectInfo{
		ObjectID: id,
		Version:  initialSharedVersion + 10,
		Digest:   objectDigest(id, initialSharedVersion+10),
		Owner:    types.SharedOwner{InitialSharedVersion: initialSharedVersion},
		Type:     typ,
	}
	r.AddObject(obj)
	return obj
}

func (r *Resolver) AddMoveFunction(fn types.MoveFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[fn.Key()] = &fn
}

func (r *Resolver) GetObjects(ctx context.Context, ids []types.ObjectID) ([]types.ObjectInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(MethodGetObjects)
	r.objectIDs = append(r.objectIDs, append([]types.ObjectID{}, ids...))
	var ret []types.ObjectInfo
	for _, id := range ids {
		if obj, ok := r.objects[id]; ok {
			ret = append(ret, obj)
		}
	}
	return ret, nil
}

func (r *Resolver) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(MethodGetReferenceGasPrice)
	return r.gasPrice, nil
}

func (r *Resolver) GetGasCoins(ctx context.Context, owner types.Address) ([]types.Coin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(MethodGetGasCoins)
	return r.coinsOf(owner, "0x2::sui::SUI"), nil
}

func (r *Resolver) GetCoins(ctx context.Context, owner types.Address, coinType string) ([]types.Coin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(MethodGetCoins)
	return r.coinsOf(owner, coinType), nil
}

func (r *Resolver) coinsOf(owner types.Address, coinType string) []types.Coin {
	normalized, err := types.NormalizeTypeString(coinType)
	if err != nil {
		return nil
	}
	var ret []types.Coin
	for _, coin := range r.coins[owner] {
		tmp, err := types.NormalizeTypeString(coin.CoinType)
		if err != nil || tmp != normalized {
			continue
		}
		// Coins follow their object's current version
		if obj, ok := r.objects[coin.Ref.ObjectID]; ok {
			coin.Ref = obj.Ref()
		}
		ret = append(ret, coin)
	}
	return ret
}

func (r *Resolver) GetMoveFunction(ctx context.Context, pkg types.Address, module string, function string) (*types.MoveFunction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(MethodGetMoveFunction)
	fn, ok := r.functions[types.MoveFunctionKey(pkg, module, function)]
	if !ok {
		return nil, nil
	}
	ret := *fn
	ret.Parameters = append([]types.OpenMoveTypeSignature{}, fn.Parameters...)
	return &ret, nil
}

func (r *Resolver) GetProtocolLimit(ctx context.Context, name string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(MethodGetProtocolLimit)
	if v, ok := r.limits[name]; ok {
		return v, nil
	}
	return 0, transaction.ErrUnknownLimit
}

func (r *Resolver) DryRun(ctx context.Context, txBytes []byte) (*types.TransactionEffects, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(MethodDryRun)
	if _, err := transaction.FromBytes(txBytes); err != nil {
		return nil, err
	}
	return &types.TransactionEffects{
		TransactionDigest: transaction.DigestFromBytes(txBytes),
		Status: types.ExecutionStatus{
			Success: r.dryRunErr == "",
			Error:   r.dryRunErr,
		},
		GasUsed: r.gasUsed,
	}, nil
}

// ExecuteTransaction writes every owned input and gas payment object at a
// new lamport version
func (r *Resolver) ExecuteTransaction(ctx context.Context, txBytes []byte, signatures []string) (*types.TransactionEffects, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(MethodExecuteTransaction)
	if r.executeErr != nil {
		return nil, r.executeErr
	}
	if len(signatures) == 0 {
		return nil, fmt.Errorf("%w: no signatures", ErrExecutionFailed)
	}
	data, err := transaction.FromBytes(txBytes)
	if err != nil {
		return nil, err
	}
	r.executed = append(r.executed, append([]byte{}, txBytes...))
	r.lamport++
	effects := &types.TransactionEffects{
		TransactionDigest: transaction.DigestFromBytes(txBytes),
		Status:            types.ExecutionStatus{Success: true},
		GasUsed:           r.gasUsed,
		LamportVersion:    r.lamport,
	}
	var written []types.ObjectID
	for _, ref := range data.GasData().Payment {
		written = append(written, ref.ObjectID)
	}
	if len(written) > 0 {
		gasObject := written[0]
		effects.GasObject = &gasObject
	}
	for _, arg := range data.Inputs() {
		obj, ok := arg.(transaction.ObjectCallArg)
		if !ok {
			continue
		}
		if _, ok := obj.Object.(transaction.ReceivingObject); ok {
			continue
		}
		written = append(written, obj.Object.ID())
	}
	for _, id := range written {
		obj, ok := r.objects[id]
		if !ok {
			continue
		}
		if _, ok := obj.Owner.(types.ImmutableOwner); ok {
			continue
		}
		obj.Version = r.lamport
		obj.Digest = objectDigest(id, r.lamport)
		r.objects[id] = obj
		effects.ChangedObjects = append(effects.ChangedObjects, types.ChangedObject{
			ObjectID: id,
			Output: types.ObjectOutputState{
				Kind:   types.OutputObjectWrite,
				Digest: obj.Digest,
				Owner:  obj.Owner,
			},
		})
	}
	return effects, nil
}

func objectDigest(id types.ObjectID, version uint64) types.Digest {
	buf := make([]byte, 0, types.AddressLength+8)
	buf = append(buf, id.Bytes()...)
	buf = binary.LittleEndian.AppendUint64(buf, version)
	return types.HashTypedData("ObjectDigest", buf)
}
