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
	"sort"

	"github.com/blinklabs-io/suitx/types"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

const (
	// objectFetchChunkSize is the number of ids per GetObjects call
	objectFetchChunkSize = 50
	// gasSafeOverhead is added to the dry run computation cost, in units of the gas price
	gasSafeOverhead = 1000
)

// Stage names
const (
	StageGasPrice        = "gasPrice"
	StageGasBudget       = "gasBudget"
	StageGasPayment      = "gasPayment"
	StageResolveObjects  = "resolveObjects"
	StageNormalizeInputs = "normalizeInputs"
	StageValidate        = "validate"
	StageSerialize       = "serialize"
)

// corePipeline returns the build stages in their fixed order
func corePipeline() []Stage {
	return []Stage{
		NewStageFunc(StageGasPrice, setGasPrice),
		NewStageFunc(StageGasBudget, setGasBudget),
		NewStageFunc(StageGasPayment, setGasPayment),
		NewStageFunc(StageResolveObjects, resolveObjectReferences),
		NewStageFunc(StageNormalizeInputs, normalizeInputs),
		NewStageFunc(StageValidate, validate),
		NewStageFunc(StageSerialize, serialize),
	}
}

func runCorePipeline(ctx context.Context, bc *BuildContext) error {
	for _, stage := range corePipeline() {
		if err := bc.runStage(ctx, stage); err != nil {
			return err
		}
	}
	return nil
}

// errorOrNil unwraps single errors so callers see the typed error directly
func errorOrNil(merr *multierror.Error) error {
	if merr == nil || len(merr.Errors) == 0 {
		return nil
	}
	if len(merr.Errors) == 1 {
		return merr.Errors[0]
	}
	return merr
}

func setGasPrice(ctx context.Context, bc *BuildContext) error {
	if bc.Config.OnlyTransactionKind || bc.Data.gasData.Price != nil {
		return nil
	}
	resolver, err := bc.Resolver()
	if err != nil {
		return newResolutionError(-1, -1, fmt.Errorf("gas price: %w", err))
	}
	price, err := resolver.GetReferenceGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("get reference gas price: %w", err)
	}
	bc.Data.SetGasPrice(price)
	return nil
}

func checkGasPaymentLimit(ctx context.Context, bc *BuildContext) error {
	count := len(bc.Data.gasData.Payment)
	if count == 0 {
		return nil
	}
	maxObjects, err := bc.Limit(ctx, LimitMaxGasObjects)
	if err != nil {
		return err
	}
	if uint64(count) > maxObjects {
		return LimitExceededError{
			Limit:  LimitMaxGasObjects,
			Max:    int(maxObjects),
			Actual: count,
			Input:  -1,
			Err:    ErrTooManyGasObjects,
		}
	}
	return nil
}

func setGasBudget(ctx context.Context, bc *BuildContext) error {
	if bc.Config.OnlyTransactionKind || bc.Data.gasData.Budget != nil {
		return nil
	}
	if err := checkGasPaymentLimit(ctx, bc); err != nil {
		return err
	}
	resolver, err := bc.Resolver()
	if err != nil {
		return newResolutionError(-1, -1, fmt.Errorf("gas budget: %w", err))
	}
	// The dry run needs fully resolved inputs. These stages run again later
	// and find nothing left to do.
	for _, fn := range []func(context.Context, *BuildContext) error{
		resolveObjectReferences,
		normalizeInputs,
		validate,
	} {
		if err := fn(ctx, bc); err != nil {
			return err
		}
	}
	maxTxGas, err := bc.Limit(ctx, LimitMaxTxGas)
	if err != nil {
		return err
	}
	maxSize, err := bc.Limit(ctx, LimitMaxTxSizeBytes)
	if err != nil {
		return err
	}
	dryRun := bc.Data.Snapshot()
	dryRun.SetGasBudget(maxTxGas)
	dryRun.gasData.Payment = nil
	txBytes, err := dryRun.Bytes(int(maxSize))
	if err != nil {
		return err
	}
	effects, err := resolver.DryRun(ctx, txBytes)
	if err != nil {
		return fmt.Errorf("dry run: %w", err)
	}
	if effects == nil || !effects.Status.Success {
		msg := "no effects"
		if effects != nil {
			msg = effects.Status.Error
		}
		return newResolutionError(-1, -1, fmt.Errorf("%w: %s", ErrDryRunFailed, msg))
	}
	price := *bc.Data.gasData.Price
	gasUsed := effects.GasUsed
	budget := gasUsed.ComputationCost + gasSafeOverhead*price
	if gasUsed.StorageCost > gasUsed.StorageRebate {
		budget += gasUsed.StorageCost - gasUsed.StorageRebate
	}
	bc.Logger().Debug(
		"estimated gas budget",
		"budget", budget,
		"computation", gasUsed.ComputationCost,
		"storage", gasUsed.StorageCost,
		"rebate", gasUsed.StorageRebate,
	)
	bc.Data.SetGasBudget(budget)
	return nil
}

// inputObjectIDs returns the ids of every object input
func inputObjectIDs(data *TransactionData) map[types.ObjectID]struct{} {
	ret := make(map[types.ObjectID]struct{})
	for _, arg := range data.inputs {
		if id, ok := CallArgObjectID(arg); ok {
			ret[id] = struct{}{}
		}
	}
	return ret
}

func setGasPayment(ctx context.Context, bc *BuildContext) error {
	if bc.Config.OnlyTransactionKind {
		return nil
	}
	if len(bc.Data.gasData.Payment) > 0 {
		return checkGasPaymentLimit(ctx, bc)
	}
	owner, ok := bc.Data.gasOwner()
	if !ok {
		return newValidationError(-1, -1, ErrMissingSender)
	}
	resolver, err := bc.Resolver()
	if err != nil {
		return newResolutionError(-1, -1, fmt.Errorf("gas payment: %w", err))
	}
	maxObjects, err := bc.Limit(ctx, LimitMaxGasObjects)
	if err != nil {
		return err
	}
	var budget uint64
	if bc.Data.gasData.Budget != nil {
		budget = *bc.Data.gasData.Budget
	}
	coins, err := resolver.GetGasCoins(ctx, owner)
	if err != nil {
		return fmt.Errorf("get gas coins: %w", err)
	}
	used := inputObjectIDs(bc.Data)
	var selected []types.ObjectRef
	var total uint64
	for _, coin := range coins {
		if _, ok := used[coin.Ref.ObjectID]; ok {
			continue
		}
		if uint64(len(selected)) == maxObjects {
			return LimitExceededError{
				Limit:  LimitMaxGasObjects,
				Max:    int(maxObjects),
				Actual: len(selected) + 1,
				Input:  -1,
				Err:    ErrTooManyGasObjects,
			}
		}
		selected = append(selected, coin.Ref)
		total += coin.Balance
		if total >= budget {
			break
		}
	}
	if len(selected) == 0 {
		return newResolutionError(-1, -1, fmt.Errorf("%w: owner %s", ErrNoGasCoins, owner))
	}
	if total < budget {
		return newResolutionError(
			-1,
			-1,
			fmt.Errorf("%w: balance %d, budget %d", ErrInsufficientGas, total, budget),
		)
	}
	bc.Data.SetGasPayment(selected)
	return nil
}

// unresolvedInput reports whether arg references an input still awaiting resolution
func unresolvedInput(data *TransactionData, arg Argument) bool {
	if arg.Kind != ArgumentInput || int(arg.Index) >= len(data.inputs) {
		return false
	}
	return !IsResolved(data.inputs[arg.Index])
}

// fetchArgumentTypes loads the parameters of every MoveCall that has
// unresolved inputs and no parameter types yet. Each function is fetched once.
func fetchArgumentTypes(ctx context.Context, bc *BuildContext) error {
	needed := make(map[string][]*MoveCall)
	firstIndex := make(map[string]int)
	for cmdIndex, cmd := range bc.Data.commands {
		call, ok := cmd.(*MoveCall)
		if !ok || call.ArgumentTypes != nil {
			continue
		}
		if !slices.ContainsFunc(call.Arguments, func(arg Argument) bool {
			return unresolvedInput(bc.Data, arg)
		}) {
			continue
		}
		target := call.Target()
		if _, ok := needed[target]; !ok {
			firstIndex[target] = cmdIndex
		}
		needed[target] = append(needed[target], call)
	}
	if len(needed) == 0 {
		return nil
	}
	targets := make([]string, 0, len(needed))
	for target := range needed {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	resolver, err := bc.Resolver()
	if err != nil {
		return newResolutionError(-1, firstIndex[targets[0]], err)
	}
	results := make([]*types.MoveFunction, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		call := needed[target][0]
		g.Go(func() error {
			fn, err := resolver.GetMoveFunction(gctx, call.Package, call.Module, call.Function)
			if err != nil {
				return fmt.Errorf("get move function %s: %w", target, err)
			}
			if fn == nil {
				return newResolutionError(
					-1,
					firstIndex[target],
					fmt.Errorf("%w: %s", ErrFunctionNotFound, target),
				)
			}
			results[i] = fn
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, target := range targets {
		params := types.WithoutTxContext(results[i].Parameters)
		for _, call := range needed[target] {
			call.ArgumentTypes = append([]types.OpenMoveTypeSignature{}, params...)
		}
	}
	return nil
}

// fetchObjects loads objects in parallel chunks
func fetchObjects(ctx context.Context, resolver DataResolver, ids []types.ObjectID) (map[types.ObjectID]types.ObjectInfo, error) {
	ret := make(map[types.ObjectID]types.ObjectInfo, len(ids))
	if len(ids) == 0 {
		return ret, nil
	}
	chunks := slices.Collect(slices.Chunk(ids, objectFetchChunkSize))
	results := make([][]types.ObjectInfo, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			objects, err := resolver.GetObjects(gctx, chunk)
			if err != nil {
				return fmt.Errorf("get objects: %w", err)
			}
			results[i] = objects
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, objects := range results {
		for _, obj := range objects {
			ret[obj.ObjectID] = obj
		}
	}
	return ret, nil
}

// inputUsage scans every command for uses of the input at index. Any use
// that needs a mutable or by-value binding makes the input mutable.
func inputUsage(data *TransactionData, index int) (mutable bool, receiving bool) {
	for _, cmd := range data.commands {
		switch c := cmd.(type) {
		case *MoveCall:
			for j, arg := range c.Arguments {
				if arg.Kind != ArgumentInput || int(arg.Index) != index || j >= len(c.ArgumentTypes) {
					continue
				}
				param := c.ArgumentTypes[j]
				mutable = mutable || param.IsMutable()
				receiving = receiving || param.IsReceiving()
			}
		case *MakeMoveVec, *MergeCoins, *SplitCoins, *TransferObjects:
			for _, arg := range commandArguments(cmd) {
				if arg.Kind == ArgumentInput && int(arg.Index) == index {
					mutable = true
				}
			}
		}
	}
	return mutable, receiving
}

func resolveObjectReferences(ctx context.Context, bc *BuildContext) error {
	data := bc.Data
	var pending []int
	var toFetch []types.ObjectID
	seen := make(map[types.ObjectID]struct{})
	for i, arg := range data.inputs {
		obj, ok := arg.(UnresolvedObjectArg)
		if !ok {
			continue
		}
		pending = append(pending, i)
		if obj.Version != nil || obj.InitialSharedVersion != nil {
			continue
		}
		if _, ok := seen[obj.ObjectID]; !ok {
			seen[obj.ObjectID] = struct{}{}
			toFetch = append(toFetch, obj.ObjectID)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	if err := fetchArgumentTypes(ctx, bc); err != nil {
		return err
	}
	var objects map[types.ObjectID]types.ObjectInfo
	if len(toFetch) > 0 {
		resolver, err := bc.Resolver()
		if err != nil {
			return newResolutionError(pending[0], -1, err)
		}
		if objects, err = fetchObjects(ctx, resolver, toFetch); err != nil {
			return err
		}
	}
	var merr *multierror.Error
	for _, i := range pending {
		obj := data.inputs[i].(UnresolvedObjectArg)
		info, found := objects[obj.ObjectID]
		if !found && obj.Version == nil && obj.InitialSharedVersion == nil {
			merr = multierror.Append(
				merr,
				newResolutionError(i, -1, fmt.Errorf("%w: %s", ErrObjectNotFound, obj.ObjectID)),
			)
			continue
		}
		mutable, receiving := inputUsage(data, i)
		sharedVersion := obj.InitialSharedVersion
		if sharedVersion == nil && found {
			if v, ok := info.InitialSharedVersion(); ok {
				sharedVersion = &v
			}
		}
		if sharedVersion != nil {
			explicit := obj.Mutable != nil && *obj.Mutable
			data.inputs[i] = NewSharedArg(obj.ObjectID, *sharedVersion, explicit || mutable)
			continue
		}
		version, digest := obj.Version, obj.Digest
		if found {
			if version == nil {
				version = &info.Version
			}
			if digest == nil {
				digest = &info.Digest
			}
		}
		if version == nil || digest == nil {
			merr = multierror.Append(
				merr,
				newResolutionError(i, -1, fmt.Errorf("%w: %s", ErrMissingObjectVersion, obj.ObjectID)),
			)
			continue
		}
		if receiving {
			data.inputs[i] = NewReceivingArg(obj.ObjectID, *version, *digest)
		} else {
			data.inputs[i] = NewImmOrOwnedArg(obj.ObjectID, *version, *digest)
		}
	}
	return errorOrNil(merr)
}

// encodePureInput replaces an unresolved pure input referenced by arg with
// its encoding as tag
func encodePureInput(data *TransactionData, arg Argument, cmdIndex int, tag func() (types.TypeTag, error)) error {
	if arg.Kind != ArgumentInput || int(arg.Index) >= len(data.inputs) {
		return nil
	}
	index := int(arg.Index)
	pure, ok := data.inputs[index].(UnresolvedPureArg)
	if !ok {
		return nil
	}
	typ, err := tag()
	if err != nil {
		return newValidationError(index, cmdIndex, err)
	}
	if !IsPureType(typ) {
		return newValidationError(
			index,
			cmdIndex,
			fmt.Errorf("%w: %s is not a pure type", ErrInvalidArgument, typ),
		)
	}
	encoded, err := EncodePure(typ, pure.Value)
	if err != nil {
		return newValidationError(index, cmdIndex, err)
	}
	data.inputs[index] = PureArg{Bytes: encoded}
	return nil
}

func fixedType(kind types.TypeTagKind) func() (types.TypeTag, error) {
	return func() (types.TypeTag, error) {
		return types.NewPrimitiveTypeTag(kind), nil
	}
}

func normalizeInputs(ctx context.Context, bc *BuildContext) error {
	data := bc.Data
	if !slices.ContainsFunc(data.inputs, func(arg CallArg) bool {
		_, ok := arg.(UnresolvedPureArg)
		return ok
	}) {
		return nil
	}
	if err := fetchArgumentTypes(ctx, bc); err != nil {
		return err
	}
	var merr *multierror.Error
	appendErr := func(err error) {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	for cmdIndex, cmd := range data.commands {
		switch c := cmd.(type) {
		case *MoveCall:
			// Count mismatches are reported by validation
			if c.ArgumentTypes == nil || len(c.ArgumentTypes) != len(c.Arguments) {
				continue
			}
			for j, arg := range c.Arguments {
				body := c.ArgumentTypes[j].Body
				appendErr(encodePureInput(data, arg, cmdIndex, func() (types.TypeTag, error) {
					return body.ToTypeTag(c.TypeArguments)
				}))
			}
		case *SplitCoins:
			for _, arg := range c.Amounts {
				appendErr(encodePureInput(data, arg, cmdIndex, fixedType(types.TypeU64)))
			}
		case *TransferObjects:
			appendErr(encodePureInput(data, c.Address, cmdIndex, fixedType(types.TypeAddress)))
		case *MakeMoveVec:
			if c.Type == nil {
				continue
			}
			elemType := *c.Type
			for _, arg := range c.Elements {
				appendErr(encodePureInput(data, arg, cmdIndex, func() (types.TypeTag, error) {
					return elemType, nil
				}))
			}
		}
	}
	return errorOrNil(merr)
}

func validate(ctx context.Context, bc *BuildContext) error {
	data := bc.Data
	var merr *multierror.Error
	if !bc.Config.OnlyTransactionKind {
		if _, ok := data.Sender(); !ok {
			merr = multierror.Append(merr, newValidationError(-1, -1, ErrMissingSender))
		}
	}
	if err := data.checkCounts(); err != nil {
		merr = multierror.Append(merr, newValidationError(-1, -1, err))
	}
	maxPure, err := bc.Limit(ctx, LimitMaxPureArgumentSize)
	if err != nil {
		return err
	}
	for i, arg := range data.inputs {
		switch a := arg.(type) {
		case PureArg:
			if uint64(len(a.Bytes)) > maxPure {
				merr = multierror.Append(merr, LimitExceededError{
					Limit:  LimitMaxPureArgumentSize,
					Max:    int(maxPure),
					Actual: len(a.Bytes),
					Input:  i,
					Err:    ErrPureArgumentTooLarge,
				})
			}
		case ObjectCallArg:
		default:
			merr = multierror.Append(
				merr,
				newValidationError(i, -1, fmt.Errorf("%w: %s", ErrUnresolvedInput, arg.Kind())),
			)
		}
	}
	for cmdIndex, cmd := range data.commands {
		switch c := cmd.(type) {
		case *Intent:
			merr = multierror.Append(
				merr,
				newValidationError(-1, cmdIndex, fmt.Errorf("%w: %s", ErrUnresolvedIntent, c.Name)),
			)
		case *MakeMoveVec:
			if c.Type == nil && len(c.Elements) == 0 {
				merr = multierror.Append(
					merr,
					newValidationError(-1, cmdIndex, fmt.Errorf("%w: empty MakeMoveVec needs a type", ErrInvalidArgument)),
				)
			}
		case *MoveCall:
			if c.ArgumentTypes != nil && len(c.ArgumentTypes) != len(c.Arguments) {
				merr = multierror.Append(merr, newValidationError(-1, cmdIndex, fmt.Errorf(
					"%w: %s takes %d arguments, got %d",
					ErrArgumentCount,
					c.Target(),
					len(c.ArgumentTypes),
					len(c.Arguments),
				)))
			}
		}
		for _, arg := range commandArguments(cmd) {
			switch arg.Kind {
			case ArgumentInput:
				if int(arg.Index) >= len(data.inputs) {
					merr = multierror.Append(merr, newValidationError(
						int(arg.Index),
						cmdIndex,
						fmt.Errorf("%w: %s does not exist", ErrInvalidArgument, arg),
					))
				}
			case ArgumentResult, ArgumentNestedResult:
				if int(arg.Index) >= cmdIndex {
					merr = multierror.Append(merr, newValidationError(
						-1,
						cmdIndex,
						fmt.Errorf("%w: %s is not an earlier command", ErrInvalidArgument, arg),
					))
				}
			}
		}
	}
	return errorOrNil(merr)
}

func serialize(ctx context.Context, bc *BuildContext) error {
	maxSize, err := bc.Limit(ctx, LimitMaxTxSizeBytes)
	if err != nil {
		return err
	}
	if bc.Config.OnlyTransactionKind {
		bc.Bytes, err = bc.Data.KindBytes(int(maxSize))
	} else {
		bc.Bytes, err = bc.Data.Bytes(int(maxSize))
	}
	return err
}
