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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/blinklabs-io/suitx/types"
	"github.com/holiman/uint256"
)

// Signer signs encoded transaction data
type Signer interface {
	Address() types.Address
	// SignTransaction returns the serialized signature of txBytes
	SignTransaction(ctx context.Context, txBytes []byte) (string, error)
}

// SignedTransaction is encoded transaction data with one signature
type SignedTransaction struct {
	Bytes     []byte
	Signature string
}

// Transaction builds a programmable transaction. It is not safe for
// concurrent use.
type Transaction struct {
	data            *TransactionData
	plugins         []BuildPlugin
	intentResolvers map[string]BuildPlugin
}

func New() *Transaction {
	return FromData(NewTransactionData())
}

// FromData wraps existing transaction data
func FromData(data *TransactionData) *Transaction {
	return &Transaction{
		data:            data,
		intentResolvers: make(map[string]BuildPlugin),
	}
}

// From restores a transaction from its JSON form or from base64 encoded
// transaction data
func From(s string) (*Transaction, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") {
		data, err := Restore([]byte(trimmed))
		if err != nil {
			return nil, err
		}
		return FromData(data), nil
	}
	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	data, err := FromBytes(raw)
	if err != nil {
		return nil, err
	}
	return FromData(data), nil
}

// Data returns the underlying transaction data
func (t *Transaction) Data() *TransactionData {
	return t.data
}

func (t *Transaction) SetSender(sender types.Address) {
	t.data.SetSender(sender)
}

func (t *Transaction) SetSenderIfNotSet(sender types.Address) {
	t.data.SetSenderIfNotSet(sender)
}

func (t *Transaction) SetExpiration(epoch uint64) {
	t.data.SetExpiration(epoch)
}

func (t *Transaction) SetGasPrice(price uint64) {
	t.data.SetGasPrice(price)
}

func (t *Transaction) SetGasBudget(budget uint64) {
	t.data.SetGasBudget(budget)
}

func (t *Transaction) SetGasOwner(owner types.Address) {
	t.data.SetGasOwner(owner)
}

func (t *Transaction) SetGasPayment(payment []types.ObjectRef) {
	t.data.SetGasPayment(payment)
}

// Gas references the coin paying for gas
func (t *Transaction) Gas() Argument {
	return GasCoin()
}

// addObject adds an object input, reusing an existing input for the same
// object. Shared inputs are upgraded to mutable when either use is mutable.
func (t *Transaction) addObject(arg CallArg) Argument {
	id, _ := CallArgObjectID(arg)
	for i, existing := range t.data.inputs {
		existingID, ok := CallArgObjectID(existing)
		if !ok || existingID != id {
			continue
		}
		next, ok := arg.(ObjectCallArg)
		if !ok {
			return Input(uint16(i))
		}
		switch prev := existing.(type) {
		case ObjectCallArg:
			prevShared, ok1 := prev.Object.(SharedObject)
			nextShared, ok2 := next.Object.(SharedObject)
			if ok1 && ok2 && nextShared.Mutable && !prevShared.Mutable {
				prevShared.Mutable = true
				t.data.inputs[i] = ObjectCallArg{Object: prevShared}
			}
		case UnresolvedObjectArg:
			t.data.inputs[i] = mergeUnresolvedObject(prev, next)
		}
		return Input(uint16(i))
	}
	return t.data.AddInput(arg)
}

// mergeUnresolvedObject carries what a later explicit reference knows about
// an object into the unresolved input already added for it
func mergeUnresolvedObject(prev UnresolvedObjectArg, next ObjectCallArg) UnresolvedObjectArg {
	switch obj := next.Object.(type) {
	case SharedObject:
		if prev.InitialSharedVersion == nil {
			prev.InitialSharedVersion = &obj.InitialSharedVersion
		}
		mutable := obj.Mutable || (prev.Mutable != nil && *prev.Mutable)
		prev.Mutable = &mutable
	case ImmOrOwnedObject:
		prev.Version, prev.Digest = refVersionDigest(prev, obj.Ref)
	case ReceivingObject:
		prev.Version, prev.Digest = refVersionDigest(prev, obj.Ref)
	}
	return prev
}

func refVersionDigest(prev UnresolvedObjectArg, ref types.ObjectRef) (*uint64, *types.Digest) {
	version, digest := prev.Version, prev.Digest
	if version == nil {
		version = &ref.Version
	}
	if digest == nil {
		digest = &ref.Digest
	}
	return version, digest
}

// Object references an object by id. Its version and ownership are
// resolved when the transaction is built.
func (t *Transaction) Object(id types.ObjectID) Argument {
	return t.addObject(UnresolvedObjectArg{ObjectID: id})
}

// ObjectRef references an owned or immutable object at a known version
func (t *Transaction) ObjectRef(ref types.ObjectRef) Argument {
	return t.addObject(NewImmOrOwnedArg(ref.ObjectID, ref.Version, ref.Digest))
}

func (t *Transaction) SharedObjectRef(id types.ObjectID, initialSharedVersion uint64, mutable bool) Argument {
	return t.addObject(NewSharedArg(id, initialSharedVersion, mutable))
}

func (t *Transaction) ReceivingRef(ref types.ObjectRef) Argument {
	return t.addObject(NewReceivingArg(ref.ObjectID, ref.Version, ref.Digest))
}

// Pure adds a value whose encoding is decided by the parameter it is passed to
func (t *Transaction) Pure(value any) Argument {
	return t.data.AddInput(UnresolvedPureArg{Value: value})
}

// PureBytes adds an already encoded value
func (t *Transaction) PureBytes(data []byte) Argument {
	return t.data.AddInput(NewPureArg(data))
}

// PureTyped encodes value as the given type immediately
func (t *Transaction) PureTyped(tag types.TypeTag, value any) (Argument, error) {
	data, err := EncodePure(tag, value)
	if err != nil {
		return Argument{}, err
	}
	return t.data.AddInput(PureArg{Bytes: data}), nil
}

func (t *Transaction) purePrimitive(kind types.TypeTagKind, value any) Argument {
	data, err := EncodePure(types.NewPrimitiveTypeTag(kind), value)
	if err != nil {
		// Values of the matching Go type always encode
		panic(fmt.Sprintf("unexpected error encoding %T: %s", value, err))
	}
	return t.data.AddInput(PureArg{Bytes: data})
}

func (t *Transaction) PureBool(v bool) Argument { return t.purePrimitive(types.TypeBool, v) }
func (t *Transaction) PureU8(v uint8) Argument  { return t.purePrimitive(types.TypeU8, v) }
func (t *Transaction) PureU16(v uint16) Argument {
	return t.purePrimitive(types.TypeU16, v)
}
func (t *Transaction) PureU32(v uint32) Argument {
	return t.purePrimitive(types.TypeU32, v)
}
func (t *Transaction) PureU64(v uint64) Argument {
	return t.purePrimitive(types.TypeU64, v)
}

// PureU128 fails when v does not fit in 128 bits
func (t *Transaction) PureU128(v *uint256.Int) (Argument, error) {
	return t.PureTyped(types.NewPrimitiveTypeTag(types.TypeU128), v)
}

func (t *Transaction) PureU256(v *uint256.Int) Argument {
	return t.purePrimitive(types.TypeU256, v)
}

func (t *Transaction) PureAddress(v types.Address) Argument {
	return t.purePrimitive(types.TypeAddress, v)
}

func (t *Transaction) PureString(v string) Argument {
	data, _ := EncodePure(types.MustParseTypeTag("0x1::string::String"), v)
	return t.data.AddInput(PureArg{Bytes: data})
}

// ParseTarget splits "package::module::function"
func ParseTarget(target string) (types.Address, string, string, error) {
	parts := strings.Split(target, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return types.Address{}, "", "", fmt.Errorf("%w: bad move call target %q", ErrInvalidArgument, target)
	}
	pkg, err := types.ParseAddress(parts[0])
	if err != nil {
		return types.Address{}, "", "", fmt.Errorf("%w: bad move call target %q: %v", ErrInvalidArgument, target, err)
	}
	return pkg, parts[1], parts[2], nil
}

// MoveCall calls target, given as "package::module::function". Type
// arguments are type strings such as "0x2::sui::SUI".
func (t *Transaction) MoveCall(target string, typeArguments []string, arguments ...Argument) (Argument, error) {
	pkg, module, function, err := ParseTarget(target)
	if err != nil {
		return Argument{}, err
	}
	call := &MoveCall{
		Package:   pkg,
		Module:    module,
		Function:  function,
		Arguments: slices.Clone(arguments),
	}
	for _, typeArg := range typeArguments {
		tag, err := types.ParseTypeTag(typeArg)
		if err != nil {
			return Argument{}, err
		}
		call.TypeArguments = append(call.TypeArguments, tag)
	}
	return t.data.AddCommand(call), nil
}

// SplitCoins returns one result per amount. Use Nested to reference each.
func (t *Transaction) SplitCoins(coin Argument, amounts ...Argument) Argument {
	return t.data.AddCommand(&SplitCoins{Coin: coin, Amounts: slices.Clone(amounts)})
}

func (t *Transaction) MergeCoins(destination Argument, sources ...Argument) Argument {
	return t.data.AddCommand(&MergeCoins{Destination: destination, Sources: slices.Clone(sources)})
}

func (t *Transaction) TransferObjects(objects []Argument, address Argument) Argument {
	return t.data.AddCommand(&TransferObjects{Objects: slices.Clone(objects), Address: address})
}

// MakeMoveVec builds a vector. elemType may be nil for object elements.
func (t *Transaction) MakeMoveVec(elemType *types.TypeTag, elements ...Argument) Argument {
	return t.data.AddCommand(&MakeMoveVec{Type: clonePtr(elemType), Elements: slices.Clone(elements)})
}

func (t *Transaction) Publish(modules [][]byte, dependencies []types.ObjectID) Argument {
	return t.data.AddCommand(&Publish{
		Modules:      cloneModules(modules),
		Dependencies: slices.Clone(dependencies),
	})
}

func (t *Transaction) Upgrade(modules [][]byte, dependencies []types.ObjectID, pkg types.ObjectID, ticket Argument) Argument {
	return t.data.AddCommand(&Upgrade{
		Modules:      cloneModules(modules),
		Dependencies: slices.Clone(dependencies),
		Package:      pkg,
		Ticket:       ticket,
	})
}

// AddIntent adds a placeholder command for a registered intent resolver
func (t *Transaction) AddIntent(name string, inputs map[string][]Argument, data map[string]any) Argument {
	if inputs == nil {
		inputs = map[string][]Argument{}
	}
	if data == nil {
		data = map[string]any{}
	}
	return t.data.AddCommand(&Intent{Name: name, Inputs: inputs, Data: data})
}

// AddIntentResolver sets the resolver for intents of the given name in this
// transaction
func (t *Transaction) AddIntentResolver(name string, resolver BuildPlugin) {
	t.intentResolvers[name] = resolver
}

// AddBuildPlugin adds a plugin that runs for this transaction only
func (t *Transaction) AddBuildPlugin(plugin BuildPlugin) {
	t.plugins = append(t.plugins, plugin)
}

// Snapshot returns a copy of the current transaction data
func (t *Transaction) Snapshot() *TransactionData {
	return t.data.Snapshot()
}

// Serialize returns the JSON form of the transaction, unresolved parts included
func (t *Transaction) Serialize() ([]byte, error) {
	return json.Marshal(t.data)
}

// Build resolves the transaction and returns its encoding. On failure the
// transaction may be left partially resolved.
func (t *Transaction) Build(ctx context.Context, opts ...BuildOption) ([]byte, error) {
	cfg := DefaultBuildConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	bc := newBuildContext(t.data, cfg)
	if cfg.Metrics != nil {
		cfg.Metrics.RecordBuildStart()
	}
	plugins := registeredBuildPlugins()
	plugins = append(plugins, cfg.Plugins...)
	plugins = append(plugins, t.plugins...)
	plugins = append(plugins, func(ctx context.Context, bc *BuildContext, next func() error) error {
		resolvers, err := intentResolvers(bc.Data, t.intentResolvers)
		if err != nil {
			return err
		}
		return runPlugins(ctx, bc, resolvers, next)
	})
	err := runPlugins(ctx, bc, plugins, func() error {
		return runCorePipeline(ctx, bc)
	})
	if cfg.Metrics != nil {
		cfg.Metrics.RecordBuild(err)
	}
	if err != nil {
		bc.Logger().Debug("transaction build failed", "error", err)
		return nil, err
	}
	return bc.Bytes, nil
}

// BuildKind is Build with only the programmable transaction encoded
func (t *Transaction) BuildKind(ctx context.Context, opts ...BuildOption) ([]byte, error) {
	return t.Build(ctx, append(opts, WithOnlyTransactionKind(true))...)
}

// GetDigest builds the transaction and returns its digest
func (t *Transaction) GetDigest(ctx context.Context, opts ...BuildOption) (types.Digest, error) {
	data, err := t.Build(ctx, opts...)
	if err != nil {
		return types.Digest{}, err
	}
	return DigestFromBytes(data), nil
}

// Sign builds the transaction with the signer as default sender and signs it
func (t *Transaction) Sign(ctx context.Context, signer Signer, opts ...BuildOption) (*SignedTransaction, error) {
	t.SetSenderIfNotSet(signer.Address())
	data, err := t.Build(ctx, opts...)
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignTransaction(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return &SignedTransaction{Bytes: data, Signature: sig}, nil
}
