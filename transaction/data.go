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
	"fmt"
	"math"
	"slices"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/types"
	"github.com/jinzhu/copier"
)

// Wire variant indices of the outer enums
const (
	transactionDataV1       uint32 = 0
	programmableTransaction uint32 = 0
	expirationNone          uint32 = 0
	expirationEpoch         uint32 = 1
)

// MaxAddressable is the number of inputs or commands an Argument can
// reference with its u16 index
const MaxAddressable = math.MaxUint16 + 1

// Expiration bounds the epochs in which a transaction is valid. A nil Epoch
// means no expiration.
type Expiration struct {
	Epoch *uint64
}

// GasData describes how a transaction pays for gas. Unset fields are
// filled in by the build pipeline. An empty Payment counts as unset.
type GasData struct {
	Budget  *uint64
	Price   *uint64
	Owner   *types.Address
	Payment []types.ObjectRef
}

// TransactionData is the mutable state of a transaction under construction.
// It is not safe for concurrent use.
type TransactionData struct {
	sender     *types.Address
	expiration Expiration
	gasData    GasData
	inputs     []CallArg
	commands   []Command
}

func NewTransactionData() *TransactionData {
	return &TransactionData{}
}

func (t *TransactionData) Sender() (types.Address, bool) {
	if t.sender == nil {
		return types.Address{}, false
	}
	return *t.sender, true
}

func (t *TransactionData) SetSender(sender types.Address) {
	t.sender = &sender
}

func (t *TransactionData) SetSenderIfNotSet(sender types.Address) {
	if t.sender == nil {
		t.SetSender(sender)
	}
}

func (t *TransactionData) Expiration() Expiration {
	return Expiration{Epoch: clonePtr(t.expiration.Epoch)}
}

func (t *TransactionData) SetExpiration(epoch uint64) {
	t.expiration = Expiration{Epoch: &epoch}
}

func (t *TransactionData) ClearExpiration() {
	t.expiration = Expiration{}
}

// GasData returns a copy of the gas configuration
func (t *TransactionData) GasData() GasData {
	var ret GasData
	if err := copier.CopyWithOption(&ret, &t.gasData, copier.Option{DeepCopy: true}); err != nil {
		// Copying between identical plain structs does not fail
		panic(fmt.Sprintf("unexpected error copying gas data: %s", err))
	}
	// copier allocates empty slices for nil ones
	if t.gasData.Payment == nil {
		ret.Payment = nil
	}
	return ret
}

func (t *TransactionData) SetGasPrice(price uint64) {
	t.gasData.Price = &price
}

func (t *TransactionData) SetGasBudget(budget uint64) {
	t.gasData.Budget = &budget
}

func (t *TransactionData) SetGasOwner(owner types.Address) {
	t.gasData.Owner = &owner
}

func (t *TransactionData) SetGasPayment(payment []types.ObjectRef) {
	t.gasData.Payment = slices.Clone(payment)
}

// gasOwner is the explicit gas owner, falling back to the sender
func (t *TransactionData) gasOwner() (types.Address, bool) {
	if t.gasData.Owner != nil {
		return *t.gasData.Owner, true
	}
	return t.Sender()
}

// Inputs returns the inputs in order. The slice is a copy but the values are
// shared with the builder.
func (t *TransactionData) Inputs() []CallArg {
	return slices.Clone(t.inputs)
}

// Commands returns the commands in order. Commands are pointers shared with
// the builder.
func (t *TransactionData) Commands() []Command {
	return slices.Clone(t.commands)
}

// AddInput appends an input and returns a reference to it. Inputs past
// MaxAddressable cannot be referenced and fail validation and encoding.
func (t *TransactionData) AddInput(arg CallArg) Argument {
	t.inputs = append(t.inputs, arg)
	return Input(uint16(len(t.inputs) - 1))
}

// AddCommand appends a command and returns a reference to its result
func (t *TransactionData) AddCommand(cmd Command) Argument {
	t.commands = append(t.commands, cmd)
	return Result(uint16(len(t.commands) - 1))
}

// checkCounts rejects input and command lists that u16 indices cannot address
func (t *TransactionData) checkCounts() error {
	if len(t.inputs) > MaxAddressable {
		return fmt.Errorf("%w: %d, at most %d", ErrTooManyInputs, len(t.inputs), MaxAddressable)
	}
	if len(t.commands) > MaxAddressable {
		return fmt.Errorf("%w: %d, at most %d", ErrTooManyCommands, len(t.commands), MaxAddressable)
	}
	return nil
}

// ReplaceInput swaps the input at index, keeping every reference to it
func (t *TransactionData) ReplaceInput(index int, arg CallArg) error {
	if index < 0 || index >= len(t.inputs) {
		return fmt.Errorf("%w: input index %d out of range", ErrInvalidArgument, index)
	}
	t.inputs[index] = arg
	return nil
}

// ReplaceCommand replaces the command at index with zero or more commands.
// References from later commands to results after index are shifted so they
// keep pointing at the same commands. References to index itself now point
// at the first replacement.
func (t *TransactionData) ReplaceCommand(index int, cmds ...Command) error {
	return t.replaceCommand(index, cmds, nil)
}

// ReplaceCommandWithResult is like ReplaceCommand, but references to the
// replaced command's result are redirected to result. A reference to a nested
// result other than the first is an error.
func (t *TransactionData) ReplaceCommandWithResult(index int, cmds []Command, result Argument) error {
	return t.replaceCommand(index, cmds, &result)
}

func (t *TransactionData) replaceCommand(index int, cmds []Command, result *Argument) error {
	if index < 0 || index >= len(t.commands) {
		return fmt.Errorf("%w: command index %d out of range", ErrInvalidArgument, index)
	}
	sizeDiff := len(cmds) - 1
	t.commands = slices.Replace(t.commands, index, index+1, cmds...)
	var err error
	for cmdIndex := index + len(cmds); cmdIndex < len(t.commands); cmdIndex++ {
		for _, arg := range commandArguments(t.commands[cmdIndex]) {
			ref, ok := arg.CommandIndex()
			if !ok {
				continue
			}
			switch {
			case ref == index && result != nil:
				if arg.Kind == ArgumentNestedResult && arg.SubIndex != 0 {
					err = fmt.Errorf(
						"%w: command %d uses %s of a replaced command",
						ErrInvalidArgument,
						cmdIndex,
						arg,
					)
					continue
				}
				*arg = *result
			case ref > index:
				arg.Index = uint16(ref + sizeDiff)
			}
		}
	}
	return err
}

// MapArguments rewrites every argument of every command with fn
func (t *TransactionData) MapArguments(fn func(arg Argument, cmd Command, cmdIndex int) Argument) {
	for cmdIndex, cmd := range t.commands {
		for _, arg := range commandArguments(cmd) {
			*arg = fn(*arg, cmd, cmdIndex)
		}
	}
}

// GetInputUses calls fn for every argument referencing the input at index
func (t *TransactionData) GetInputUses(index int, fn func(arg Argument, cmd Command)) {
	for _, cmd := range t.commands {
		for _, arg := range commandArguments(cmd) {
			if arg.Kind == ArgumentInput && int(arg.Index) == index {
				fn(*arg, cmd)
			}
		}
	}
}

// SetArgumentTypes records the parameter types of the MoveCall at index, with
// any trailing TxContext removed
func (t *TransactionData) SetArgumentTypes(index int, params []types.OpenMoveTypeSignature) error {
	if index < 0 || index >= len(t.commands) {
		return fmt.Errorf("%w: command index %d out of range", ErrInvalidArgument, index)
	}
	call, ok := t.commands[index].(*MoveCall)
	if !ok {
		return fmt.Errorf("%w: command %d is %s, not MoveCall", ErrInvalidArgument, index, t.commands[index].Kind())
	}
	call.ArgumentTypes = slices.Clone(types.WithoutTxContext(params))
	return nil
}

// Snapshot returns a deep copy decoupled from later changes to t
func (t *TransactionData) Snapshot() *TransactionData {
	ret := &TransactionData{
		sender:     clonePtr(t.sender),
		expiration: t.Expiration(),
		gasData:    t.GasData(),
	}
	if t.inputs != nil {
		ret.inputs = make([]CallArg, len(t.inputs))
		for i, arg := range t.inputs {
			ret.inputs[i] = cloneCallArg(arg)
		}
	}
	if t.commands != nil {
		ret.commands = make([]Command, len(t.commands))
		for i, cmd := range t.commands {
			ret.commands[i] = cloneCommand(cmd)
		}
	}
	return ret
}

// Bytes encodes the full transaction data. A maxSize of zero means no limit.
func (t *TransactionData) Bytes(maxSize int) ([]byte, error) {
	return bcs.Encode(t, bcs.WithMaxSize(maxSize))
}

// KindBytes encodes only the programmable transaction, without sender or gas
func (t *TransactionData) KindBytes(maxSize int) ([]byte, error) {
	return bcs.Encode(transactionKind{t}, bcs.WithMaxSize(maxSize))
}

// GetDigest returns the digest of the fully encoded transaction data
func (t *TransactionData) GetDigest() (types.Digest, error) {
	data, err := t.Bytes(0)
	if err != nil {
		return types.Digest{}, err
	}
	return DigestFromBytes(data), nil
}

// DigestFromBytes returns the digest of encoded transaction data
func DigestFromBytes(data []byte) types.Digest {
	return types.HashTypedData("TransactionData", data)
}

type transactionKind struct {
	data *TransactionData
}

func (k transactionKind) MarshalBCS(e *bcs.Encoder) error {
	if err := k.data.checkCounts(); err != nil {
		return err
	}
	e.WriteVariant(programmableTransaction)
	e.WriteLength(len(k.data.inputs))
	for i, arg := range k.data.inputs {
		writeCallArg(e, i, arg)
	}
	e.WriteLength(len(k.data.commands))
	for i, cmd := range k.data.commands {
		writeCommand(e, i, cmd)
	}
	return nil
}

func (k transactionKind) UnmarshalBCS(d *bcs.Decoder) error {
	idx, err := d.ReadVariant()
	if err != nil {
		return err
	}
	if idx != programmableTransaction {
		return d.InvalidVariant("TransactionKind", idx)
	}
	if k.data.inputs, err = bcs.ReadSequence(d, readCallArg); err != nil {
		return err
	}
	k.data.commands, err = bcs.ReadSequence(d, readCommand)
	return err
}

func (t *TransactionData) MarshalBCS(e *bcs.Encoder) error {
	sender, ok := t.Sender()
	if !ok {
		return ErrMissingSender
	}
	if t.gasData.Price == nil {
		return fmt.Errorf("%w: gas price", ErrMissingGasData)
	}
	if t.gasData.Budget == nil {
		return fmt.Errorf("%w: gas budget", ErrMissingGasData)
	}
	owner, _ := t.gasOwner()
	e.WriteVariant(transactionDataV1)
	if err := (transactionKind{t}).MarshalBCS(e); err != nil {
		return err
	}
	types.WriteAddress(e, sender)
	bcs.WriteSequence(e, t.gasData.Payment, types.WriteObjectRef)
	types.WriteAddress(e, owner)
	e.WriteU64(*t.gasData.Price)
	e.WriteU64(*t.gasData.Budget)
	if t.expiration.Epoch == nil {
		e.WriteVariant(expirationNone)
	} else {
		e.WriteVariant(expirationEpoch)
		e.WriteU64(*t.expiration.Epoch)
	}
	return nil
}

func (t *TransactionData) UnmarshalBCS(d *bcs.Decoder) error {
	idx, err := d.ReadVariant()
	if err != nil {
		return err
	}
	if idx != transactionDataV1 {
		return d.InvalidVariant("TransactionData", idx)
	}
	if err := (transactionKind{t}).UnmarshalBCS(d); err != nil {
		return err
	}
	sender, err := types.ReadAddress(d)
	if err != nil {
		return err
	}
	t.sender = &sender
	if t.gasData.Payment, err = bcs.ReadSequence(d, types.ReadObjectRef); err != nil {
		return err
	}
	owner, err := types.ReadAddress(d)
	if err != nil {
		return err
	}
	t.gasData.Owner = &owner
	price, err := d.ReadU64()
	if err != nil {
		return err
	}
	t.gasData.Price = &price
	budget, err := d.ReadU64()
	if err != nil {
		return err
	}
	t.gasData.Budget = &budget
	idx, err = d.ReadVariant()
	if err != nil {
		return err
	}
	switch idx {
	case expirationNone:
		t.expiration = Expiration{}
	case expirationEpoch:
		epoch, err := d.ReadU64()
		if err != nil {
			return err
		}
		t.expiration = Expiration{Epoch: &epoch}
	default:
		return d.InvalidVariant("TransactionExpiration", idx)
	}
	return nil
}

// FromBytes decodes full transaction data
func FromBytes(data []byte) (*TransactionData, error) {
	ret := NewTransactionData()
	if err := bcs.Decode(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// FromKindBytes decodes a programmable transaction without gas data
func FromKindBytes(data []byte) (*TransactionData, error) {
	ret := NewTransactionData()
	if err := bcs.Decode(data, transactionKind{ret}); err != nil {
		return nil, err
	}
	return ret, nil
}
