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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/suitx/types"
)

// SerializedVersion is the version of the JSON form written by MarshalJSON
const SerializedVersion = 2

var ErrInvalidSerializedTransaction = errors.New("invalid serialized transaction")

type serializedTransaction struct {
	Version    int               `json:"version"`
	Sender     *types.Address    `json:"sender"`
	Expiration json.RawMessage   `json:"expiration"`
	GasData    serializedGasData `json:"gasData"`
	Inputs     []json.RawMessage `json:"inputs"`
	Commands   []json.RawMessage `json:"commands"`
	Digest     *types.Digest     `json:"digest"`
}

type serializedGasData struct {
	Budget  *uint64           `json:"budget,string"`
	Price   *uint64           `json:"price,string"`
	Owner   *types.Address    `json:"owner"`
	Payment []types.ObjectRef `json:"payment"`
}

type serializedPure struct {
	Bytes []byte `json:"bytes"`
}

type serializedUnresolvedPure struct {
	Value any `json:"value"`
}

type serializedUnresolvedObject struct {
	ObjectID             types.ObjectID `json:"objectId"`
	Version              *uint64        `json:"version,string,omitempty"`
	Digest               *types.Digest  `json:"digest,omitempty"`
	InitialSharedVersion *uint64        `json:"initialSharedVersion,string,omitempty"`
	Mutable              *bool          `json:"mutable,omitempty"`
}

type serializedSharedObject struct {
	ObjectID             types.ObjectID `json:"objectId"`
	InitialSharedVersion uint64         `json:"initialSharedVersion,string"`
	Mutable              bool           `json:"mutable"`
}

// marshalTagged writes {"$kind": kind, kind: payload}
func marshalTagged(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	kindRaw, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{
		"$kind": kindRaw,
		kind:    raw,
	})
}

func unmarshalTagged(data []byte) (string, json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", nil, err
	}
	var kind string
	if err := json.Unmarshal(fields["$kind"], &kind); err != nil {
		return "", nil, fmt.Errorf("%w: missing $kind", ErrInvalidSerializedTransaction)
	}
	payload, ok := fields[kind]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %s payload", ErrInvalidSerializedTransaction, kind)
	}
	return kind, payload, nil
}

// decodeJSON keeps numbers as json.Number so large integers survive
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (a Argument) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ArgumentGasCoin:
		return marshalTagged("GasCoin", true)
	case ArgumentInput:
		return marshalTagged("Input", a.Index)
	case ArgumentResult:
		return marshalTagged("Result", a.Index)
	case ArgumentNestedResult:
		return marshalTagged("NestedResult", []uint16{a.Index, a.SubIndex})
	default:
		return nil, fmt.Errorf("unknown argument kind %d", a.Kind)
	}
}

func (a *Argument) UnmarshalJSON(data []byte) error {
	kind, payload, err := unmarshalTagged(data)
	if err != nil {
		return err
	}
	switch kind {
	case "GasCoin":
		*a = GasCoin()
	case "Input", "Result":
		var idx uint16
		if err := json.Unmarshal(payload, &idx); err != nil {
			return err
		}
		*a = Input(idx)
		if kind == "Result" {
			*a = Result(idx)
		}
	case "NestedResult":
		var idx []uint16
		if err := json.Unmarshal(payload, &idx); err != nil {
			return err
		}
		if len(idx) != 2 {
			return fmt.Errorf("%w: NestedResult needs 2 indices", ErrInvalidSerializedTransaction)
		}
		*a = NestedResult(idx[0], idx[1])
	default:
		return fmt.Errorf("%w: unknown argument kind %q", ErrInvalidSerializedTransaction, kind)
	}
	return nil
}

func marshalCallArg(arg CallArg) ([]byte, error) {
	switch a := arg.(type) {
	case PureArg:
		return marshalTagged(a.Kind(), serializedPure(a))
	case ObjectCallArg:
		obj, err := marshalObjectArg(a.Object)
		if err != nil {
			return nil, err
		}
		return marshalTagged(a.Kind(), json.RawMessage(obj))
	case UnresolvedPureArg:
		return marshalTagged(a.Kind(), serializedUnresolvedPure{Value: pureValueForJSON(a.Value)})
	case UnresolvedObjectArg:
		return marshalTagged(a.Kind(), serializedUnresolvedObject(a))
	default:
		return nil, fmt.Errorf("unknown input %T", arg)
	}
}

func marshalObjectArg(arg ObjectArg) ([]byte, error) {
	switch a := arg.(type) {
	case ImmOrOwnedObject:
		return marshalTagged(a.Kind(), a.Ref)
	case SharedObject:
		return marshalTagged(a.Kind(), serializedSharedObject(a))
	case ReceivingObject:
		return marshalTagged(a.Kind(), a.Ref)
	default:
		return nil, fmt.Errorf("unknown object argument %T", arg)
	}
}

func unmarshalCallArg(data []byte) (CallArg, error) {
	kind, payload, err := unmarshalTagged(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Pure":
		var tmp serializedPure
		if err := json.Unmarshal(payload, &tmp); err != nil {
			return nil, err
		}
		return PureArg(tmp), nil
	case "Object":
		obj, err := unmarshalObjectArg(payload)
		if err != nil {
			return nil, err
		}
		return ObjectCallArg{Object: obj}, nil
	case "UnresolvedPure":
		var tmp serializedUnresolvedPure
		if err := decodeJSON(payload, &tmp); err != nil {
			return nil, err
		}
		return UnresolvedPureArg(tmp), nil
	case "UnresolvedObject":
		var tmp serializedUnresolvedObject
		if err := json.Unmarshal(payload, &tmp); err != nil {
			return nil, err
		}
		return UnresolvedObjectArg(tmp), nil
	default:
		return nil, fmt.Errorf("%w: unknown input kind %q", ErrInvalidSerializedTransaction, kind)
	}
}

func unmarshalObjectArg(data []byte) (ObjectArg, error) {
	kind, payload, err := unmarshalTagged(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "ImmOrOwnedObject", "Receiving":
		var ref types.ObjectRef
		if err := json.Unmarshal(payload, &ref); err != nil {
			return nil, err
		}
		if kind == "Receiving" {
			return ReceivingObject{Ref: ref}, nil
		}
		return ImmOrOwnedObject{Ref: ref}, nil
	case "SharedObject":
		var tmp serializedSharedObject
		if err := json.Unmarshal(payload, &tmp); err != nil {
			return nil, err
		}
		return SharedObject(tmp), nil
	default:
		return nil, fmt.Errorf("%w: unknown object kind %q", ErrInvalidSerializedTransaction, kind)
	}
}

func marshalCommand(cmd Command) ([]byte, error) {
	return marshalTagged(cmd.Kind(), cmd)
}

func unmarshalCommand(data []byte) (Command, error) {
	kind, payload, err := unmarshalTagged(data)
	if err != nil {
		return nil, err
	}
	var ret Command
	switch kind {
	case "MoveCall":
		ret = &MoveCall{}
	case "TransferObjects":
		ret = &TransferObjects{}
	case "SplitCoins":
		ret = &SplitCoins{}
	case "MergeCoins":
		ret = &MergeCoins{}
	case "Publish":
		ret = &Publish{}
	case "MakeMoveVec":
		ret = &MakeMoveVec{}
	case "Upgrade":
		ret = &Upgrade{}
	case "$Intent":
		ret = &Intent{}
	default:
		return nil, fmt.Errorf("%w: unknown command kind %q", ErrInvalidSerializedTransaction, kind)
	}
	if err := decodeJSON(payload, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// MarshalJSON writes the versioned JSON form, which keeps unresolved inputs
// and intents. The digest is included once the data can be encoded.
func (t *TransactionData) MarshalJSON() ([]byte, error) {
	tmp := serializedTransaction{
		Version: SerializedVersion,
		Sender:  clonePtr(t.sender),
		GasData: serializedGasData(t.GasData()),
	}
	var err error
	if t.expiration.Epoch == nil {
		tmp.Expiration, err = marshalTagged("None", true)
	} else {
		tmp.Expiration, err = marshalTagged("Epoch", fmt.Sprintf("%d", *t.expiration.Epoch))
	}
	if err != nil {
		return nil, err
	}
	tmp.Inputs = make([]json.RawMessage, 0, len(t.inputs))
	for i, arg := range t.inputs {
		raw, err := marshalCallArg(arg)
		if err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}
		tmp.Inputs = append(tmp.Inputs, raw)
	}
	tmp.Commands = make([]json.RawMessage, 0, len(t.commands))
	for i, cmd := range t.commands {
		raw, err := marshalCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		tmp.Commands = append(tmp.Commands, raw)
	}
	if digest, err := t.GetDigest(); err == nil {
		tmp.Digest = &digest
	}
	return json.Marshal(tmp)
}

func (t *TransactionData) UnmarshalJSON(data []byte) error {
	var tmp serializedTransaction
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	if tmp.Version != SerializedVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSerializedTransaction, tmp.Version)
	}
	ret := TransactionData{
		sender:  tmp.Sender,
		gasData: GasData(tmp.GasData),
	}
	if len(tmp.Expiration) > 0 && string(tmp.Expiration) != "null" {
		kind, payload, err := unmarshalTagged(tmp.Expiration)
		if err != nil {
			return err
		}
		switch kind {
		case "None":
		case "Epoch":
			var epoch json.Number
			if err := json.Unmarshal(payload, &epoch); err != nil {
				return err
			}
			tmpEpoch, err := toUint256(epoch)
			if err != nil || !tmpEpoch.IsUint64() {
				return fmt.Errorf("%w: bad epoch %s", ErrInvalidSerializedTransaction, payload)
			}
			ret.SetExpiration(tmpEpoch.Uint64())
		default:
			return fmt.Errorf("%w: unknown expiration %q", ErrInvalidSerializedTransaction, kind)
		}
	}
	for i, raw := range tmp.Inputs {
		arg, err := unmarshalCallArg(raw)
		if err != nil {
			return fmt.Errorf("inputs[%d]: %w", i, err)
		}
		ret.inputs = append(ret.inputs, arg)
	}
	for i, raw := range tmp.Commands {
		cmd, err := unmarshalCommand(raw)
		if err != nil {
			return fmt.Errorf("commands[%d]: %w", i, err)
		}
		ret.commands = append(ret.commands, cmd)
	}
	*t = ret
	return nil
}

// Restore rebuilds transaction data from its JSON form
func Restore(data []byte) (*TransactionData, error) {
	ret := NewTransactionData()
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}
