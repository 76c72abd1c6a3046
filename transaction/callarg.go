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
	"fmt"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/types"
)

// CallArg is a transaction input. Only PureArg and ObjectCallArg have a wire
// form; the unresolved variants must be replaced before encoding.
type CallArg interface {
	isCallArg()
	Kind() string
}

// PureArg is a BCS encoded value
type PureArg struct {
	Bytes []byte
}

// ObjectCallArg is a fully resolved object input
type ObjectCallArg struct {
	Object ObjectArg
}

// UnresolvedObjectArg is an object known only by id, optionally with
// whatever version information the caller already had
type UnresolvedObjectArg struct {
	ObjectID             types.ObjectID
	Version              *uint64
	Digest               *types.Digest
	InitialSharedVersion *uint64
	Mutable              *bool
}

// UnresolvedPureArg is a native value whose encoding depends on the type of
// the parameter it is passed to
type UnresolvedPureArg struct {
	Value any
}

func (PureArg) isCallArg()             {}
func (ObjectCallArg) isCallArg()       {}
func (UnresolvedObjectArg) isCallArg() {}
func (UnresolvedPureArg) isCallArg()   {}

func (PureArg) Kind() string             { return "Pure" }
func (ObjectCallArg) Kind() string       { return "Object" }
func (UnresolvedObjectArg) Kind() string { return "UnresolvedObject" }
func (UnresolvedPureArg) Kind() string   { return "UnresolvedPure" }

// ObjectArg is how a resolved object is passed to a transaction
type ObjectArg interface {
	isObjectArg()
	Kind() string
	ID() types.ObjectID
}

type ImmOrOwnedObject struct {
	Ref types.ObjectRef
}

type SharedObject struct {
	ObjectID             types.ObjectID
	InitialSharedVersion uint64
	Mutable              bool
}

type ReceivingObject struct {
	Ref types.ObjectRef
}

func (ImmOrOwnedObject) isObjectArg() {}
func (SharedObject) isObjectArg()     {}
func (ReceivingObject) isObjectArg()  {}

func (ImmOrOwnedObject) Kind() string { return "ImmOrOwnedObject" }
func (SharedObject) Kind() string     { return "SharedObject" }
func (ReceivingObject) Kind() string  { return "Receiving" }

func (o ImmOrOwnedObject) ID() types.ObjectID { return o.Ref.ObjectID }
func (o SharedObject) ID() types.ObjectID     { return o.ObjectID }
func (o ReceivingObject) ID() types.ObjectID  { return o.Ref.ObjectID }

// Object argument variant indices
const (
	objectArgImmOrOwned uint32 = 0
	objectArgShared     uint32 = 1
	objectArgReceiving  uint32 = 2
)

// Call argument variant indices
const (
	callArgPure   uint32 = 0
	callArgObject uint32 = 1
)

// NewImmOrOwnedArg builds an owned or immutable object input
func NewImmOrOwnedArg(id types.ObjectID, version uint64, digest types.Digest) CallArg {
	return ObjectCallArg{
		Object: ImmOrOwnedObject{
			Ref: types.ObjectRef{ObjectID: id, Version: version, Digest: digest},
		},
	}
}

// NewSharedArg builds a shared object input
func NewSharedArg(id types.ObjectID, initialSharedVersion uint64, mutable bool) CallArg {
	return ObjectCallArg{
		Object: SharedObject{
			ObjectID:             id,
			InitialSharedVersion: initialSharedVersion,
			Mutable:              mutable,
		},
	}
}

// NewReceivingArg builds an input for an object sent to another object
func NewReceivingArg(id types.ObjectID, version uint64, digest types.Digest) CallArg {
	return ObjectCallArg{
		Object: ReceivingObject{
			Ref: types.ObjectRef{ObjectID: id, Version: version, Digest: digest},
		},
	}
}

// NewPureArg wraps already encoded bytes
func NewPureArg(data []byte) CallArg {
	return PureArg{Bytes: bytes.Clone(data)}
}

// CallArgObjectID returns the object id of an object input
func CallArgObjectID(arg CallArg) (types.ObjectID, bool) {
	switch a := arg.(type) {
	case ObjectCallArg:
		return a.Object.ID(), true
	case UnresolvedObjectArg:
		return a.ObjectID, true
	default:
		return types.ObjectID{}, false
	}
}

// IsResolved reports whether an input has a wire form
func IsResolved(arg CallArg) bool {
	switch arg.(type) {
	case PureArg, ObjectCallArg:
		return true
	default:
		return false
	}
}

func cloneCallArg(arg CallArg) CallArg {
	switch a := arg.(type) {
	case PureArg:
		return PureArg{Bytes: bytes.Clone(a.Bytes)}
	case UnresolvedObjectArg:
		return UnresolvedObjectArg{
			ObjectID:             a.ObjectID,
			Version:              clonePtr(a.Version),
			Digest:               clonePtr(a.Digest),
			InitialSharedVersion: clonePtr(a.InitialSharedVersion),
			Mutable:              clonePtr(a.Mutable),
		}
	default:
		// ObjectCallArg holds only value types; UnresolvedPureArg values are
		// treated as immutable
		return arg
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	tmp := *v
	return &tmp
}

func writeCallArg(e *bcs.Encoder, index int, arg CallArg) {
	switch a := arg.(type) {
	case PureArg:
		e.WriteVariant(callArgPure)
		e.WriteBytes(a.Bytes)
	case ObjectCallArg:
		e.WriteVariant(callArgObject)
		writeObjectArg(e, a.Object)
	default:
		e.Fail(
			fmt.Sprintf("inputs[%d]", index),
			fmt.Errorf("%w: %s", ErrUnresolvedInput, arg.Kind()),
		)
	}
}

func writeObjectArg(e *bcs.Encoder, arg ObjectArg) {
	switch a := arg.(type) {
	case ImmOrOwnedObject:
		e.WriteVariant(objectArgImmOrOwned)
		types.WriteObjectRef(e, a.Ref)
	case SharedObject:
		e.WriteVariant(objectArgShared)
		types.WriteAddress(e, a.ObjectID)
		e.WriteU64(a.InitialSharedVersion)
		e.WriteBool(a.Mutable)
	case ReceivingObject:
		e.WriteVariant(objectArgReceiving)
		types.WriteObjectRef(e, a.Ref)
	default:
		e.Fail("ObjectArg", fmt.Errorf("unknown object argument %T", arg))
	}
}

func readCallArg(d *bcs.Decoder) (CallArg, error) {
	idx, err := d.ReadVariant()
	if err != nil {
		return nil, err
	}
	switch idx {
	case callArgPure:
		data, err := d.ReadBytes()
		if err != nil {
			return nil, err
		}
		return PureArg{Bytes: data}, nil
	case callArgObject:
		obj, err := readObjectArg(d)
		if err != nil {
			return nil, err
		}
		return ObjectCallArg{Object: obj}, nil
	default:
		return nil, d.InvalidVariant("CallArg", idx)
	}
}

func readObjectArg(d *bcs.Decoder) (ObjectArg, error) {
	idx, err := d.ReadVariant()
	if err != nil {
		return nil, err
	}
	switch idx {
	case objectArgImmOrOwned:
		ref, err := types.ReadObjectRef(d)
		if err != nil {
			return nil, err
		}
		return ImmOrOwnedObject{Ref: ref}, nil
	case objectArgShared:
		var ret SharedObject
		if ret.ObjectID, err = types.ReadAddress(d); err != nil {
			return nil, err
		}
		if ret.InitialSharedVersion, err = d.ReadU64(); err != nil {
			return nil, err
		}
		if ret.Mutable, err = d.ReadBool(); err != nil {
			return nil, err
		}
		return ret, nil
	case objectArgReceiving:
		ref, err := types.ReadObjectRef(d)
		if err != nil {
			return nil, err
		}
		return ReceivingObject{Ref: ref}, nil
	default:
		return nil, d.InvalidVariant("ObjectArg", idx)
	}
}
