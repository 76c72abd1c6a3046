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

package types

import (
	"fmt"
)

// RefKind is how a Move parameter is borrowed
type RefKind string

const (
	RefNone      RefKind = ""
	RefImmutable RefKind = "&"
	RefMutable   RefKind = "&mut"
)

// BodyKind is the shape of a Move type in a function signature
type BodyKind string

const (
	BodyAddress       BodyKind = "address"
	BodyBool          BodyKind = "bool"
	BodyU8            BodyKind = "u8"
	BodyU16           BodyKind = "u16"
	BodyU32           BodyKind = "u32"
	BodyU64           BodyKind = "u64"
	BodyU128          BodyKind = "u128"
	BodyU256          BodyKind = "u256"
	BodyVector        BodyKind = "vector"
	BodyDatatype      BodyKind = "datatype"
	BodyTypeParameter BodyKind = "typeParameter"
)

var bodyPrimitiveKinds = map[BodyKind]TypeTagKind{
	BodyAddress: TypeAddress,
	BodyBool:    TypeBool,
	BodyU8:      TypeU8,
	BodyU16:     TypeU16,
	BodyU32:     TypeU32,
	BodyU64:     TypeU64,
	BodyU128:    TypeU128,
	BodyU256:    TypeU256,
}

// OpenMoveTypeSignature is one parameter of a Move function, which may still
// mention the function's type parameters
type OpenMoveTypeSignature struct {
	Ref  RefKind                   `json:"ref,omitempty"`
	Body OpenMoveTypeSignatureBody `json:"body"`
}

// OpenMoveTypeSignatureBody is the type part of a signature. Vector is set
// for vectors, Datatype for structs and enums, and TypeParameter indexes the
// function's type parameters when Kind is BodyTypeParameter.
type OpenMoveTypeSignatureBody struct {
	Kind          BodyKind                   `json:"kind"`
	Vector        *OpenMoveTypeSignatureBody `json:"vector,omitempty"`
	Datatype      *MoveDatatype              `json:"datatype,omitempty"`
	TypeParameter uint16                     `json:"typeParameter,omitempty"`
}

type MoveDatatype struct {
	Package        Address                     `json:"package"`
	Module         string                      `json:"module"`
	Type           string                      `json:"type"`
	TypeParameters []OpenMoveTypeSignatureBody `json:"typeParameters,omitempty"`
}

// MoveFunction is the normalized signature of a Move function
type MoveFunction struct {
	Package    Address                 `json:"package"`
	Module     string                  `json:"module"`
	Function   string                  `json:"function"`
	Parameters []OpenMoveTypeSignature `json:"parameters"`
}

// Key returns the fully qualified function name used for lookups
func (f MoveFunction) Key() string {
	return MoveFunctionKey(f.Package, f.Module, f.Function)
}

func MoveFunctionKey(pkg Address, module string, function string) string {
	return fmt.Sprintf("%s::%s::%s", pkg, module, function)
}

// IsDatatype reports whether the body names address::module::name
func (b OpenMoveTypeSignatureBody) IsDatatype(address Address, module string, name string) bool {
	return b.Kind == BodyDatatype &&
		b.Datatype != nil &&
		b.Datatype.Package == address &&
		b.Datatype.Module == module &&
		b.Datatype.Type == name
}

// IsTxContext reports whether the parameter is the implicit transaction context
func (s OpenMoveTypeSignature) IsTxContext() bool {
	return s.Body.IsDatatype(SuiFrameworkAddress, "tx_context", "TxContext")
}

// IsReceiving reports whether the parameter is 0x2::transfer::Receiving<T>
func (s OpenMoveTypeSignature) IsReceiving() bool {
	return s.Body.IsDatatype(SuiFrameworkAddress, "transfer", "Receiving")
}

// IsMutable reports whether an object passed to this parameter needs a
// mutable binding. By-value use counts as mutable.
func (s OpenMoveTypeSignature) IsMutable() bool {
	return s.Ref != RefImmutable
}

// WithoutTxContext drops a trailing TxContext parameter, which callers never pass
func WithoutTxContext(params []OpenMoveTypeSignature) []OpenMoveTypeSignature {
	if len(params) > 0 && params[len(params)-1].IsTxContext() {
		return params[:len(params)-1]
	}
	return params
}

// ToTypeTag instantiates the body using the call's type arguments
func (b OpenMoveTypeSignatureBody) ToTypeTag(typeArgs []TypeTag) (TypeTag, error) {
	if kind, ok := bodyPrimitiveKinds[b.Kind]; ok {
		return NewPrimitiveTypeTag(kind), nil
	}
	switch b.Kind {
	case BodyVector:
		if b.Vector == nil {
			return TypeTag{}, fmt.Errorf("%w: vector signature without element", ErrInvalidTypeTag)
		}
		elem, err := b.Vector.ToTypeTag(typeArgs)
		if err != nil {
			return TypeTag{}, err
		}
		return NewVectorTypeTag(elem), nil
	case BodyDatatype:
		if b.Datatype == nil {
			return TypeTag{}, fmt.Errorf("%w: datatype signature without name", ErrInvalidTypeTag)
		}
		tag := StructTag{
			Address: b.Datatype.Package,
			Module:  b.Datatype.Module,
			Name:    b.Datatype.Type,
		}
		for _, param := range b.Datatype.TypeParameters {
			tmp, err := param.ToTypeTag(typeArgs)
			if err != nil {
				return TypeTag{}, err
			}
			tag.TypeParams = append(tag.TypeParams, tmp)
		}
		return NewStructTypeTag(tag), nil
	case BodyTypeParameter:
		if int(b.TypeParameter) >= len(typeArgs) {
			return TypeTag{}, fmt.Errorf(
				"%w: type parameter %d with %d type arguments",
				ErrInvalidTypeTag,
				b.TypeParameter,
				len(typeArgs),
			)
		}
		return typeArgs[b.TypeParameter], nil
	default:
		return TypeTag{}, fmt.Errorf("%w: unknown signature kind %q", ErrInvalidTypeTag, b.Kind)
	}
}
