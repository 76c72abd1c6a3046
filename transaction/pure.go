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
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/types"
	"github.com/holiman/uint256"
)

var typeBits = map[types.TypeTagKind]int{
	types.TypeU8:   8,
	types.TypeU16:  16,
	types.TypeU32:  32,
	types.TypeU64:  64,
	types.TypeU128: 128,
	types.TypeU256: 256,
}

// EncodePure encodes a native Go value as the given Move type. Integers may
// be any Go integer type, *uint256.Int, *big.Int, json.Number or a decimal
// or 0x-prefixed hex string. Addresses and object IDs accept types.Address or
// a hex string. Option<T> is nil for none. Vectors accept any slice.
func EncodePure(tag types.TypeTag, value any) ([]byte, error) {
	e := bcs.NewEncoder()
	if err := writePure(e, tag, value); err != nil {
		return nil, err
	}
	if err := e.Err(); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// IsPureType reports whether values of the type can be passed as pure inputs
func IsPureType(tag types.TypeTag) bool {
	switch tag.Kind {
	case types.TypeBool, types.TypeAddress,
		types.TypeU8, types.TypeU16, types.TypeU32,
		types.TypeU64, types.TypeU128, types.TypeU256:
		return true
	case types.TypeVector:
		return tag.Elem != nil && IsPureType(*tag.Elem)
	case types.TypeStruct:
		s := tag.Struct
		if s == nil {
			return false
		}
		if s.Is(types.SuiFrameworkAddress, "object", "ID") ||
			s.Is(types.MoveStdlibAddress, "string", "String") ||
			s.Is(types.MoveStdlibAddress, "ascii", "String") {
			return true
		}
		if s.Is(types.MoveStdlibAddress, "option", "Option") {
			return len(s.TypeParams) == 1 && IsPureType(s.TypeParams[0])
		}
		return false
	default:
		return false
	}
}

func writePure(e *bcs.Encoder, tag types.TypeTag, value any) error {
	switch tag.Kind {
	case types.TypeBool:
		v, ok := value.(bool)
		if !ok {
			return pureTypeError(tag, value)
		}
		e.WriteBool(v)
	case types.TypeU8, types.TypeU16, types.TypeU32, types.TypeU64, types.TypeU128, types.TypeU256:
		bits := typeBits[tag.Kind]
		v, err := toUint256(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidArgument, tag, err)
		}
		if v.BitLen() > bits {
			return fmt.Errorf("%w: %s does not fit in %s", ErrInvalidArgument, v.Dec(), tag)
		}
		switch tag.Kind {
		case types.TypeU8:
			e.WriteU8(uint8(v.Uint64()))
		case types.TypeU16:
			e.WriteU16(uint16(v.Uint64()))
		case types.TypeU32:
			e.WriteU32(uint32(v.Uint64()))
		case types.TypeU64:
			e.WriteU64(v.Uint64())
		case types.TypeU128:
			e.WriteU128(v)
		default:
			e.WriteU256(v)
		}
	case types.TypeAddress:
		addr, err := toAddress(value)
		if err != nil {
			return err
		}
		types.WriteAddress(e, addr)
	case types.TypeVector:
		if tag.Elem == nil {
			return pureTypeError(tag, value)
		}
		if raw, ok := value.([]byte); ok && tag.Elem.Kind == types.TypeU8 {
			e.WriteBytes(raw)
			return nil
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return pureTypeError(tag, value)
		}
		e.WriteLength(rv.Len())
		for i := range rv.Len() {
			if err := writePure(e, *tag.Elem, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	case types.TypeStruct:
		return writePureStruct(e, tag, value)
	default:
		return fmt.Errorf("%w: %s is not a pure type", ErrInvalidArgument, tag)
	}
	return nil
}

func writePureStruct(e *bcs.Encoder, tag types.TypeTag, value any) error {
	s := tag.Struct
	if s == nil {
		return pureTypeError(tag, value)
	}
	switch {
	case s.Is(types.SuiFrameworkAddress, "object", "ID"):
		addr, err := toAddress(value)
		if err != nil {
			return err
		}
		types.WriteAddress(e, addr)
	case s.Is(types.MoveStdlibAddress, "string", "String"),
		s.Is(types.MoveStdlibAddress, "ascii", "String"):
		switch v := value.(type) {
		case string:
			e.WriteString(v)
		case []byte:
			e.WriteBytes(v)
		default:
			return pureTypeError(tag, value)
		}
	case s.Is(types.MoveStdlibAddress, "option", "Option"):
		if len(s.TypeParams) != 1 {
			return pureTypeError(tag, value)
		}
		if value == nil {
			e.WriteBool(false)
			return nil
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				e.WriteBool(false)
				return nil
			}
			// Pointers to big integer types are values in their own right
			switch value.(type) {
			case *uint256.Int, *big.Int, *types.Address:
			default:
				value = rv.Elem().Interface()
			}
		}
		e.WriteBool(true)
		return writePure(e, s.TypeParams[0], value)
	default:
		return fmt.Errorf("%w: %s is not a pure type", ErrInvalidArgument, tag)
	}
	return nil
}

func pureTypeError(tag types.TypeTag, value any) error {
	return fmt.Errorf("%w: cannot encode %T as %s", ErrInvalidArgument, value, tag)
}

func toAddress(value any) (types.Address, error) {
	switch v := value.(type) {
	case types.Address:
		return v, nil
	case *types.Address:
		if v == nil {
			return types.Address{}, fmt.Errorf("%w: nil address", ErrInvalidArgument)
		}
		return *v, nil
	case string:
		addr, err := types.ParseAddress(v)
		if err != nil {
			return addr, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		return addr, nil
	default:
		return types.Address{}, fmt.Errorf("%w: cannot use %T as address", ErrInvalidArgument, value)
	}
}

func toUint256(value any) (*uint256.Int, error) {
	switch v := value.(type) {
	case uint8:
		return uint256.NewInt(uint64(v)), nil
	case uint16:
		return uint256.NewInt(uint64(v)), nil
	case uint32:
		return uint256.NewInt(uint64(v)), nil
	case uint64:
		return uint256.NewInt(v), nil
	case uint:
		return uint256.NewInt(uint64(v)), nil
	case int8, int16, int32, int64, int:
		i := reflect.ValueOf(v).Int()
		if i < 0 {
			return nil, fmt.Errorf("negative value %d", i)
		}
		return uint256.NewInt(uint64(i)), nil
	case float64:
		if v < 0 || v != math.Trunc(v) || v > 1<<53 {
			return nil, fmt.Errorf("value %v is not a safe integer", v)
		}
		return uint256.NewInt(uint64(v)), nil
	case *uint256.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(uint256.Int).Set(v), nil
	case uint256.Int:
		return new(uint256.Int).Set(&v), nil
	case *big.Int:
		if v == nil || v.Sign() < 0 {
			return nil, fmt.Errorf("invalid integer %v", v)
		}
		ret, overflow := uint256.FromBig(v)
		if overflow {
			return nil, fmt.Errorf("integer %s overflows 256 bits", v)
		}
		return ret, nil
	case json.Number:
		return uint256.FromDecimal(v.String())
	case string:
		if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
			return uint256.FromHex(v)
		}
		return uint256.FromDecimal(v)
	default:
		return nil, fmt.Errorf("cannot use %T as integer", value)
	}
}

// pureValueForJSON converts values that do not survive a JSON round trip
// into their text forms
func pureValueForJSON(value any) any {
	switch v := value.(type) {
	case *uint256.Int:
		if v == nil {
			return nil
		}
		return v.Dec()
	case uint256.Int:
		return v.Dec()
	case *big.Int:
		if v == nil {
			return nil
		}
		return v.String()
	case uint64:
		return fmt.Sprintf("%d", v)
	case []byte:
		ret := make([]any, len(v))
		for i, b := range v {
			ret[i] = b
		}
		return ret
	default:
		return value
	}
}
