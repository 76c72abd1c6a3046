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

	"github.com/blinklabs-io/suitx/bcs"
)

// ArgumentKind values are the BCS variant indices of an argument
type ArgumentKind uint8

const (
	ArgumentGasCoin      ArgumentKind = 0
	ArgumentInput        ArgumentKind = 1
	ArgumentResult       ArgumentKind = 2
	ArgumentNestedResult ArgumentKind = 3
)

// Argument references a value used by a command: the gas coin, an input, or
// the result of an earlier command
type Argument struct {
	Kind     ArgumentKind
	Index    uint16
	SubIndex uint16
}

func GasCoin() Argument {
	return Argument{Kind: ArgumentGasCoin}
}

func Input(index uint16) Argument {
	return Argument{Kind: ArgumentInput, Index: index}
}

func Result(index uint16) Argument {
	return Argument{Kind: ArgumentResult, Index: index}
}

func NestedResult(index uint16, subIndex uint16) Argument {
	return Argument{Kind: ArgumentNestedResult, Index: index, SubIndex: subIndex}
}

// Nested returns the subIndex-th value of a command result
func (a Argument) Nested(subIndex uint16) Argument {
	return NestedResult(a.Index, subIndex)
}

// CommandIndex returns the command an argument refers to, if any
func (a Argument) CommandIndex() (int, bool) {
	switch a.Kind {
	case ArgumentResult, ArgumentNestedResult:
		return int(a.Index), true
	default:
		return 0, false
	}
}

func (a Argument) String() string {
	switch a.Kind {
	case ArgumentGasCoin:
		return "GasCoin"
	case ArgumentInput:
		return fmt.Sprintf("Input(%d)", a.Index)
	case ArgumentResult:
		return fmt.Sprintf("Result(%d)", a.Index)
	case ArgumentNestedResult:
		return fmt.Sprintf("NestedResult(%d,%d)", a.Index, a.SubIndex)
	default:
		return fmt.Sprintf("Argument(%d)", a.Kind)
	}
}

func writeArgument(e *bcs.Encoder, a Argument) {
	switch a.Kind {
	case ArgumentGasCoin:
		e.WriteVariant(uint32(a.Kind))
	case ArgumentInput, ArgumentResult:
		e.WriteVariant(uint32(a.Kind))
		e.WriteU16(a.Index)
	case ArgumentNestedResult:
		e.WriteVariant(uint32(a.Kind))
		e.WriteU16(a.Index)
		e.WriteU16(a.SubIndex)
	default:
		e.Fail("Argument", fmt.Errorf("unknown argument kind %d", a.Kind))
	}
}

func readArgument(d *bcs.Decoder) (Argument, error) {
	idx, err := d.ReadVariant()
	if err != nil {
		return Argument{}, err
	}
	if idx > uint32(ArgumentNestedResult) {
		return Argument{}, d.InvalidVariant("Argument", idx)
	}
	ret := Argument{Kind: ArgumentKind(idx)}
	switch ret.Kind {
	case ArgumentGasCoin:
	case ArgumentInput, ArgumentResult:
		if ret.Index, err = d.ReadU16(); err != nil {
			return ret, err
		}
	case ArgumentNestedResult:
		if ret.Index, err = d.ReadU16(); err != nil {
			return ret, err
		}
		if ret.SubIndex, err = d.ReadU16(); err != nil {
			return ret, err
		}
	default:
		return ret, d.InvalidVariant("Argument", idx)
	}
	return ret, nil
}
