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
	"maps"
	"slices"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/types"
)

// Command is one operation of a programmable transaction. Commands are held
// by pointer so plugins can rewrite their arguments in place.
type Command interface {
	isCommand()
	Kind() string
}

type MoveCall struct {
	Package       types.Address   `json:"package"`
	Module        string          `json:"module"`
	Function      string          `json:"function"`
	TypeArguments []types.TypeTag `json:"typeArguments"`
	Arguments     []Argument      `json:"arguments"`
	// ArgumentTypes caches the callee's parameters once resolved. It is not
	// part of the wire form.
	ArgumentTypes []types.OpenMoveTypeSignature `json:"_argumentTypes,omitempty"`
}

type TransferObjects struct {
	Objects []Argument `json:"objects"`
	Address Argument   `json:"address"`
}

type SplitCoins struct {
	Coin    Argument   `json:"coin"`
	Amounts []Argument `json:"amounts"`
}

type MergeCoins struct {
	Destination Argument   `json:"destination"`
	Sources     []Argument `json:"sources"`
}

type Publish struct {
	Modules      [][]byte         `json:"modules"`
	Dependencies []types.ObjectID `json:"dependencies"`
}

// MakeMoveVec builds a vector from its elements. Type may only be nil when
// the elements are objects whose type the chain can infer.
type MakeMoveVec struct {
	Type     *types.TypeTag `json:"type"`
	Elements []Argument     `json:"elements"`
}

type Upgrade struct {
	Modules      [][]byte         `json:"modules"`
	Dependencies []types.ObjectID `json:"dependencies"`
	Package      types.ObjectID   `json:"package"`
	Ticket       Argument         `json:"ticket"`
}

// Intent is a placeholder expanded by a registered resolver before the
// transaction is built
type Intent struct {
	Name   string                `json:"name"`
	Inputs map[string][]Argument `json:"inputs"`
	Data   map[string]any        `json:"data"`
}

func (*MoveCall) isCommand()        {}
func (*TransferObjects) isCommand() {}
func (*SplitCoins) isCommand()      {}
func (*MergeCoins) isCommand()      {}
func (*Publish) isCommand()         {}
func (*MakeMoveVec) isCommand()     {}
func (*Upgrade) isCommand()         {}
func (*Intent) isCommand()          {}

func (*MoveCall) Kind() string        { return "MoveCall" }
func (*TransferObjects) Kind() string { return "TransferObjects" }
func (*SplitCoins) Kind() string      { return "SplitCoins" }
func (*MergeCoins) Kind() string      { return "MergeCoins" }
func (*Publish) Kind() string         { return "Publish" }
func (*MakeMoveVec) Kind() string     { return "MakeMoveVec" }
func (*Upgrade) Kind() string         { return "Upgrade" }
func (*Intent) Kind() string          { return "$Intent" }

// Command variant indices
const (
	commandMoveCall        uint32 = 0
	commandTransferObjects uint32 = 1
	commandSplitCoins      uint32 = 2
	commandMergeCoins      uint32 = 3
	commandPublish         uint32 = 4
	commandMakeMoveVec     uint32 = 5
	commandUpgrade         uint32 = 6
)

func (c *MoveCall) Target() string {
	return types.MoveFunctionKey(c.Package, c.Module, c.Function)
}

// commandArguments returns pointers to every argument of a command, in wire
// order. Intent inputs are visited in key order.
func commandArguments(cmd Command) []*Argument {
	var ret []*Argument
	appendAll := func(args []Argument) {
		for i := range args {
			ret = append(ret, &args[i])
		}
	}
	switch c := cmd.(type) {
	case *MoveCall:
		appendAll(c.Arguments)
	case *TransferObjects:
		appendAll(c.Objects)
		ret = append(ret, &c.Address)
	case *SplitCoins:
		ret = append(ret, &c.Coin)
		appendAll(c.Amounts)
	case *MergeCoins:
		ret = append(ret, &c.Destination)
		appendAll(c.Sources)
	case *Publish:
	case *MakeMoveVec:
		appendAll(c.Elements)
	case *Upgrade:
		ret = append(ret, &c.Ticket)
	case *Intent:
		for _, key := range slices.Sorted(maps.Keys(c.Inputs)) {
			appendAll(c.Inputs[key])
		}
	}
	return ret
}

func cloneCommand(cmd Command) Command {
	switch c := cmd.(type) {
	case *MoveCall:
		return &MoveCall{
			Package:       c.Package,
			Module:        c.Module,
			Function:      c.Function,
			TypeArguments: slices.Clone(c.TypeArguments),
			Arguments:     slices.Clone(c.Arguments),
			ArgumentTypes: slices.Clone(c.ArgumentTypes),
		}
	case *TransferObjects:
		return &TransferObjects{Objects: slices.Clone(c.Objects), Address: c.Address}
	case *SplitCoins:
		return &SplitCoins{Coin: c.Coin, Amounts: slices.Clone(c.Amounts)}
	case *MergeCoins:
		return &MergeCoins{Destination: c.Destination, Sources: slices.Clone(c.Sources)}
	case *Publish:
		return &Publish{Modules: cloneModules(c.Modules), Dependencies: slices.Clone(c.Dependencies)}
	case *MakeMoveVec:
		return &MakeMoveVec{Type: clonePtr(c.Type), Elements: slices.Clone(c.Elements)}
	case *Upgrade:
		return &Upgrade{
			Modules:      cloneModules(c.Modules),
			Dependencies: slices.Clone(c.Dependencies),
			Package:      c.Package,
			Ticket:       c.Ticket,
		}
	case *Intent:
		ret := &Intent{
			Name:   c.Name,
			Inputs: make(map[string][]Argument, len(c.Inputs)),
			Data:   maps.Clone(c.Data),
		}
		for k, v := range c.Inputs {
			ret.Inputs[k] = slices.Clone(v)
		}
		return ret
	default:
		return cmd
	}
}

func cloneModules(modules [][]byte) [][]byte {
	if modules == nil {
		return nil
	}
	ret := make([][]byte, len(modules))
	for i, m := range modules {
		ret[i] = bytes.Clone(m)
	}
	return ret
}

func writeCommand(e *bcs.Encoder, index int, cmd Command) {
	switch c := cmd.(type) {
	case *MoveCall:
		e.WriteVariant(commandMoveCall)
		types.WriteAddress(e, c.Package)
		e.WriteString(c.Module)
		e.WriteString(c.Function)
		e.WriteLength(len(c.TypeArguments))
		for _, tag := range c.TypeArguments {
			if err := tag.MarshalBCS(e); err != nil {
				e.Fail(fmt.Sprintf("commands[%d]", index), err)
				return
			}
		}
		bcs.WriteSequence(e, c.Arguments, writeArgument)
	case *TransferObjects:
		e.WriteVariant(commandTransferObjects)
		bcs.WriteSequence(e, c.Objects, writeArgument)
		writeArgument(e, c.Address)
	case *SplitCoins:
		e.WriteVariant(commandSplitCoins)
		writeArgument(e, c.Coin)
		bcs.WriteSequence(e, c.Amounts, writeArgument)
	case *MergeCoins:
		e.WriteVariant(commandMergeCoins)
		writeArgument(e, c.Destination)
		bcs.WriteSequence(e, c.Sources, writeArgument)
	case *Publish:
		e.WriteVariant(commandPublish)
		bcs.WriteSequence(e, c.Modules, (*bcs.Encoder).WriteBytes)
		bcs.WriteSequence(e, c.Dependencies, types.WriteAddress)
	case *MakeMoveVec:
		e.WriteVariant(commandMakeMoveVec)
		bcs.WriteOption(e, c.Type, func(e *bcs.Encoder, tag types.TypeTag) {
			if err := tag.MarshalBCS(e); err != nil {
				e.Fail(fmt.Sprintf("commands[%d]", index), err)
			}
		})
		bcs.WriteSequence(e, c.Elements, writeArgument)
	case *Upgrade:
		e.WriteVariant(commandUpgrade)
		bcs.WriteSequence(e, c.Modules, (*bcs.Encoder).WriteBytes)
		bcs.WriteSequence(e, c.Dependencies, types.WriteAddress)
		types.WriteAddress(e, c.Package)
		writeArgument(e, c.Ticket)
	default:
		e.Fail(
			fmt.Sprintf("commands[%d]", index),
			fmt.Errorf("%w: %s", ErrUnresolvedIntent, cmd.Kind()),
		)
	}
}

func readCommand(d *bcs.Decoder) (Command, error) {
	idx, err := d.ReadVariant()
	if err != nil {
		return nil, err
	}
	switch idx {
	case commandMoveCall:
		ret := &MoveCall{}
		if ret.Package, err = types.ReadAddress(d); err != nil {
			return nil, err
		}
		if ret.Module, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ret.Function, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ret.TypeArguments, err = bcs.ReadSequence(d, types.ReadTypeTag); err != nil {
			return nil, err
		}
		if ret.Arguments, err = bcs.ReadSequence(d, readArgument); err != nil {
			return nil, err
		}
		return ret, nil
	case commandTransferObjects:
		ret := &TransferObjects{}
		if ret.Objects, err = bcs.ReadSequence(d, readArgument); err != nil {
			return nil, err
		}
		if ret.Address, err = readArgument(d); err != nil {
			return nil, err
		}
		return ret, nil
	case commandSplitCoins:
		ret := &SplitCoins{}
		if ret.Coin, err = readArgument(d); err != nil {
			return nil, err
		}
		if ret.Amounts, err = bcs.ReadSequence(d, readArgument); err != nil {
			return nil, err
		}
		return ret, nil
	case commandMergeCoins:
		ret := &MergeCoins{}
		if ret.Destination, err = readArgument(d); err != nil {
			return nil, err
		}
		if ret.Sources, err = bcs.ReadSequence(d, readArgument); err != nil {
			return nil, err
		}
		return ret, nil
	case commandPublish:
		ret := &Publish{}
		if ret.Modules, err = bcs.ReadSequence(d, (*bcs.Decoder).ReadBytes); err != nil {
			return nil, err
		}
		if ret.Dependencies, err = bcs.ReadSequence(d, types.ReadAddress); err != nil {
			return nil, err
		}
		return ret, nil
	case commandMakeMoveVec:
		ret := &MakeMoveVec{}
		if ret.Type, err = bcs.ReadOption(d, types.ReadTypeTag); err != nil {
			return nil, err
		}
		if ret.Elements, err = bcs.ReadSequence(d, readArgument); err != nil {
			return nil, err
		}
		return ret, nil
	case commandUpgrade:
		ret := &Upgrade{}
		if ret.Modules, err = bcs.ReadSequence(d, (*bcs.Decoder).ReadBytes); err != nil {
			return nil, err
		}
		if ret.Dependencies, err = bcs.ReadSequence(d, types.ReadAddress); err != nil {
			return nil, err
		}
		if ret.Package, err = types.ReadAddress(d); err != nil {
			return nil, err
		}
		if ret.Ticket, err = readArgument(d); err != nil {
			return nil, err
		}
		return ret, nil
	default:
		return nil, d.InvalidVariant("Command", idx)
	}
}
