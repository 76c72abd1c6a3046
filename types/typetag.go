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
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/suitx/bcs"
)

// TypeTagKind values are the BCS variant indices of a type tag
type TypeTagKind uint32

const (
	TypeBool    TypeTagKind = 0
	TypeU8      TypeTagKind = 1
	TypeU64     TypeTagKind = 2
	TypeU128    TypeTagKind = 3
	TypeAddress TypeTagKind = 4
	TypeSigner  TypeTagKind = 5
	TypeVector  TypeTagKind = 6
	TypeStruct  TypeTagKind = 7
	TypeU16     TypeTagKind = 8
	TypeU32     TypeTagKind = 9
	TypeU256    TypeTagKind = 10
)

var primitiveTypeNames = map[TypeTagKind]string{
	TypeBool:    "bool",
	TypeU8:      "u8",
	TypeU16:     "u16",
	TypeU32:     "u32",
	TypeU64:     "u64",
	TypeU128:    "u128",
	TypeU256:    "u256",
	TypeAddress: "address",
	TypeSigner:  "signer",
}

var ErrInvalidTypeTag = errors.New("invalid type tag")

// MaxTypeTagDepth bounds how deeply vector and struct type parameters may
// nest when decoding or parsing a type
const MaxTypeTagDepth = 128

// TypeTag is a fully instantiated Move type. Elem is set for vectors and
// Struct for struct types.
type TypeTag struct {
	Kind   TypeTagKind
	Elem   *TypeTag
	Struct *StructTag
}

// StructTag names a Move struct type with its type arguments
type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

func NewPrimitiveTypeTag(kind TypeTagKind) TypeTag {
	return TypeTag{Kind: kind}
}

func NewVectorTypeTag(elem TypeTag) TypeTag {
	return TypeTag{Kind: TypeVector, Elem: &elem}
}

func NewStructTypeTag(tag StructTag) TypeTag {
	return TypeTag{Kind: TypeStruct, Struct: &tag}
}

func (t TypeTag) String() string {
	switch t.Kind {
	case TypeVector:
		if t.Elem == nil {
			return "vector<?>"
		}
		return "vector<" + t.Elem.String() + ">"
	case TypeStruct:
		if t.Struct == nil {
			return "?"
		}
		return t.Struct.String()
	default:
		if name, ok := primitiveTypeNames[t.Kind]; ok {
			return name
		}
		return fmt.Sprintf("unknown(%d)", t.Kind)
	}
}

func (s StructTag) String() string {
	var sb strings.Builder
	sb.WriteString(s.Address.String())
	sb.WriteString("::")
	sb.WriteString(s.Module)
	sb.WriteString("::")
	sb.WriteString(s.Name)
	if len(s.TypeParams) > 0 {
		sb.WriteString("<")
		for i, param := range s.TypeParams {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(param.String())
		}
		sb.WriteString(">")
	}
	return sb.String()
}

// Is reports whether the struct is address::module::name, ignoring type arguments
func (s StructTag) Is(address Address, module string, name string) bool {
	return s.Address == address && s.Module == module && s.Name == name
}

func (t TypeTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TypeTag) UnmarshalText(data []byte) error {
	tmp, err := ParseTypeTag(string(data))
	if err != nil {
		return err
	}
	*t = tmp
	return nil
}

func (t TypeTag) MarshalBCS(e *bcs.Encoder) error {
	e.WriteVariant(uint32(t.Kind))
	switch t.Kind {
	case TypeVector:
		if t.Elem == nil {
			return fmt.Errorf("%w: vector without element type", ErrInvalidTypeTag)
		}
		return t.Elem.MarshalBCS(e)
	case TypeStruct:
		if t.Struct == nil {
			return fmt.Errorf("%w: struct without tag", ErrInvalidTypeTag)
		}
		return t.Struct.MarshalBCS(e)
	default:
		if _, ok := primitiveTypeNames[t.Kind]; !ok {
			return fmt.Errorf("%w: kind %d", ErrInvalidTypeTag, t.Kind)
		}
		return nil
	}
}

func (s StructTag) MarshalBCS(e *bcs.Encoder) error {
	WriteAddress(e, s.Address)
	e.WriteString(s.Module)
	e.WriteString(s.Name)
	e.WriteLength(len(s.TypeParams))
	for _, param := range s.TypeParams {
		if err := param.MarshalBCS(e); err != nil {
			return err
		}
	}
	return nil
}

func (t *TypeTag) UnmarshalBCS(d *bcs.Decoder) error {
	tmp, err := ReadTypeTag(d)
	if err != nil {
		return err
	}
	*t = tmp
	return nil
}

func ReadTypeTag(d *bcs.Decoder) (TypeTag, error) {
	return readTypeTag(d, 0)
}

func readTypeTag(d *bcs.Decoder, depth int) (TypeTag, error) {
	if depth > MaxTypeTagDepth {
		return TypeTag{}, d.Errorf(ErrInvalidTypeTag, "nested deeper than %d", MaxTypeTagDepth)
	}
	idx, err := d.ReadVariant()
	if err != nil {
		return TypeTag{}, err
	}
	kind := TypeTagKind(idx)
	switch kind {
	case TypeVector:
		elem, err := readTypeTag(d, depth+1)
		if err != nil {
			return TypeTag{}, err
		}
		return NewVectorTypeTag(elem), nil
	case TypeStruct:
		tag, err := readStructTag(d, depth)
		if err != nil {
			return TypeTag{}, err
		}
		return NewStructTypeTag(tag), nil
	default:
		if _, ok := primitiveTypeNames[kind]; !ok {
			return TypeTag{}, d.InvalidVariant("TypeTag", idx)
		}
		return NewPrimitiveTypeTag(kind), nil
	}
}

func ReadStructTag(d *bcs.Decoder) (StructTag, error) {
	return readStructTag(d, 0)
}

func readStructTag(d *bcs.Decoder, depth int) (StructTag, error) {
	var ret StructTag
	var err error
	if ret.Address, err = ReadAddress(d); err != nil {
		return ret, err
	}
	if ret.Module, err = d.ReadString(); err != nil {
		return ret, err
	}
	if ret.Name, err = d.ReadString(); err != nil {
		return ret, err
	}
	ret.TypeParams, err = bcs.ReadSequence(d, func(d *bcs.Decoder) (TypeTag, error) {
		return readTypeTag(d, depth+1)
	})
	return ret, err
}

// ParseTypeTag parses the textual form of a type, such as
// "0x2::coin::Coin<0x2::sui::SUI>" or "vector<u8>"
func ParseTypeTag(s string) (TypeTag, error) {
	p := &typeParser{input: s}
	ret, err := p.parseType()
	if err != nil {
		return TypeTag{}, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return TypeTag{}, p.errorf("unexpected %q", p.input[p.pos:])
	}
	return ret, nil
}

// MustParseTypeTag is like ParseTypeTag but panics on error
func MustParseTypeTag(s string) TypeTag {
	t, err := ParseTypeTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseStructTag parses a struct type string
func ParseStructTag(s string) (StructTag, error) {
	t, err := ParseTypeTag(s)
	if err != nil {
		return StructTag{}, err
	}
	if t.Kind != TypeStruct {
		return StructTag{}, fmt.Errorf("%w: %q is not a struct type", ErrInvalidTypeTag, s)
	}
	return *t.Struct, nil
}

// NormalizeTypeString returns the canonical text of a type, with long-form addresses
func NormalizeTypeString(s string) (string, error) {
	t, err := ParseTypeTag(s)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

type typeParser struct {
	input string
	pos   int
	depth int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf(
		"%w: %q at offset %d: %s",
		ErrInvalidTypeTag,
		p.input,
		p.pos,
		fmt.Sprintf(format, args...),
	)
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

func (p *typeParser) accept(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.accept(tok) {
		return p.errorf("expected %q", tok)
	}
	return nil
}

func (p *typeParser) parseType() (TypeTag, error) {
	if p.depth > MaxTypeTagDepth {
		return TypeTag{}, p.errorf("nested deeper than %d", MaxTypeTagDepth)
	}
	p.depth++
	defer func() { p.depth-- }()
	word := p.ident()
	if word == "" {
		return TypeTag{}, p.errorf("expected type")
	}
	for kind, name := range primitiveTypeNames {
		if word == name {
			return NewPrimitiveTypeTag(kind), nil
		}
	}
	if word == "vector" {
		if err := p.expect("<"); err != nil {
			return TypeTag{}, err
		}
		elem, err := p.parseType()
		if err != nil {
			return TypeTag{}, err
		}
		if err := p.expect(">"); err != nil {
			return TypeTag{}, err
		}
		return NewVectorTypeTag(elem), nil
	}
	addr, err := ParseAddress(word)
	if err != nil {
		return TypeTag{}, p.errorf("bad address %q", word)
	}
	tag := StructTag{Address: addr}
	if err := p.expect("::"); err != nil {
		return TypeTag{}, err
	}
	if tag.Module = p.ident(); tag.Module == "" {
		return TypeTag{}, p.errorf("expected module name")
	}
	if err := p.expect("::"); err != nil {
		return TypeTag{}, err
	}
	if tag.Name = p.ident(); tag.Name == "" {
		return TypeTag{}, p.errorf("expected struct name")
	}
	if p.accept("<") {
		for {
			param, err := p.parseType()
			if err != nil {
				return TypeTag{}, err
			}
			tag.TypeParams = append(tag.TypeParams, param)
			if p.accept(",") {
				continue
			}
			if err := p.expect(">"); err != nil {
				return TypeTag{}, err
			}
			break
		}
	}
	return NewStructTypeTag(tag), nil
}
