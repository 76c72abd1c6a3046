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
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/suitx/bcs"
)

const AddressLength = 32

// Address identifies an account or, as ObjectID, an object
type Address [AddressLength]byte

// ObjectID shares the address space
type ObjectID = Address

var (
	MoveStdlibAddress   = MustParseAddress("0x1")
	SuiFrameworkAddress = MustParseAddress("0x2")
	SuiSystemAddress    = MustParseAddress("0x3")
	SuiSystemStateID    = MustParseAddress("0x5")
	ClockObjectID       = MustParseAddress("0x6")
	RandomObjectID      = MustParseAddress("0x8")
)

var ErrInvalidAddress = errors.New("invalid address")

// ParseAddress parses a hex address with or without the 0x prefix. Short
// forms such as "0x2" are left-padded with zeros.
func ParseAddress(s string) (Address, error) {
	var ret Address
	tmp := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if tmp == "" || len(tmp) > AddressLength*2 {
		return ret, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	if len(tmp)%2 != 0 {
		tmp = "0" + tmp
	}
	raw, err := hex.DecodeString(tmp)
	if err != nil {
		return ret, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	copy(ret[AddressLength-len(raw):], raw)
	return ret, nil
}

// MustParseAddress is like ParseAddress but panics on error
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// NormalizeAddress returns the canonical long form of a hex address string
func NormalizeAddress(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	tmp, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

func (a Address) MarshalBCS(e *bcs.Encoder) error {
	e.WriteFixedBytes(a[:])
	return nil
}

func (a *Address) UnmarshalBCS(d *bcs.Decoder) error {
	tmp, err := ReadAddress(d)
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// WriteAddress is the function form of Address.MarshalBCS for sequence helpers
func WriteAddress(e *bcs.Encoder, a Address) {
	e.WriteFixedBytes(a[:])
}

func ReadAddress(d *bcs.Decoder) (Address, error) {
	var ret Address
	raw, err := d.ReadFixedBytes(AddressLength)
	if err != nil {
		return ret, err
	}
	copy(ret[:], raw)
	return ret, nil
}
