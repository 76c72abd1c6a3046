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

	"github.com/blinklabs-io/suitx/bcs"
)

// ObjectRef pins an object to a specific version and content digest
type ObjectRef struct {
	ObjectID ObjectID `json:"objectId"`
	Version  uint64   `json:"version,string"`
	Digest   Digest   `json:"digest"`
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("%s@%d#%s", r.ObjectID, r.Version, r.Digest)
}

func (r ObjectRef) MarshalBCS(e *bcs.Encoder) error {
	WriteObjectRef(e, r)
	return nil
}

func (r *ObjectRef) UnmarshalBCS(d *bcs.Decoder) error {
	tmp, err := ReadObjectRef(d)
	if err != nil {
		return err
	}
	*r = tmp
	return nil
}

func WriteObjectRef(e *bcs.Encoder, r ObjectRef) {
	WriteAddress(e, r.ObjectID)
	e.WriteU64(r.Version)
	_ = r.Digest.MarshalBCS(e)
}

func ReadObjectRef(d *bcs.Decoder) (ObjectRef, error) {
	var ret ObjectRef
	var err error
	if ret.ObjectID, err = ReadAddress(d); err != nil {
		return ret, err
	}
	if ret.Version, err = d.ReadU64(); err != nil {
		return ret, err
	}
	if ret.Digest, err = ReadDigest(d); err != nil {
		return ret, err
	}
	return ret, nil
}

// Owner describes who may use an object
type Owner interface {
	isOwner()
	String() string
}

// AddressOwner is an object owned by an account
type AddressOwner struct {
	Address Address
}

// ObjectOwner is an object wrapped by, or a dynamic field of, another object
type ObjectOwner struct {
	Address Address
}

// SharedOwner is an object any transaction may use through consensus
type SharedOwner struct {
	InitialSharedVersion uint64
}

// ImmutableOwner is a frozen object or a package
type ImmutableOwner struct{}

func (AddressOwner) isOwner()   {}
func (ObjectOwner) isOwner()    {}
func (SharedOwner) isOwner()    {}
func (ImmutableOwner) isOwner() {}

func (o AddressOwner) String() string { return "AddressOwner(" + o.Address.String() + ")" }
func (o ObjectOwner) String() string  { return "ObjectOwner(" + o.Address.String() + ")" }
func (o SharedOwner) String() string {
	return fmt.Sprintf("Shared(%d)", o.InitialSharedVersion)
}
func (ImmutableOwner) String() string { return "Immutable" }

// ObjectInfo is what a resolver knows about the latest version of an object
type ObjectInfo struct {
	ObjectID ObjectID
	Version  uint64
	Digest   Digest
	Owner    Owner
	Type     string
}

func (o ObjectInfo) Ref() ObjectRef {
	return ObjectRef{
		ObjectID: o.ObjectID,
		Version:  o.Version,
		Digest:   o.Digest,
	}
}

// InitialSharedVersion returns the shared version when the object is shared
func (o ObjectInfo) InitialSharedVersion() (uint64, bool) {
	if shared, ok := o.Owner.(SharedOwner); ok {
		return shared.InitialSharedVersion, true
	}
	return 0, false
}

// Coin is a coin object with its balance
type Coin struct {
	Ref      ObjectRef
	CoinType string
	Balance  uint64
}
