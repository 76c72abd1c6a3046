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

package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/suitx/types"
	_cbor "github.com/fxamacker/cbor/v2"
)

var ErrInvalidRecord = errors.New("invalid cache record")

var (
	encMode     _cbor.EncMode
	decMode     _cbor.DecMode
	modeErr     error
	modeErrOnce sync.Once
)

func getModes() (_cbor.EncMode, _cbor.DecMode, error) {
	modeErrOnce.Do(func() {
		encOptions := _cbor.CoreDetEncOptions()
		encMode, modeErr = encOptions.EncMode()
		if modeErr != nil {
			return
		}
		decOptions := _cbor.DecOptions{
			ExtraReturnErrors: _cbor.ExtraDecErrorUnknownField,
		}
		decMode, modeErr = decOptions.DecMode()
	})
	return encMode, decMode, modeErr
}

func encode(v any) ([]byte, error) {
	em, _, err := getModes()
	if err != nil {
		return nil, err
	}
	return em.Marshal(v)
}

func decode(data []byte, dest any) error {
	_, dm, err := getModes()
	if err != nil {
		return err
	}
	if err := dm.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// objectRecord is the stored form of an ObjectEntry
type objectRecord struct {
	_                    struct{} `cbor:",toarray"`
	ObjectID             []byte
	Version              uint64
	Digest               []byte
	Owner                []byte
	InitialSharedVersion *uint64
}

func encodeObject(entry ObjectEntry) ([]byte, error) {
	record := objectRecord{
		ObjectID:             entry.ObjectID.Bytes(),
		Version:              entry.Version,
		Digest:               entry.Digest.Bytes(),
		InitialSharedVersion: entry.InitialSharedVersion,
	}
	if entry.Owner != nil {
		record.Owner = entry.Owner.Bytes()
	}
	return encode(record)
}

func decodeObject(data []byte) (*ObjectEntry, error) {
	var record objectRecord
	if err := decode(data, &record); err != nil {
		return nil, err
	}
	ret := &ObjectEntry{
		Version:              record.Version,
		InitialSharedVersion: record.InitialSharedVersion,
	}
	if err := copyFixed(ret.ObjectID[:], record.ObjectID, "object id"); err != nil {
		return nil, err
	}
	if err := copyFixed(ret.Digest[:], record.Digest, "digest"); err != nil {
		return nil, err
	}
	if record.Owner != nil {
		var owner types.Address
		if err := copyFixed(owner[:], record.Owner, "owner"); err != nil {
			return nil, err
		}
		ret.Owner = &owner
	}
	return ret, nil
}

func copyFixed(dest []byte, src []byte, name string) error {
	if len(src) != len(dest) {
		return fmt.Errorf("%w: %s has %d bytes", ErrInvalidRecord, name, len(src))
	}
	copy(dest, src)
	return nil
}

// Move function signatures are stored with their JSON field names
func encodeMoveFunction(fn types.MoveFunction) ([]byte, error) {
	return encode(fn)
}

func decodeMoveFunction(data []byte) (*types.MoveFunction, error) {
	var ret types.MoveFunction
	if err := decode(data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}
