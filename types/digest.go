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

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	DigestLength   = 32
	Blake2b256Size = 32
)

var ErrInvalidDigest = errors.New("invalid digest")

// Digest is a 32 byte content hash, shown in base58
type Digest [DigestLength]byte

// ParseDigest decodes a base58 digest string
func ParseDigest(s string) (Digest, error) {
	var ret Digest
	raw := base58.Decode(s)
	if len(raw) != DigestLength {
		return ret, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidDigest, s, len(raw))
	}
	copy(ret[:], raw)
	return ret, nil
}

// MustParseDigest is like ParseDigest but panics on error
func MustParseDigest(s string) Digest {
	d, err := ParseDigest(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Digest) String() string {
	return base58.Encode(d[:])
}

func (d Digest) Bytes() []byte {
	return d[:]
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(data []byte) error {
	tmp, err := ParseDigest(string(data))
	if err != nil {
		return err
	}
	*d = tmp
	return nil
}

// MarshalBCS writes the digest as a length-prefixed byte vector, matching
// the on-chain layout
func (d Digest) MarshalBCS(e *bcs.Encoder) error {
	e.WriteBytes(d[:])
	return nil
}

func (d *Digest) UnmarshalBCS(dec *bcs.Decoder) error {
	tmp, err := ReadDigest(dec)
	if err != nil {
		return err
	}
	*d = tmp
	return nil
}

func ReadDigest(d *bcs.Decoder) (Digest, error) {
	var ret Digest
	raw, err := d.ReadBytes()
	if err != nil {
		return ret, err
	}
	if len(raw) != DigestLength {
		return ret, fmt.Errorf("%w: length %d", ErrInvalidDigest, len(raw))
	}
	copy(ret[:], raw)
	return ret, nil
}

// Blake2b256Hash generates a Blake2b-256 hash over the concatenation of the
// provided data
func Blake2b256Hash(data ...[]byte) [Blake2b256Size]byte {
	tmpHash, err := blake2b.New256(nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	for _, chunk := range data {
		tmpHash.Write(chunk)
	}
	var ret [Blake2b256Size]byte
	copy(ret[:], tmpHash.Sum(nil))
	return ret
}

// HashTypedData hashes data under a "<typeTag>::" domain prefix
func HashTypedData(typeTag string, data []byte) Digest {
	return Digest(Blake2b256Hash([]byte(typeTag+"::"), data))
}
