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

package types_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestBase58(t *testing.T) {
	var d types.Digest
	for i := range d {
		d[i] = byte(i)
	}
	parsed, err := types.ParseDigest(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	// All-zero digests encode as 32 leading '1' characters
	assert.Equal(t, "11111111111111111111111111111111", types.Digest{}.String())

	_, err = types.ParseDigest("abc")
	assert.ErrorIs(t, err, types.ErrInvalidDigest)
}

func TestDigestBCSIsLengthPrefixed(t *testing.T) {
	d := types.Digest{0xff}
	raw, err := bcs.Encode(d)
	require.NoError(t, err)
	require.Len(t, raw, 33)
	assert.Equal(t, byte(32), raw[0])
	assert.Equal(t, byte(0xff), raw[1])

	var decoded types.Digest
	require.NoError(t, bcs.Decode(raw, &decoded))
	assert.Equal(t, d, decoded)

	// Wrong length vector
	err = bcs.Decode([]byte{0x01, 0xaa}, &decoded)
	assert.ErrorIs(t, err, types.ErrInvalidDigest)
}

func TestBlake2b256Hash(t *testing.T) {
	// blake2b-256 of the empty input
	expected := "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"
	hash := types.Blake2b256Hash()
	assert.Equal(t, expected, hex.EncodeToString(hash[:]))
	// Chunks hash the same as their concatenation
	assert.Equal(
		t,
		types.Blake2b256Hash([]byte("TransactionData::abc")),
		types.Blake2b256Hash([]byte("TransactionData::"), []byte("abc")),
	)
	assert.Equal(
		t,
		types.Digest(types.Blake2b256Hash([]byte("TransactionData::abc"))),
		types.HashTypedData("TransactionData", []byte("abc")),
	)
}

func TestObjectRefBCS(t *testing.T) {
	ref := types.ObjectRef{
		ObjectID: types.MustParseAddress("0x5"),
		Version:  7,
		Digest:   types.Digest{1, 2, 3},
	}
	raw, err := bcs.Encode(ref)
	require.NoError(t, err)
	assert.Len(t, raw, 32+8+1+32)
	var decoded types.ObjectRef
	require.NoError(t, bcs.Decode(raw, &decoded))
	assert.Equal(t, ref, decoded)
}
