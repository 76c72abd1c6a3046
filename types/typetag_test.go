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
	"bytes"
	"strings"
	"testing"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longTwo = "0x" + strings.Repeat("0", 63) + "2"

func TestParseTypeTag(t *testing.T) {
	testDefs := []struct {
		input    string
		expected string
	}{
		{input: "u8", expected: "u8"},
		{input: "u256", expected: "u256"},
		{input: "address", expected: "address"},
		{input: "vector<u8>", expected: "vector<u8>"},
		{input: "vector< vector<bool> >", expected: "vector<vector<bool>>"},
		{
			input:    "0x2::sui::SUI",
			expected: longTwo + "::sui::SUI",
		},
		{
			input:    "0x2::coin::Coin<0x2::sui::SUI>",
			expected: longTwo + "::coin::Coin<" + longTwo + "::sui::SUI>",
		},
		{
			input:    "0x2::dynamic_field::Field<u64, vector<address>>",
			expected: longTwo + "::dynamic_field::Field<u64,vector<address>>",
		},
	}
	for _, testDef := range testDefs {
		tag, err := types.ParseTypeTag(testDef.input)
		require.NoError(t, err, "input %q", testDef.input)
		assert.Equal(t, testDef.expected, tag.String())
	}
}

func TestParseTypeTagErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"vector<u8",
		"0x2::coin",
		"0x2::coin::Coin<",
		"u8 u8",
		"zz::a::B",
		strings.Repeat("vector<", types.MaxTypeTagDepth+1) + "u8" + strings.Repeat(">", types.MaxTypeTagDepth+1),
	} {
		_, err := types.ParseTypeTag(input)
		assert.ErrorIs(t, err, types.ErrInvalidTypeTag, "input %q", input)
	}
}

func TestTypeTagBCS(t *testing.T) {
	tag := types.MustParseTypeTag("vector<0x2::coin::Coin<0x2::sui::SUI>>")
	raw, err := bcs.Encode(tag)
	require.NoError(t, err)
	assert.Equal(t, byte(types.TypeVector), raw[0])
	assert.Equal(t, byte(types.TypeStruct), raw[1])

	var decoded types.TypeTag
	require.NoError(t, bcs.Decode(raw, &decoded))
	assert.Equal(t, tag, decoded)

	// u16 uses the index added after signer
	raw, err = bcs.Encode(types.MustParseTypeTag("u16"))
	require.NoError(t, err)
	assert.Equal(t, []byte{8}, raw)

	err = bcs.Decode([]byte{11}, &decoded)
	assert.ErrorIs(t, err, bcs.ErrInvalidVariant)
}

func TestTypeTagDepth(t *testing.T) {
	nested := func(depth int) []byte {
		ret := bytes.Repeat([]byte{byte(types.TypeVector)}, depth)
		return append(ret, byte(types.TypeU8))
	}
	var decoded types.TypeTag
	require.NoError(t, bcs.Decode(nested(types.MaxTypeTagDepth), &decoded))
	_, err := types.ParseTypeTag(decoded.String())
	require.NoError(t, err)

	err = bcs.Decode(nested(types.MaxTypeTagDepth+1), &decoded)
	assert.ErrorIs(t, err, types.ErrInvalidTypeTag)
	var decErr *bcs.DecodingError
	assert.ErrorAs(t, err, &decErr)

	// Struct type parameters count towards the same bound
	raw := []byte{}
	for range types.MaxTypeTagDepth + 1 {
		raw = append(raw, byte(types.TypeStruct))
		raw = append(raw, types.SuiFrameworkAddress.Bytes()...)
		raw = append(raw, 0x01, 'm', 0x01, 'S', 0x01)
	}
	raw = append(raw, byte(types.TypeU8))
	err = bcs.Decode(raw, &decoded)
	assert.ErrorIs(t, err, types.ErrInvalidTypeTag)
}

func TestOpenSignatureToTypeTag(t *testing.T) {
	// Coin<T> instantiated with T = 0x2::sui::SUI
	body := types.OpenMoveTypeSignatureBody{
		Kind: types.BodyDatatype,
		Datatype: &types.MoveDatatype{
			Package: types.SuiFrameworkAddress,
			Module:  "coin",
			Type:    "Coin",
			TypeParameters: []types.OpenMoveTypeSignatureBody{
				{Kind: types.BodyTypeParameter, TypeParameter: 0},
			},
		},
	}
	tag, err := body.ToTypeTag([]types.TypeTag{types.MustParseTypeTag("0x2::sui::SUI")})
	require.NoError(t, err)
	assert.Equal(t, types.MustParseTypeTag("0x2::coin::Coin<0x2::sui::SUI>"), tag)

	_, err = body.ToTypeTag(nil)
	assert.ErrorIs(t, err, types.ErrInvalidTypeTag)

	vec := types.OpenMoveTypeSignatureBody{
		Kind:   types.BodyVector,
		Vector: &types.OpenMoveTypeSignatureBody{Kind: types.BodyU64},
	}
	tag, err = vec.ToTypeTag(nil)
	require.NoError(t, err)
	assert.Equal(t, "vector<u64>", tag.String())
}

func TestWithoutTxContext(t *testing.T) {
	txContext := types.OpenMoveTypeSignature{
		Ref: types.RefMutable,
		Body: types.OpenMoveTypeSignatureBody{
			Kind: types.BodyDatatype,
			Datatype: &types.MoveDatatype{
				Package: types.SuiFrameworkAddress,
				Module:  "tx_context",
				Type:    "TxContext",
			},
		},
	}
	amount := types.OpenMoveTypeSignature{
		Body: types.OpenMoveTypeSignatureBody{Kind: types.BodyU64},
	}
	params := types.WithoutTxContext([]types.OpenMoveTypeSignature{amount, txContext})
	assert.Equal(t, []types.OpenMoveTypeSignature{amount}, params)
	assert.True(t, amount.IsMutable())
	assert.False(t, types.OpenMoveTypeSignature{Ref: types.RefImmutable}.IsMutable())
}

func TestEffectsGasCoinRef(t *testing.T) {
	gasID := types.MustParseAddress("0x99")
	effects := &types.TransactionEffects{
		LamportVersion: 12,
		GasObject:      &gasID,
		ChangedObjects: []types.ChangedObject{
			{
				ObjectID: gasID,
				Output: types.ObjectOutputState{
					Kind:   types.OutputObjectWrite,
					Digest: types.Digest{9},
					Owner:  types.AddressOwner{Address: types.MustParseAddress("0xa")},
				},
			},
		},
	}
	ref, ok := effects.GasCoinRef()
	require.True(t, ok)
	assert.Equal(t, uint64(12), ref.Version)
	assert.Equal(t, types.Digest{9}, ref.Digest)
}
