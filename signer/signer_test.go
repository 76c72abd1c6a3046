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

package signer_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/blinklabs-io/suitx/signer"
	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

var _ transaction.Signer = (*signer.Ed25519Signer)(nil)

func testSigner(t *testing.T) *signer.Ed25519Signer {
	t.Helper()
	s, err := signer.NewEd25519Signer(bytes.Repeat([]byte{7}, signer.Ed25519SeedSize))
	require.NoError(t, err)
	return s
}

func TestAddress(t *testing.T) {
	s := testSigner(t)
	pub := s.PublicKey().Bytes()
	want := blake2b.Sum256(append([]byte{0x00}, pub...))
	assert.Equal(t, types.Address(want), s.Address())
	assert.Equal(t, s.Address(), signer.AddressFromPublicKey(signer.SchemeEd25519, pub))
}

func TestSignTransaction(t *testing.T) {
	s := testSigner(t)
	txBytes := []byte{0, 1, 2, 3}
	sig, err := s.SignTransaction(context.Background(), txBytes)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	require.Len(t, raw, 1+ed25519.SignatureSize+ed25519.PublicKeySize)
	assert.Equal(t, byte(0x00), raw[0])
	assert.Equal(t, s.PublicKey().Bytes(), raw[1+ed25519.SignatureSize:])

	digest := blake2b.Sum256(append([]byte{0, 0, 0}, txBytes...))
	assert.True(t, ed25519.Verify(s.PublicKey().Bytes(), digest[:], raw[1:1+ed25519.SignatureSize]))
	require.NoError(t, s.PublicKey().VerifyTransaction(txBytes, sig))

	err = s.PublicKey().VerifyTransaction([]byte{0, 1, 2}, sig)
	assert.ErrorIs(t, err, signer.ErrInvalidSignature)
	// A personal message signature does not verify as a transaction
	personal, err := s.SignPersonalMessage(context.Background(), txBytes)
	require.NoError(t, err)
	require.NoError(t, s.PublicKey().VerifyPersonalMessage(txBytes, personal))
	assert.ErrorIs(t, s.PublicKey().VerifyTransaction(txBytes, personal), signer.ErrInvalidSignature)
}

func TestVerifyOtherKey(t *testing.T) {
	s := testSigner(t)
	other, err := signer.NewEd25519Signer(bytes.Repeat([]byte{8}, signer.Ed25519SeedSize))
	require.NoError(t, err)
	sig, err := other.SignTransaction(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.ErrorIs(t, s.PublicKey().VerifyTransaction([]byte{1}, sig), signer.ErrInvalidSignature)
}

func TestSignCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testSigner(t).SignTransaction(ctx, []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublicKeyValidation(t *testing.T) {
	identity := make([]byte, 32)
	identity[0] = 1
	tests := []struct {
		name string
		key  []byte
	}{
		{name: "short", key: make([]byte, 31)},
		{name: "long", key: make([]byte, 33)},
		{name: "identity", key: identity},
		{name: "order four", key: make([]byte, 32)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := signer.NewEd25519PublicKey(test.key)
			assert.ErrorIs(t, err, signer.ErrInvalidPublicKey)
		})
	}
	_, err := signer.NewEd25519PublicKey(testSigner(t).PublicKey().Bytes())
	assert.NoError(t, err)
}

func TestParseSerializedSignature(t *testing.T) {
	tests := []struct {
		name string
		sig  string
	}{
		{name: "not base64", sig: "%%%"},
		{name: "empty", sig: ""},
		{name: "short", sig: base64.StdEncoding.EncodeToString(make([]byte, 10))},
		{name: "unknown scheme", sig: base64.StdEncoding.EncodeToString(append([]byte{0x05}, make([]byte, 96)...))},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, _, err := signer.ParseSerializedSignature(test.sig)
			assert.ErrorIs(t, err, signer.ErrInvalidSignature)
		})
	}
}

func TestNewEd25519SignerSeedLength(t *testing.T) {
	_, err := signer.NewEd25519Signer(make([]byte, 16))
	assert.ErrorIs(t, err, signer.ErrInvalidPrivateKey)
	s, err := signer.GenerateEd25519Signer(bytes.NewReader(bytes.Repeat([]byte{7}, 32)))
	require.NoError(t, err)
	assert.Equal(t, testSigner(t).Address(), s.Address())
}

func TestIntentMessage(t *testing.T) {
	assert.Equal(t, []byte{3, 0, 0, 9}, signer.IntentMessage(signer.IntentScopePersonalMessage, []byte{9}))
	assert.Equal(t, blake2b.Sum256([]byte{3, 0, 0, 1, 9}), signer.PersonalMessageDigest([]byte{9}))
}
