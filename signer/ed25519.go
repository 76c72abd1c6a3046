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

package signer

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"github.com/blinklabs-io/suitx/types"
)

const (
	Ed25519PublicKeySize = ed25519.PublicKeySize
	Ed25519SignatureSize = ed25519.SignatureSize
	Ed25519SeedSize      = ed25519.SeedSize
)

type Ed25519PublicKey struct {
	key ed25519.PublicKey
}

// NewEd25519PublicKey validates and wraps a raw public key. Keys that are not
// curve points or that have small order are rejected.
func NewEd25519PublicKey(data []byte) (*Ed25519PublicKey, error) {
	if len(data) != Ed25519PublicKeySize {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidPublicKey, len(data))
	}
	p := &edwards25519.Point{}
	if _, err := p.SetBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	isSmallOrder := (&edwards25519.Point{}).MultByCofactor(p).
		Equal(edwards25519.NewIdentityPoint()) ==
		1
	if isSmallOrder {
		return nil, fmt.Errorf("%w: small order point", ErrInvalidPublicKey)
	}
	return &Ed25519PublicKey{key: ed25519.PublicKey(append([]byte{}, data...))}, nil
}

func (k *Ed25519PublicKey) Bytes() []byte {
	return append([]byte{}, k.key...)
}

func (k *Ed25519PublicKey) Address() types.Address {
	return AddressFromPublicKey(SchemeEd25519, k.key)
}

// VerifyTransaction checks a serialized signature over transaction bytes
func (k *Ed25519PublicKey) VerifyTransaction(txBytes []byte, signature string) error {
	digest := IntentDigest(IntentScopeTransactionData, txBytes)
	return k.verifySerialized(digest[:], signature)
}

func (k *Ed25519PublicKey) VerifyPersonalMessage(msg []byte, signature string) error {
	digest := PersonalMessageDigest(msg)
	return k.verifySerialized(digest[:], signature)
}

func (k *Ed25519PublicKey) verifySerialized(digest []byte, signature string) error {
	scheme, sig, pub, err := ParseSerializedSignature(signature)
	if err != nil {
		return err
	}
	if scheme != SchemeEd25519 || !k.key.Equal(ed25519.PublicKey(pub)) {
		return fmt.Errorf("%w: signed by another key", ErrInvalidSignature)
	}
	if !ed25519.Verify(k.key, digest, sig) {
		return fmt.Errorf("%w: verification failed", ErrInvalidSignature)
	}
	return nil
}

// Ed25519Signer signs with an in-memory Ed25519 key
type Ed25519Signer struct {
	private ed25519.PrivateKey
	public  *Ed25519PublicKey
}

// NewEd25519Signer builds a signer from a 32 byte seed
func NewEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != Ed25519SeedSize {
		return nil, fmt.Errorf("%w: seed length %d", ErrInvalidPrivateKey, len(seed))
	}
	private := ed25519.NewKeyFromSeed(seed)
	public, err := NewEd25519PublicKey(private.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &Ed25519Signer{private: private, public: public}, nil
}

// GenerateEd25519Signer creates a signer with a random key
func GenerateEd25519Signer(rand io.Reader) (*Ed25519Signer, error) {
	seed := make([]byte, Ed25519SeedSize)
	if _, err := io.ReadFull(rand, seed); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return NewEd25519Signer(seed)
}

func (s *Ed25519Signer) PublicKey() *Ed25519PublicKey {
	return s.public
}

func (s *Ed25519Signer) Address() types.Address {
	return s.public.Address()
}

// Sign signs an already hashed message and returns the raw signature
func (s *Ed25519Signer) Sign(digest []byte) []byte {
	return ed25519.Sign(s.private, digest)
}

// SignTransaction returns the serialized signature of transaction bytes
func (s *Ed25519Signer) SignTransaction(ctx context.Context, txBytes []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	digest := IntentDigest(IntentScopeTransactionData, txBytes)
	return SerializeSignature(SchemeEd25519, s.Sign(digest[:]), s.public.key), nil
}

func (s *Ed25519Signer) SignPersonalMessage(ctx context.Context, msg []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	digest := PersonalMessageDigest(msg)
	return SerializeSignature(SchemeEd25519, s.Sign(digest[:]), s.public.key), nil
}
