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

// Package signer produces and checks the signatures that authorize
// transactions.
package signer

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/blinklabs-io/suitx/bcs"
	"github.com/blinklabs-io/suitx/types"
)

// IntentScope tells a signature which kind of message it covers
type IntentScope uint8

const (
	IntentScopeTransactionData IntentScope = 0
	IntentScopePersonalMessage IntentScope = 3
)

// Scheme is the signature scheme flag that prefixes serialized signatures
// and keys
type Scheme uint8

const (
	SchemeEd25519 Scheme = 0x00
)

var (
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// IntentMessage prefixes msg with the intent of the given scope, version 0
// and app id 0
func IntentMessage(scope IntentScope, msg []byte) []byte {
	ret := make([]byte, 0, len(msg)+3)
	ret = append(ret, byte(scope), 0, 0)
	return append(ret, msg...)
}

// IntentDigest is the hash that is actually signed
func IntentDigest(scope IntentScope, msg []byte) [32]byte {
	return types.Blake2b256Hash(IntentMessage(scope, msg))
}

// PersonalMessageDigest hashes a free-form message, which is signed as a
// BCS byte vector
func PersonalMessageDigest(msg []byte) [32]byte {
	e := bcs.NewEncoder()
	e.WriteBytes(msg)
	return IntentDigest(IntentScopePersonalMessage, e.Bytes())
}

// SerializeSignature returns base64(flag || signature || public key)
func SerializeSignature(scheme Scheme, signature []byte, publicKey []byte) string {
	buf := make([]byte, 0, 1+len(signature)+len(publicKey))
	buf = append(buf, byte(scheme))
	buf = append(buf, signature...)
	buf = append(buf, publicKey...)
	return base64.StdEncoding.EncodeToString(buf)
}

// ParseSerializedSignature splits a serialized signature into its parts
func ParseSerializedSignature(s string) (Scheme, []byte, []byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(raw) == 0 {
		return 0, nil, nil, fmt.Errorf("%w: empty", ErrInvalidSignature)
	}
	scheme := Scheme(raw[0])
	switch scheme {
	case SchemeEd25519:
		if len(raw) != 1+Ed25519SignatureSize+Ed25519PublicKeySize {
			return 0, nil, nil, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(raw))
		}
		sig := raw[1 : 1+Ed25519SignatureSize]
		return scheme, sig, raw[1+Ed25519SignatureSize:], nil
	default:
		return 0, nil, nil, fmt.Errorf("%w: unsupported scheme 0x%02x", ErrInvalidSignature, raw[0])
	}
}

// AddressFromPublicKey derives the address of a key
func AddressFromPublicKey(scheme Scheme, publicKey []byte) types.Address {
	return types.Address(types.Blake2b256Hash([]byte{byte(scheme)}, publicKey))
}
