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

// Package test holds fixtures shared by the tests of several packages
package test

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/blinklabs-io/suitx/types"
	"go.uber.org/goleak"
)

// LeakOptions returns the goleak options for packages that link the cache
// stores. glog, pulled in by ristretto and badger, starts a flush goroutine
// from its init that never exits.
func LeakOptions() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("github.com/golang/glog.(*loggingT).flushDaemon"),
	}
}

// DecodeHex decodes a hex fixture, panicking on bad input so it can be used
// inline. Whitespace and a leading 0x are ignored, which lets long
// encodings be split over several lines.
func DecodeHex(hexData string) []byte {
	hexData = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, hexData)
	hexData = strings.TrimPrefix(hexData, "0x")
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// Digest returns a stable digest derived from seed
func Digest(seed string) types.Digest {
	return types.HashTypedData("TestFixture", []byte(seed))
}

// ObjectRef returns a reference to object id at version whose digest is
// derived from both
func ObjectRef(id string, version uint64) types.ObjectRef {
	objectID := types.MustParseAddress(id)
	return types.ObjectRef{
		ObjectID: objectID,
		Version:  version,
		Digest:   Digest(fmt.Sprintf("%s@%d", objectID, version)),
	}
}
