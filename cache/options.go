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
	"log/slog"

	"github.com/blinklabs-io/suitx/types"
)

type Option func(*ObjectCache)

// WithStore sets the backing store. The default is a MemoryStore.
func WithStore(store Store) Option {
	return func(c *ObjectCache) {
		c.store = store
	}
}

// WithAddress sets the address whose owned objects the cache tracks.
// Objects that move to any other address are dropped when effects are
// applied.
func WithAddress(address types.Address) Option {
	return func(c *ObjectCache) {
		c.address = &address
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *ObjectCache) {
		c.logger = logger
	}
}
