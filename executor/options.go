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

package executor

import (
	"log/slog"

	"github.com/blinklabs-io/suitx/cache"
	"github.com/blinklabs-io/suitx/transaction"
)

const DefaultGasBudget uint64 = 50_000_000

type Config struct {
	// Cache is created with the signer's address when nil
	Cache *cache.ObjectCache
	// DefaultGasBudget is used by SerialExecutor when a transaction has none
	DefaultGasBudget uint64
	Logger           *slog.Logger
	// BuildOptions are passed to every build after the executor's own
	BuildOptions []transaction.BuildOption
}

type Option func(*Config)

func DefaultConfig() Config {
	return Config{
		DefaultGasBudget: DefaultGasBudget,
	}
}

func WithCache(c *cache.ObjectCache) Option {
	return func(cfg *Config) {
		cfg.Cache = c
	}
}

func WithDefaultGasBudget(budget uint64) Option {
	return func(cfg *Config) {
		cfg.DefaultGasBudget = budget
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

func WithBuildOptions(opts ...transaction.BuildOption) Option {
	return func(cfg *Config) {
		cfg.BuildOptions = append(cfg.BuildOptions, opts...)
	}
}

func newConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}
