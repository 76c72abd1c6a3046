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

package transaction

import (
	"log/slog"
	"maps"
)

// Names of the protocol limits consulted while building
const (
	LimitMaxGasObjects       = "max_gas_payment_objects"
	LimitMaxPureArgumentSize = "max_pure_argument_size"
	LimitMaxTxSizeBytes      = "max_tx_size_bytes"
	LimitMaxTxGas            = "max_tx_gas"
)

// Limits maps protocol limit names to values
type Limits map[string]uint64

// DefaultLimits returns the values used when neither the options nor the
// resolver provide a limit
func DefaultLimits() Limits {
	return Limits{
		LimitMaxGasObjects:       256,
		LimitMaxPureArgumentSize: 16 * 1024,
		LimitMaxTxSizeBytes:      128 * 1024,
		LimitMaxTxGas:            50_000_000_000,
	}
}

// BuildConfig holds configuration for a single build.
type BuildConfig struct {
	// Resolver supplies chain data. It may be nil when everything is already resolved.
	Resolver DataResolver
	// Logger receives stage timings at debug level.
	Logger *slog.Logger
	// Metrics, when set, records build and stage counters.
	Metrics *BuildMetrics
	// Limits overrides protocol limits by name.
	Limits Limits
	// OnlyTransactionKind encodes only the programmable transaction and skips gas resolution.
	OnlyTransactionKind bool
	// Plugins run after the global plugins and before the transaction's own.
	Plugins []BuildPlugin
}

// DefaultBuildConfig returns a BuildConfig with no resolver and the default logger.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Logger: slog.Default(),
		Limits: Limits{},
	}
}

// BuildOption is a functional option for configuring a build.
type BuildOption func(*BuildConfig)

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(config BuildConfig) BuildOption {
	return func(c *BuildConfig) {
		*c = config
		if c.Limits == nil {
			c.Limits = Limits{}
		}
	}
}

func WithResolver(resolver DataResolver) BuildOption {
	return func(c *BuildConfig) {
		c.Resolver = resolver
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(c *BuildConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func WithMetrics(metrics *BuildMetrics) BuildOption {
	return func(c *BuildConfig) {
		c.Metrics = metrics
	}
}

// WithLimits merges limits over any set earlier.
func WithLimits(limits Limits) BuildOption {
	return func(c *BuildConfig) {
		if c.Limits == nil {
			c.Limits = Limits{}
		}
		maps.Copy(c.Limits, limits)
	}
}

func WithMaxGasObjects(n uint64) BuildOption {
	return WithLimits(Limits{LimitMaxGasObjects: n})
}

func WithMaxPureArgumentSize(n uint64) BuildOption {
	return WithLimits(Limits{LimitMaxPureArgumentSize: n})
}

func WithMaxTxSize(n uint64) BuildOption {
	return WithLimits(Limits{LimitMaxTxSizeBytes: n})
}

func WithMaxTxGas(n uint64) BuildOption {
	return WithLimits(Limits{LimitMaxTxGas: n})
}

func WithOnlyTransactionKind(onlyKind bool) BuildOption {
	return func(c *BuildConfig) {
		c.OnlyTransactionKind = onlyKind
	}
}

func WithPlugins(plugins ...BuildPlugin) BuildOption {
	return func(c *BuildConfig) {
		c.Plugins = append(c.Plugins, plugins...)
	}
}
