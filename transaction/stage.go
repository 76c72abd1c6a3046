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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Stage is one step of the build pipeline.
type Stage interface {
	// Name returns the name of the stage for logging and metrics.
	Name() string
	// Process runs the stage against the build context. Stages mutate the
	// transaction data in place.
	Process(ctx context.Context, bc *BuildContext) error
}

// StageFunc is an adapter that allows using ordinary functions as Stage implementations.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, bc *BuildContext) error
}

// NewStageFunc creates a new StageFunc with the given name and processing function.
func NewStageFunc(name string, fn func(ctx context.Context, bc *BuildContext) error) *StageFunc {
	return &StageFunc{
		name: name,
		fn:   fn,
	}
}

// Name returns the name of the stage.
func (s *StageFunc) Name() string {
	return s.name
}

// Process calls the underlying function.
func (s *StageFunc) Process(ctx context.Context, bc *BuildContext) error {
	return s.fn(ctx, bc)
}

// BuildContext is the state shared by the plugins and stages of one build
type BuildContext struct {
	// Data is the transaction being built
	Data *TransactionData
	// Config is the effective build configuration
	Config BuildConfig
	// Bytes holds the encoded result once the serialize stage has run
	Bytes []byte

	limits map[string]uint64
}

func newBuildContext(data *TransactionData, config BuildConfig) *BuildContext {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &BuildContext{
		Data:   data,
		Config: config,
		limits: make(map[string]uint64),
	}
}

// Logger returns the build's logger
func (bc *BuildContext) Logger() *slog.Logger {
	return bc.Config.Logger
}

// Resolver returns the configured resolver or ErrNoResolver
func (bc *BuildContext) Resolver() (DataResolver, error) {
	if bc.Config.Resolver == nil {
		return nil, ErrNoResolver
	}
	return bc.Config.Resolver, nil
}

// Limit returns a protocol limit, preferring explicit options over the
// resolver and the resolver over the built-in defaults
func (bc *BuildContext) Limit(ctx context.Context, name string) (uint64, error) {
	if v, ok := bc.Config.Limits[name]; ok {
		return v, nil
	}
	if v, ok := bc.limits[name]; ok {
		return v, nil
	}
	v, ok := DefaultLimits()[name]
	if bc.Config.Resolver != nil {
		tmp, err := bc.Config.Resolver.GetProtocolLimit(ctx, name)
		switch {
		case err == nil:
			v, ok = tmp, true
		case errors.Is(err, ErrUnknownLimit):
		default:
			return 0, fmt.Errorf("get protocol limit %s: %w", name, err)
		}
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLimit, name)
	}
	bc.limits[name] = v
	return v, nil
}

// runStage runs one stage with timing, logging and metrics
func (bc *BuildContext) runStage(ctx context.Context, stage Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := stage.Process(ctx, bc)
	duration := time.Since(start)
	if bc.Config.Metrics != nil {
		bc.Config.Metrics.RecordStage(stage.Name(), duration, err)
	}
	bc.Logger().Debug(
		"build stage complete",
		"stage", stage.Name(),
		"duration", duration,
		"error", err,
	)
	return err
}
