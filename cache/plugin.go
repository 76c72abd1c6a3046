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
	"context"
	"slices"

	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
)

// Plugin returns a build plugin that fills unresolved object inputs and
// Move call parameter types from the cache before the build, and stores the
// parameter types learned by the build afterwards. Cache read failures fall
// back to the resolver.
func (c *ObjectCache) Plugin() transaction.BuildPlugin {
	return func(ctx context.Context, bc *transaction.BuildContext, next func() error) error {
		data := bc.Data
		logger := bc.Logger()
		for i, arg := range data.Inputs() {
			obj, ok := arg.(transaction.UnresolvedObjectArg)
			if !ok || obj.Version != nil || obj.InitialSharedVersion != nil {
				continue
			}
			entry, err := c.GetObject(obj.ObjectID)
			if err != nil {
				logger.Warn("object cache lookup failed", "object", obj.ObjectID, "error", err)
				continue
			}
			if entry == nil {
				continue
			}
			if entry.InitialSharedVersion != nil {
				obj.InitialSharedVersion = entry.InitialSharedVersion
			} else {
				obj.Version = &entry.Version
				obj.Digest = &entry.Digest
			}
			if err := data.ReplaceInput(i, obj); err != nil {
				return err
			}
		}
		for i, cmd := range data.Commands() {
			call, ok := cmd.(*transaction.MoveCall)
			if !ok || call.ArgumentTypes != nil {
				continue
			}
			fn, err := c.GetMoveFunction(call.Package, call.Module, call.Function)
			if err != nil {
				logger.Warn("object cache lookup failed", "function", call.Target(), "error", err)
				continue
			}
			if fn == nil {
				continue
			}
			if err := data.SetArgumentTypes(i, fn.Parameters); err != nil {
				return err
			}
		}

		if err := next(); err != nil {
			return err
		}

		for _, cmd := range data.Commands() {
			call, ok := cmd.(*transaction.MoveCall)
			if !ok || call.ArgumentTypes == nil {
				continue
			}
			err := c.AddMoveFunction(types.MoveFunction{
				Package:    call.Package,
				Module:     call.Module,
				Function:   call.Function,
				Parameters: slices.Clone(call.ArgumentTypes),
			})
			if err != nil {
				logger.Warn("could not cache move function", "function", call.Target(), "error", err)
			}
		}
		return nil
	}
}
