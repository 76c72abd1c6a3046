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
	"sync"
)

// BuildPlugin is middleware around the build pipeline. It may change the
// transaction before calling next and inspect the result afterwards. A
// plugin must call next exactly once unless it returns an error.
type BuildPlugin func(ctx context.Context, bc *BuildContext, next func() error) error

var ErrNextNotCalled = errors.New("build plugin did not call next")

type namedPlugin struct {
	name   string
	plugin BuildPlugin
}

var globalPlugins = struct {
	sync.RWMutex
	build   []namedPlugin
	intents map[string]BuildPlugin
}{
	intents: make(map[string]BuildPlugin),
}

// RegisterGlobalBuildPlugin adds a plugin that runs for every transaction.
// Registering a name again replaces the earlier plugin in place.
func RegisterGlobalBuildPlugin(name string, plugin BuildPlugin) {
	globalPlugins.Lock()
	defer globalPlugins.Unlock()
	for i, p := range globalPlugins.build {
		if p.name == name {
			globalPlugins.build[i].plugin = plugin
			return
		}
	}
	globalPlugins.build = append(globalPlugins.build, namedPlugin{name: name, plugin: plugin})
}

func UnregisterGlobalBuildPlugin(name string) {
	globalPlugins.Lock()
	defer globalPlugins.Unlock()
	for i, p := range globalPlugins.build {
		if p.name == name {
			globalPlugins.build = append(globalPlugins.build[:i:i], globalPlugins.build[i+1:]...)
			return
		}
	}
}

// RegisterGlobalIntentResolver sets the resolver used for intents of the
// given name when a transaction has none of its own
func RegisterGlobalIntentResolver(name string, resolver BuildPlugin) {
	globalPlugins.Lock()
	defer globalPlugins.Unlock()
	globalPlugins.intents[name] = resolver
}

func UnregisterGlobalIntentResolver(name string) {
	globalPlugins.Lock()
	defer globalPlugins.Unlock()
	delete(globalPlugins.intents, name)
}

func registeredBuildPlugins() []BuildPlugin {
	globalPlugins.RLock()
	defer globalPlugins.RUnlock()
	ret := make([]BuildPlugin, 0, len(globalPlugins.build))
	for _, p := range globalPlugins.build {
		ret = append(ret, p.plugin)
	}
	return ret
}

func registeredIntentResolver(name string) (BuildPlugin, bool) {
	globalPlugins.RLock()
	defer globalPlugins.RUnlock()
	ret, ok := globalPlugins.intents[name]
	return ret, ok
}

// runPlugins runs plugins in order around final
func runPlugins(ctx context.Context, bc *BuildContext, plugins []BuildPlugin, final func() error) error {
	var step func(i int) error
	step = func(i int) error {
		if i == len(plugins) {
			return final()
		}
		called := false
		var nextErr error
		err := plugins[i](ctx, bc, func() error {
			if called {
				return fmt.Errorf("build plugin %d called next twice", i)
			}
			called = true
			nextErr = step(i + 1)
			return nextErr
		})
		if err != nil {
			return err
		}
		if !called {
			return fmt.Errorf("%w: plugin %d", ErrNextNotCalled, i)
		}
		// A plugin that swallows an error from next does not hide it
		return nextErr
	}
	return step(0)
}

// intentResolvers returns the resolvers for the intents present in the
// transaction, in order of first appearance
func intentResolvers(data *TransactionData, local map[string]BuildPlugin) ([]BuildPlugin, error) {
	var ret []BuildPlugin
	seen := make(map[string]struct{})
	for cmdIndex, cmd := range data.commands {
		intent, ok := cmd.(*Intent)
		if !ok {
			continue
		}
		if _, ok := seen[intent.Name]; ok {
			continue
		}
		seen[intent.Name] = struct{}{}
		resolver, ok := local[intent.Name]
		if !ok {
			resolver, ok = registeredIntentResolver(intent.Name)
		}
		if !ok {
			return nil, newValidationError(
				-1,
				cmdIndex,
				fmt.Errorf("%w: no resolver for %s", ErrUnresolvedIntent, intent.Name),
			)
		}
		ret = append(ret, resolver)
	}
	return ret, nil
}
