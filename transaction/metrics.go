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
	"sync"
	"sync/atomic"
	"time"
)

// BuildMetrics tracks build and stage counters. It is safe to share between
// concurrent builds.
type BuildMetrics struct {
	buildsStarted   atomic.Uint64
	buildsSucceeded atomic.Uint64
	buildsFailed    atomic.Uint64

	mu            sync.RWMutex
	stages        map[string]*StageStats
	lastBuildTime time.Time
	startTime     time.Time
}

// StageStats summarizes the runs of one pipeline stage
type StageStats struct {
	Runs          uint64
	Errors        uint64
	TotalDuration time.Duration
}

// BuildStats is a snapshot of BuildMetrics
type BuildStats struct {
	BuildsStarted   uint64
	BuildsSucceeded uint64
	BuildsFailed    uint64
	Stages          map[string]StageStats
	LastBuildTime   time.Time
	StartTime       time.Time
}

func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{
		stages:    make(map[string]*StageStats),
		startTime: time.Now(),
	}
}

func (m *BuildMetrics) RecordBuildStart() {
	m.buildsStarted.Add(1)
}

// RecordBuild records the outcome of a build
func (m *BuildMetrics) RecordBuild(err error) {
	if err != nil {
		m.buildsFailed.Add(1)
		return
	}
	m.buildsSucceeded.Add(1)
	m.mu.Lock()
	m.lastBuildTime = time.Now()
	m.mu.Unlock()
}

// RecordStage records one run of a stage
func (m *BuildMetrics) RecordStage(name string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.stages[name]
	if !ok {
		stats = &StageStats{}
		m.stages[name] = stats
	}
	stats.Runs++
	stats.TotalDuration += duration
	if err != nil {
		stats.Errors++
	}
}

// Stats returns a snapshot of the current metrics.
func (m *BuildMetrics) Stats() BuildStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stages := make(map[string]StageStats, len(m.stages))
	for name, stats := range m.stages {
		stages[name] = *stats
	}
	return BuildStats{
		BuildsStarted:   m.buildsStarted.Load(),
		BuildsSucceeded: m.buildsSucceeded.Load(),
		BuildsFailed:    m.buildsFailed.Load(),
		Stages:          stages,
		LastBuildTime:   m.lastBuildTime,
		StartTime:       m.startTime,
	}
}
