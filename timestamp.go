// Copyright 2025 Meridian Network Authors
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

package meridian

import (
	"sync/atomic"
	"time"

	"github.com/meridianhq/gomeridian/wire"
)

// TimestampGenerator produces transaction start times that are unique across
// the whole process, even under concurrent callers. Under sustained high call
// rates issued values can run ahead of the wall clock; uniqueness is
// prioritized over tracking the clock exactly.
//
// One generator is shared by every scope in a client tree. It is constructed
// explicitly and passed by reference so tests can inject their own.
type TimestampGenerator struct {
	last  atomic.Int64
	drift atomic.Int64
	// now returns wall-clock nanoseconds and is replaceable in tests
	now func() int64
}

// NewTimestampGenerator returns a generator backed by the system clock
func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{
		now: func() int64 { return time.Now().UnixNano() },
	}
}

// Next issues a fresh unique timestamp. When adjustForDrift is set, the
// accumulated local/network clock offset is subtracted from the issued value.
func (g *TimestampGenerator) Next(adjustForDrift bool) wire.Timestamp {
	for {
		last := g.last.Load()
		candidate := g.now()
		if candidate <= last {
			candidate = last + 1
		}
		if g.last.CompareAndSwap(last, candidate) {
			if adjustForDrift {
				candidate -= g.drift.Load()
			}
			return wire.NewTimestampFromNanos(candidate)
		}
	}
}

// RecordDrift adds an observed local/network clock offset to the drift
// accumulator
func (g *TimestampGenerator) RecordDrift(d time.Duration) {
	g.drift.Add(int64(d))
}

// Drift returns the accumulated clock offset
func (g *TimestampGenerator) Drift() time.Duration {
	return time.Duration(g.drift.Load())
}
