// Copyright 2025 Dolthub, Inc.
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

package rewrite

import (
	"time"
)

// Config is the rewrite configuration, threaded through the driver as a
// value. Tests construct a fresh config instead of toggling globals.
type Config struct {
	// PushDownPullUpSplit enables the aggregation split-point rules.
	PushDownPullUpSplit bool
	// DisableStrictAggTypeMatch allows an outer SUM over inner measures
	// whose aggregation type differs.
	DisableStrictAggTypeMatch bool
	// SQLPushDown enables wrapper promotion. With push-down disabled the
	// wrapper rules are not registered at all.
	SQLPushDown bool

	// MaxIterations caps saturation iterations.
	MaxIterations int
	// MaxNodes is the hard cap on e-nodes in the graph.
	MaxNodes int
	// MaxMatchesPerRule caps matches applied per rule per iteration.
	MaxMatchesPerRule int
	// TimeBudget is the wall-clock budget, zero meaning none.
	TimeBudget time.Duration

	// SchemaVersion invalidates the finalized-graph cache when the
	// semantic schema changes.
	SchemaVersion string
	// MaxConcurrentRewrites caps rewrites planning at once engine-wide.
	MaxConcurrentRewrites int
}

// DefaultConfig returns the default budgets.
func DefaultConfig() Config {
	return Config{
		PushDownPullUpSplit:   true,
		SQLPushDown:           true,
		MaxIterations:         30,
		MaxNodes:              10000,
		MaxMatchesPerRule:     500,
		MaxConcurrentRewrites: 8,
	}
}
