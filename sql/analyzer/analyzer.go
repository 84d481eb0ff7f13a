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

// Package analyzer holds the canonicalizing passes that run over a plan
// before the e-graph rewrite. The passes are soft: a pass that fails logs
// and leaves its input unchanged.
package analyzer

import (
	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/transform"
)

// Rule is one analyzer pass.
type Rule struct {
	// Name of the rule, used in logs and tests.
	Name string
	// Apply transforms the plan.
	Apply func(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error)
}

// Analyzer runs the pre-rewrite pass battery.
type Analyzer struct {
	Meta  *cube.MetaContext
	Rules []Rule
}

// NewDefault creates an analyzer with the default pass order.
func NewDefault(meta *cube.MetaContext) *Analyzer {
	return &Analyzer{
		Meta: meta,
		Rules: []Rule{
			{"qualify_columns", qualifyColumns},
			{"normalize_plan", normalizePlan},
			{"erase_projection", eraseProjection},
			{"pushdown_filters", pushdownFilters},
			{"pushdown_sort", pushdownSort},
			{"pushdown_limit", pushdownLimit},
			{"split_meta_filters", splitMetaFilters},
		},
	}
}

// Analyze runs every pass in order. Pass failures keep the pre-pass plan
// and log at debug level; only the input being nil is an error.
func (a *Analyzer) Analyze(ctx *sql.Context, n sql.Node) (sql.Node, error) {
	if n == nil {
		return nil, sql.ErrPlanConversion.New("nil plan")
	}
	for _, rule := range a.Rules {
		next, _, err := rule.Apply(ctx, a, n)
		if err != nil {
			ctx.GetLogger().WithField("rule", rule.Name).WithError(err).Debug("analyzer pass failed, keeping input")
			continue
		}
		n = next
	}
	return n, nil
}

func getRule(a *Analyzer, name string) Rule {
	for _, r := range a.Rules {
		if r.Name == name {
			return r
		}
	}
	panic("no such rule: " + name)
}
