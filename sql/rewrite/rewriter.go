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
	"sort"
	"time"

	"github.com/dolthub/go-cubesql/sql"
)

// StopReason says why the saturation loop ended.
type StopReason byte

const (
	// StopSaturated means no rule produced a new union.
	StopSaturated StopReason = iota
	// StopIterationLimit means the iteration budget was reached.
	StopIterationLimit
	// StopNodeLimit means the node budget was reached.
	StopNodeLimit
	// StopTimeLimit means the wall-clock budget was reached.
	StopTimeLimit
	// StopCancelled means the context was cancelled between iterations.
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopSaturated:
		return "saturated"
	case StopIterationLimit:
		return "iteration limit"
	case StopNodeLimit:
		return "node limit"
	case StopTimeLimit:
		return "time limit"
	default:
		return "cancelled"
	}
}

// RunReport summarizes a saturation run. Budget exhaustion is not an
// error: extraction proceeds from whatever graph was built.
type RunReport struct {
	Iterations int
	Unions     int
	Stop       StopReason
}

// Rewriter drives equality saturation of one e-graph against a compiled
// rule pack. The rewriter is CPU-bound and contains no suspension points;
// cancellation is only observed between iterations.
type Rewriter struct {
	graph *EGraph
	pack  *RulePack
	cfg   Config
}

// NewRewriter creates a driver over the given graph.
func NewRewriter(graph *EGraph, pack *RulePack, cfg Config) *Rewriter {
	return &Rewriter{graph: graph, pack: pack, cfg: cfg}
}

// Graph returns the graph being rewritten.
func (r *Rewriter) Graph() *EGraph { return r.graph }

type pendingMatch struct {
	rule  int
	root  ClassID
	subst *Subst
}

// Run saturates the graph: every iteration matches all rules against the
// current graph, applies the whole batch, then rebuilds. No rule sees the
// effects of another rule within the same iteration, which, together with
// lexicographic match ordering, makes outputs stable across runs.
func (r *Rewriter) Run(ctx *sql.Context) RunReport {
	span, ctx := ctx.Span("rewrite.saturate")
	defer span.Finish()

	report := RunReport{Stop: StopIterationLimit}
	deadline := time.Time{}
	if r.cfg.TimeBudget > 0 {
		deadline = time.Now().Add(r.cfg.TimeBudget)
	}

	for iter := 0; iter < r.cfg.MaxIterations; iter++ {
		if ctx.Cancelled() {
			report.Stop = StopCancelled
			return report
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			ctx.GetLogger().Info("rewrite budget exhausted: time")
			report.Stop = StopTimeLimit
			return report
		}

		matches := r.matchAll()
		unions := r.applyAll(matches)
		r.graph.Rebuild()

		report.Iterations = iter + 1
		report.Unions += unions
		ctx.GetLogger().Debugf("saturation iteration %d: %d matches, %d unions, %d nodes",
			iter+1, len(matches), unions, r.graph.NodeCount())

		if unions == 0 {
			report.Stop = StopSaturated
			return report
		}
		if r.graph.NodeCount() >= r.cfg.MaxNodes {
			ctx.GetLogger().Info("rewrite budget exhausted: nodes")
			report.Stop = StopNodeLimit
			return report
		}
	}
	ctx.GetLogger().Info("rewrite budget exhausted: iterations")
	return report
}

// matchAll collects every (rule, substitution) pair in deterministic
// order: rules are already name-sorted, classes ascend, and substitutions
// within a (rule, class) sort by fingerprint.
func (r *Rewriter) matchAll() []pendingMatch {
	var out []pendingMatch
	classIDs := r.graph.ClassIDs()
	for ri := range r.pack.rules {
		rule := &r.pack.rules[ri]
		count := 0
		for _, id := range classIDs {
			if r.graph.classes[id] == nil {
				continue
			}
			subs := rule.lhs.match(r.graph, id, newSubst(), nil)
			if len(subs) == 0 {
				continue
			}
			sort.Slice(subs, func(i, j int) bool {
				return subs[i].fingerprint() < subs[j].fingerprint()
			})
			for _, s := range subs {
				out = append(out, pendingMatch{rule: ri, root: id, subst: s})
				count++
				if count >= r.cfg.MaxMatchesPerRule {
					break
				}
			}
			if count >= r.cfg.MaxMatchesPerRule {
				break
			}
		}
	}
	return out
}

// applyAll applies a match batch, returning the number of unions that
// changed the graph.
func (r *Rewriter) applyAll(matches []pendingMatch) int {
	unions := 0
	for _, m := range matches {
		if r.graph.NodeCount() >= r.cfg.MaxNodes {
			break
		}
		rule := &r.pack.rules[m.rule]
		if rule.transform != nil && !rule.transform(r.graph, m.subst) {
			continue
		}
		rhs, err := rule.rhs.instantiate(r.graph, m.subst)
		if err != nil {
			// An applier that binds incompletely rejects the match.
			continue
		}
		before := r.graph.Find(m.root)
		after := r.graph.Find(rhs)
		if before != after {
			r.graph.Union(m.root, rhs)
			unions++
		}
	}
	return unions
}
