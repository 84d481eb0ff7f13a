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

	"github.com/dolthub/go-cubesql/sql"
)

// TransformFn inspects a match and decides whether the rule fires. It may
// bind derived variables consumed by the RHS. Transforms must be pure
// except for adding nodes to the graph.
type TransformFn func(g *EGraph, s *Subst) bool

// Rule is a named rewrite: when LHS matches a class, RHS is added and
// unioned with it. An optional transform gates the match and computes
// derived bindings.
type Rule struct {
	Name      string
	lhs       *Pattern
	rhs       *Pattern
	transform TransformFn
}

// NewRewrite creates an unconditional rule.
func NewRewrite(name string, lhs, rhs *Pattern) Rule {
	return Rule{Name: name, lhs: lhs, rhs: rhs}
}

// NewTransformingRewrite creates a rule gated by a transform function.
func NewTransformingRewrite(name string, lhs, rhs *Pattern, fn TransformFn) Rule {
	return Rule{Name: name, lhs: lhs, rhs: rhs, transform: fn}
}

// compile checks the rule's patterns. Compilation failures are fatal at
// engine construction.
func (r *Rule) compile() error {
	if err := compilePattern(r.lhs); err != nil {
		return sql.ErrRuleCompile.New(r.Name, err)
	}
	if err := compilePattern(r.rhs); err != nil {
		return sql.ErrRuleCompile.New(r.Name, err)
	}
	if r.transform == nil {
		// Without a transform every RHS variable must come from the LHS.
		bound := map[string]bool{}
		for _, v := range r.lhs.vars() {
			bound[v] = true
		}
		for _, v := range r.rhs.vars() {
			if !bound[v] {
				return sql.ErrRuleCompile.New(r.Name, "unbound RHS variable "+v)
			}
		}
	}
	return nil
}

// RulePack is a compiled, immutable rule set shared read-only across
// rewrites.
type RulePack struct {
	rules []Rule
}

// CompileRules compiles and orders a rule set. Rules apply in lexicographic
// name order, the first half of the determinism contract.
func CompileRules(rules []Rule) (*RulePack, error) {
	sorted := append([]Rule(nil), rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for i := range sorted {
		if err := sorted[i].compile(); err != nil {
			return nil, err
		}
	}
	return &RulePack{rules: sorted}, nil
}

// Rules returns the compiled rules in application order.
func (p *RulePack) Rules() []Rule { return p.rules }

// Len returns the number of rules in the pack.
func (p *RulePack) Len() int { return len(p.rules) }
