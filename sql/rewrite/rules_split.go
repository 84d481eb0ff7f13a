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

// splitRules handle outer-over-inner aggregation pairs. A pairing that
// preserves multiplicity collapses to a single aggregate; anything else is
// left for wrapper promotion rather than silently changing results.
func splitRules(cfg Config) []Rule {
	return []Rule{
		NewTransformingRewrite("aggregate-split-collapse",
			aggFunExprD("?outer", aggFunExprD("?inner", "?x", "?innerDistinct"), "?outerDistinct"),
			aggFunExprD("?collapsed", "?x", "?innerDistinct"),
			func(g *EGraph, s *Subst) bool {
				outerLeaf, _ := s.Leaf("?outer")
				innerLeaf, _ := s.Leaf("?inner")
				outer, ok1 := outerLeaf.(string)
				inner, ok2 := innerLeaf.(string)
				if !ok1 || !ok2 {
					return false
				}
				if distinctClassIsTrue(g, s, "?outerDistinct") || distinctClassIsTrue(g, s, "?innerDistinct") {
					// Distinct counts re-aggregate safely only over the
					// identical member; anything else changes the result.
					if outer != "COUNT" || inner != "COUNT" {
						return false
					}
					if !distinctClassIsTrue(g, s, "?outerDistinct") || !distinctClassIsTrue(g, s, "?innerDistinct") {
						return false
					}
					if _, ok := memberOf(g, s.MustClass("?x")); !ok {
						return false
					}
					s.BindLeaf("?collapsed", "COUNT")
					return true
				}
				collapsed, ok := collapseAggPair(outer, inner, cfg.DisableStrictAggTypeMatch)
				if !ok {
					return false
				}
				s.BindLeaf("?collapsed", collapsed)
				return true
			}),

		// A nested grouped scan re-grouped on the same dimensions with a
		// collapsible measure set folds into the inner request: the outer
		// aggregation cannot change any group's contents.
		NewTransformingRewrite("aggregate-over-aggregate-same-keys",
			aggregatePat(cubeScanPat("?ref"), "?groups", "?aggs"),
			cubeScanPat("?ref"),
			func(g *EGraph, s *Subst) bool {
				refLeaf, _ := s.Leaf("?ref")
				entry := g.requests.get(refLeaf.(requestRef))
				if entry == nil || entry.IsWrapped || entry.Request.Ungrouped {
					return false
				}
				groups, ok := listChildren(g, s.MustClass("?groups"), SymExprList)
				if !ok {
					return false
				}
				selected, ok := listChildren(g, s.MustClass("?aggs"), SymExprList)
				if !ok {
					return false
				}
				// Grouping keys must be exactly the inner request's
				// non-measure members.
				keyCount := 0
				for _, grp := range groups {
					m, ok := memberOf(g, grp)
					if !ok || m.Kind == SymMeasureMember || !entryHasMember(entry, m) {
						return false
					}
					keyCount++
				}
				if keyCount != len(entry.Request.Dimensions)+len(entry.Request.TimeDimensions) {
					return false
				}
				// Selected expressions must re-emit the inner outputs: the
				// split-collapse rule has already rewritten legal
				// outer(inner) pairs into plain members by the time this
				// fires.
				for _, sel := range selected {
					m, ok := memberOf(g, sel)
					if !ok || !entryHasMember(entry, m) {
						return false
					}
				}
				return true
			}),
	}
}

// distinctClassIsTrue reads the bound distinct flag of an aggregate
// application.
func distinctClassIsTrue(g *EGraph, s *Subst, name string) bool {
	id, ok := s.Class(name)
	if !ok {
		return false
	}
	v, ok := literalOf(g, id)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// collapseAggPair returns the single aggregation over the innermost
// argument equivalent to outer(inner(x)) applied per group, or false when
// the pairing changes multiplicity. Partial counts combine by summation,
// so both the SUM-spelled and COUNT-spelled rollups of an inner COUNT
// collapse back to the total COUNT.
func collapseAggPair(outer, inner string, relaxed bool) (string, bool) {
	switch {
	case outer == "SUM" && inner == "SUM":
		return "SUM", true
	case outer == "MIN" && inner == "MIN":
		return "MIN", true
	case outer == "MAX" && inner == "MAX":
		return "MAX", true
	case outer == "SUM" && inner == "COUNT":
		return "COUNT", true
	case outer == "COUNT" && inner == "COUNT":
		return "COUNT", true
	case outer == "MEASURE":
		return inner, true
	case relaxed && outer == "SUM":
		return inner, true
	default:
		return "", false
	}
}
