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

// joinRules recognize the BI top-k idiom: an ungrouped scan joined against
// a grouped derived table on shared dimensions. The pair collapses into a
// single scan carrying the inner request as a subquery join; the inner SQL
// itself is rendered later, when reconstruction has a transport.
func joinRules() []Rule {
	return []Rule{
		NewTransformingRewrite("grouped-subquery-join",
			joinPat(cubeScanPat("?outer"), subqueryAliasPat("?alias", cubeScanPat("?inner")), "?jt", "?cond"),
			cubeScanPat("?out"),
			func(g *EGraph, s *Subst) bool {
				outerLeaf, _ := s.Leaf("?outer")
				innerLeaf, _ := s.Leaf("?inner")
				outer := g.requests.get(outerLeaf.(requestRef))
				inner := g.requests.get(innerLeaf.(requestRef))
				if outer == nil || inner == nil || outer.IsWrapped || inner.IsWrapped {
					return false
				}
				// Outer must still be the raw relation, inner must be a
				// grouped sub-select; anything else is not the idiom.
				if !outer.Request.Ungrouped || inner.Request.Ungrouped || inner.Request.IsEmpty() {
					return false
				}
				jtLeaf, _ := s.Leaf("?jt")
				joinType, ok := jtLeaf.(string)
				if !ok || (joinType != "INNER" && joinType != "LEFT") {
					return false
				}
				aliasLeaf, _ := s.Leaf("?alias")
				alias, ok := aliasLeaf.(string)
				if !ok || alias == "" {
					return false
				}
				condClass := s.MustClass("?cond")
				if _, isNothing := nodeOfOp(g, condClass, SymNothing); isNothing {
					return false
				}
				// The ON condition must reference the outer cube through
				// members; freeze it for later rendering.
				condFacts := g.Class(condClass).facts
				if condFacts.CubeRef.Kind == CubeRefNone {
					return false
				}
				on, ok := snapshotTerm(g, condClass)
				if !ok || !termMentionsMember(on) {
					return false
				}

				out := outer.clone()
				out.Joins = append(out.Joins, PendingJoin{
					Inner:    innerLeaf.(requestRef),
					On:       on,
					JoinType: joinType,
					Alias:    alias,
				})
				s.BindLeaf("?out", g.requests.intern(out))
				return true
			}),
	}
}

func termMentionsMember(t *Term) bool {
	switch t.Op {
	case SymDimensionMember, SymMeasureMember, SymSegmentMember, SymTimeDimensionMember:
		return true
	}
	for _, c := range t.Children {
		if termMentionsMember(c) {
			return true
		}
	}
	return false
}
