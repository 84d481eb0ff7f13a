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

// wrapperRules add the wrapped-SQL alternative. Wrapping is semantically
// the identity, so promotion unions CubeScanWrapper(c) into c itself; the
// cost model then chooses the cheapest boundary, preferring no wrapper at
// all wherever a pure CubeScan exists. Rules keep rewriting inside the
// wrapped subtree because the wrapped nodes stay in their classes.
func wrapperRules() []Rule {
	return []Rule{
		NewTransformingRewrite("wrapper-promote",
			pvar("?x"),
			wrapperPat("?x"),
			func(g *EGraph, s *Subst) bool {
				id := s.MustClass("?x")
				class := g.Class(id)
				// Only cube-scoped plan subtrees are wrappable: the SQL
				// must have a relation to select from.
				if class.facts.CubeRef.Kind == CubeRefNone {
					return false
				}
				for _, n := range class.nodes {
					switch n.Op {
					case SymProjection, SymFilter, SymAggregate, SymSort,
						SymLimit, SymOffset, SymDistinct, SymJoin, SymUnion,
						SymSubqueryAlias, SymCubeTable:
						return true
					}
				}
				return false
			}),
	}
}
