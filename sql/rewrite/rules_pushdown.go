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

// pushdownRules move filters, sorts and limits toward the leaves so the
// scan-compilation rules see them adjacent to cube scans.
func pushdownRules() []Rule {
	// A predicate may move beneath a projection only when it reads nothing
	// the projection computes: every column it references must flow
	// through from the input.
	predReadsOnlyInput := func(g *EGraph, s *Subst) bool {
		pred := g.Class(s.MustClass("?pred")).facts
		input := g.Class(s.MustClass("?input")).facts
		if len(pred.Columns) == 0 {
			return false
		}
		for c := range pred.Columns {
			if _, ok := input.Columns[c]; !ok {
				// Columns on base relations are visible even when the
				// input fact set is empty (a raw table leaf).
				if input.CubeRef.Kind != CubeRefSingle || (c.Table != "" && c.Table != input.CubeRef.Name) {
					return false
				}
			}
		}
		return true
	}

	return []Rule{
		NewTransformingRewrite("filter-under-projection",
			filterPat("?pred", projectionPat("?exprs", "?input")),
			projectionPat("?exprs", filterPat("?pred", "?input")),
			predReadsOnlyInput),

		NewTransformingRewrite("sort-under-projection",
			sortPat(projectionPat("?exprs", "?input"), "?keys"),
			projectionPat("?exprs", sortPat("?input", "?keys")),
			func(g *EGraph, s *Subst) bool {
				keys := g.Class(s.MustClass("?keys")).facts
				input := g.Class(s.MustClass("?input")).facts
				if len(keys.Columns) == 0 {
					return false
				}
				for c := range keys.Columns {
					if _, ok := input.Columns[c]; !ok {
						if input.CubeRef.Kind != CubeRefSingle || (c.Table != "" && c.Table != input.CubeRef.Name) {
							return false
						}
					}
				}
				return true
			}),

		// Filters commute; normalizing nested filters into one conjunction
		// gives the compiler a single predicate to translate.
		NewTransformingRewrite("filter-merge",
			filterPat("?p1", filterPat("?p2", "?input")),
			filterPat("?merged", "?input"),
			func(g *EGraph, s *Subst) bool {
				merged := g.add(SymBinary, "AND", s.MustClass("?p1"), s.MustClass("?p2"))
				s.Bind("?merged", merged)
				return true
			}),

		NewRewrite("limit-under-projection",
			limitPat("?n", projectionPat("?exprs", "?input")),
			projectionPat("?exprs", limitPat("?n", "?input"))),

		NewRewrite("offset-under-projection",
			offsetPat("?n", projectionPat("?exprs", "?input")),
			projectionPat("?exprs", offsetPat("?n", "?input"))),
	}
}
