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

// algebraRules are dialect-independent normalizations. Constant folding
// itself lives in the analysis (folded classes grow literal nodes), so the
// rules here cover the shapes folding cannot reach.
func algebraRules() []Rule {
	return []Rule{
		NewRewrite("and-idempotent",
			binaryExpr("?x", "AND", "?x"),
			pvar("?x")),

		NewRewrite("or-idempotent",
			binaryExpr("?x", "OR", "?x"),
			pvar("?x")),

		NewRewrite("not-not",
			notExpr(notExpr("?x")),
			pvar("?x")),

		NewRewrite("negative-negative",
			negativeExpr(negativeExpr("?x")),
			pvar("?x")),

		NewTransformingRewrite("and-true-elimination",
			binaryExpr("?x", "AND", "?lit"),
			pvar("?x"),
			func(g *EGraph, s *Subst) bool {
				v, ok := literalOf(g, s.MustClass("?lit"))
				return ok && v == true
			}),

		NewTransformingRewrite("or-false-elimination",
			binaryExpr("?x", "OR", "?lit"),
			pvar("?x"),
			func(g *EGraph, s *Subst) bool {
				v, ok := literalOf(g, s.MustClass("?lit"))
				return ok && v == false
			}),

		// BI tools love literal-first comparisons; normalizing member-first
		// lets one filter compiler handle both spellings.
		NewTransformingRewrite("comparison-flip-literal-left",
			binaryExpr(literalExpr("?lit"), "?op", "?right"),
			binaryExpr("?right", "?flipped", literalExpr("?lit")),
			func(g *EGraph, s *Subst) bool {
				op, _ := s.Leaf("?op")
				flipped, ok := flipComparison(op.(string))
				if !ok {
					return false
				}
				if _, isLit := literalOf(g, s.MustClass("?right")); isLit {
					return false
				}
				s.BindLeaf("?flipped", flipped)
				return true
			}),

		NewRewrite("cast-cast-same",
			castExpr(castExpr("?x", "?t"), "?t"),
			castExpr("?x", "?t")),

		NewTransformingRewrite("in-list-single-value",
			inListExpr("?x", "?list", false),
			binaryExpr("?x", "=", "?value"),
			func(g *EGraph, s *Subst) bool {
				children, ok := listChildren(g, s.MustClass("?list"), SymExprList)
				if !ok || len(children) != 1 {
					return false
				}
				s.Bind("?value", children[0])
				return true
			}),

		// A simple CASE over an operand flattens to the searched form so
		// downstream rules see one shape.
		NewTransformingRewrite("case-expand-operand",
			caseExpr("?operand", "?branches", "?else"),
			caseExpr(nothing(), "?expanded", "?else"),
			func(g *EGraph, s *Subst) bool {
				operand := s.MustClass("?operand")
				if _, isNothing := nodeOfOp(g, operand, SymNothing); isNothing {
					return false
				}
				branches, ok := listChildren(g, s.MustClass("?branches"), SymExprList)
				if !ok {
					return false
				}
				expanded := make([]ClassID, len(branches))
				for i, b := range branches {
					branch, ok := nodeOfOp(g, b, SymCaseBranch)
					if !ok {
						return false
					}
					cond := g.add(SymBinary, "=", operand, branch.Children[0])
					expanded[i] = g.add(SymCaseBranch, nil, cond, branch.Children[1])
				}
				s.Bind("?expanded", g.add(SymExprList, nil, expanded...))
				return true
			}),

		// CASE WHEN c THEN v ELSE v END is v regardless of the condition.
		NewTransformingRewrite("case-same-branches",
			caseExpr(nothing(), "?branches", "?else"),
			pvar("?value"),
			func(g *EGraph, s *Subst) bool {
				branches, ok := listChildren(g, s.MustClass("?branches"), SymExprList)
				if !ok || len(branches) == 0 {
					return false
				}
				var value ClassID
				for i, b := range branches {
					branch, ok := nodeOfOp(g, b, SymCaseBranch)
					if !ok {
						return false
					}
					v := g.Find(branch.Children[1])
					if i == 0 {
						value = v
					} else if v != value {
						return false
					}
				}
				elseClass := s.MustClass("?else")
				if _, isNothing := nodeOfOp(g, elseClass, SymNothing); !isNothing {
					if g.Find(elseClass) != value {
						return false
					}
				}
				s.Bind("?value", value)
				return true
			}),

		NewRewrite("alias-of-alias",
			aliasExpr(aliasExpr("?x", "?inner"), "?outer"),
			aliasExpr("?x", "?outer")),
	}
}

func flipComparison(op string) (string, bool) {
	switch op {
	case "=", "<>", "!=":
		return op, true
	case "<":
		return ">", true
	case "<=":
		return ">=", true
	case ">":
		return "<", true
	case ">=":
		return "<=", true
	default:
		return "", false
	}
}
