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
	"strings"
)

// Pattern combinators. Rule declarations read as terms: the "?x" spelling
// is a variable wherever a sub-pattern is expected, and a "?x" string in a
// leaf position is a leaf variable.

func pvar(name string) *Pattern {
	return &Pattern{Var: name}
}

func pat(op Symbol, children ...*Pattern) *Pattern {
	return &Pattern{Op: op, Children: children}
}

func patLeaf(op Symbol, leaf interface{}, children ...*Pattern) *Pattern {
	p := &Pattern{Op: op, Children: children}
	if s, ok := leaf.(string); ok && strings.HasPrefix(s, "?") {
		p.LeafVar = s
	} else {
		p.Leaf = leaf
	}
	return p
}

// arg accepts either a ready pattern or a "?var" string.
func arg(v interface{}) *Pattern {
	switch x := v.(type) {
	case *Pattern:
		return x
	case string:
		return pvar(x)
	default:
		panic("pattern argument must be *Pattern or \"?var\"")
	}
}

func columnExpr(v interface{}) *Pattern {
	if s, ok := v.(string); ok && !strings.HasPrefix(s, "?") {
		panic("columnExpr takes a ?variable")
	}
	return patLeaf(SymColumn, v.(string))
}

func literalExpr(v string) *Pattern { return patLeaf(SymLiteral, v) }

func literalString(s string) *Pattern { return patLeaf(SymLiteral, s) }

func literalInt(i int64) *Pattern { return patLeaf(SymLiteral, i) }

func binaryExpr(l interface{}, op string, r interface{}) *Pattern {
	return patLeaf(SymBinary, op, arg(l), arg(r))
}

func funExpr(name string, args ...interface{}) *Pattern {
	children := make([]*Pattern, len(args))
	for i, a := range args {
		children[i] = arg(a)
	}
	return patLeaf(SymScalarFunc, strings.ToUpper(name), children...)
}

func aggFunExpr(name interface{}, argList interface{}) *Pattern {
	return aggFunExprD(name, argList, "?distinct")
}

func aggFunExprD(name interface{}, argList interface{}, distinctVar string) *Pattern {
	var leaf interface{}
	if s, ok := name.(string); ok {
		if strings.HasPrefix(s, "?") {
			leaf = s
		} else {
			leaf = strings.ToUpper(s)
		}
	}
	return patLeaf(SymAggFunc, leaf, arg(argList), pvar(distinctVar))
}

func castExpr(child interface{}, typeName interface{}) *Pattern {
	return patLeaf(SymCast, typeName, arg(child))
}

func aliasExpr(child interface{}, name interface{}) *Pattern {
	return patLeaf(SymAlias, name, arg(child))
}

func notExpr(child interface{}) *Pattern { return pat(SymNot, arg(child)) }

func negativeExpr(child interface{}) *Pattern { return pat(SymNegative, arg(child)) }

func inListExpr(needle, list, negated interface{}) *Pattern {
	return patLeaf(SymInList, negated, arg(needle), arg(list))
}

func caseExpr(operand, branches, elseExpr interface{}) *Pattern {
	return pat(SymCase, arg(operand), arg(branches), arg(elseExpr))
}

func nothing() *Pattern { return pat(SymNothing) }

func intervalExpr(value, unit interface{}) *Pattern {
	return patLeaf(SymInterval, unit, arg(value))
}

// Plan-level combinators.

func projectionPat(exprs, input interface{}) *Pattern {
	return pat(SymProjection, arg(exprs), arg(input))
}

func filterPat(pred, input interface{}) *Pattern {
	return pat(SymFilter, arg(pred), arg(input))
}

func aggregatePat(input, groups, aggs interface{}) *Pattern {
	return pat(SymAggregate, arg(input), arg(groups), arg(aggs))
}

func sortPat(input, keys interface{}) *Pattern {
	return pat(SymSort, arg(input), arg(keys))
}

func limitPat(n interface{}, input interface{}) *Pattern {
	return patLeaf(SymLimit, n, arg(input))
}

func offsetPat(n interface{}, input interface{}) *Pattern {
	return patLeaf(SymOffset, n, arg(input))
}

func joinPat(left, right, joinType, cond interface{}) *Pattern {
	return patLeaf(SymJoin, joinType, arg(left), arg(right), arg(cond))
}

func subqueryAliasPat(name, input interface{}) *Pattern {
	return patLeaf(SymSubqueryAlias, name, arg(input))
}

func distinctPat(input interface{}) *Pattern {
	return pat(SymDistinct, arg(input))
}

func cubeTablePat(name interface{}) *Pattern {
	if s, ok := name.(string); ok {
		return patLeaf(SymCubeTable, s)
	}
	return patLeaf(SymCubeTable, name)
}

func cubeScanPat(ref interface{}) *Pattern {
	return patLeaf(SymCubeScan, ref)
}

func wrapperPat(input interface{}) *Pattern {
	return pat(SymCubeScanWrapper, arg(input))
}

func dimensionMember(path interface{}) *Pattern {
	return patLeaf(SymDimensionMember, path)
}

func measureMember(path interface{}) *Pattern {
	return patLeaf(SymMeasureMember, path)
}

func segmentMember(path interface{}) *Pattern {
	return patLeaf(SymSegmentMember, path)
}

func timeDimensionMember(v interface{}) *Pattern {
	return patLeaf(SymTimeDimensionMember, v)
}
