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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatternMatchBindsVariables(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(nil)

	a := g.add(SymColumn, ColumnRef{Table: "t", Name: "a"})
	b := g.add(SymLiteral, int64(1))
	cmp := g.add(SymBinary, "=", a, b)

	p := binaryExpr("?l", "?op", "?r")
	subs := p.match(g, cmp, newSubst(), nil)
	require.Len(subs, 1)
	require.Equal(g.Find(a), g.Find(subs[0].MustClass("?l")))
	require.Equal(g.Find(b), g.Find(subs[0].MustClass("?r")))
	op, ok := subs[0].Leaf("?op")
	require.True(ok)
	require.Equal("=", op)
}

func TestPatternMatchRepeatedVariable(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(nil)

	a := g.add(SymColumn, ColumnRef{Table: "t", Name: "a"})
	b := g.add(SymColumn, ColumnRef{Table: "t", Name: "b"})
	sameAnd := g.add(SymBinary, "AND", a, a)
	diffAnd := g.add(SymBinary, "AND", a, b)

	p := binaryExpr("?x", "AND", "?x")
	require.Len(p.match(g, sameAnd, newSubst(), nil), 1)
	require.Empty(p.match(g, diffAnd, newSubst(), nil))
}

func TestPatternMatchExactLeaf(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(nil)

	week := g.add(SymLiteral, "week")
	col := g.add(SymColumn, ColumnRef{Table: "t", Name: "ts"})
	trunc := g.add(SymScalarFunc, "DATE_TRUNC", week, col)

	require.Len(funExpr("DATE_TRUNC", literalString("week"), "?c").match(g, trunc, newSubst(), nil), 1)
	require.Empty(funExpr("DATE_TRUNC", literalString("month"), "?c").match(g, trunc, newSubst(), nil))
	require.Empty(funExpr("LOWER", "?c").match(g, trunc, newSubst(), nil))
}

func TestPatternInstantiate(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(nil)

	a := g.add(SymColumn, ColumnRef{Table: "t", Name: "a"})
	s := newSubst()
	s.Bind("?x", a)
	s.BindLeaf("?g", "month")

	id, err := funExpr("DATE_TRUNC", literalExpr("?g"), "?x").instantiate(g, s)
	require.NoError(err)
	node, ok := nodeOfOp(g, id, SymScalarFunc)
	require.True(ok)
	require.Equal("DATE_TRUNC", node.Leaf)

	_, err = pvar("?unbound").instantiate(g, newSubst())
	require.Error(err)
}

func TestRuleCompileRejectsUnboundRHS(t *testing.T) {
	rule := NewRewrite("bad-rule", notExpr("?x"), pvar("?y"))
	_, err := CompileRules([]Rule{rule})
	require.Error(t, err)
}

func TestRuleCompileRejectsBadVariableSpelling(t *testing.T) {
	rule := NewRewrite("bad-spelling", pvar("x"), pvar("x"))
	_, err := CompileRules([]Rule{rule})
	require.Error(t, err)
}

func TestCompileRulesSortsByName(t *testing.T) {
	require := require.New(t)
	pack, err := CompileRules([]Rule{
		NewRewrite("z-rule", notExpr(notExpr("?x")), pvar("?x")),
		NewRewrite("a-rule", binaryExpr("?x", "AND", "?x"), pvar("?x")),
	})
	require.NoError(err)
	require.Equal("a-rule", pack.Rules()[0].Name)
	require.Equal("z-rule", pack.Rules()[1].Name)
}

func TestSubstFingerprintDeterministic(t *testing.T) {
	require := require.New(t)
	s1 := newSubst()
	s1.Bind("?a", 1)
	s1.Bind("?b", 2)
	s2 := newSubst()
	s2.Bind("?b", 2)
	s2.Bind("?a", 1)
	require.Equal(s1.fingerprint(), s2.fingerprint())
}
