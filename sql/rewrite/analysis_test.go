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

	"github.com/dolthub/go-cubesql/sql/cube"
)

func testMeta() *cube.MetaContext {
	return &cube.MetaContext{
		SchemaVersion: "v1",
		Cubes: []*cube.Cube{
			{
				Name: "Ecommerce",
				Dimensions: []cube.Dimension{
					{Name: "customer_gender", Type: "string"},
					{Name: "notes", Type: "string"},
					{Name: "order_date", Type: "time"},
				},
				Measures: []cube.Measure{
					{Name: "avgPrice", Type: cube.Avg},
					{Name: "count", Type: cube.Count},
				},
				Segments: []cube.Segment{
					{Name: "female_customers", SQL: "customer_gender = 'female'"},
				},
			},
			{
				Name: "MultiTypeCube",
				Dimensions: []cube.Dimension{
					{Name: "dim_str0", Type: "string"},
					{Name: "dim_str1", Type: "string"},
					{Name: "dim_num0", Type: "number"},
				},
				Measures: []cube.Measure{
					{Name: "measure_num0", Type: cube.Sum},
				},
			},
		},
	}
}

func TestConstantFoldingArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		l, r     interface{}
		expected interface{}
	}{
		{"int addition", "+", int64(2), int64(3), int64(5)},
		{"int multiplication", "*", int64(4), int64(5), int64(20)},
		{"float addition", "+", 1.5, 2.25, 3.75},
		{"mixed stays float", "+", int64(1), 0.5, 1.5},
		{"string concat", "||", "a", "b", "ab"},
		{"exact int division", "/", int64(6), int64(3), int64(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			g := NewEGraph(nil)
			l := g.add(SymLiteral, tt.l)
			r := g.add(SymLiteral, tt.r)
			sum := g.add(SymBinary, tt.op, l, r)

			c := g.Class(sum).Facts().Constant
			require.NotNil(c)
			require.Equal(tt.expected, c.Value)
		})
	}
}

func TestConstantFoldingDivisionByZero(t *testing.T) {
	g := NewEGraph(nil)
	l := g.add(SymLiteral, int64(1))
	r := g.add(SymLiteral, int64(0))
	div := g.add(SymBinary, "/", l, r)
	require.Nil(t, g.Class(div).Facts().Constant)
}

// Inexact integer division truncates at execution time, so it must not
// fold.
func TestConstantFoldingInexactIntDivision(t *testing.T) {
	g := NewEGraph(nil)
	l := g.add(SymLiteral, int64(1))
	r := g.add(SymLiteral, int64(2))
	div := g.add(SymBinary, "/", l, r)
	require.Nil(t, g.Class(div).Facts().Constant)
}

// Folded classes grow a literal node, so every extractable term of the
// class evaluates to the folded value.
func TestConstantFoldingInjectsLiteral(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(nil)
	l := g.add(SymLiteral, int64(2))
	r := g.add(SymLiteral, int64(3))
	sum := g.add(SymBinary, "+", l, r)

	var found bool
	for _, n := range g.Class(sum).Nodes() {
		if n.Op == SymLiteral {
			require.Equal(int64(5), n.Leaf)
			found = true
		}
	}
	require.True(found)
}

func TestCastFolding(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(nil)

	// Lossless cast folds.
	i := g.add(SymLiteral, int64(3))
	toFloat := g.add(SymCast, "DOUBLE", i)
	c := g.Class(toFloat).Facts().Constant
	require.NotNil(c)
	require.Equal(3.0, c.Value)

	// Lossy cast does not fold.
	f := g.add(SymLiteral, 3.7)
	toInt := g.add(SymCast, "BIGINT", f)
	require.Nil(g.Class(toInt).Facts().Constant)
}

func TestConstantMergeConflictInvalidates(t *testing.T) {
	a := Facts{Constant: &Constant{Value: int64(1)}}
	b := Facts{Constant: &Constant{Value: int64(2)}}
	require.Nil(t, mergeFacts(a, b).Constant)

	// Agreement keeps the value; one-sided knowledge propagates.
	c := mergeFacts(a, Facts{Constant: &Constant{Value: int64(1)}})
	require.Equal(t, int64(1), c.Constant.Value)
	d := mergeFacts(a, Facts{})
	require.Equal(t, int64(1), d.Constant.Value)
}

func TestOriginalExprMergePrefersShorter(t *testing.T) {
	a := Facts{OriginalExpr: "customer_gender"}
	b := Facts{OriginalExpr: "(customer_gender)"}
	require.Equal(t, "customer_gender", mergeFacts(a, b).OriginalExpr)
	require.Equal(t, "customer_gender", mergeFacts(b, a).OriginalExpr)
}

func TestCubeRefMerge(t *testing.T) {
	single := func(name string) CubeRef { return CubeRef{Kind: CubeRefSingle, Name: name} }
	tests := []struct {
		name string
		a, b CubeRef
		want CubeRef
	}{
		{"same single", single("A"), single("A"), single("A")},
		{"different singles", single("A"), single("B"), CubeRef{Kind: CubeRefMulti}},
		{"none absorbs", CubeRef{}, single("A"), single("A")},
		{"multi absorbs", CubeRef{Kind: CubeRefMulti}, single("A"), CubeRef{Kind: CubeRefMulti}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mergeCubeRef(tt.a, tt.b))
			require.Equal(t, tt.want, mergeCubeRef(tt.b, tt.a))
		})
	}
}

func TestColumnFactsResolveCube(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(testMeta())

	col := g.add(SymColumn, ColumnRef{Table: "Ecommerce", Name: "customer_gender"})
	facts := g.Class(col).Facts()
	require.Equal(CubeRefSingle, facts.CubeRef.Kind)
	require.Equal("Ecommerce", facts.CubeRef.Name)
	require.Contains(facts.Columns, ColumnRef{Table: "Ecommerce", Name: "customer_gender"})
	require.True(facts.TrivialPushDown)
}

func TestExprListFoldsToConstantList(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(nil)
	a := g.add(SymLiteral, "x")
	b := g.add(SymLiteral, "y")
	list := g.add(SymExprList, nil, a, b)

	c := g.Class(list).Facts().Constant
	require.NotNil(c)
	require.True(c.IsList)
	require.Equal([]interface{}{"x", "y"}, c.Values)
}

// Analysis facts survive union and rebuild monotonically.
func TestAnalysisMonotoneAcrossUnion(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(testMeta())

	colA := g.add(SymColumn, ColumnRef{Table: "Ecommerce", Name: "customer_gender"})
	colB := g.add(SymColumn, ColumnRef{Table: "MultiTypeCube", Name: "dim_str0"})
	g.Union(colA, colB)
	g.Rebuild()

	facts := g.Class(colA).Facts()
	require.Equal(CubeRefMulti, facts.CubeRef.Kind)
	require.Len(facts.Columns, 2)
}
