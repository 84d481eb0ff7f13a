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

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/expression"
	"github.com/dolthub/go-cubesql/sql/plan"
	"github.com/dolthub/go-cubesql/sql/transform"
	"github.com/dolthub/go-cubesql/sql/types"
)

func testMeta() *cube.MetaContext {
	return &cube.MetaContext{
		Cubes: []*cube.Cube{
			{
				Name: "Ecommerce",
				Dimensions: []cube.Dimension{
					{Name: "customer_gender", Type: "string"},
					{Name: "order_date", Type: "time"},
				},
				Measures: []cube.Measure{{Name: "avgPrice", Type: cube.Avg}},
			},
			{
				Name:       "Other",
				Dimensions: []cube.Dimension{{Name: "city", Type: "string"}},
			},
		},
	}
}

func testTable(t *testing.T, a *Analyzer) *plan.CubeTable {
	t.Helper()
	c, err := a.Meta.Cube("Ecommerce")
	require.NoError(t, err)
	return plan.NewCubeTable(c)
}

func TestEraseProjection(t *testing.T) {
	require := require.New(t)
	a := NewDefault(testMeta())
	rule := getRule(a, "erase_projection")
	table := testTable(t, a)

	// A projection that re-emits the table schema unchanged is elided.
	var exprs []sql.Expression
	for _, col := range table.Schema() {
		exprs = append(exprs, expression.NewGetFieldWithTable(col.Source, col.Name, col.Type))
	}
	node := plan.NewProject(exprs, table)
	out, identity, err := rule.Apply(sql.NewEmptyContext(), a, node)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)
	require.Equal(table, out)

	// A narrowing projection stays.
	node = plan.NewProject(exprs[:1], table)
	out, identity, err = rule.Apply(sql.NewEmptyContext(), a, node)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
	require.Equal(node, out)
}

func TestPushdownFilters(t *testing.T) {
	require := require.New(t)
	a := NewDefault(testMeta())
	rule := getRule(a, "pushdown_filters")
	table := testTable(t, a)

	gender := expression.NewGetFieldWithTable("Ecommerce", "customer_gender", types.Text)
	project := plan.NewProject([]sql.Expression{gender}, table)
	filter := plan.NewFilter(
		expression.NewEquals(gender, expression.NewLiteral("female", types.Text)),
		project,
	)

	out, identity, err := rule.Apply(sql.NewEmptyContext(), a, filter)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	outProject, ok := out.(*plan.Project)
	require.True(ok)
	_, ok = outProject.Child.(*plan.Filter)
	require.True(ok)
}

func TestPushdownFiltersKeepsComputedColumns(t *testing.T) {
	require := require.New(t)
	a := NewDefault(testMeta())
	rule := getRule(a, "pushdown_filters")
	table := testTable(t, a)

	// The filter reads an alias the projection computes; it cannot move.
	alias := expression.NewAlias("g", expression.NewFunction("LOWER",
		expression.NewGetFieldWithTable("Ecommerce", "customer_gender", types.Text)))
	project := plan.NewProject([]sql.Expression{alias}, table)
	filter := plan.NewFilter(
		expression.NewEquals(expression.NewGetField("g", types.Text), expression.NewLiteral("f", types.Text)),
		project,
	)

	out, identity, err := rule.Apply(sql.NewEmptyContext(), a, filter)
	require.NoError(err)
	require.Equal(transform.SameTree, identity)
	require.Equal(filter, out)
}

func TestSplitMetaFilters(t *testing.T) {
	require := require.New(t)
	a := NewDefault(testMeta())
	rule := getRule(a, "split_meta_filters")
	table := testTable(t, a)

	ecommerce := expression.NewEquals(
		expression.NewGetFieldWithTable("Ecommerce", "customer_gender", types.Text),
		expression.NewLiteral("female", types.Text))
	other := expression.NewEquals(
		expression.NewGetFieldWithTable("Other", "city", types.Text),
		expression.NewLiteral("berlin", types.Text))

	filter := plan.NewFilter(expression.NewAnd(ecommerce, other), table)
	out, identity, err := rule.Apply(sql.NewEmptyContext(), a, filter)
	require.NoError(err)
	require.Equal(transform.NewTree, identity)

	outer, ok := out.(*plan.Filter)
	require.True(ok)
	inner, ok := outer.Child.(*plan.Filter)
	require.True(ok)
	require.Equal(table, inner.Child)
}

func TestQualifyColumns(t *testing.T) {
	require := require.New(t)
	a := NewDefault(testMeta())
	c, err := a.Meta.Cube("Ecommerce")
	require.NoError(err)
	table := plan.NewCubeTableWithAlias(c, "e")

	project := plan.NewProject([]sql.Expression{
		expression.NewGetFieldWithTable("e", "customer_gender", types.Text),
		expression.NewGetField("avgPrice", types.Float64),
	}, table)

	out, _, err := getRule(a, "qualify_columns").Apply(sql.NewEmptyContext(), a, project)
	require.NoError(err)
	exprs := out.(*plan.Project).Projections
	require.Equal("Ecommerce", exprs[0].(*expression.GetField).Table())
	require.Equal("Ecommerce", exprs[1].(*expression.GetField).Table())
}

func TestNormalizePlanUniquifiesNames(t *testing.T) {
	require := require.New(t)
	a := NewDefault(testMeta())
	table := testTable(t, a)

	gender := expression.NewGetFieldWithTable("Ecommerce", "customer_gender", types.Text)
	project := plan.NewProject([]sql.Expression{gender, gender}, table)

	out, _, err := getRule(a, "normalize_plan").Apply(sql.NewEmptyContext(), a, project)
	require.NoError(err)
	names := out.Schema().Names()
	require.NotEqual(names[0], names[1])
}

// Analyze soft-fails: a failing pass leaves the plan unchanged.
func TestAnalyzeSoftFailure(t *testing.T) {
	require := require.New(t)
	a := NewDefault(testMeta())
	a.Rules = append([]Rule{{
		Name: "exploding_rule",
		Apply: func(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
			return nil, transform.SameTree, sql.ErrUnsupportedFeature.New("boom")
		},
	}}, a.Rules...)

	table := testTable(t, a)
	out, err := a.Analyze(sql.NewEmptyContext(), table)
	require.NoError(err)
	require.Equal(table, out)
}
