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

package parse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/expression"
	"github.com/dolthub/go-cubesql/sql/plan"
)

func testMeta() *cube.MetaContext {
	return &cube.MetaContext{
		Cubes: []*cube.Cube{{
			Name: "Ecommerce",
			Dimensions: []cube.Dimension{
				{Name: "customer_gender", Type: "string"},
				{Name: "order_date", Type: "time"},
			},
			Measures: []cube.Measure{{Name: "avgPrice", Type: cube.Avg}},
		}},
	}
}

func parseQuery(t *testing.T, query string) sql.Node {
	t.Helper()
	node, err := Parse(sql.NewEmptyContext(), testMeta(), query)
	require.NoError(t, err)
	return node
}

func TestParseSimpleProjection(t *testing.T) {
	require := require.New(t)
	node := parseQuery(t, "SELECT customer_gender FROM Ecommerce")

	project, ok := node.(*plan.Project)
	require.True(ok)
	require.Len(project.Projections, 1)
	_, ok = project.Child.(*plan.CubeTable)
	require.True(ok)
}

func TestParseGroupByOrdinal(t *testing.T) {
	require := require.New(t)
	node := parseQuery(t, "SELECT customer_gender, AVG(avgPrice) FROM Ecommerce GROUP BY 1")

	groupBy, ok := node.(*plan.GroupBy)
	require.True(ok)
	require.Len(groupBy.SelectedExprs, 2)
	require.Len(groupBy.GroupByExprs, 1)

	// The ordinal resolves to the select item itself.
	gf, ok := groupBy.GroupByExprs[0].(*expression.GetField)
	require.True(ok)
	require.Equal("customer_gender", gf.Name())
}

func TestParseGroupByAlias(t *testing.T) {
	require := require.New(t)
	node := parseQuery(t, "SELECT customer_gender g, AVG(avgPrice) m FROM Ecommerce GROUP BY g")

	groupBy, ok := node.(*plan.GroupBy)
	require.True(ok)
	gf, ok := groupBy.GroupByExprs[0].(*expression.GetField)
	require.True(ok)
	require.Equal("customer_gender", gf.Name())
}

func TestParseOrderByAliasAndLimit(t *testing.T) {
	require := require.New(t)
	node := parseQuery(t,
		"SELECT customer_gender g, AVG(avgPrice) m FROM Ecommerce GROUP BY g ORDER BY m DESC LIMIT 20")

	limit, ok := node.(*plan.Limit)
	require.True(ok)
	require.Equal(int64(20), limit.Limit)

	sort, ok := limit.Child.(*plan.Sort)
	require.True(ok)
	require.Len(sort.SortFields, 1)
	require.Equal(sql.Descending, sort.SortFields[0].Order)
	_, ok = sort.SortFields[0].Column.(*expression.AggregationExpr)
	require.True(ok)
}

func TestParseWhereShapes(t *testing.T) {
	require := require.New(t)
	node := parseQuery(t,
		"SELECT customer_gender FROM Ecommerce WHERE order_date >= '2022-09-16' AND customer_gender IN ('a', 'b')")

	project, ok := node.(*plan.Project)
	require.True(ok)
	filter, ok := project.Child.(*plan.Filter)
	require.True(ok)

	and, ok := filter.Expression.(*expression.And)
	require.True(ok)
	_, ok = and.Left.(*expression.Comparison)
	require.True(ok)
	in, ok := and.Right.(*expression.InList)
	require.True(ok)
	require.Len(in.Values, 2)
}

func TestParseJoinWithDerivedTable(t *testing.T) {
	require := require.New(t)
	node := parseQuery(t,
		"SELECT customer_gender FROM Ecommerce "+
			"JOIN (SELECT customer_gender g FROM Ecommerce) a ON customer_gender = g")

	project, ok := node.(*plan.Project)
	require.True(ok)
	join, ok := project.Child.(*plan.JoinNode)
	require.True(ok)
	require.Equal(plan.JoinTypeInner, join.Op)
	require.NotNil(join.Cond)

	_, ok = join.Left.(*plan.CubeTable)
	require.True(ok)
	alias, ok := join.Right.(*plan.SubqueryAlias)
	require.True(ok)
	require.Equal("a", alias.Name())
}

func TestParseCase(t *testing.T) {
	require := require.New(t)
	node := parseQuery(t,
		"SELECT CASE WHEN customer_gender = 'female' THEN 'f' ELSE 'm' END FROM Ecommerce")

	project, ok := node.(*plan.Project)
	require.True(ok)
	c, ok := project.Projections[0].(*expression.Case)
	require.True(ok)
	require.Nil(c.Expr)
	require.Len(c.Branches, 1)
	require.NotNil(c.Else)
}

func TestParseScalarSubquery(t *testing.T) {
	require := require.New(t)
	node := parseQuery(t,
		"SELECT (SELECT customer_gender FROM Ecommerce LIMIT 1), avgPrice FROM Ecommerce")

	project, ok := node.(*plan.Project)
	require.True(ok)
	_, ok = project.Projections[0].(*expression.Subquery)
	require.True(ok)
}

func TestParseUnknownCube(t *testing.T) {
	_, err := Parse(sql.NewEmptyContext(), testMeta(), "SELECT x FROM Missing")
	require.Error(t, err)
	require.True(t, sql.ErrCubeNotFound.Is(err))
}

func TestParseUnsupportedStatement(t *testing.T) {
	_, err := Parse(sql.NewEmptyContext(), testMeta(), "INSERT INTO Ecommerce VALUES (1)")
	require.Error(t, err)
	require.True(t, sql.ErrUnsupportedFeature.Is(err))
}

func TestParseSelectStarUnsupported(t *testing.T) {
	_, err := Parse(sql.NewEmptyContext(), testMeta(), "SELECT * FROM Ecommerce")
	require.Error(t, err)
	require.True(t, sql.ErrUnsupportedFeature.Is(err))
}
