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

package cubesql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/plan"
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

// jsonTransport renders inner requests as their JSON body so tests can
// assert on the request shape of pushed-down sub-selects.
type jsonTransport struct{}

func (jsonTransport) GenerateInnerSQL(ctx *sql.Context, req *sql.Request) (string, []interface{}, error) {
	return fmt.Sprintf("SELECT * FROM cube_request(%s)", req.MustJSON()), nil, nil
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewDefault(testMeta(), jsonTransport{})
	require.NoError(t, err)
	return engine
}

func rewriteQuery(t *testing.T, query string) sql.Node {
	t.Helper()
	engine := testEngine(t)
	out, err := engine.RewriteQuery(sql.NewEmptyContext(), query)
	require.NoError(t, err)
	return out
}

func TestCompileSimpleAggregation(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT customer_gender, AVG(avgPrice) price FROM Ecommerce GROUP BY 1")
	scan, ok := out.(*plan.CubeScan)
	require.True(ok, "expected CubeScan, got:\n%s", out)

	require.Equal([]string{"Ecommerce.customer_gender"}, scan.Request.Dimensions)
	require.Equal([]string{"Ecommerce.avgPrice"}, scan.Request.Measures)
	require.False(scan.Request.Ungrouped)

	schema := scan.Schema()
	require.Len(schema, 2)
	require.Equal("customer_gender", schema[0].Name)
	require.Equal("price", schema[1].Name)
}

func TestCompileFilterOrderLimit(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT customer_gender, MEASURE(avgPrice) m FROM Ecommerce "+
			"WHERE customer_gender = 'female' AND order_date >= '2022-09-16' "+
			"GROUP BY 1 ORDER BY 2 DESC LIMIT 50")
	scan, ok := out.(*plan.CubeScan)
	require.True(ok, "expected CubeScan, got:\n%s", out)

	require.Len(scan.Request.Filters, 2)
	require.Equal("Ecommerce.customer_gender", scan.Request.Filters[0].Member)
	require.Equal("equals", scan.Request.Filters[0].Operator)
	require.Equal("Ecommerce.order_date", scan.Request.Filters[1].Member)
	require.Equal("afterOrOnDate", scan.Request.Filters[1].Operator)

	require.Equal([][2]string{{"Ecommerce.avgPrice", "desc"}}, scan.Request.Order)
	require.NotNil(scan.Request.Limit)
	require.Equal(int64(50), *scan.Request.Limit)
}

func TestCompileTimeDimensionGranularity(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT DATE_TRUNC('week', order_date) ts, MEASURE(avgPrice) FROM Ecommerce GROUP BY 1")
	scan, ok := out.(*plan.CubeScan)
	require.True(ok, "expected CubeScan, got:\n%s", out)

	require.Len(scan.Request.TimeDimensions, 1)
	require.Equal("Ecommerce.order_date", scan.Request.TimeDimensions[0].Dimension)
	require.NotNil(scan.Request.TimeDimensions[0].Granularity)
	require.Equal("week", *scan.Request.TimeDimensions[0].Granularity)
	require.Equal("ts", scan.Schema()[0].Name)
}

// Nested DATE_TRUNC truncations merge to the coarser granularity, the
// DataStudio year-over-month shape.
func TestCompileNestedDateTruncMerge(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT DATE_TRUNC('year', DATE_TRUNC('month', order_date)) ts, MEASURE(avgPrice) FROM Ecommerce GROUP BY 1")
	scan, ok := out.(*plan.CubeScan)
	require.True(ok, "expected CubeScan, got:\n%s", out)

	require.Len(scan.Request.TimeDimensions, 1)
	require.Equal("Ecommerce.order_date", scan.Request.TimeDimensions[0].Dimension)
	require.Equal("year", *scan.Request.TimeDimensions[0].Granularity)
}

// The Superset top-k idiom: an ungrouped scan joined to a grouped derived
// table compiles into one request with a subquery join.
func TestCompileGroupedSubqueryJoin(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT DATE_TRUNC('week', order_date) ts, MEASURE(avgPrice) FROM Ecommerce "+
			"JOIN (SELECT customer_gender g, MEASURE(avgPrice) m FROM Ecommerce "+
			"WHERE order_date >= '2022-09-16' AND order_date < '2024-09-16' "+
			"GROUP BY g ORDER BY m DESC LIMIT 20) a ON customer_gender = g "+
			"WHERE order_date >= '2022-09-16' AND order_date < '2024-09-16' "+
			"GROUP BY 1 ORDER BY 2 DESC LIMIT 1000")
	scan, ok := out.(*plan.CubeScan)
	require.True(ok, "expected CubeScan, got:\n%s", out)

	req := scan.Request
	require.False(req.Ungrouped)
	require.NotNil(req.Limit)
	require.Equal(int64(1000), *req.Limit)

	// Two range filters on the outer time dimension.
	require.Len(req.Filters, 2)
	require.Equal("Ecommerce.order_date", req.Filters[0].Member)
	require.Equal("afterOrOnDate", req.Filters[0].Operator)
	require.Equal("Ecommerce.order_date", req.Filters[1].Member)
	require.Equal("beforeDate", req.Filters[1].Operator)

	// One subquery join whose ON references the outer member and whose
	// inner request keeps its ordering and limit.
	require.Len(req.SubqueryJoins, 1)
	join := req.SubqueryJoins[0]
	require.Equal("a", join.Alias)
	require.Equal("INNER", join.JoinType)
	require.Contains(join.On, "${Ecommerce.customer_gender}")
	require.Contains(join.SQL, "-- request:")
	require.Contains(join.SQL, `"order":[["Ecommerce.avgPrice","desc"]]`)
	require.Contains(join.SQL, `"limit":20`)
	require.Contains(join.SQL, `"afterOrOnDate"`)
	require.Contains(join.SQL, `"beforeDate"`)
}

// A multi-column concatenated join key keeps every member reference in
// the ON condition.
func TestCompileMultiColumnJoinCondition(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT dim_num0, measure_num0 FROM MultiTypeCube "+
			"JOIN (SELECT dim_str0, dim_str1, SUM(measure_num0) m FROM MultiTypeCube "+
			"GROUP BY 1, 2 ORDER BY 3 DESC LIMIT 10) a "+
			"ON CONCAT(CAST(MultiTypeCube.dim_str0 AS CHAR), ' - ', CAST(MultiTypeCube.dim_str1 AS CHAR)) = "+
			"CONCAT(CAST(a.dim_str0 AS CHAR), ' - ', CAST(a.dim_str1 AS CHAR))")
	scan, ok := out.(*plan.CubeScan)
	require.True(ok, "expected CubeScan, got:\n%s", out)

	require.Len(scan.Request.SubqueryJoins, 1)
	on := scan.Request.SubqueryJoins[0].On
	require.Contains(on, "${MultiTypeCube.dim_str0}")
	require.Contains(on, "${MultiTypeCube.dim_str1}")
	require.Contains(on, "CAST(")
}

// CASE expressions cannot resolve to members, so the plan wraps: the CASE
// is pushed down as SQL over member placeholders with parameterized
// comparison literals.
func TestCompileCasePushdown(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT CASE WHEN customer_gender = 'female' THEN 'f' ELSE 'm' END, AVG(avgPrice) "+
			"FROM Ecommerce GROUP BY 1 ORDER BY 1 DESC")
	wrapped, ok := out.(*plan.CubeScanWrappedSql)
	require.True(ok, "expected CubeScanWrappedSql, got:\n%s", out)

	require.Contains(wrapped.SQL, "CASE WHEN ${Ecommerce.customer_gender} = $1 THEN 'f' ELSE 'm' END")
	require.Contains(wrapped.SQL, `ORDER BY "case_when`)
	require.Contains(wrapped.SQL, "DESC")
	require.Equal([]interface{}{"female"}, wrapped.Params)
	require.Contains(wrapped.Request.Dimensions, "Ecommerce.customer_gender")
}

// GROUP BY ROLLUP keeps its shape in the wrapped SQL, with select-list
// ordinals inside the rollup.
func TestCompileRollupPushdown(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT customer_gender, notes, AVG(avgPrice) FROM Ecommerce a GROUP BY 1, ROLLUP(2)")
	wrapped, ok := out.(*plan.CubeScanWrappedSql)
	require.True(ok, "expected CubeScanWrappedSql, got:\n%s", out)

	require.Contains(wrapped.SQL, "ROLLUP(2)")
	require.Contains(wrapped.SQL, "GROUP BY 1, ROLLUP(2)")
	require.Contains(wrapped.SQL, "${Ecommerce.customer_gender}")
	require.Contains(wrapped.SQL, "${Ecommerce.notes}")
}

// A scalar subquery in the projection wraps; the inner grouped scan is
// rendered through the transport with its own semantic request.
func TestCompileScalarSubqueryProjection(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT (SELECT customer_gender FROM Ecommerce LIMIT 1), avgPrice FROM Ecommerce")
	wrapped, ok := out.(*plan.CubeScanWrappedSql)
	require.True(ok, "expected CubeScanWrappedSql, got:\n%s", out)

	require.Contains(wrapped.SQL, "(SELECT")
	require.Contains(wrapped.SQL, `"limit":1`)
	require.Contains(wrapped.SQL, "${Ecommerce.avgPrice}")
}

// Schema fidelity: the rewritten plan presents the same column count and
// names as the input plan.
func TestSchemaFidelity(t *testing.T) {
	queries := []string{
		"SELECT customer_gender, AVG(avgPrice) price FROM Ecommerce GROUP BY 1",
		"SELECT DATE_TRUNC('month', order_date) ts, MEASURE(avgPrice) m FROM Ecommerce GROUP BY 1",
	}
	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			require := require.New(t)
			out := rewriteQuery(t, query)
			names := out.Schema().Names()
			require.Len(names, 2)
			require.NotEmpty(names[0])
			require.NotEmpty(names[1])
		})
	}
}

// Determinism: the same query rewrites to byte-identical output.
func TestRewriteDeterministic(t *testing.T) {
	require := require.New(t)
	query := "SELECT DATE_TRUNC('week', order_date) ts, MEASURE(avgPrice) FROM Ecommerce " +
		"WHERE customer_gender = 'female' GROUP BY 1 ORDER BY 2 DESC LIMIT 10"

	render := func() string {
		out := rewriteQuery(t, query)
		scan, ok := out.(*plan.CubeScan)
		require.True(ok)
		return scan.Request.MustJSON()
	}
	first := render()
	for i := 0; i < 3; i++ {
		require.Equal(first, render())
	}
}

// Idempotence: rewriting an already-extracted plan is a no-op.
func TestRewriteIdempotent(t *testing.T) {
	require := require.New(t)
	engine := testEngine(t)
	ctx := sql.NewEmptyContext()

	out, err := engine.RewriteQuery(ctx,
		"SELECT customer_gender, AVG(avgPrice) price FROM Ecommerce GROUP BY 1")
	require.NoError(err)
	scan, ok := out.(*plan.CubeScan)
	require.True(ok)

	again, err := engine.RewritePlan(ctx, out)
	require.NoError(err)
	scan2, ok := again.(*plan.CubeScan)
	require.True(ok)
	require.Equal(scan.Request.MustJSON(), scan2.Request.MustJSON())
}

// An unknown relation is a conversion error carrying the cube name.
func TestUnknownCube(t *testing.T) {
	engine := testEngine(t)
	_, err := engine.RewriteQuery(sql.NewEmptyContext(), "SELECT x FROM NotACube")
	require.Error(t, err)
	require.True(t, sql.ErrCubeNotFound.Is(err))
	require.Contains(t, err.Error(), "NotACube")
}

// Ungrouped selections stay ungrouped.
func TestCompileUngroupedSelect(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t, "SELECT customer_gender, notes FROM Ecommerce LIMIT 5")
	scan, ok := out.(*plan.CubeScan)
	require.True(ok, "expected CubeScan, got:\n%s", out)

	require.True(scan.Request.Ungrouped)
	require.Equal([]string{"Ecommerce.customer_gender", "Ecommerce.notes"}, scan.Request.Dimensions)
	require.Equal(int64(5), *scan.Request.Limit)
}

// IN lists compile to equals filters with the whole value list.
func TestCompileInListFilter(t *testing.T) {
	require := require.New(t)

	out := rewriteQuery(t,
		"SELECT customer_gender, MEASURE(avgPrice) FROM Ecommerce "+
			"WHERE customer_gender IN ('female', 'male') GROUP BY 1")
	scan, ok := out.(*plan.CubeScan)
	require.True(ok, "expected CubeScan, got:\n%s", out)

	require.Len(scan.Request.Filters, 1)
	f := scan.Request.Filters[0]
	require.Equal("Ecommerce.customer_gender", f.Member)
	require.Equal("equals", f.Operator)
	require.Len(f.Values, 2)
	require.Equal("female", *f.Values[0])
	require.Equal("male", *f.Values[1])
}

func TestWrappedLeavesHelper(t *testing.T) {
	require := require.New(t)
	out := rewriteQuery(t,
		"SELECT CASE WHEN customer_gender = 'female' THEN 'f' ELSE 'm' END, AVG(avgPrice) "+
			"FROM Ecommerce GROUP BY 1")
	leaves := WrappedLeaves(out)
	require.Len(leaves, 1)
	require.True(strings.Contains(leaves[0].SQL, "${Ecommerce.customer_gender}"))
}
