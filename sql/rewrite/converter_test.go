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

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/expression"
	"github.com/dolthub/go-cubesql/sql/plan"
	"github.com/dolthub/go-cubesql/sql/types"
)

func testPlan(t *testing.T) sql.Node {
	t.Helper()
	meta := testMeta()
	c, err := meta.Cube("Ecommerce")
	require.NoError(t, err)

	table := plan.NewCubeTable(c)
	gender := expression.NewGetFieldWithTable("Ecommerce", "customer_gender", types.Text)
	filter := plan.NewFilter(
		expression.NewEquals(gender, expression.NewLiteral("female", types.Text)),
		table)
	groupBy := plan.NewGroupBy(
		[]sql.Expression{
			gender,
			expression.NewAlias("price", expression.NewAggregation("AVG",
				expression.NewGetFieldWithTable("Ecommerce", "avgPrice", types.Float64))),
		},
		[]sql.Expression{gender},
		filter)
	return plan.NewLimit(10, plan.NewSort(
		[]sql.SortField{{Column: gender, Order: sql.Descending}},
		groupBy))
}

// Ingest followed by reconstruct (without any rewriting) returns a plan
// with the same rendering and schema as the input.
func TestConverterRoundTrip(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(testMeta())
	conv := NewConverter(g)

	in := testPlan(t)
	root, err := conv.Ingest(in)
	require.NoError(err)
	g.Rebuild()

	term, ok := NewExtractor(g).ExtractAny(root)
	require.True(ok)
	out, err := conv.Reconstruct(sql.NewEmptyContext(), term, nil, nil)
	require.NoError(err)

	require.Equal(in.String(), out.String())
	require.True(in.Schema().Equals(out.Schema()))
}

func TestConverterCollectsParams(t *testing.T) {
	require := require.New(t)
	meta := testMeta()
	c, err := meta.Cube("Ecommerce")
	require.NoError(err)

	g := NewEGraph(meta)
	conv := NewConverter(g)
	filter := plan.NewFilter(
		expression.NewEquals(
			expression.NewGetFieldWithTable("Ecommerce", "customer_gender", types.Text),
			expression.NewBindVar(1, types.Text)),
		plan.NewCubeTable(c))

	_, err = conv.Ingest(filter)
	require.NoError(err)
	require.Len(conv.Params(), 1)
	require.Equal(1, conv.Params()[0].Position)

	// Re-ingesting the same placeholder does not duplicate it.
	_, err = conv.Ingest(filter)
	require.NoError(err)
	require.Len(conv.Params(), 1)
}

func TestConverterRejectsUnknownNode(t *testing.T) {
	g := NewEGraph(testMeta())
	conv := NewConverter(g)
	_, err := conv.Ingest(unknownNode{})
	require.Error(t, err)
	require.True(t, sql.ErrPlanConversion.Is(err))
}

type unknownNode struct{}

func (unknownNode) Schema() sql.Schema { return nil }
func (unknownNode) Children() []sql.Node {
	return nil
}
func (unknownNode) WithChildren(children ...sql.Node) (sql.Node, error) {
	return unknownNode{}, nil
}
func (unknownNode) String() string { return "unknown" }

// A CubeScan ingests and reconstructs without loss.
func TestConverterCubeScanRoundTrip(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(testMeta())
	conv := NewConverter(g)

	limit := int64(10)
	req := &sql.Request{
		Measures:   []string{"Ecommerce.avgPrice"},
		Dimensions: []string{"Ecommerce.customer_gender"},
		Limit:      &limit,
	}
	schema := sql.Schema{
		{Name: "customer_gender", Type: types.Text, Source: "Ecommerce"},
		{Name: "avgPrice", Type: types.Float64, Source: "Ecommerce"},
	}
	in := plan.NewCubeScan(req, schema)

	root, err := conv.Ingest(in)
	require.NoError(err)
	term, err := NewExtractor(g).Extract(root)
	require.NoError(err)
	out, err := conv.Reconstruct(sql.NewEmptyContext(), term, nil, nil)
	require.NoError(err)

	scan, ok := out.(*plan.CubeScan)
	require.True(ok)
	require.Equal(req.MustJSON(), scan.Request.MustJSON())
	require.True(schema.Equals(scan.Schema()))
}
