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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
)

func buildNotNotGraph() (*EGraph, ClassID) {
	g := NewEGraph(nil)
	col := g.add(SymColumn, ColumnRef{Table: "t", Name: "a"})
	not1 := g.add(SymNot, col)
	not2 := g.add(SymNot, not1)
	return g, not2
}

func TestRewriterSaturates(t *testing.T) {
	require := require.New(t)
	g, root := buildNotNotGraph()
	pack, err := CompileRules(algebraRules())
	require.NoError(err)

	r := NewRewriter(g, pack, DefaultConfig())
	report := r.Run(sql.NewEmptyContext())
	require.Equal(StopSaturated, report.Stop)
	require.True(report.Unions > 0)

	// NOT(NOT(a)) must now be equivalent to a.
	col, ok := g.Lookup(ENode{Op: SymColumn, Leaf: ColumnRef{Table: "t", Name: "a"}})
	require.True(ok)
	require.Equal(g.Find(col), g.Find(root))
}

func TestRewriterIterationBudget(t *testing.T) {
	require := require.New(t)
	g, _ := buildNotNotGraph()
	pack, err := CompileRules(algebraRules())
	require.NoError(err)

	cfg := DefaultConfig()
	cfg.MaxIterations = 0
	report := NewRewriter(g, pack, cfg).Run(sql.NewEmptyContext())
	require.Equal(0, report.Iterations)
}

func TestRewriterCancellation(t *testing.T) {
	require := require.New(t)
	g, _ := buildNotNotGraph()
	pack, err := CompileRules(algebraRules())
	require.NoError(err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	report := NewRewriter(g, pack, DefaultConfig()).Run(sql.NewContext(cancelled))
	require.Equal(StopCancelled, report.Stop)
	require.Equal(0, report.Iterations)
}

// Two identical rewrites must produce identical graphs: same class counts
// and the same extraction.
func TestRewriterDeterminism(t *testing.T) {
	require := require.New(t)
	pack, err := CompileRewriteRules(testMeta(), DefaultConfig())
	require.NoError(err)

	run := func() (int, string) {
		g := NewEGraph(testMeta())
		col := g.add(SymColumn, ColumnRef{Table: "Ecommerce", Name: "customer_gender"})
		lit := g.add(SymLiteral, "female")
		pred := g.add(SymBinary, "=", lit, col)
		table := g.add(SymCubeTable, "Ecommerce")
		filter := g.add(SymFilter, nil, pred, table)
		g.Rebuild()

		NewRewriter(g, pack, DefaultConfig()).Run(sql.NewEmptyContext())
		ex := NewExtractor(g)
		term, ok := ex.ExtractAny(filter)
		require.True(ok)
		return g.ClassCount(), term.String()
	}

	classes1, term1 := run()
	classes2, term2 := run()
	require.Equal(classes1, classes2)
	require.Equal(term1, term2)
}

// Increasing the iteration budget never worsens the extracted cost.
func TestBudgetMonotonicity(t *testing.T) {
	require := require.New(t)
	meta := testMeta()
	pack, err := CompileRewriteRules(meta, DefaultConfig())
	require.NoError(err)

	costAt := func(iterations int) Cost {
		g := NewEGraph(meta)
		table := g.add(SymCubeTable, "Ecommerce")
		col := g.add(SymColumn, ColumnRef{Table: "Ecommerce", Name: "customer_gender"})
		groups := g.add(SymExprList, nil, col)
		aggs := g.add(SymExprList, nil, col)
		agg := g.add(SymAggregate, nil, table, groups, aggs)
		g.Rebuild()

		cfg := DefaultConfig()
		cfg.MaxIterations = iterations
		NewRewriter(g, pack, cfg).Run(sql.NewEmptyContext())
		cost, ok := NewExtractor(g).Cost(agg)
		require.True(ok)
		return cost
	}

	prev := costAt(0)
	for _, iterations := range []int{1, 2, 5, 30} {
		cur := costAt(iterations)
		require.False(prev.Less(cur), "cost worsened at %d iterations", iterations)
		prev = cur
	}
}
