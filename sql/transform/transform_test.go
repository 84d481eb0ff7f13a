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

package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/expression"
	"github.com/dolthub/go-cubesql/sql/plan"
	"github.com/dolthub/go-cubesql/sql/types"
)

func testTree() sql.Node {
	c := &cube.Cube{
		Name:       "C",
		Dimensions: []cube.Dimension{{Name: "a", Type: "string"}},
	}
	table := plan.NewCubeTable(c)
	filter := plan.NewFilter(
		expression.NewEquals(
			expression.NewGetFieldWithTable("C", "a", types.Text),
			expression.NewLiteral("x", types.Text)),
		table)
	return plan.NewProject([]sql.Expression{expression.NewGetFieldWithTable("C", "a", types.Text)}, filter)
}

func TestNodeIdentityPreserved(t *testing.T) {
	require := require.New(t)
	tree := testTree()

	out, identity, err := Node(tree, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		return n, SameTree, nil
	})
	require.NoError(err)
	require.Equal(SameTree, identity)
	require.Equal(tree, out)
}

func TestNodeRewritesBottomUp(t *testing.T) {
	require := require.New(t)
	tree := testTree()

	// Drop the filter; the projection must be rebuilt around the table.
	out, identity, err := Node(tree, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		if f, ok := n.(*plan.Filter); ok {
			return f.Child, NewTree, nil
		}
		return n, SameTree, nil
	})
	require.NoError(err)
	require.Equal(NewTree, identity)

	project, ok := out.(*plan.Project)
	require.True(ok)
	_, ok = project.Child.(*plan.CubeTable)
	require.True(ok)
}

func TestNodeExprs(t *testing.T) {
	require := require.New(t)
	tree := testTree()

	out, identity, err := NodeExprs(tree, func(e sql.Expression) (sql.Expression, TreeIdentity, error) {
		if lit, ok := e.(*expression.Literal); ok && lit.Value() == "x" {
			return expression.NewLiteral("y", types.Text), NewTree, nil
		}
		return e, SameTree, nil
	})
	require.NoError(err)
	require.Equal(NewTree, identity)

	var found bool
	InspectExpressions(out, func(e sql.Expression) bool {
		if lit, ok := e.(*expression.Literal); ok {
			require.Equal("y", lit.Value())
			found = true
		}
		return true
	})
	require.True(found)
}

func TestInspectStopsDescent(t *testing.T) {
	require := require.New(t)
	tree := testTree()

	var visited int
	Inspect(tree, func(n sql.Node) bool {
		visited++
		_, isProject := n.(*plan.Project)
		return isProject
	})
	// The project and its immediate child only.
	require.Equal(2, visited)
}
