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

package plan

import (
	"strings"

	"github.com/dolthub/go-cubesql/sql"
)

// GroupBy groups its child rows by the grouping expressions and evaluates
// the selected expressions per group. Grouping expressions may include
// ROLLUP and GROUPING SETS constructs, represented as function expressions.
type GroupBy struct {
	UnaryNode
	SelectedExprs []sql.Expression
	GroupByExprs  []sql.Expression
}

var _ sql.Node = (*GroupBy)(nil)
var _ sql.Expressioner = (*GroupBy)(nil)

// NewGroupBy creates an aggregation node.
func NewGroupBy(selected, grouping []sql.Expression, child sql.Node) *GroupBy {
	return &GroupBy{UnaryNode{Child: child}, selected, grouping}
}

// Schema implements sql.Node.
func (g *GroupBy) Schema() sql.Schema {
	return ExpressionsToSchema(g.SelectedExprs...)
}

// WithChildren implements sql.Node.
func (g *GroupBy) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewGroupBy(g.SelectedExprs, g.GroupByExprs, children[0]), nil
}

// Expressions implements sql.Expressioner.
func (g *GroupBy) Expressions() []sql.Expression {
	return append(append([]sql.Expression{}, g.SelectedExprs...), g.GroupByExprs...)
}

// WithExpressions implements sql.Expressioner.
func (g *GroupBy) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	expected := len(g.SelectedExprs) + len(g.GroupByExprs)
	if len(exprs) != expected {
		return nil, sql.ErrInvalidChildren.New(len(exprs), expected)
	}
	return NewGroupBy(exprs[:len(g.SelectedExprs)], exprs[len(g.SelectedExprs):], g.Child), nil
}

func (g *GroupBy) String() string {
	pr := sql.NewTreePrinter()
	selected := make([]string, len(g.SelectedExprs))
	for i, e := range g.SelectedExprs {
		selected[i] = e.String()
	}
	grouping := make([]string, len(g.GroupByExprs))
	for i, e := range g.GroupByExprs {
		grouping[i] = e.String()
	}
	_ = pr.WriteNode("GroupBy")
	_ = pr.WriteChildren(
		"SelectedExprs("+strings.Join(selected, ", ")+")",
		"Grouping("+strings.Join(grouping, ", ")+")",
		g.Child.String(),
	)
	return pr.String()
}
