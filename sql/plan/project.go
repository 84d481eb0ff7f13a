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
	"github.com/dolthub/go-cubesql/sql/expression"
)

// Project is a projection over its child.
type Project struct {
	UnaryNode
	Projections []sql.Expression
}

var _ sql.Node = (*Project)(nil)
var _ sql.Expressioner = (*Project)(nil)

// NewProject creates a projection.
func NewProject(projections []sql.Expression, child sql.Node) *Project {
	return &Project{UnaryNode{Child: child}, projections}
}

// Schema implements sql.Node.
func (p *Project) Schema() sql.Schema {
	return ExpressionsToSchema(p.Projections...)
}

// WithChildren implements sql.Node.
func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewProject(p.Projections, children[0]), nil
}

// Expressions implements sql.Expressioner.
func (p *Project) Expressions() []sql.Expression { return p.Projections }

// WithExpressions implements sql.Expressioner.
func (p *Project) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(p.Projections) {
		return nil, sql.ErrInvalidChildren.New(len(exprs), len(p.Projections))
	}
	return NewProject(exprs, p.Child), nil
}

func (p *Project) String() string {
	pr := sql.NewTreePrinter()
	exprs := make([]string, len(p.Projections))
	for i, e := range p.Projections {
		exprs[i] = e.String()
	}
	_ = pr.WriteNode("Project(%s)", strings.Join(exprs, ", "))
	_ = pr.WriteChildren(p.Child.String())
	return pr.String()
}

// UnaryNode is the base for plan nodes with one child.
type UnaryNode struct {
	Child sql.Node
}

// Children implements sql.Node.
func (n *UnaryNode) Children() []sql.Node { return []sql.Node{n.Child} }

// Schema implements sql.Node.
func (n *UnaryNode) Schema() sql.Schema { return n.Child.Schema() }

// BinaryNode is the base for plan nodes with two children.
type BinaryNode struct {
	Left  sql.Node
	Right sql.Node
}

// Children implements sql.Node.
func (n *BinaryNode) Children() []sql.Node { return []sql.Node{n.Left, n.Right} }

// ExpressionsToSchema derives a schema from projection expressions,
// unwrapping aliases for names and qualified columns for sources.
func ExpressionsToSchema(exprs ...sql.Expression) sql.Schema {
	schema := make(sql.Schema, len(exprs))
	for i, e := range exprs {
		schema[i] = ExpressionToColumn(e)
	}
	return schema
}

// ExpressionToColumn derives a schema column from an expression.
func ExpressionToColumn(e sql.Expression) *sql.Column {
	var name, source string
	switch x := e.(type) {
	case *expression.Alias:
		name = x.Name()
		if t, ok := x.Child.(sql.Tableable); ok {
			source = t.Table()
		}
	case *expression.GetField:
		name = x.Name()
		source = x.Table()
	default:
		name = e.String()
	}
	return &sql.Column{Name: name, Type: e.Type(), Source: source, Nullable: true}
}
