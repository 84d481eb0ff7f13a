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
	"github.com/dolthub/go-cubesql/sql"
)

// JoinType is the kind of a join.
type JoinType byte

const (
	JoinTypeInner JoinType = iota
	JoinTypeLeft
	JoinTypeRight
	JoinTypeFull
	JoinTypeCross
)

func (t JoinType) String() string {
	switch t {
	case JoinTypeLeft:
		return "LEFT"
	case JoinTypeRight:
		return "RIGHT"
	case JoinTypeFull:
		return "FULL"
	case JoinTypeCross:
		return "CROSS"
	default:
		return "INNER"
	}
}

// JoinNode joins two relations on a condition.
type JoinNode struct {
	BinaryNode
	Op   JoinType
	Cond sql.Expression
}

var _ sql.Node = (*JoinNode)(nil)
var _ sql.Expressioner = (*JoinNode)(nil)

// NewJoin creates a join of the given type.
func NewJoin(left, right sql.Node, op JoinType, cond sql.Expression) *JoinNode {
	return &JoinNode{BinaryNode{left, right}, op, cond}
}

// NewInnerJoin creates an inner join.
func NewInnerJoin(left, right sql.Node, cond sql.Expression) *JoinNode {
	return NewJoin(left, right, JoinTypeInner, cond)
}

// NewLeftJoin creates a left outer join.
func NewLeftJoin(left, right sql.Node, cond sql.Expression) *JoinNode {
	return NewJoin(left, right, JoinTypeLeft, cond)
}

// Schema implements sql.Node.
func (j *JoinNode) Schema() sql.Schema {
	return append(append(sql.Schema{}, j.Left.Schema()...), j.Right.Schema()...)
}

// WithChildren implements sql.Node.
func (j *JoinNode) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildren.New(len(children), 2)
	}
	return NewJoin(children[0], children[1], j.Op, j.Cond), nil
}

// Expressions implements sql.Expressioner.
func (j *JoinNode) Expressions() []sql.Expression {
	if j.Cond == nil {
		return nil
	}
	return []sql.Expression{j.Cond}
}

// WithExpressions implements sql.Expressioner.
func (j *JoinNode) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(j.Expressions()) {
		return nil, sql.ErrInvalidChildren.New(len(exprs), len(j.Expressions()))
	}
	cond := j.Cond
	if len(exprs) == 1 {
		cond = exprs[0]
	}
	return NewJoin(j.Left, j.Right, j.Op, cond), nil
}

func (j *JoinNode) String() string {
	pr := sql.NewTreePrinter()
	if j.Cond != nil {
		_ = pr.WriteNode("%sJoin(%s)", j.Op, j.Cond)
	} else {
		_ = pr.WriteNode("%sJoin", j.Op)
	}
	_ = pr.WriteChildren(j.Left.String(), j.Right.String())
	return pr.String()
}

// Union concatenates the rows of two relations with identical schemas.
type Union struct {
	BinaryNode
	// All is true for UNION ALL.
	All bool
}

var _ sql.Node = (*Union)(nil)

// NewUnion creates a union node.
func NewUnion(left, right sql.Node, all bool) *Union {
	return &Union{BinaryNode{left, right}, all}
}

// Schema implements sql.Node.
func (u *Union) Schema() sql.Schema { return u.Left.Schema() }

// WithChildren implements sql.Node.
func (u *Union) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildren.New(len(children), 2)
	}
	return NewUnion(children[0], children[1], u.All), nil
}

func (u *Union) String() string {
	pr := sql.NewTreePrinter()
	if u.All {
		_ = pr.WriteNode("UnionAll")
	} else {
		_ = pr.WriteNode("Union")
	}
	_ = pr.WriteChildren(u.Left.String(), u.Right.String())
	return pr.String()
}
