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

package expression

import (
	"fmt"
	"strings"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/types"
)

// CaseBranch is one WHEN/THEN pair of a CASE expression.
type CaseBranch struct {
	Cond  sql.Expression
	Value sql.Expression
}

// Case is a searched or simple CASE expression. Expr is nil for the
// searched form.
type Case struct {
	Expr     sql.Expression
	Branches []CaseBranch
	Else     sql.Expression
}

var _ sql.Expression = (*Case)(nil)

// NewCase creates a CASE expression.
func NewCase(expr sql.Expression, branches []CaseBranch, elseExpr sql.Expression) *Case {
	return &Case{Expr: expr, Branches: branches, Else: elseExpr}
}

// Type implements sql.Expression.
func (c *Case) Type() sql.Type {
	for _, b := range c.Branches {
		if !types.IsNull(b.Value.Type()) {
			return b.Value.Type()
		}
	}
	if c.Else != nil {
		return c.Else.Type()
	}
	return types.Null
}

// Children implements sql.Expression.
func (c *Case) Children() []sql.Expression {
	var children []sql.Expression
	if c.Expr != nil {
		children = append(children, c.Expr)
	}
	for _, b := range c.Branches {
		children = append(children, b.Cond, b.Value)
	}
	if c.Else != nil {
		children = append(children, c.Else)
	}
	return children
}

// WithChildren implements sql.Expression.
func (c *Case) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.Children()) {
		return nil, sql.ErrInvalidChildren.New(len(children), len(c.Children()))
	}
	i := 0
	var expr sql.Expression
	if c.Expr != nil {
		expr = children[i]
		i++
	}
	branches := make([]CaseBranch, len(c.Branches))
	for j := range c.Branches {
		branches[j] = CaseBranch{Cond: children[i], Value: children[i+1]}
		i += 2
	}
	var elseExpr sql.Expression
	if c.Else != nil {
		elseExpr = children[i]
	}
	return NewCase(expr, branches, elseExpr), nil
}

func (c *Case) String() string {
	var sb strings.Builder
	sb.WriteString("CASE")
	if c.Expr != nil {
		fmt.Fprintf(&sb, " %s", c.Expr)
	}
	for _, b := range c.Branches {
		fmt.Fprintf(&sb, " WHEN %s THEN %s", b.Cond, b.Value)
	}
	if c.Else != nil {
		fmt.Fprintf(&sb, " ELSE %s", c.Else)
	}
	sb.WriteString(" END")
	return sb.String()
}

// InList checks membership of an expression in a literal list.
type InList struct {
	Left    sql.Expression
	Values  []sql.Expression
	Negated bool
}

var _ sql.Expression = (*InList)(nil)

// NewInList creates an IN (...) expression.
func NewInList(left sql.Expression, values []sql.Expression) *InList {
	return &InList{Left: left, Values: values}
}

// NewNotInList creates a NOT IN (...) expression.
func NewNotInList(left sql.Expression, values []sql.Expression) *InList {
	return &InList{Left: left, Values: values, Negated: true}
}

// Type implements sql.Expression.
func (in *InList) Type() sql.Type { return types.Boolean }

// Children implements sql.Expression.
func (in *InList) Children() []sql.Expression {
	return append([]sql.Expression{in.Left}, in.Values...)
}

// WithChildren implements sql.Expression.
func (in *InList) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(in.Values)+1 {
		return nil, sql.ErrInvalidChildren.New(len(children), len(in.Values)+1)
	}
	return &InList{Left: children[0], Values: children[1:], Negated: in.Negated}, nil
}

func (in *InList) String() string {
	vals := make([]string, len(in.Values))
	for i, v := range in.Values {
		vals[i] = v.String()
	}
	op := "IN"
	if in.Negated {
		op = "NOT IN"
	}
	return fmt.Sprintf("(%s %s (%s))", in.Left, op, strings.Join(vals, ", "))
}

// Between checks that an expression is within an inclusive range.
type Between struct {
	Val     sql.Expression
	Lower   sql.Expression
	Upper   sql.Expression
	Negated bool
}

var _ sql.Expression = (*Between)(nil)

// NewBetween creates a BETWEEN expression.
func NewBetween(val, lower, upper sql.Expression) *Between {
	return &Between{Val: val, Lower: lower, Upper: upper}
}

// Type implements sql.Expression.
func (b *Between) Type() sql.Type { return types.Boolean }

// Children implements sql.Expression.
func (b *Between) Children() []sql.Expression {
	return []sql.Expression{b.Val, b.Lower, b.Upper}
}

// WithChildren implements sql.Expression.
func (b *Between) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 3 {
		return nil, sql.ErrInvalidChildren.New(len(children), 3)
	}
	return &Between{Val: children[0], Lower: children[1], Upper: children[2], Negated: b.Negated}, nil
}

func (b *Between) String() string {
	op := "BETWEEN"
	if b.Negated {
		op = "NOT BETWEEN"
	}
	return fmt.Sprintf("(%s %s %s AND %s)", b.Val, op, b.Lower, b.Upper)
}
