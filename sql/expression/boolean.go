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

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/types"
)

// And is a boolean conjunction.
type And struct {
	BinaryExpression
}

var _ sql.Expression = (*And)(nil)

// NewAnd creates an AND expression.
func NewAnd(left, right sql.Expression) *And {
	return &And{BinaryExpression{left, right}}
}

// JoinAnd folds the given expressions into a right-deep AND tree. A nil or
// empty input returns nil.
func JoinAnd(exprs ...sql.Expression) sql.Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return NewAnd(exprs[0], JoinAnd(exprs[1:]...))
	}
}

// SplitConjunction returns the terms of an AND tree, left to right.
func SplitConjunction(expr sql.Expression) []sql.Expression {
	and, ok := expr.(*And)
	if !ok {
		return []sql.Expression{expr}
	}
	return append(SplitConjunction(and.Left), SplitConjunction(and.Right)...)
}

// Type implements sql.Expression.
func (a *And) Type() sql.Type { return types.Boolean }

// WithChildren implements sql.Expression.
func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildren.New(len(children), 2)
	}
	return NewAnd(children[0], children[1]), nil
}

func (a *And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

// Or is a boolean disjunction.
type Or struct {
	BinaryExpression
}

var _ sql.Expression = (*Or)(nil)

// NewOr creates an OR expression.
func NewOr(left, right sql.Expression) *Or {
	return &Or{BinaryExpression{left, right}}
}

// Type implements sql.Expression.
func (o *Or) Type() sql.Type { return types.Boolean }

// WithChildren implements sql.Expression.
func (o *Or) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildren.New(len(children), 2)
	}
	return NewOr(children[0], children[1]), nil
}

func (o *Or) String() string {
	return fmt.Sprintf("(%s OR %s)", o.Left, o.Right)
}

// Not is a boolean negation.
type Not struct {
	UnaryExpression
}

var _ sql.Expression = (*Not)(nil)

// NewNot creates a NOT expression.
func NewNot(child sql.Expression) *Not {
	return &Not{UnaryExpression{Child: child}}
}

// Type implements sql.Expression.
func (n *Not) Type() sql.Type { return types.Boolean }

// WithChildren implements sql.Expression.
func (n *Not) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewNot(children[0]), nil
}

func (n *Not) String() string {
	return fmt.Sprintf("NOT(%s)", n.Child)
}

// IsNull checks an expression for NULL.
type IsNull struct {
	UnaryExpression
	// Negated is true for IS NOT NULL.
	Negated bool
}

var _ sql.Expression = (*IsNull)(nil)

// NewIsNull creates an IS NULL check.
func NewIsNull(child sql.Expression) *IsNull {
	return &IsNull{UnaryExpression{Child: child}, false}
}

// NewIsNotNull creates an IS NOT NULL check.
func NewIsNotNull(child sql.Expression) *IsNull {
	return &IsNull{UnaryExpression{Child: child}, true}
}

// Type implements sql.Expression.
func (n *IsNull) Type() sql.Type { return types.Boolean }

// WithChildren implements sql.Expression.
func (n *IsNull) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return &IsNull{UnaryExpression{Child: children[0]}, n.Negated}, nil
}

func (n *IsNull) String() string {
	if n.Negated {
		return fmt.Sprintf("%s IS NOT NULL", n.Child)
	}
	return fmt.Sprintf("%s IS NULL", n.Child)
}
