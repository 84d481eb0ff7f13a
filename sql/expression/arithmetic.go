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

// Arithmetic is a binary arithmetic or string operator: +, -, *, /, %, ||.
type Arithmetic struct {
	BinaryExpression
	Op string
}

var _ sql.Expression = (*Arithmetic)(nil)

// NewArithmetic creates an arithmetic expression.
func NewArithmetic(left, right sql.Expression, op string) *Arithmetic {
	return &Arithmetic{BinaryExpression{left, right}, op}
}

// NewPlus creates a + expression.
func NewPlus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "+")
}

// NewMinus creates a - expression.
func NewMinus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "-")
}

// NewMult creates a * expression.
func NewMult(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "*")
}

// NewDiv creates a / expression.
func NewDiv(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "/")
}

// NewConcat creates a || expression.
func NewConcat(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "||")
}

// Type implements sql.Expression.
func (a *Arithmetic) Type() sql.Type {
	if a.Op == "||" {
		return types.Text
	}
	lt, rt := a.Left.Type(), a.Right.Type()
	if lt.IsTemporal() || rt.IsTemporal() {
		return types.Timestamp
	}
	if types.IsInteger(lt) && types.IsInteger(rt) && a.Op != "/" {
		return types.Int64
	}
	return types.Float64
}

// WithChildren implements sql.Expression.
func (a *Arithmetic) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildren.New(len(children), 2)
	}
	return NewArithmetic(children[0], children[1], a.Op), nil
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right)
}

// UnaryMinus negates a numeric expression.
type UnaryMinus struct {
	UnaryExpression
}

var _ sql.Expression = (*UnaryMinus)(nil)

// NewUnaryMinus creates a negation.
func NewUnaryMinus(child sql.Expression) *UnaryMinus {
	return &UnaryMinus{UnaryExpression{Child: child}}
}

// Type implements sql.Expression.
func (u *UnaryMinus) Type() sql.Type { return u.Child.Type() }

// WithChildren implements sql.Expression.
func (u *UnaryMinus) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewUnaryMinus(children[0]), nil
}

func (u *UnaryMinus) String() string {
	return fmt.Sprintf("-%s", u.Child)
}
