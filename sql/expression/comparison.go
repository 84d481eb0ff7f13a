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

// Comparison is a binary comparison operator.
type Comparison struct {
	BinaryExpression
	Op string
}

var _ sql.Expression = (*Comparison)(nil)

// NewComparison creates a comparison with the given operator, one of =, <>,
// <, <=, >, >=, LIKE, NOT LIKE.
func NewComparison(left, right sql.Expression, op string) *Comparison {
	return &Comparison{BinaryExpression{left, right}, op}
}

// NewEquals creates an = comparison.
func NewEquals(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, "=")
}

// NewNotEquals creates a <> comparison.
func NewNotEquals(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, "<>")
}

// NewLessThan creates a < comparison.
func NewLessThan(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, "<")
}

// NewLessThanOrEqual creates a <= comparison.
func NewLessThanOrEqual(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, "<=")
}

// NewGreaterThan creates a > comparison.
func NewGreaterThan(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, ">")
}

// NewGreaterThanOrEqual creates a >= comparison.
func NewGreaterThanOrEqual(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, ">=")
}

// NewLike creates a LIKE comparison.
func NewLike(left, right sql.Expression) *Comparison {
	return NewComparison(left, right, "LIKE")
}

// Type implements sql.Expression.
func (c *Comparison) Type() sql.Type { return types.Boolean }

// WithChildren implements sql.Expression.
func (c *Comparison) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildren.New(len(children), 2)
	}
	return NewComparison(children[0], children[1], c.Op), nil
}

func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

// FlippedOp returns the operator that expresses the same comparison with
// the operands swapped.
func FlippedOp(op string) (string, bool) {
	switch op {
	case "=", "<>":
		return op, true
	case "<":
		return ">", true
	case "<=":
		return ">=", true
	case ">":
		return "<", true
	case ">=":
		return "<=", true
	default:
		return "", false
	}
}
