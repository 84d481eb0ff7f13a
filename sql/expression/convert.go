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

// Convert is an explicit CAST of an expression to a type.
type Convert struct {
	UnaryExpression
	castType sql.Type
}

var _ sql.Expression = (*Convert)(nil)

// NewConvert creates a CAST expression.
func NewConvert(child sql.Expression, castType sql.Type) *Convert {
	return &Convert{UnaryExpression{Child: child}, castType}
}

// Type implements sql.Expression.
func (c *Convert) Type() sql.Type { return c.castType }

// WithChildren implements sql.Expression.
func (c *Convert) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewConvert(children[0], c.castType), nil
}

func (c *Convert) String() string {
	return fmt.Sprintf("CAST(%s AS %s)", c.Child, c.castType)
}

// Interval is a date-time interval literal such as INTERVAL '1 day'.
type Interval struct {
	UnaryExpression
	// Unit is the interval unit: YEAR, QUARTER, MONTH, WEEK, DAY, HOUR,
	// MINUTE, SECOND.
	Unit string
}

var _ sql.Expression = (*Interval)(nil)

// NewInterval creates an interval from a value expression and a unit.
func NewInterval(child sql.Expression, unit string) *Interval {
	return &Interval{UnaryExpression{Child: child}, unit}
}

// Type implements sql.Expression.
func (i *Interval) Type() sql.Type { return types.Interval }

// WithChildren implements sql.Expression.
func (i *Interval) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewInterval(children[0], i.Unit), nil
}

func (i *Interval) String() string {
	return fmt.Sprintf("INTERVAL %s %s", i.Child, i.Unit)
}
