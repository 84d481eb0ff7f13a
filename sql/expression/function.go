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

// Function is a scalar function call. The rewriter treats functions
// structurally, so a single node covers the whole scalar surface; names are
// stored upper-cased.
type Function struct {
	name string
	args []sql.Expression
}

var _ sql.Expression = (*Function)(nil)

// NewFunction creates a scalar function call.
func NewFunction(name string, args ...sql.Expression) *Function {
	return &Function{name: strings.ToUpper(name), args: args}
}

// Name returns the upper-cased function name.
func (f *Function) Name() string { return f.name }

// Type implements sql.Expression.
func (f *Function) Type() sql.Type {
	switch f.name {
	case "DATE_TRUNC", "DATE", "NOW", "DATE_ADD", "DATE_SUB", "TO_TIMESTAMP":
		return types.Timestamp
	case "LOWER", "UPPER", "CONCAT", "SUBSTRING", "SUBSTR", "TRIM", "LEFT", "RIGHT", "TO_CHAR":
		return types.Text
	case "YEAR", "QUARTER", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE", "SECOND",
		"DAYOFWEEK", "DAYOFMONTH", "DAYOFYEAR", "EXTRACT", "DATE_PART", "LENGTH", "CHAR_LENGTH", "FLOOR", "CEIL":
		return types.Int64
	case "ROUND", "ABS", "COALESCE", "NULLIF", "LEAST", "GREATEST":
		if len(f.args) > 0 {
			return f.args[0].Type()
		}
		return types.Float64
	default:
		if len(f.args) > 0 {
			return f.args[0].Type()
		}
		return types.Text
	}
}

// Children implements sql.Expression.
func (f *Function) Children() []sql.Expression { return f.args }

// WithChildren implements sql.Expression.
func (f *Function) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(f.args) {
		return nil, sql.ErrInvalidChildren.New(len(children), len(f.args))
	}
	return NewFunction(f.name, children...), nil
}

func (f *Function) String() string {
	args := make([]string, len(f.args))
	for i, arg := range f.args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", f.name, strings.Join(args, ", "))
}

// AggregationExpr is an aggregate function application: SUM, AVG, MIN, MAX,
// COUNT, COUNT(DISTINCT ...), or MEASURE for semantic measure references.
type AggregationExpr struct {
	name     string
	arg      sql.Expression
	Distinct bool
}

var _ sql.Expression = (*AggregationExpr)(nil)

// NewAggregation creates an aggregate function application.
func NewAggregation(name string, arg sql.Expression) *AggregationExpr {
	return &AggregationExpr{name: strings.ToUpper(name), arg: arg}
}

// NewDistinctAggregation creates an aggregate over DISTINCT values.
func NewDistinctAggregation(name string, arg sql.Expression) *AggregationExpr {
	return &AggregationExpr{name: strings.ToUpper(name), arg: arg, Distinct: true}
}

// Name returns the upper-cased aggregate name.
func (a *AggregationExpr) Name() string { return a.name }

// Arg returns the aggregated expression.
func (a *AggregationExpr) Arg() sql.Expression { return a.arg }

// Type implements sql.Expression.
func (a *AggregationExpr) Type() sql.Type {
	switch a.name {
	case "COUNT":
		return types.Int64
	case "MIN", "MAX", "MEASURE":
		if a.arg != nil {
			return a.arg.Type()
		}
		return types.Float64
	default:
		return types.Float64
	}
}

// Children implements sql.Expression.
func (a *AggregationExpr) Children() []sql.Expression {
	if a.arg == nil {
		return nil
	}
	return []sql.Expression{a.arg}
}

// WithChildren implements sql.Expression.
func (a *AggregationExpr) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	expected := len(a.Children())
	if len(children) != expected {
		return nil, sql.ErrInvalidChildren.New(len(children), expected)
	}
	var arg sql.Expression
	if expected == 1 {
		arg = children[0]
	}
	return &AggregationExpr{name: a.name, arg: arg, Distinct: a.Distinct}, nil
}

func (a *AggregationExpr) String() string {
	arg := "*"
	if a.arg != nil {
		arg = a.arg.String()
	}
	if a.Distinct {
		return fmt.Sprintf("%s(DISTINCT %s)", a.name, arg)
	}
	return fmt.Sprintf("%s(%s)", a.name, arg)
}

// WindowExpr is a window function application with its partition and order
// clauses.
type WindowExpr struct {
	Fn          sql.Expression
	PartitionBy []sql.Expression
	OrderBy     []sql.SortField
}

var _ sql.Expression = (*WindowExpr)(nil)

// NewWindowExpr creates a window function application.
func NewWindowExpr(fn sql.Expression, partitionBy []sql.Expression, orderBy []sql.SortField) *WindowExpr {
	return &WindowExpr{Fn: fn, PartitionBy: partitionBy, OrderBy: orderBy}
}

// Type implements sql.Expression.
func (w *WindowExpr) Type() sql.Type { return w.Fn.Type() }

// Children implements sql.Expression.
func (w *WindowExpr) Children() []sql.Expression {
	children := []sql.Expression{w.Fn}
	children = append(children, w.PartitionBy...)
	for _, sf := range w.OrderBy {
		children = append(children, sf.Column)
	}
	return children
}

// WithChildren implements sql.Expression.
func (w *WindowExpr) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(w.Children()) {
		return nil, sql.ErrInvalidChildren.New(len(children), len(w.Children()))
	}
	fn := children[0]
	partition := make([]sql.Expression, len(w.PartitionBy))
	copy(partition, children[1:1+len(w.PartitionBy)])
	orderBy := make([]sql.SortField, len(w.OrderBy))
	for i, sf := range w.OrderBy {
		orderBy[i] = sql.SortField{Column: children[1+len(w.PartitionBy)+i], Order: sf.Order, NullOrdering: sf.NullOrdering}
	}
	return NewWindowExpr(fn, partition, orderBy), nil
}

func (w *WindowExpr) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s OVER (", w.Fn)
	if len(w.PartitionBy) > 0 {
		parts := make([]string, len(w.PartitionBy))
		for i, p := range w.PartitionBy {
			parts[i] = p.String()
		}
		fmt.Fprintf(&sb, "PARTITION BY %s", strings.Join(parts, ", "))
	}
	if len(w.OrderBy) > 0 {
		if len(w.PartitionBy) > 0 {
			sb.WriteRune(' ')
		}
		orders := make([]string, len(w.OrderBy))
		for i, sf := range w.OrderBy {
			orders[i] = sf.String()
		}
		fmt.Fprintf(&sb, "ORDER BY %s", strings.Join(orders, ", "))
	}
	sb.WriteRune(')')
	return sb.String()
}
