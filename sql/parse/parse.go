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

// Package parse builds logical plans over cubes from SQL text. It covers
// the SELECT surface the rewriter consumes; everything else is out of
// scope for the rewrite core and returns ErrUnsupportedFeature.
package parse

import (
	"strconv"
	"strings"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/expression"
	"github.com/dolthub/go-cubesql/sql/plan"
	"github.com/dolthub/go-cubesql/sql/types"
)

// Parse parses a SELECT statement into a logical plan over the cubes in
// meta.
func Parse(ctx *sql.Context, meta *cube.MetaContext, query string) (sql.Node, error) {
	stmt, err := sqlparser.Parse(query)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(stmt))
	}
	b := &builder{meta: meta}
	return b.buildSelect(sel)
}

type builder struct {
	meta      *cube.MetaContext
	bindCount int
}

func (b *builder) buildSelect(sel *sqlparser.Select) (sql.Node, error) {
	node, err := b.buildFrom(sel.From)
	if err != nil {
		return nil, err
	}

	if sel.Where != nil {
		pred, err := b.buildExpr(sel.Where.Expr)
		if err != nil {
			return nil, err
		}
		node = plan.NewFilter(pred, node)
	}

	selected, err := b.buildSelectExprs(sel.SelectExprs)
	if err != nil {
		return nil, err
	}

	grouping, err := b.buildGroupBy(sel.GroupBy, selected)
	if err != nil {
		return nil, err
	}

	if len(grouping) > 0 || containsAggregation(selected) {
		node = plan.NewGroupBy(selected, grouping, node)
	} else {
		node = plan.NewProject(selected, node)
	}

	if sel.Having != nil {
		pred, err := b.buildExpr(sel.Having.Expr)
		if err != nil {
			return nil, err
		}
		node = plan.NewFilter(pred, node)
	}

	if sel.QueryOpts.Distinct {
		node = plan.NewDistinct(node)
	}

	if len(sel.OrderBy) > 0 {
		fields, err := b.buildOrderBy(sel.OrderBy, selected)
		if err != nil {
			return nil, err
		}
		node = plan.NewSort(fields, node)
	}

	if sel.Limit != nil {
		if sel.Limit.Offset != nil {
			offset, err := b.literalInt(sel.Limit.Offset)
			if err != nil {
				return nil, err
			}
			node = plan.NewOffset(offset, node)
		}
		if sel.Limit.Rowcount != nil {
			limit, err := b.literalInt(sel.Limit.Rowcount)
			if err != nil {
				return nil, err
			}
			node = plan.NewLimit(limit, node)
		}
	}

	return node, nil
}

func (b *builder) buildFrom(exprs sqlparser.TableExprs) (sql.Node, error) {
	if len(exprs) == 0 {
		return nil, sql.ErrUnsupportedFeature.New("SELECT without FROM")
	}
	node, err := b.buildTableExpr(exprs[0])
	if err != nil {
		return nil, err
	}
	// Comma-separated relations are cross joins.
	for _, te := range exprs[1:] {
		right, err := b.buildTableExpr(te)
		if err != nil {
			return nil, err
		}
		node = plan.NewJoin(node, right, plan.JoinTypeCross, nil)
	}
	return node, nil
}

func (b *builder) buildTableExpr(te sqlparser.TableExpr) (sql.Node, error) {
	switch t := te.(type) {
	case *sqlparser.AliasedTableExpr:
		switch st := t.Expr.(type) {
		case sqlparser.TableName:
			name := st.Name.String()
			c, err := b.meta.Cube(name)
			if err != nil {
				return nil, err
			}
			return plan.NewCubeTableWithAlias(c, t.As.String()), nil
		case *sqlparser.Subquery:
			inner, ok := st.Select.(*sqlparser.Select)
			if !ok {
				return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(st.Select))
			}
			child, err := b.buildSelect(inner)
			if err != nil {
				return nil, err
			}
			alias := t.As.String()
			if alias == "" {
				alias = "derived"
			}
			return plan.NewSubqueryAlias(alias, child), nil
		default:
			return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(te))
		}

	case *sqlparser.JoinTableExpr:
		left, err := b.buildTableExpr(t.LeftExpr)
		if err != nil {
			return nil, err
		}
		right, err := b.buildTableExpr(t.RightExpr)
		if err != nil {
			return nil, err
		}
		var cond sql.Expression
		if t.Condition.On != nil {
			cond, err = b.buildExpr(t.Condition.On)
			if err != nil {
				return nil, err
			}
		}
		return plan.NewJoin(left, right, joinType(t.Join), cond), nil

	case *sqlparser.ParenTableExpr:
		if len(t.Exprs) == 1 {
			return b.buildTableExpr(t.Exprs[0])
		}
		return b.buildFrom(t.Exprs)

	default:
		return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(te))
	}
}

func joinType(kind string) plan.JoinType {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "left join", "left outer join":
		return plan.JoinTypeLeft
	case "right join", "right outer join":
		return plan.JoinTypeRight
	case "full join", "full outer join":
		return plan.JoinTypeFull
	case "cross join":
		return plan.JoinTypeCross
	default:
		return plan.JoinTypeInner
	}
}

func (b *builder) buildSelectExprs(exprs sqlparser.SelectExprs) ([]sql.Expression, error) {
	var out []sql.Expression
	for _, se := range exprs {
		switch t := se.(type) {
		case *sqlparser.AliasedExpr:
			e, err := b.buildExpr(t.Expr)
			if err != nil {
				return nil, err
			}
			if as := t.As.String(); as != "" {
				e = expression.NewAlias(as, e)
			}
			out = append(out, e)
		case *sqlparser.StarExpr:
			return nil, sql.ErrUnsupportedFeature.New("SELECT *")
		default:
			return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(se))
		}
	}
	return out, nil
}

// buildGroupBy resolves grouping expressions; ordinals refer to the select
// list, and ROLLUP keeps its shape with resolved arguments.
func (b *builder) buildGroupBy(groupBy sqlparser.GroupBy, selected []sql.Expression) ([]sql.Expression, error) {
	var out []sql.Expression
	for _, ge := range groupBy {
		e, err := b.buildGroupingExpr(ge, selected)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *builder) buildGroupingExpr(ge sqlparser.Expr, selected []sql.Expression) (sql.Expression, error) {
	if fn, ok := ge.(*sqlparser.FuncExpr); ok {
		name := strings.ToUpper(fn.Name.String())
		if name == "ROLLUP" || name == "CUBE" || name == "GROUPING" {
			args := make([]sql.Expression, 0, len(fn.Exprs))
			for _, ae := range fn.Exprs {
				aliased, ok := ae.(*sqlparser.AliasedExpr)
				if !ok {
					return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(ae))
				}
				arg, err := b.buildGroupingExpr(aliased.Expr, selected)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			if name == "GROUPING" {
				name = "GROUPING SETS"
			}
			return expression.NewFunction(name, args...), nil
		}
	}
	e, err := b.buildExpr(ge)
	if err != nil {
		return nil, err
	}
	e, err = resolveOrdinal(e, selected)
	if err != nil {
		return nil, err
	}
	// GROUP BY may name a select alias of the same select.
	if gf, ok := e.(*expression.GetField); ok && gf.Table() == "" {
		for _, item := range selected {
			if alias, ok := item.(*expression.Alias); ok && alias.Name() == gf.Name() {
				return alias.Child, nil
			}
		}
	}
	return e, nil
}

// resolveOrdinal maps an integer literal to the matching select item,
// unwrapping its alias; other expressions pass through.
func resolveOrdinal(e sql.Expression, selected []sql.Expression) (sql.Expression, error) {
	lit, ok := e.(*expression.Literal)
	if !ok {
		return e, nil
	}
	n, ok := lit.Value().(int64)
	if !ok {
		return e, nil
	}
	if n < 1 || int(n) > len(selected) {
		return nil, sql.ErrUnsupportedFeature.New("ordinal out of range")
	}
	item := selected[n-1]
	if alias, ok := item.(*expression.Alias); ok {
		return alias.Child, nil
	}
	return item, nil
}

func (b *builder) buildOrderBy(orderBy sqlparser.OrderBy, selected []sql.Expression) ([]sql.SortField, error) {
	fields := make([]sql.SortField, len(orderBy))
	for i, o := range orderBy {
		e, err := b.buildExpr(o.Expr)
		if err != nil {
			return nil, err
		}
		e, err = resolveOrdinal(e, selected)
		if err != nil {
			return nil, err
		}
		// ORDER BY may name a select alias.
		if gf, ok := e.(*expression.GetField); ok && gf.Table() == "" {
			for _, item := range selected {
				if alias, ok := item.(*expression.Alias); ok && alias.Name() == gf.Name() {
					e = alias.Child
					break
				}
			}
		}
		order := sql.Ascending
		if o.Direction == sqlparser.DescScr {
			order = sql.Descending
		}
		fields[i] = sql.SortField{Column: e, Order: order}
	}
	return fields, nil
}

func (b *builder) literalInt(e sqlparser.Expr) (int64, error) {
	val, ok := e.(*sqlparser.SQLVal)
	if !ok || val.Type != sqlparser.IntVal {
		return 0, sql.ErrUnsupportedFeature.New(sqlparser.String(e))
	}
	return strconv.ParseInt(string(val.Val), 10, 64)
}

func (b *builder) buildExpr(e sqlparser.Expr) (sql.Expression, error) {
	switch t := e.(type) {
	case *sqlparser.ColName:
		return expression.NewGetFieldWithTable(t.Qualifier.Name.String(), t.Name.String(), types.Text), nil

	case *sqlparser.SQLVal:
		return b.buildLiteral(t)

	case sqlparser.BoolVal:
		return expression.NewLiteral(bool(t), types.Boolean), nil

	case *sqlparser.NullVal:
		return expression.NewLiteral(nil, types.Null), nil

	case *sqlparser.ParenExpr:
		return b.buildExpr(t.Expr)

	case *sqlparser.AndExpr:
		return b.buildBinary(t.Left, t.Right, func(l, r sql.Expression) sql.Expression { return expression.NewAnd(l, r) })

	case *sqlparser.OrExpr:
		return b.buildBinary(t.Left, t.Right, func(l, r sql.Expression) sql.Expression { return expression.NewOr(l, r) })

	case *sqlparser.NotExpr:
		inner, err := b.buildExpr(t.Expr)
		if err != nil {
			return nil, err
		}
		return expression.NewNot(inner), nil

	case *sqlparser.ComparisonExpr:
		return b.buildComparison(t)

	case *sqlparser.BinaryExpr:
		l, err := b.buildExpr(t.Left)
		if err != nil {
			return nil, err
		}
		r, err := b.buildExpr(t.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewArithmetic(l, r, t.Operator), nil

	case *sqlparser.UnaryExpr:
		inner, err := b.buildExpr(t.Expr)
		if err != nil {
			return nil, err
		}
		if t.Operator == "-" {
			return expression.NewUnaryMinus(inner), nil
		}
		return nil, sql.ErrUnsupportedFeature.New(t.Operator)

	case *sqlparser.IsExpr:
		inner, err := b.buildExpr(t.Expr)
		if err != nil {
			return nil, err
		}
		switch t.Operator {
		case sqlparser.IsNullStr:
			return expression.NewIsNull(inner), nil
		case sqlparser.IsNotNullStr:
			return expression.NewIsNotNull(inner), nil
		default:
			return nil, sql.ErrUnsupportedFeature.New(t.Operator)
		}

	case *sqlparser.RangeCond:
		val, err := b.buildExpr(t.Left)
		if err != nil {
			return nil, err
		}
		lo, err := b.buildExpr(t.From)
		if err != nil {
			return nil, err
		}
		hi, err := b.buildExpr(t.To)
		if err != nil {
			return nil, err
		}
		between := expression.NewBetween(val, lo, hi)
		if t.Operator == sqlparser.NotBetweenStr {
			return expression.NewNot(between), nil
		}
		return between, nil

	case *sqlparser.CaseExpr:
		return b.buildCase(t)

	case *sqlparser.FuncExpr:
		return b.buildFunc(t)

	case *sqlparser.ConvertExpr:
		inner, err := b.buildExpr(t.Expr)
		if err != nil {
			return nil, err
		}
		return expression.NewConvert(inner, types.FromSQLName(t.Type.Type)), nil

	case *sqlparser.IntervalExpr:
		inner, err := b.buildExpr(t.Expr)
		if err != nil {
			return nil, err
		}
		return expression.NewInterval(inner, t.Unit), nil

	case *sqlparser.Subquery:
		inner, ok := t.Select.(*sqlparser.Select)
		if !ok {
			return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(t.Select))
		}
		node, err := b.buildSelect(inner)
		if err != nil {
			return nil, err
		}
		return expression.NewSubquery(node), nil

	default:
		return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(e))
	}
}

func (b *builder) buildBinary(l, r sqlparser.Expr, combine func(l, r sql.Expression) sql.Expression) (sql.Expression, error) {
	left, err := b.buildExpr(l)
	if err != nil {
		return nil, err
	}
	right, err := b.buildExpr(r)
	if err != nil {
		return nil, err
	}
	return combine(left, right), nil
}

func (b *builder) buildComparison(t *sqlparser.ComparisonExpr) (sql.Expression, error) {
	switch t.Operator {
	case sqlparser.InStr, sqlparser.NotInStr:
		left, err := b.buildExpr(t.Left)
		if err != nil {
			return nil, err
		}
		tuple, ok := t.Right.(sqlparser.ValTuple)
		if !ok {
			return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(t.Right))
		}
		values := make([]sql.Expression, len(tuple))
		for i, v := range tuple {
			e, err := b.buildExpr(v)
			if err != nil {
				return nil, err
			}
			values[i] = e
		}
		if t.Operator == sqlparser.NotInStr {
			return expression.NewNotInList(left, values), nil
		}
		return expression.NewInList(left, values), nil
	}

	left, err := b.buildExpr(t.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.buildExpr(t.Right)
	if err != nil {
		return nil, err
	}
	op := strings.ToUpper(t.Operator)
	if op == "!=" {
		op = "<>"
	}
	return expression.NewComparison(left, right, op), nil
}

func (b *builder) buildCase(t *sqlparser.CaseExpr) (sql.Expression, error) {
	var operand sql.Expression
	var err error
	if t.Expr != nil {
		operand, err = b.buildExpr(t.Expr)
		if err != nil {
			return nil, err
		}
	}
	branches := make([]expression.CaseBranch, len(t.Whens))
	for i, when := range t.Whens {
		cond, err := b.buildExpr(when.Cond)
		if err != nil {
			return nil, err
		}
		val, err := b.buildExpr(when.Val)
		if err != nil {
			return nil, err
		}
		branches[i] = expression.CaseBranch{Cond: cond, Value: val}
	}
	var elseExpr sql.Expression
	if t.Else != nil {
		elseExpr, err = b.buildExpr(t.Else)
		if err != nil {
			return nil, err
		}
	}
	return expression.NewCase(operand, branches, elseExpr), nil
}

var aggregateNames = map[string]bool{
	"SUM": true, "AVG": true, "MIN": true, "MAX": true, "COUNT": true, "MEASURE": true,
}

func (b *builder) buildFunc(t *sqlparser.FuncExpr) (sql.Expression, error) {
	name := strings.ToUpper(t.Name.String())
	var args []sql.Expression
	star := false
	for _, se := range t.Exprs {
		switch ae := se.(type) {
		case *sqlparser.AliasedExpr:
			e, err := b.buildExpr(ae.Expr)
			if err != nil {
				return nil, err
			}
			args = append(args, e)
		case *sqlparser.StarExpr:
			star = true
		default:
			return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(se))
		}
	}

	if aggregateNames[name] {
		var arg sql.Expression
		if !star && len(args) == 1 {
			arg = args[0]
		} else if !star && len(args) != 0 {
			return nil, sql.ErrUnsupportedFeature.New(sqlparser.String(t))
		}
		if t.Distinct {
			return expression.NewDistinctAggregation(name, arg), nil
		}
		return expression.NewAggregation(name, arg), nil
	}
	return expression.NewFunction(name, args...), nil
}

func (b *builder) buildLiteral(t *sqlparser.SQLVal) (sql.Expression, error) {
	switch t.Type {
	case sqlparser.StrVal:
		return expression.NewLiteral(string(t.Val), types.Text), nil
	case sqlparser.IntVal:
		n, err := strconv.ParseInt(string(t.Val), 10, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(n, types.Int64), nil
	case sqlparser.FloatVal:
		f, err := strconv.ParseFloat(string(t.Val), 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(f, types.Float64), nil
	case sqlparser.ValArg:
		b.bindCount++
		return expression.NewBindVar(b.bindCount, types.Text), nil
	case sqlparser.HexVal, sqlparser.HexNum, sqlparser.BitVal:
		return nil, sql.ErrUnsupportedFeature.New("binary literal")
	default:
		return expression.NewLiteral(string(t.Val), types.Text), nil
	}
}

func containsAggregation(exprs []sql.Expression) bool {
	for _, e := range exprs {
		found := false
		walkExpr(e, func(x sql.Expression) {
			if _, ok := x.(*expression.AggregationExpr); ok {
				found = true
			}
		})
		if found {
			return true
		}
	}
	return false
}

func walkExpr(e sql.Expression, f func(sql.Expression)) {
	f(e)
	for _, c := range e.Children() {
		walkExpr(c, f)
	}
}
