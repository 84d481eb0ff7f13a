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

package rewrite

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/expression"
	"github.com/dolthub/go-cubesql/sql/plan"
	"github.com/dolthub/go-cubesql/sql/types"
)

// ParamInfo is one query parameter discovered during ingest, keyed by its
// 1-based position.
type ParamInfo struct {
	Position int
	Type     sql.Type
}

// GeneratedSQL is the output of wrapper SQL generation.
type GeneratedSQL struct {
	SQL     string
	Params  []interface{}
	Columns sql.Schema
	Request *sql.Request
}

// SQLGenerator renders a wrapper subtree into dialect SQL. Implemented by
// the wrappersql package; injected so reconstruction stays decoupled from
// dialect templates.
type SQLGenerator interface {
	Generate(ctx *sql.Context, g *EGraph, term *Term, transport sql.Transport, params []ParamInfo) (*GeneratedSQL, error)
}

// Converter bridges the external logical plan representation and the term
// language, in both directions.
type Converter struct {
	graph  *EGraph
	params []ParamInfo
}

// NewConverter creates a converter over the graph.
func NewConverter(g *EGraph) *Converter {
	return &Converter{graph: g}
}

// NewConverterWithParams creates a converter over an already-ingested
// graph, carrying the parameter table captured at ingest time. Cache hits
// reconstruct through this path.
func NewConverterWithParams(g *EGraph, params []ParamInfo) *Converter {
	return &Converter{graph: g, params: append([]ParamInfo(nil), params...)}
}

// Params returns the query parameters discovered during ingest, in
// position order.
func (c *Converter) Params() []ParamInfo { return c.params }

// Ingest walks the input plan and inserts it into the e-graph, returning
// the root class.
func (c *Converter) Ingest(n sql.Node) (ClassID, error) {
	switch node := n.(type) {
	case *plan.Project:
		exprs, err := c.ingestExprList(node.Projections)
		if err != nil {
			return 0, err
		}
		input, err := c.Ingest(node.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymProjection, Children: []ClassID{exprs, input}})

	case *plan.Filter:
		pred, err := c.ingestExpr(node.Expression)
		if err != nil {
			return 0, err
		}
		input, err := c.Ingest(node.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymFilter, Children: []ClassID{pred, input}})

	case *plan.GroupBy:
		input, err := c.Ingest(node.Child)
		if err != nil {
			return 0, err
		}
		groups, err := c.ingestExprList(node.GroupByExprs)
		if err != nil {
			return 0, err
		}
		aggs, err := c.ingestExprList(node.SelectedExprs)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymAggregate, Children: []ClassID{input, groups, aggs}})

	case *plan.JoinNode:
		left, err := c.Ingest(node.Left)
		if err != nil {
			return 0, err
		}
		right, err := c.Ingest(node.Right)
		if err != nil {
			return 0, err
		}
		cond := c.nothing()
		if node.Cond != nil {
			cond, err = c.ingestExpr(node.Cond)
			if err != nil {
				return 0, err
			}
		}
		return c.graph.Add(ENode{Op: SymJoin, Leaf: node.Op.String(), Children: []ClassID{left, right, cond}})

	case *plan.Sort:
		input, err := c.Ingest(node.Child)
		if err != nil {
			return 0, err
		}
		keys := make([]ClassID, len(node.SortFields))
		for i, f := range node.SortFields {
			col, err := c.ingestExpr(f.Column)
			if err != nil {
				return 0, err
			}
			keys[i] = c.graph.add(SymSortKey, sortDirLeaf(f), col)
		}
		list := c.graph.add(SymSortList, nil, keys...)
		return c.graph.Add(ENode{Op: SymSort, Children: []ClassID{input, list}})

	case *plan.Limit:
		input, err := c.Ingest(node.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymLimit, Leaf: node.Limit, Children: []ClassID{input}})

	case *plan.Offset:
		input, err := c.Ingest(node.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymOffset, Leaf: node.Offset, Children: []ClassID{input}})

	case *plan.Union:
		left, err := c.Ingest(node.Left)
		if err != nil {
			return 0, err
		}
		right, err := c.Ingest(node.Right)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymUnion, Leaf: node.All, Children: []ClassID{left, right}})

	case *plan.SubqueryAlias:
		input, err := c.Ingest(node.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymSubqueryAlias, Leaf: node.Name(), Children: []ClassID{input}})

	case *plan.Distinct:
		input, err := c.Ingest(node.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymDistinct, Children: []ClassID{input}})

	case *plan.CubeTable:
		return c.graph.Add(ENode{Op: SymCubeTable, Leaf: node.Cube.Name})

	case *plan.CubeScan:
		entry := &RequestEntry{Request: node.Request.Clone()}
		entry.Cube = requestCube(node.Request)
		for _, col := range node.Schema() {
			entry.Columns = append(entry.Columns, OutputColumn{Name: col.Name, Type: col.Type})
		}
		ref := c.graph.requests.intern(entry)
		return c.graph.Add(ENode{Op: SymCubeScan, Leaf: ref})

	case *plan.CubeScanWrappedSql:
		entry := &RequestEntry{
			Request:       node.Request.Clone(),
			IsWrapped:     true,
			WrappedSQL:    node.SQL,
			WrappedParams: append([]interface{}(nil), node.Params...),
		}
		entry.Cube = requestCube(node.Request)
		for _, col := range node.Schema() {
			entry.Columns = append(entry.Columns, OutputColumn{Name: col.Name, Type: col.Type})
		}
		ref := c.graph.requests.intern(entry)
		return c.graph.Add(ENode{Op: SymCubeScan, Leaf: ref})

	default:
		return 0, sql.ErrPlanConversion.New(n)
	}
}

func (c *Converter) nothing() ClassID {
	return c.graph.add(SymNothing, nil)
}

func (c *Converter) ingestExprList(exprs []sql.Expression) (ClassID, error) {
	children := make([]ClassID, len(exprs))
	for i, e := range exprs {
		id, err := c.ingestExpr(e)
		if err != nil {
			return 0, err
		}
		children[i] = id
	}
	return c.graph.Add(ENode{Op: SymExprList, Children: children})
}

func (c *Converter) ingestExpr(e sql.Expression) (ClassID, error) {
	switch expr := e.(type) {
	case *expression.GetField:
		return c.graph.Add(ENode{Op: SymColumn, Leaf: ColumnRef{Table: expr.Table(), Name: expr.Name()}})

	case *expression.Literal:
		return c.graph.Add(ENode{Op: SymLiteral, Leaf: normalizeLiteral(expr.Value())})

	case *expression.BindVar:
		pos := expr.Position
		found := false
		for _, p := range c.params {
			if p.Position == pos {
				found = true
				break
			}
		}
		if !found {
			c.params = append(c.params, ParamInfo{Position: pos, Type: expr.Type()})
		}
		return c.graph.Add(ENode{Op: SymQueryParam, Leaf: int64(pos)})

	case *expression.Arithmetic:
		return c.ingestBinary(expr.Left, expr.Right, expr.Op)

	case *expression.Comparison:
		return c.ingestBinary(expr.Left, expr.Right, expr.Op)

	case *expression.And:
		return c.ingestBinary(expr.Left, expr.Right, "AND")

	case *expression.Or:
		return c.ingestBinary(expr.Left, expr.Right, "OR")

	case *expression.Not:
		child, err := c.ingestExpr(expr.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymNot, Children: []ClassID{child}})

	case *expression.IsNull:
		child, err := c.ingestExpr(expr.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymIsNull, Leaf: expr.Negated, Children: []ClassID{child}})

	case *expression.UnaryMinus:
		child, err := c.ingestExpr(expr.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymNegative, Children: []ClassID{child}})

	case *expression.Convert:
		child, err := c.ingestExpr(expr.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymCast, Leaf: expr.Type().String(), Children: []ClassID{child}})

	case *expression.Alias:
		child, err := c.ingestExpr(expr.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymAlias, Leaf: expr.Name(), Children: []ClassID{child}})

	case *expression.Function:
		children := make([]ClassID, len(expr.Children()))
		for i, a := range expr.Children() {
			id, err := c.ingestExpr(a)
			if err != nil {
				return 0, err
			}
			children[i] = id
		}
		return c.graph.Add(ENode{Op: SymScalarFunc, Leaf: expr.Name(), Children: children})

	case *expression.AggregationExpr:
		argID := c.nothing()
		if expr.Arg() != nil {
			var err error
			argID, err = c.ingestExpr(expr.Arg())
			if err != nil {
				return 0, err
			}
		}
		distinct := c.graph.add(SymLiteral, expr.Distinct)
		return c.graph.Add(ENode{Op: SymAggFunc, Leaf: expr.Name(), Children: []ClassID{argID, distinct}})

	case *expression.WindowExpr:
		fn, err := c.ingestExpr(expr.Fn)
		if err != nil {
			return 0, err
		}
		partition, err := c.ingestExprList(expr.PartitionBy)
		if err != nil {
			return 0, err
		}
		keys := make([]ClassID, len(expr.OrderBy))
		for i, f := range expr.OrderBy {
			col, err := c.ingestExpr(f.Column)
			if err != nil {
				return 0, err
			}
			keys[i] = c.graph.add(SymSortKey, sortDirLeaf(f), col)
		}
		order := c.graph.add(SymSortList, nil, keys...)
		return c.graph.Add(ENode{Op: SymWindowFunc, Children: []ClassID{fn, partition, order}})

	case *expression.Case:
		operand := c.nothing()
		var err error
		if expr.Expr != nil {
			operand, err = c.ingestExpr(expr.Expr)
			if err != nil {
				return 0, err
			}
		}
		branches := make([]ClassID, len(expr.Branches))
		for i, b := range expr.Branches {
			cond, err := c.ingestExpr(b.Cond)
			if err != nil {
				return 0, err
			}
			val, err := c.ingestExpr(b.Value)
			if err != nil {
				return 0, err
			}
			branches[i] = c.graph.add(SymCaseBranch, nil, cond, val)
		}
		branchList := c.graph.add(SymExprList, nil, branches...)
		elseExpr := c.nothing()
		if expr.Else != nil {
			elseExpr, err = c.ingestExpr(expr.Else)
			if err != nil {
				return 0, err
			}
		}
		return c.graph.Add(ENode{Op: SymCase, Children: []ClassID{operand, branchList, elseExpr}})

	case *expression.InList:
		needle, err := c.ingestExpr(expr.Left)
		if err != nil {
			return 0, err
		}
		values, err := c.ingestExprList(expr.Values)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymInList, Leaf: expr.Negated, Children: []ClassID{needle, values}})

	case *expression.Between:
		val, err := c.ingestExpr(expr.Val)
		if err != nil {
			return 0, err
		}
		lo, err := c.ingestExpr(expr.Lower)
		if err != nil {
			return 0, err
		}
		hi, err := c.ingestExpr(expr.Upper)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymBetween, Children: []ClassID{val, lo, hi}})

	case *expression.Subquery:
		inner, err := c.Ingest(expr.Query)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymScalarSubquery, Children: []ClassID{inner}})

	case *expression.Interval:
		value, err := c.ingestExpr(expr.Child)
		if err != nil {
			return 0, err
		}
		return c.graph.Add(ENode{Op: SymInterval, Leaf: strings.ToUpper(expr.Unit), Children: []ClassID{value}})

	default:
		return 0, sql.ErrPlanConversion.New(e)
	}
}

func (c *Converter) ingestBinary(left, right sql.Expression, op string) (ClassID, error) {
	l, err := c.ingestExpr(left)
	if err != nil {
		return 0, err
	}
	r, err := c.ingestExpr(right)
	if err != nil {
		return 0, err
	}
	return c.graph.Add(ENode{Op: SymBinary, Leaf: op, Children: []ClassID{l, r}})
}

func sortDirLeaf(f sql.SortField) string {
	dir := "asc"
	if f.Order == sql.Descending {
		dir = "desc"
	}
	return dir
}

func normalizeLiteral(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

func requestCube(req *sql.Request) string {
	for _, m := range req.AllMembers() {
		if i := strings.IndexByte(m, '.'); i > 0 {
			return m[:i]
		}
	}
	return ""
}

// Reconstruct builds the output logical plan from an extracted term.
// CubeScan terms materialize their interned request; wrapper terms render
// SQL through the injected generator.
func (c *Converter) Reconstruct(ctx *sql.Context, t *Term, gen SQLGenerator, transport sql.Transport) (sql.Node, error) {
	switch t.Op {
	case SymProjection:
		exprs, err := c.reconstructExprList(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		child, err := c.Reconstruct(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewProject(exprs, child), nil

	case SymFilter:
		pred, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		child, err := c.Reconstruct(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewFilter(pred, child), nil

	case SymAggregate:
		child, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		groups, err := c.reconstructExprList(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		aggs, err := c.reconstructExprList(ctx, t.Child(2), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewGroupBy(aggs, groups, child), nil

	case SymJoin:
		left, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		right, err := c.Reconstruct(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		var cond sql.Expression
		if t.Child(2).Op != SymNothing {
			cond, err = c.reconstructExpr(ctx, t.Child(2), gen, transport)
			if err != nil {
				return nil, err
			}
		}
		return plan.NewJoin(left, right, joinTypeFromString(t.Leaf.(string)), cond), nil

	case SymSort:
		child, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		fields, err := c.reconstructSortFields(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewSort(fields, child), nil

	case SymLimit:
		child, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewLimit(t.Leaf.(int64), child), nil

	case SymOffset:
		child, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewOffset(t.Leaf.(int64), child), nil

	case SymUnion:
		left, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		right, err := c.Reconstruct(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewUnion(left, right, t.Leaf.(bool)), nil

	case SymSubqueryAlias:
		child, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewSubqueryAlias(t.Leaf.(string), child), nil

	case SymDistinct:
		child, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return plan.NewDistinct(child), nil

	case SymCubeTable:
		if c.graph.meta == nil {
			return nil, sql.ErrPlanConversion.New(t)
		}
		cb, err := c.graph.meta.Cube(t.Leaf.(string))
		if err != nil {
			return nil, err
		}
		return plan.NewCubeTable(cb), nil

	case SymCubeScan:
		return c.reconstructCubeScan(ctx, t, gen, transport)

	case SymCubeScanWrapper:
		if gen == nil {
			return nil, sql.ErrWrapperGenerate.New("no SQL generator configured")
		}
		out, err := gen.Generate(ctx, c.graph, t.Child(0), transport, c.params)
		if err != nil {
			return nil, err
		}
		return plan.NewCubeScanWrappedSql(out.SQL, out.Params, out.Request, out.Columns), nil

	default:
		return nil, sql.ErrPlanConversion.New(t)
	}
}

func (c *Converter) reconstructCubeScan(ctx *sql.Context, t *Term, gen SQLGenerator, transport sql.Transport) (sql.Node, error) {
	entry := c.graph.requests.get(t.Leaf.(requestRef))
	if entry == nil {
		return nil, sql.ErrPlanConversion.New(t)
	}
	if entry.IsWrapped {
		return plan.NewCubeScanWrappedSql(entry.WrappedSQL, entry.WrappedParams, entry.Request.Clone(), entry.Schema()), nil
	}
	req := entry.Request.Clone()
	for _, pj := range entry.Joins {
		inner := c.graph.requests.get(pj.Inner)
		if inner == nil {
			return nil, sql.ErrPlanConversion.New(t)
		}
		if transport == nil {
			return nil, sql.ErrTransport.New("no transport configured for subquery join")
		}
		innerSQL, _, err := transport.GenerateInnerSQL(ctx, inner.Request)
		if err != nil {
			return nil, errors.Wrap(err, "generating SQL for subquery join "+pj.Alias)
		}
		innerJSON := inner.Request.MustJSON()
		onSQL, err := renderOnCondition(pj.On, pj.Alias)
		if err != nil {
			return nil, err
		}
		req.SubqueryJoins = append(req.SubqueryJoins, sql.SubqueryJoin{
			SQL:      fmt.Sprintf("-- request: %s\n%s", innerJSON, innerSQL),
			On:       onSQL,
			JoinType: pj.JoinType,
			Alias:    pj.Alias,
		})
	}
	return plan.NewCubeScan(req, entry.Schema()), nil
}

func (c *Converter) reconstructExprList(ctx *sql.Context, t *Term, gen SQLGenerator, transport sql.Transport) ([]sql.Expression, error) {
	if t == nil || t.Op != SymExprList {
		return nil, sql.ErrPlanConversion.New(t)
	}
	exprs := make([]sql.Expression, len(t.Children))
	for i, child := range t.Children {
		e, err := c.reconstructExpr(ctx, child, gen, transport)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}

func (c *Converter) reconstructSortFields(ctx *sql.Context, t *Term, gen SQLGenerator, transport sql.Transport) ([]sql.SortField, error) {
	if t == nil || t.Op != SymSortList {
		return nil, sql.ErrPlanConversion.New(t)
	}
	fields := make([]sql.SortField, len(t.Children))
	for i, key := range t.Children {
		col, err := c.reconstructExpr(ctx, key.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		order := sql.Ascending
		if key.Leaf == "desc" {
			order = sql.Descending
		}
		fields[i] = sql.SortField{Column: col, Order: order}
	}
	return fields, nil
}

func (c *Converter) reconstructExpr(ctx *sql.Context, t *Term, gen SQLGenerator, transport sql.Transport) (sql.Expression, error) {
	switch t.Op {
	case SymColumn:
		ref := t.Leaf.(ColumnRef)
		typ := types.Text
		if c.graph.meta != nil {
			if member, ok := c.graph.meta.ResolveColumn(ref.Table, ref.Name); ok {
				typ = member.Type
			}
		}
		return expression.NewGetFieldWithTable(ref.Table, ref.Name, typ), nil

	case SymLiteral:
		v := t.Leaf
		return expression.NewLiteral(v, types.TypeOfValue(v)), nil

	case SymQueryParam:
		return expression.NewBindVar(int(t.Leaf.(int64)), types.Text), nil

	case SymBinary:
		l, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		r, err := c.reconstructExpr(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		op := t.Leaf.(string)
		switch op {
		case "AND":
			return expression.NewAnd(l, r), nil
		case "OR":
			return expression.NewOr(l, r), nil
		case "+", "-", "*", "/", "%", "||":
			return expression.NewArithmetic(l, r, op), nil
		default:
			return expression.NewComparison(l, r, op), nil
		}

	case SymNot:
		child, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return expression.NewNot(child), nil

	case SymIsNull:
		child, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		if t.Leaf.(bool) {
			return expression.NewIsNotNull(child), nil
		}
		return expression.NewIsNull(child), nil

	case SymNegative:
		child, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return expression.NewUnaryMinus(child), nil

	case SymCast:
		child, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return expression.NewConvert(child, types.FromSQLName(t.Leaf.(string))), nil

	case SymAlias:
		child, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return expression.NewAlias(t.Leaf.(string), child), nil

	case SymScalarFunc:
		args := make([]sql.Expression, len(t.Children))
		for i, a := range t.Children {
			e, err := c.reconstructExpr(ctx, a, gen, transport)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		return expression.NewFunction(t.Leaf.(string), args...), nil

	case SymAggFunc:
		var argExpr sql.Expression
		if t.Child(0).Op != SymNothing {
			var err error
			argExpr, err = c.reconstructExpr(ctx, t.Child(0), gen, transport)
			if err != nil {
				return nil, err
			}
		}
		distinct := false
		if d := t.Child(1); d != nil && d.Op == SymLiteral {
			distinct, _ = d.Leaf.(bool)
		}
		if distinct {
			return expression.NewDistinctAggregation(t.Leaf.(string), argExpr), nil
		}
		return expression.NewAggregation(t.Leaf.(string), argExpr), nil

	case SymWindowFunc:
		fn, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		partition, err := c.reconstructExprList(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		order, err := c.reconstructSortFields(ctx, t.Child(2), gen, transport)
		if err != nil {
			return nil, err
		}
		return expression.NewWindowExpr(fn, partition, order), nil

	case SymCase:
		var operand sql.Expression
		var err error
		if t.Child(0).Op != SymNothing {
			operand, err = c.reconstructExpr(ctx, t.Child(0), gen, transport)
			if err != nil {
				return nil, err
			}
		}
		branches := make([]expression.CaseBranch, len(t.Child(1).Children))
		for i, b := range t.Child(1).Children {
			cond, err := c.reconstructExpr(ctx, b.Child(0), gen, transport)
			if err != nil {
				return nil, err
			}
			val, err := c.reconstructExpr(ctx, b.Child(1), gen, transport)
			if err != nil {
				return nil, err
			}
			branches[i] = expression.CaseBranch{Cond: cond, Value: val}
		}
		var elseExpr sql.Expression
		if t.Child(2).Op != SymNothing {
			elseExpr, err = c.reconstructExpr(ctx, t.Child(2), gen, transport)
			if err != nil {
				return nil, err
			}
		}
		return expression.NewCase(operand, branches, elseExpr), nil

	case SymInList:
		needle, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		values := make([]sql.Expression, len(t.Child(1).Children))
		for i, v := range t.Child(1).Children {
			e, err := c.reconstructExpr(ctx, v, gen, transport)
			if err != nil {
				return nil, err
			}
			values[i] = e
		}
		if t.Leaf.(bool) {
			return expression.NewNotInList(needle, values), nil
		}
		return expression.NewInList(needle, values), nil

	case SymBetween:
		val, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		lo, err := c.reconstructExpr(ctx, t.Child(1), gen, transport)
		if err != nil {
			return nil, err
		}
		hi, err := c.reconstructExpr(ctx, t.Child(2), gen, transport)
		if err != nil {
			return nil, err
		}
		return expression.NewBetween(val, lo, hi), nil

	case SymScalarSubquery:
		inner, err := c.Reconstruct(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return expression.NewSubquery(inner), nil

	case SymInterval:
		value, err := c.reconstructExpr(ctx, t.Child(0), gen, transport)
		if err != nil {
			return nil, err
		}
		return expression.NewInterval(value, t.Leaf.(string)), nil

	default:
		return nil, sql.ErrPlanConversion.New(t)
	}
}

func joinTypeFromString(s string) plan.JoinType {
	switch s {
	case "LEFT":
		return plan.JoinTypeLeft
	case "RIGHT":
		return plan.JoinTypeRight
	case "FULL":
		return plan.JoinTypeFull
	case "CROSS":
		return plan.JoinTypeCross
	default:
		return plan.JoinTypeInner
	}
}
