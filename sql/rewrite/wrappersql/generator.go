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

package wrappersql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/rewrite"
	"github.com/dolthub/go-cubesql/sql/types"
)

// Generator renders wrapper subtrees for one dialect. It implements
// rewrite.SQLGenerator.
type Generator struct {
	dialect *Dialect
}

var _ rewrite.SQLGenerator = (*Generator)(nil)

// NewGenerator creates a generator for the dialect.
func NewGenerator(d *Dialect) *Generator {
	return &Generator{dialect: d}
}

// Generate renders the wrapper's inner plan term into SQL.
func (g *Generator) Generate(ctx *sql.Context, eg *rewrite.EGraph, term *rewrite.Term, transport sql.Transport, params []rewrite.ParamInfo) (*rewrite.GeneratedSQL, error) {
	em := &emitter{
		dialect:   g.dialect,
		graph:     eg,
		ctx:       ctx,
		transport: transport,
		members:   map[string]rewrite.Symbol{},
	}
	parts, err := em.walkPlan(term)
	if err != nil {
		return nil, err
	}
	sqlText, err := em.render(parts)
	if err != nil {
		return nil, err
	}

	schema := make(sql.Schema, len(parts.columns))
	for i, col := range parts.columns {
		schema[i] = &sql.Column{Name: col.alias, Type: col.typ, Nullable: true}
	}
	return &rewrite.GeneratedSQL{
		SQL:     sqlText,
		Params:  em.binds,
		Columns: schema,
		Request: em.buildRequest(parts),
	}, nil
}

type column struct {
	sqlText string
	alias   string
	typ     sql.Type
	// term is the source term of the select item, used to match GROUP BY
	// and ORDER BY entries without re-rendering (re-rendering would mint
	// duplicate bind parameters).
	term *rewrite.Term
}

type selectParts struct {
	distinct bool
	columns  []column
	from     string
	where    []string
	groupBy  []string
	having   []string
	orderBy  []string
	limit    *int64
	offset   *int64
}

type emitter struct {
	dialect   *Dialect
	graph     *rewrite.EGraph
	ctx       *sql.Context
	transport sql.Transport

	binds   []interface{}
	members map[string]rewrite.Symbol
	aliases map[string]bool
}

func (e *emitter) render(p *selectParts) (string, error) {
	cols := make([]string, len(p.columns))
	for i, c := range p.columns {
		cols[i] = fmt.Sprintf("%s %s", c.sqlText, e.dialect.QuoteIdent(c.alias))
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	data := selectData{
		Distinct: p.distinct,
		Columns:  strings.Join(cols, ", "),
		From:     p.from,
		Where:    strings.Join(p.where, " AND "),
		GroupBy:  strings.Join(p.groupBy, ", "),
		Having:   strings.Join(p.having, " AND "),
		OrderBy:  strings.Join(p.orderBy, ", "),
	}
	if p.limit != nil {
		data.Limit = fmt.Sprint(*p.limit)
	}
	if p.offset != nil {
		data.Offset = fmt.Sprint(*p.offset)
	}
	return e.dialect.RenderSelect(data)
}

// nest turns already-built parts into a derived table so an outer shape
// can select from it.
func (e *emitter) nest(p *selectParts, alias string) (*selectParts, error) {
	inner, err := e.render(p)
	if err != nil {
		return nil, err
	}
	return &selectParts{from: fmt.Sprintf("(%s) %s", inner, e.dialect.QuoteIdent(alias))}, nil
}

func (e *emitter) walkPlan(t *rewrite.Term) (*selectParts, error) {
	switch t.Op {
	case rewrite.SymLimit:
		parts, err := e.walkPlan(t.Child(0))
		if err != nil {
			return nil, err
		}
		n := t.Leaf.(int64)
		if parts.limit == nil || *parts.limit > n {
			parts.limit = &n
		}
		return parts, nil

	case rewrite.SymOffset:
		parts, err := e.walkPlan(t.Child(0))
		if err != nil {
			return nil, err
		}
		n := t.Leaf.(int64)
		parts.offset = &n
		return parts, nil

	case rewrite.SymDistinct:
		parts, err := e.walkPlan(t.Child(0))
		if err != nil {
			return nil, err
		}
		parts.distinct = true
		return parts, nil

	case rewrite.SymFilter:
		parts, err := e.walkPlan(t.Child(1))
		if err != nil {
			return nil, err
		}
		pred, err := e.expr(t.Child(0), true)
		if err != nil {
			return nil, err
		}
		if len(parts.groupBy) > 0 {
			parts.having = append(parts.having, pred)
		} else {
			parts.where = append(parts.where, pred)
		}
		return parts, nil

	case rewrite.SymSort:
		parts, err := e.walkPlan(t.Child(0))
		if err != nil {
			return nil, err
		}
		for _, key := range t.Child(1).Children {
			target := ""
			for _, c := range parts.columns {
				if termEqual(c.term, key.Child(0)) {
					target = e.dialect.QuoteIdent(c.alias)
					break
				}
			}
			if target == "" {
				rendered, err := e.expr(key.Child(0), false)
				if err != nil {
					return nil, err
				}
				target = rendered
				for _, c := range parts.columns {
					if c.sqlText == rendered {
						target = e.dialect.QuoteIdent(c.alias)
						break
					}
				}
			}
			dir := "ASC"
			if key.Leaf == "desc" {
				dir = "DESC"
			}
			parts.orderBy = append(parts.orderBy, target+" "+dir)
		}
		return parts, nil

	case rewrite.SymProjection:
		parts, err := e.walkPlan(t.Child(1))
		if err != nil {
			return nil, err
		}
		if len(parts.columns) > 0 {
			parts, err = e.nest(parts, "t0")
			if err != nil {
				return nil, err
			}
		}
		e.aliases = map[string]bool{}
		for _, item := range t.Child(0).Children {
			col, err := e.selectItem(item)
			if err != nil {
				return nil, err
			}
			parts.columns = append(parts.columns, col)
		}
		return parts, nil

	case rewrite.SymAggregate:
		parts, err := e.walkPlan(t.Child(0))
		if err != nil {
			return nil, err
		}
		if len(parts.columns) > 0 {
			parts, err = e.nest(parts, "t0")
			if err != nil {
				return nil, err
			}
		}
		e.aliases = map[string]bool{}
		for _, item := range t.Child(2).Children {
			col, err := e.selectItem(item)
			if err != nil {
				return nil, err
			}
			parts.columns = append(parts.columns, col)
		}
		for _, grp := range t.Child(1).Children {
			rendered, err := e.groupItem(grp, parts)
			if err != nil {
				return nil, err
			}
			parts.groupBy = append(parts.groupBy, rendered)
		}
		return parts, nil

	case rewrite.SymSubqueryAlias:
		inner, err := e.walkPlan(t.Child(0))
		if err != nil {
			return nil, err
		}
		return e.nest(inner, t.Leaf.(string))

	case rewrite.SymJoin:
		left, err := e.walkPlan(t.Child(0))
		if err != nil {
			return nil, err
		}
		right, err := e.walkPlan(t.Child(1))
		if err != nil {
			return nil, err
		}
		leftFrom, err := e.fromClause(left, "lt")
		if err != nil {
			return nil, err
		}
		rightFrom, err := e.fromClause(right, "rt")
		if err != nil {
			return nil, err
		}
		joinType := t.Leaf.(string)
		from := fmt.Sprintf("%s %s JOIN %s", leftFrom, joinType, rightFrom)
		if t.Child(2).Op != rewrite.SymNothing {
			cond, err := e.expr(t.Child(2), true)
			if err != nil {
				return nil, err
			}
			from += " ON " + cond
		}
		return &selectParts{from: from}, nil

	case rewrite.SymUnion:
		left, err := e.walkPlan(t.Child(0))
		if err != nil {
			return nil, err
		}
		right, err := e.walkPlan(t.Child(1))
		if err != nil {
			return nil, err
		}
		leftSQL, err := e.render(left)
		if err != nil {
			return nil, err
		}
		rightSQL, err := e.render(right)
		if err != nil {
			return nil, err
		}
		op := "UNION"
		if t.Leaf.(bool) {
			op = "UNION ALL"
		}
		return &selectParts{
			columns: left.columns,
			from:    fmt.Sprintf("(%s %s %s) %s", leftSQL, op, rightSQL, e.dialect.QuoteIdent("u0")),
		}, nil

	case rewrite.SymCubeTable:
		return &selectParts{from: e.dialect.MemberRef(t.Leaf.(string))}, nil

	case rewrite.SymCubeScan:
		return e.scanFrom(t)

	default:
		return nil, sql.ErrWrapperGenerate.New(t.Op)
	}
}

// fromClause renders parts as a FROM operand, nesting when the parts carry
// more than a bare relation.
func (e *emitter) fromClause(p *selectParts, alias string) (string, error) {
	if len(p.columns) == 0 && len(p.where) == 0 && len(p.groupBy) == 0 &&
		len(p.orderBy) == 0 && p.limit == nil && p.offset == nil {
		return p.from, nil
	}
	nested, err := e.nest(p, alias)
	if err != nil {
		return "", err
	}
	return nested.from, nil
}

// scanFrom renders a compiled scan leaf inside a wrapper: raw relation
// scans become the cube placeholder, grouped scans become a sub-select the
// backend renders for us.
func (e *emitter) scanFrom(t *rewrite.Term) (*selectParts, error) {
	entry := e.graph.RequestEntry(t.Leaf)
	if entry == nil {
		return nil, sql.ErrWrapperGenerate.New("missing request entry")
	}
	if entry.IsWrapped {
		return &selectParts{from: fmt.Sprintf("(%s) %s", entry.WrappedSQL, e.dialect.QuoteIdent("w0"))}, nil
	}
	if entry.Request.Ungrouped && entry.Request.IsEmpty() {
		return &selectParts{from: e.dialect.MemberRef(entry.Cube)}, nil
	}
	if e.transport == nil {
		return nil, sql.ErrWrapperGenerate.New("grouped scan without transport")
	}
	innerSQL, binds, err := e.transport.GenerateInnerSQL(e.ctx, entry.Request)
	if err != nil {
		return nil, err
	}
	e.binds = append(e.binds, binds...)
	parts := &selectParts{from: fmt.Sprintf("(%s) %s", innerSQL, e.dialect.QuoteIdent("q0"))}
	for _, col := range entry.Columns {
		parts.columns = append(parts.columns, column{
			sqlText: e.dialect.QuoteIdent("q0") + "." + e.dialect.QuoteIdent(col.Name),
			alias:   col.Name,
			typ:     col.Type,
		})
	}
	return parts, nil
}

func (e *emitter) selectItem(t *rewrite.Term) (column, error) {
	item := t
	alias := ""
	if t.Op == rewrite.SymAlias {
		alias = t.Leaf.(string)
		item = t.Child(0)
	}
	rendered, err := e.expr(item, false)
	if err != nil {
		return column{}, err
	}
	if alias == "" {
		alias = e.deriveAlias(item)
	}
	if e.aliases == nil {
		e.aliases = map[string]bool{}
	}
	base := alias
	for i := 1; e.aliases[alias]; i++ {
		alias = fmt.Sprintf("%s_%d", base, i)
	}
	e.aliases[alias] = true
	return column{sqlText: rendered, alias: alias, typ: termType(item), term: item}, nil
}

// groupItem renders one GROUP BY entry, preferring the 1-based ordinal of
// a matching select item; ROLLUP and GROUPING SETS keep their shape with
// ordinals inside.
func (e *emitter) groupItem(t *rewrite.Term, parts *selectParts) (string, error) {
	if t.Op == rewrite.SymScalarFunc {
		name := t.Leaf.(string)
		if name == "ROLLUP" || name == "CUBE" || name == "GROUPING SETS" {
			args := make([]string, len(t.Children))
			for i, a := range t.Children {
				rendered, err := e.groupItem(a, parts)
				if err != nil {
					return "", err
				}
				args[i] = rendered
			}
			return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil
		}
	}
	if t.Op == rewrite.SymLiteral {
		if ordinal, ok := t.Leaf.(int64); ok {
			return fmt.Sprint(ordinal), nil
		}
	}
	for i, c := range parts.columns {
		if termEqual(c.term, t) {
			return fmt.Sprint(i + 1), nil
		}
	}
	rendered, err := e.expr(t, false)
	if err != nil {
		return "", err
	}
	for i, c := range parts.columns {
		if c.sqlText == rendered {
			return fmt.Sprint(i + 1), nil
		}
	}
	return rendered, nil
}

// termEqual compares terms structurally via their canonical rendering.
func termEqual(a, b *rewrite.Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// expr renders a scalar expression. Literals compared against members are
// lifted into bind parameters; literals in value positions stay inline.
func (e *emitter) expr(t *rewrite.Term, inPredicate bool) (string, error) {
	switch t.Op {
	case rewrite.SymDimensionMember, rewrite.SymMeasureMember, rewrite.SymSegmentMember:
		path := t.Leaf.(string)
		e.members[path] = t.Op
		return e.dialect.MemberRef(path), nil

	case rewrite.SymTimeDimensionMember:
		td := t.Leaf.(rewrite.TimeDimValue)
		e.members[td.Path] = t.Op
		return fmt.Sprintf("DATE_TRUNC(%s, %s)", e.dialect.QuoteString(td.Granularity), e.dialect.MemberRef(td.Path)), nil

	case rewrite.SymColumn:
		ref := t.Leaf.(rewrite.ColumnRef)
		if e.graph.Meta() != nil {
			if member, ok := e.graph.Meta().ResolveColumn(ref.Table, ref.Name); ok {
				e.members[member.Path()] = memberSymbol(member)
				return e.dialect.MemberRef(member.Path()), nil
			}
		}
		if ref.Table == "" {
			return e.dialect.QuoteIdent(ref.Name), nil
		}
		return e.dialect.QuoteIdent(ref.Table) + "." + e.dialect.QuoteIdent(ref.Name), nil

	case rewrite.SymLiteral:
		if inPredicate {
			return e.bind(t.Leaf), nil
		}
		return e.literal(t.Leaf), nil

	case rewrite.SymQueryParam:
		e.binds = append(e.binds, nil)
		return e.dialect.Param(len(e.binds)), nil

	case rewrite.SymBinary:
		op := t.Leaf.(string)
		predicate := inPredicate || isComparisonOp(op)
		l, err := e.expr(t.Child(0), predicate && op != "AND" && op != "OR")
		if err != nil {
			return "", err
		}
		r, err := e.expr(t.Child(1), predicate && op != "AND" && op != "OR")
		if err != nil {
			return "", err
		}
		if op == "AND" || op == "OR" {
			return fmt.Sprintf("(%s %s %s)", l, op, r), nil
		}
		return fmt.Sprintf("%s %s %s", l, op, r), nil

	case rewrite.SymNot:
		inner, err := e.expr(t.Child(0), inPredicate)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil

	case rewrite.SymIsNull:
		inner, err := e.expr(t.Child(0), false)
		if err != nil {
			return "", err
		}
		if t.Leaf.(bool) {
			return inner + " IS NOT NULL", nil
		}
		return inner + " IS NULL", nil

	case rewrite.SymNegative:
		inner, err := e.expr(t.Child(0), false)
		if err != nil {
			return "", err
		}
		return "-" + inner, nil

	case rewrite.SymCast:
		inner, err := e.expr(t.Child(0), false)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CAST(%s AS %s)", inner, t.Leaf.(string)), nil

	case rewrite.SymAlias:
		return e.expr(t.Child(0), inPredicate)

	case rewrite.SymScalarFunc:
		name := t.Leaf.(string)
		if name == "DATE_TRUNC" && len(t.Children) == 2 && t.Child(0).Op == rewrite.SymLiteral {
			inner, err := e.expr(t.Child(1), false)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("DATE_TRUNC(%s, %s)", e.literal(t.Child(0).Leaf), inner), nil
		}
		args := make([]string, len(t.Children))
		for i, a := range t.Children {
			rendered, err := e.expr(a, false)
			if err != nil {
				return "", err
			}
			args[i] = rendered
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil

	case rewrite.SymAggFunc:
		name := t.Leaf.(string)
		if t.Child(0).Op == rewrite.SymNothing {
			return name + "(*)", nil
		}
		arg, err := e.expr(t.Child(0), false)
		if err != nil {
			return "", err
		}
		if name == "MEASURE" {
			return arg, nil
		}
		distinct := ""
		if d := t.Child(1); d != nil && d.Op == rewrite.SymLiteral {
			if v, ok := d.Leaf.(bool); ok && v {
				distinct = "DISTINCT "
			}
		}
		return fmt.Sprintf("%s(%s%s)", name, distinct, arg), nil

	case rewrite.SymWindowFunc:
		fn, err := e.expr(t.Child(0), false)
		if err != nil {
			return "", err
		}
		var clauses []string
		if len(t.Child(1).Children) > 0 {
			parts := make([]string, len(t.Child(1).Children))
			for i, p := range t.Child(1).Children {
				rendered, err := e.expr(p, false)
				if err != nil {
					return "", err
				}
				parts[i] = rendered
			}
			clauses = append(clauses, "PARTITION BY "+strings.Join(parts, ", "))
		}
		if len(t.Child(2).Children) > 0 {
			keys := make([]string, len(t.Child(2).Children))
			for i, key := range t.Child(2).Children {
				rendered, err := e.expr(key.Child(0), false)
				if err != nil {
					return "", err
				}
				dir := "ASC"
				if key.Leaf == "desc" {
					dir = "DESC"
				}
				keys[i] = rendered + " " + dir
			}
			clauses = append(clauses, "ORDER BY "+strings.Join(keys, ", "))
		}
		return fmt.Sprintf("%s OVER (%s)", fn, strings.Join(clauses, " ")), nil

	case rewrite.SymCase:
		var sb strings.Builder
		sb.WriteString("CASE")
		for _, branch := range t.Child(1).Children {
			cond, err := e.expr(branch.Child(0), true)
			if err != nil {
				return "", err
			}
			val, err := e.expr(branch.Child(1), false)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, " WHEN %s THEN %s", cond, val)
		}
		if t.Child(2).Op != rewrite.SymNothing {
			val, err := e.expr(t.Child(2), false)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, " ELSE %s", val)
		}
		sb.WriteString(" END")
		return sb.String(), nil

	case rewrite.SymInList:
		needle, err := e.expr(t.Child(0), false)
		if err != nil {
			return "", err
		}
		values := make([]string, len(t.Child(1).Children))
		for i, v := range t.Child(1).Children {
			rendered, err := e.expr(v, true)
			if err != nil {
				return "", err
			}
			values[i] = rendered
		}
		op := "IN"
		if t.Leaf.(bool) {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", needle, op, strings.Join(values, ", ")), nil

	case rewrite.SymBetween:
		val, err := e.expr(t.Child(0), false)
		if err != nil {
			return "", err
		}
		lo, err := e.expr(t.Child(1), true)
		if err != nil {
			return "", err
		}
		hi, err := e.expr(t.Child(2), true)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", val, lo, hi), nil

	case rewrite.SymScalarSubquery:
		inner, err := e.walkPlan(t.Child(0))
		if err != nil {
			return "", err
		}
		rendered, err := e.render(inner)
		if err != nil {
			return "", err
		}
		return "(" + rendered + ")", nil

	case rewrite.SymInterval:
		value, err := e.expr(t.Child(0), false)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("INTERVAL %s %s", value, t.Leaf.(string)), nil

	case rewrite.SymNothing:
		return "", nil

	default:
		return "", sql.ErrWrapperGenerate.New(t.Op)
	}
}

func (e *emitter) bind(v interface{}) string {
	e.binds = append(e.binds, v)
	return e.dialect.Param(len(e.binds))
}

func (e *emitter) literal(v interface{}) string {
	switch x := v.(type) {
	case string:
		return e.dialect.QuoteString(x)
	case nil:
		return "NULL"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return types.FormatValue(x)
	}
}

func (e *emitter) deriveAlias(t *rewrite.Term) string {
	switch t.Op {
	case rewrite.SymDimensionMember, rewrite.SymMeasureMember, rewrite.SymSegmentMember:
		if _, member, ok := cube.SplitPath(t.Leaf.(string)); ok {
			return member
		}
	case rewrite.SymTimeDimensionMember:
		td := t.Leaf.(rewrite.TimeDimValue)
		return slugAlias("date_trunc_" + td.Granularity + "_" + td.Path)
	case rewrite.SymColumn:
		return t.Leaf.(rewrite.ColumnRef).Name
	case rewrite.SymCase:
		if first := t.Child(1); len(first.Children) > 0 {
			if rendered, err := e.exprNoBind(first.Children[0].Child(0)); err == nil {
				return slugAlias("case_when_" + rendered)
			}
		}
		return "case_when"
	case rewrite.SymScalarFunc:
		return slugAlias(strings.ToLower(t.Leaf.(string)))
	case rewrite.SymAggFunc:
		return slugAlias(strings.ToLower(t.Leaf.(string)))
	case rewrite.SymCast, rewrite.SymAlias:
		return e.deriveAlias(t.Child(0))
	}
	return "expr"
}

// exprNoBind renders without registering bind parameters, for alias
// derivation only.
func (e *emitter) exprNoBind(t *rewrite.Term) (string, error) {
	saved := e.binds
	defer func() { e.binds = saved }()
	return e.expr(t, false)
}

func (e *emitter) buildRequest(parts *selectParts) *sql.Request {
	req := &sql.Request{Ungrouped: true}
	paths := make([]string, 0, len(e.members))
	for path := range e.members {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		switch e.members[path] {
		case rewrite.SymMeasureMember:
			req.Measures = append(req.Measures, path)
		case rewrite.SymTimeDimensionMember:
			req.TimeDimensions = append(req.TimeDimensions, sql.TimeDimension{Dimension: path})
		case rewrite.SymSegmentMember:
			req.Segments = append(req.Segments, path)
		default:
			req.Dimensions = append(req.Dimensions, path)
		}
	}
	return req
}

func memberSymbol(m *cube.Member) rewrite.Symbol {
	switch m.Kind {
	case cube.KindMeasure:
		return rewrite.SymMeasureMember
	case cube.KindSegment:
		return rewrite.SymSegmentMember
	case cube.KindTimeDimension:
		return rewrite.SymTimeDimensionMember
	default:
		return rewrite.SymDimensionMember
	}
}

func isComparisonOp(op string) bool {
	switch op {
	case "=", "<>", "!=", "<", "<=", ">", ">=", "LIKE", "NOT LIKE":
		return true
	}
	return false
}

func termType(t *rewrite.Term) sql.Type {
	switch t.Op {
	case rewrite.SymLiteral:
		return types.TypeOfValue(t.Leaf)
	case rewrite.SymTimeDimensionMember:
		return types.Timestamp
	case rewrite.SymAggFunc:
		if t.Leaf == "COUNT" {
			return types.Int64
		}
		return types.Float64
	case rewrite.SymBinary:
		if isComparisonOp(t.Leaf.(string)) || t.Leaf == "AND" || t.Leaf == "OR" {
			return types.Boolean
		}
		return types.Float64
	case rewrite.SymCast:
		return types.FromSQLName(t.Leaf.(string))
	default:
		return types.Text
	}
}

func slugAlias(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, s)
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.Trim(out, "_")
	if out == "" {
		return "expr"
	}
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}
