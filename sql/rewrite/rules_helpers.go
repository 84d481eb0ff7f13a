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
	"sort"
	"strings"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/types"
)

// granularityOrder ranks time granularities from finest to coarsest.
var granularityOrder = map[string]int{
	"second":  0,
	"minute":  1,
	"hour":    2,
	"day":     3,
	"week":    4,
	"month":   5,
	"quarter": 6,
	"year":    7,
}

// coarserGranularity returns the coarser of two granularities, and whether
// merging them is legal: truncating an already-truncated value is only
// stable when the outer granularity is at least as coarse, and week does
// not nest inside month or quarter.
func coarserGranularity(outer, inner string) (string, bool) {
	oi, ok1 := granularityOrder[outer]
	ii, ok2 := granularityOrder[inner]
	if !ok1 || !ok2 {
		return "", false
	}
	if oi < ii {
		return "", false
	}
	if inner == "week" && (outer == "month" || outer == "quarter") {
		return "", false
	}
	return outer, true
}

// literalOf returns the folded scalar constant of a class.
func literalOf(g *EGraph, id ClassID) (interface{}, bool) {
	c := g.Class(id).facts.Constant
	if c == nil || c.IsList {
		return nil, false
	}
	return c.Value, true
}

// nodeOfOp returns the lexicographically first node of the class with one
// of the given ops.
func nodeOfOp(g *EGraph, id ClassID, ops ...Symbol) (*ENode, bool) {
	var found *ENode
	for _, n := range g.Class(id).nodes {
		for _, op := range ops {
			if n.Op == op {
				if found == nil || n.key() < found.key() {
					found = n
				}
			}
		}
	}
	return found, found != nil
}

// nodesOfOp returns every node of the class with the op, in key order.
func nodesOfOp(g *EGraph, id ClassID, op Symbol) []*ENode {
	var out []*ENode
	for _, n := range g.Class(id).nodes {
		if n.Op == op {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

// memberInfo is a resolved member realization found inside a class.
type memberInfo struct {
	Kind        Symbol
	Path        string
	Granularity string
}

// memberOf finds a member realization in the class, looking through alias
// and cast nodes.
func memberOf(g *EGraph, id ClassID) (memberInfo, bool) {
	return memberOfDepth(g, id, 0)
}

func memberOfDepth(g *EGraph, id ClassID, depth int) (memberInfo, bool) {
	if depth > 8 {
		return memberInfo{}, false
	}
	class := g.Class(id)
	for _, n := range class.nodes {
		switch n.Op {
		case SymDimensionMember, SymMeasureMember, SymSegmentMember:
			return memberInfo{Kind: n.Op, Path: n.Leaf.(string)}, true
		case SymTimeDimensionMember:
			td := n.Leaf.(TimeDimValue)
			return memberInfo{Kind: n.Op, Path: td.Path, Granularity: td.Granularity}, true
		}
	}
	for _, n := range class.nodes {
		if n.Op == SymAlias || n.Op == SymCast {
			if m, ok := memberOfDepth(g, n.Children[0], depth+1); ok {
				return m, true
			}
		}
	}
	return memberInfo{}, false
}

// selectedColumn resolves one selected expression class into an output
// column: the alias the caller sees plus the member producing it.
func selectedColumn(g *EGraph, id ClassID) (OutputColumn, memberInfo, bool) {
	class := g.Class(id)
	m, ok := memberOf(g, id)
	if !ok {
		return OutputColumn{}, memberInfo{}, false
	}

	name := class.facts.OriginalExpr
	if n, ok := nodeOfOp(g, id, SymAlias); ok {
		name = n.Leaf.(string)
	} else if _, member, ok := splitMemberPath(m); ok && m.Kind != SymTimeDimensionMember {
		name = member
	}

	col := OutputColumn{Name: name, Member: m.Path, Type: memberType(g, m)}
	if m.Kind == SymTimeDimensionMember {
		col.Member = TimeDimValue{Path: m.Path, Granularity: m.Granularity}.String()
	}
	return col, m, true
}

func splitMemberPath(m memberInfo) (string, string, bool) {
	return cube.SplitPath(m.Path)
}

func memberType(g *EGraph, m memberInfo) sql.Type {
	if m.Kind == SymTimeDimensionMember {
		return types.Timestamp
	}
	if g.meta != nil {
		if member, err := g.meta.Member(m.Path); err == nil {
			return member.Type
		}
	}
	return types.Text
}

// listChildren returns the children of the class's list node.
func listChildren(g *EGraph, id ClassID, op Symbol) ([]ClassID, bool) {
	n, ok := nodeOfOp(g, id, op)
	if !ok {
		return nil, false
	}
	return n.Children, true
}

// scanEntry returns the request entry of a class known to contain a
// CubeScan node.
func scanEntry(g *EGraph, id ClassID) (requestRef, *RequestEntry, bool) {
	n, ok := nodeOfOp(g, id, SymCubeScan)
	if !ok {
		return 0, nil, false
	}
	ref := n.Leaf.(requestRef)
	entry := g.requests.get(ref)
	return ref, entry, entry != nil
}

// snapshotTerm freezes a class into a concrete term for deferred
// rendering, preferring member realizations over raw columns. Cycles
// introduced by wrapper promotion are cut by refusing revisits.
func snapshotTerm(g *EGraph, id ClassID) (*Term, bool) {
	return snapshotTermRec(g, id, map[ClassID]bool{})
}

func snapshotTermRec(g *EGraph, id ClassID, visiting map[ClassID]bool) (*Term, bool) {
	root := g.Find(id)
	if visiting[root] {
		return nil, false
	}
	visiting[root] = true
	defer delete(visiting, root)

	nodes := append([]*ENode(nil), g.Class(root).nodes...)
	sort.Slice(nodes, func(i, j int) bool {
		pi, pj := snapshotPriority(nodes[i].Op), snapshotPriority(nodes[j].Op)
		if pi != pj {
			return pi < pj
		}
		return nodes[i].key() < nodes[j].key()
	})
	for _, n := range nodes {
		if n.Op == SymCubeScanWrapper {
			continue
		}
		t := &Term{Op: n.Op, Leaf: n.Leaf}
		ok := true
		for _, c := range n.Children {
			child, childOK := snapshotTermRec(g, c, visiting)
			if !childOK {
				ok = false
				break
			}
			t.Children = append(t.Children, child)
		}
		if ok {
			return t, true
		}
	}
	return nil, false
}

func snapshotPriority(op Symbol) int {
	switch op {
	case SymDimensionMember, SymMeasureMember, SymSegmentMember, SymTimeDimensionMember:
		return 0
	case SymLiteral:
		return 1
	case SymColumn:
		return 2
	default:
		return 3
	}
}

// compileFilter compiles a predicate class into a request filter tree.
// Every leaf must resolve to an operation on a cube member over literal
// values; anything else rejects the whole predicate.
func compileFilter(g *EGraph, id ClassID) (*sql.RequestFilter, bool) {
	return compileFilterRec(g, id, 0)
}

func compileFilterRec(g *EGraph, id ClassID, depth int) (*sql.RequestFilter, bool) {
	if depth > 32 {
		return nil, false
	}
	// Segment references compile to segment filters at the request level;
	// the caller moves them into the segments list.
	if m, ok := memberOf(g, id); ok && m.Kind == SymSegmentMember {
		return &sql.RequestFilter{Member: m.Path, Operator: "segment"}, true
	}

	// A class can hold several spellings of the same predicate (the
	// literal-first form and its flip, say); any one that compiles is the
	// answer.
	binaries := nodesOfOp(g, id, SymBinary)
	for _, n := range binaries {
		op := n.Leaf.(string)
		switch op {
		case "AND", "OR":
			l, lok := compileFilterRec(g, n.Children[0], depth+1)
			r, rok := compileFilterRec(g, n.Children[1], depth+1)
			if !lok || !rok {
				continue
			}
			if op == "AND" {
				return &sql.RequestFilter{And: flattenFilters("and", l, r)}, true
			}
			return &sql.RequestFilter{Or: flattenFilters("or", l, r)}, true
		default:
			if f, ok := compileComparison(g, n, op); ok {
				return f, true
			}
		}
	}

	if n, ok := nodeOfOp(g, id, SymInList); ok {
		m, mok := memberOf(g, n.Children[0])
		values, vok := literalListOf(g, n.Children[1])
		if !mok || !vok {
			return nil, false
		}
		operator := "equals"
		if n.Leaf.(bool) {
			operator = "notEquals"
		}
		return &sql.RequestFilter{Member: m.Path, Operator: operator, Values: values}, true
	}

	if n, ok := nodeOfOp(g, id, SymBetween); ok {
		m, mok := memberOf(g, n.Children[0])
		lo, lok := literalOf(g, n.Children[1])
		hi, hok := literalOf(g, n.Children[2])
		if !mok || !lok || !hok {
			return nil, false
		}
		return &sql.RequestFilter{
			Member:   m.Path,
			Operator: "inDateRange",
			Values:   []*string{strptr(types.FormatValue(lo)), strptr(types.FormatValue(hi))},
		}, true
	}

	if n, ok := nodeOfOp(g, id, SymIsNull); ok {
		m, mok := memberOf(g, n.Children[0])
		if !mok {
			return nil, false
		}
		operator := "notSet"
		if n.Leaf.(bool) {
			operator = "set"
		}
		return &sql.RequestFilter{Member: m.Path, Operator: operator}, true
	}

	if n, ok := nodeOfOp(g, id, SymNot); ok {
		inner, iok := compileFilterRec(g, n.Children[0], depth+1)
		if !iok {
			return nil, false
		}
		if neg, ok := negateFilter(inner); ok {
			return neg, true
		}
		return nil, false
	}

	// A bare boolean dimension is an equals-true filter.
	if m, ok := memberOf(g, id); ok && m.Kind == SymDimensionMember {
		return &sql.RequestFilter{Member: m.Path, Operator: "equals", Values: []*string{strptr("true")}}, true
	}

	return nil, false
}

func compileComparison(g *EGraph, n *ENode, op string) (*sql.RequestFilter, bool) {
	left, right := n.Children[0], n.Children[1]
	m, mok := memberOf(g, left)
	v, vok := literalOf(g, right)
	if !mok || !vok {
		// Comparisons arrive normalized member-first by the flip rules; a
		// literal-first form here does not compile.
		return nil, false
	}
	temporal := m.Kind == SymTimeDimensionMember || memberTypeIsTemporal(g, m)
	operator, ok := comparisonOperator(op, temporal)
	if !ok {
		return nil, false
	}
	return &sql.RequestFilter{Member: m.Path, Operator: operator, Values: []*string{strptr(types.FormatValue(v))}}, true
}

func memberTypeIsTemporal(g *EGraph, m memberInfo) bool {
	return memberType(g, m).IsTemporal()
}

func comparisonOperator(op string, temporal bool) (string, bool) {
	if temporal {
		switch op {
		case ">":
			return "afterDate", true
		case ">=":
			return "afterOrOnDate", true
		case "<":
			return "beforeDate", true
		case "<=":
			return "beforeOrOnDate", true
		case "=":
			return "inDateRange", true
		}
	}
	switch op {
	case "=":
		return "equals", true
	case "<>", "!=":
		return "notEquals", true
	case ">":
		return "gt", true
	case ">=":
		return "gte", true
	case "<":
		return "lt", true
	case "<=":
		return "lte", true
	case "LIKE":
		return "contains", true
	case "NOT LIKE":
		return "notContains", true
	default:
		return "", false
	}
}

func negateFilter(f *sql.RequestFilter) (*sql.RequestFilter, bool) {
	opposites := map[string]string{
		"equals":    "notEquals",
		"notEquals": "equals",
		"set":       "notSet",
		"notSet":    "set",
		"contains":  "notContains",
	}
	if neg, ok := opposites[f.Operator]; ok {
		return &sql.RequestFilter{Member: f.Member, Operator: neg, Values: f.Values}, true
	}
	return nil, false
}

func flattenFilters(kind string, l, r *sql.RequestFilter) []*sql.RequestFilter {
	var out []*sql.RequestFilter
	for _, f := range []*sql.RequestFilter{l, r} {
		switch {
		case kind == "and" && len(f.And) > 0 && f.Member == "" && len(f.Or) == 0:
			out = append(out, f.And...)
		case kind == "or" && len(f.Or) > 0 && f.Member == "" && len(f.And) == 0:
			out = append(out, f.Or...)
		default:
			out = append(out, f)
		}
	}
	return out
}

func literalListOf(g *EGraph, id ClassID) ([]*string, bool) {
	c := g.Class(id).facts.Constant
	if c == nil || !c.IsList {
		return nil, false
	}
	out := make([]*string, len(c.Values))
	for i, v := range c.Values {
		if v == nil {
			out[i] = nil
			continue
		}
		out[i] = strptr(types.FormatValue(v))
	}
	return out, true
}

func strptr(s string) *string { return &s }

// attachFilter merges a compiled filter into a request: segment leaves go
// to the segments list, everything else joins the filter list.
func attachFilter(req *sql.Request, f *sql.RequestFilter) {
	if f.Operator == "segment" && f.Member != "" {
		req.Segments = appendUnique(req.Segments, f.Member)
		return
	}
	if f.Member == "" && len(f.And) > 0 && len(f.Or) == 0 {
		for _, sub := range f.And {
			attachFilter(req, sub)
		}
		return
	}
	req.Filters = append(req.Filters, f)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// uniqueAlias derives a stable alias for a generated column from its
// original expression text.
func uniqueAlias(original string, taken map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '(', r == ')', r == ',', r == '.', r == '\'':
			return '_'
		default:
			return -1
		}
	}, original)
	base = strings.Trim(base, "_")
	for strings.Contains(base, "__") {
		base = strings.ReplaceAll(base, "__", "_")
	}
	if base == "" {
		base = "expr"
	}
	alias := base
	for i := 1; taken[alias]; i++ {
		alias = fmt.Sprintf("%s_%d", base, i)
	}
	taken[alias] = true
	return alias
}
