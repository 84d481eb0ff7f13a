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

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/types"
)

// CubeRefKind classifies how many cubes an e-class's subtree is scoped to.
type CubeRefKind byte

const (
	// CubeRefNone means the subtree references no cube.
	CubeRefNone CubeRefKind = iota
	// CubeRefSingle means exactly one cube.
	CubeRefSingle
	// CubeRefMulti means more than one cube; such subtrees can only be
	// compiled through joins or wrapping.
	CubeRefMulti
)

// CubeRef is the cube-scoping fact of an e-class.
type CubeRef struct {
	Kind CubeRefKind
	Name string
}

// Constant is the constant-folding fact: a scalar or a literal list.
type Constant struct {
	IsList bool
	Value  interface{}
	Values []interface{}
}

func (c *Constant) key() string {
	if c == nil {
		return ""
	}
	if !c.IsList {
		return leafKey(c.Value)
	}
	var sb strings.Builder
	for _, v := range c.Values {
		sb.WriteString(leafKey(v))
		sb.WriteByte('\x1f')
	}
	return sb.String()
}

// Facts is the per-e-class analysis record. Merging two records is
// commutative, associative and idempotent, so facts are stable however
// unions arrive.
type Facts struct {
	// Constant is the folded value of the class, or nil when unknown or
	// conflicting.
	Constant *Constant
	// OriginalExpr is the source text used to keep generated aliases
	// stable across the rewrite.
	OriginalExpr string
	// Columns is the set of (relation, column) pairs beneath the class.
	Columns map[ColumnRef]struct{}
	// Members maps member paths realized beneath this class to the class
	// that realized them.
	Members map[string]ClassID
	// TrivialPushDown is true when the subtree pushes to a cube without
	// introducing computation.
	TrivialPushDown bool
	// CubeRef scopes the subtree to zero, one, or many cubes.
	CubeRef CubeRef
}

func (f Facts) clone() Facts {
	out := f
	if f.Columns != nil {
		out.Columns = make(map[ColumnRef]struct{}, len(f.Columns))
		for k := range f.Columns {
			out.Columns[k] = struct{}{}
		}
	}
	if f.Members != nil {
		out.Members = make(map[string]ClassID, len(f.Members))
		for k, v := range f.Members {
			out.Members[k] = v
		}
	}
	return out
}

// mergeFacts is the semilattice join of two fact records.
func mergeFacts(a, b Facts) Facts {
	out := Facts{}

	// Conflicting constants invalidate rather than pick a side.
	switch {
	case a.Constant == nil:
		out.Constant = b.Constant
	case b.Constant == nil:
		out.Constant = a.Constant
	case a.Constant.key() == b.Constant.key():
		out.Constant = a.Constant
	default:
		out.Constant = nil
	}

	// Prefer the earlier (original) text; break ties toward the shorter so
	// generated aliases stay stable.
	switch {
	case a.OriginalExpr == "":
		out.OriginalExpr = b.OriginalExpr
	case b.OriginalExpr == "":
		out.OriginalExpr = a.OriginalExpr
	case len(b.OriginalExpr) < len(a.OriginalExpr):
		out.OriginalExpr = b.OriginalExpr
	default:
		out.OriginalExpr = a.OriginalExpr
	}

	if len(a.Columns) > 0 || len(b.Columns) > 0 {
		out.Columns = make(map[ColumnRef]struct{}, len(a.Columns)+len(b.Columns))
		for k := range a.Columns {
			out.Columns[k] = struct{}{}
		}
		for k := range b.Columns {
			out.Columns[k] = struct{}{}
		}
	}

	if len(a.Members) > 0 || len(b.Members) > 0 {
		out.Members = make(map[string]ClassID, len(a.Members)+len(b.Members))
		for k, v := range a.Members {
			out.Members[k] = v
		}
		for k, v := range b.Members {
			if prev, ok := out.Members[k]; ok && prev != v {
				// Conflicting realizations keep the smaller id; both are
				// in the same class after congruence anyway.
				if v < prev {
					out.Members[k] = v
				}
				continue
			}
			out.Members[k] = v
		}
	}

	out.TrivialPushDown = a.TrivialPushDown && b.TrivialPushDown

	out.CubeRef = mergeCubeRef(a.CubeRef, b.CubeRef)
	return out
}

func mergeCubeRef(a, b CubeRef) CubeRef {
	switch {
	case a.Kind == CubeRefNone:
		return b
	case b.Kind == CubeRefNone:
		return a
	case a.Kind == CubeRefMulti || b.Kind == CubeRefMulti:
		return CubeRef{Kind: CubeRefMulti}
	case a.Name == b.Name:
		return a
	default:
		return CubeRef{Kind: CubeRefMulti}
	}
}

func factsEqual(a, b Facts) bool {
	if (a.Constant == nil) != (b.Constant == nil) {
		return false
	}
	if a.Constant != nil && a.Constant.key() != b.Constant.key() {
		return false
	}
	if a.OriginalExpr != b.OriginalExpr ||
		a.TrivialPushDown != b.TrivialPushDown ||
		a.CubeRef != b.CubeRef ||
		len(a.Columns) != len(b.Columns) ||
		len(a.Members) != len(b.Members) {
		return false
	}
	for k := range a.Columns {
		if _, ok := b.Columns[k]; !ok {
			return false
		}
	}
	for k, v := range a.Members {
		if bv, ok := b.Members[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// makeFacts computes the fact record contributed by a single e-node, given
// the facts already attached to its children.
func makeFacts(g *EGraph, n *ENode) Facts {
	f := Facts{}

	child := func(i int) *Facts {
		if i >= len(n.Children) {
			return &Facts{}
		}
		return &g.Class(n.Children[i]).facts
	}

	// Column/cube scoping and member propagation apply to every operator.
	for i := range n.Children {
		cf := child(i)
		for k := range cf.Columns {
			if f.Columns == nil {
				f.Columns = map[ColumnRef]struct{}{}
			}
			f.Columns[k] = struct{}{}
		}
		for k, v := range cf.Members {
			if f.Members == nil {
				f.Members = map[string]ClassID{}
			}
			f.Members[k] = v
		}
		f.CubeRef = mergeCubeRef(f.CubeRef, cf.CubeRef)
	}

	switch n.Op {
	case SymLiteral:
		f.Constant = &Constant{Value: n.Leaf}
		f.OriginalExpr = types.FormatValue(n.Leaf)
		f.TrivialPushDown = true

	case SymColumn:
		ref := n.Leaf.(ColumnRef)
		f.Columns = map[ColumnRef]struct{}{ref: {}}
		f.OriginalExpr = ref.String()
		f.TrivialPushDown = true
		if g.meta != nil {
			if member, ok := g.meta.ResolveColumn(ref.Table, ref.Name); ok {
				f.CubeRef = CubeRef{Kind: CubeRefSingle, Name: member.Cube.Name}
			}
		}

	case SymDimensionMember, SymMeasureMember, SymSegmentMember:
		path := n.Leaf.(string)
		f.Members = map[string]ClassID{path: g.Find(classOfNode(g, n))}
		f.OriginalExpr = path
		f.TrivialPushDown = true
		if cubeName, _, ok := cube.SplitPath(path); ok {
			f.CubeRef = CubeRef{Kind: CubeRefSingle, Name: cubeName}
		}

	case SymTimeDimensionMember:
		td := n.Leaf.(TimeDimValue)
		f.Members = map[string]ClassID{td.String(): g.Find(classOfNode(g, n))}
		f.OriginalExpr = fmt.Sprintf("date_trunc_%s_%s", td.Granularity, strings.ReplaceAll(td.Path, ".", "_"))
		f.TrivialPushDown = true
		if cubeName, _, ok := cube.SplitPath(td.Path); ok {
			f.CubeRef = CubeRef{Kind: CubeRefSingle, Name: cubeName}
		}

	case SymCubeTable:
		f.CubeRef = CubeRef{Kind: CubeRefSingle, Name: n.Leaf.(string)}
		f.TrivialPushDown = true

	case SymCubeScan:
		if req := g.requests.get(n.Leaf.(requestRef)); req != nil && req.Cube != "" {
			f.CubeRef = CubeRef{Kind: CubeRefSingle, Name: req.Cube}
		}
		f.TrivialPushDown = true

	case SymBinary:
		op := n.Leaf.(string)
		f.Constant = foldBinary(op, child(0).Constant, child(1).Constant)
		f.OriginalExpr = fmt.Sprintf("(%s %s %s)", child(0).OriginalExpr, op, child(1).OriginalExpr)
		f.TrivialPushDown = false

	case SymNot:
		if c := child(0).Constant; c != nil && !c.IsList {
			if b, err := cast.ToBoolE(c.Value); err == nil {
				f.Constant = &Constant{Value: !b}
			}
		}
		f.OriginalExpr = fmt.Sprintf("NOT (%s)", child(0).OriginalExpr)

	case SymNegative:
		if c := child(0).Constant; c != nil && !c.IsList {
			f.Constant = negateConstant(c)
		}
		f.OriginalExpr = fmt.Sprintf("-%s", child(0).OriginalExpr)

	case SymCast:
		f.Constant = foldCast(child(0).Constant, n.Leaf.(string))
		f.OriginalExpr = child(0).OriginalExpr
		f.TrivialPushDown = child(0).TrivialPushDown

	case SymAlias:
		f.Constant = child(0).Constant
		f.OriginalExpr = n.Leaf.(string)
		f.TrivialPushDown = child(0).TrivialPushDown

	case SymScalarFunc:
		name := n.Leaf.(string)
		f.Constant = foldScalarFunc(g, name, n.Children)
		f.OriginalExpr = originalCall(g, name, n.Children)
		f.TrivialPushDown = false

	case SymAggFunc:
		f.OriginalExpr = originalCall(g, n.Leaf.(string), n.Children[:1])

	case SymExprList:
		// A list of all-literal elements folds to a constant list, which
		// IN-list compilation relies on.
		values := make([]interface{}, 0, len(n.Children))
		ok := true
		for i := range n.Children {
			c := child(i).Constant
			if c == nil || c.IsList {
				ok = false
				break
			}
			values = append(values, c.Value)
		}
		if ok && len(values) > 0 {
			f.Constant = &Constant{IsList: true, Values: values}
		}
		f.TrivialPushDown = true
		for i := range n.Children {
			f.TrivialPushDown = f.TrivialPushDown && child(i).TrivialPushDown
		}

	case SymQueryParam:
		f.OriginalExpr = fmt.Sprintf("$%d", n.Leaf.(int64))
		f.TrivialPushDown = true

	case SymNothing:
		f.TrivialPushDown = true

	default:
		// Plan operators and remaining expressions contribute scoping only.
	}

	return f
}

// classOfNode finds the class an already-interned node belongs to; during
// initial Add the node is not in the memo yet, in which case the pending id
// is the next to be allocated.
func classOfNode(g *EGraph, n *ENode) ClassID {
	if id, ok := g.memo[n.key()]; ok {
		return id
	}
	return ClassID(g.uf.size())
}

func originalCall(g *EGraph, name string, args []ClassID) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = g.Class(a).facts.OriginalExpr
	}
	return fmt.Sprintf("%s(%s)", strings.ToLower(name), strings.Join(parts, ", "))
}

func literalLeaf(v interface{}) interface{} { return v }

func negateConstant(c *Constant) *Constant {
	switch v := c.Value.(type) {
	case int64:
		return &Constant{Value: -v}
	case float64:
		return &Constant{Value: -v}
	case decimal.Decimal:
		return &Constant{Value: v.Neg()}
	default:
		return nil
	}
}

// foldBinary evaluates pure arithmetic and string operators over folded
// children. Unknown operators and mixed shapes stay unfolded.
func foldBinary(op string, l, r *Constant) *Constant {
	if l == nil || r == nil || l.IsList || r.IsList {
		return nil
	}
	if l.Value == nil || r.Value == nil {
		return nil
	}
	if op == "||" {
		ls, lerr := cast.ToStringE(l.Value)
		rs, rerr := cast.ToStringE(r.Value)
		if lerr != nil || rerr != nil {
			return nil
		}
		return &Constant{Value: ls + rs}
	}

	ld, lok := numericConstant(l.Value)
	rd, rok := numericConstant(r.Value)
	if !lok || !rok {
		return nil
	}
	var out decimal.Decimal
	switch op {
	case "+":
		out = ld.Add(rd)
	case "-":
		out = ld.Sub(rd)
	case "*":
		out = ld.Mul(rd)
	case "/":
		if rd.IsZero() {
			return nil
		}
		out = ld.Div(rd)
	default:
		return nil
	}
	_, lInt := l.Value.(int64)
	_, rInt := r.Value.(int64)
	if lInt && rInt {
		if !out.Equal(decimal.NewFromInt(out.IntPart())) {
			// Integer division truncates in the target dialects; folding
			// an inexact quotient would change the value.
			if op == "/" {
				return nil
			}
			f, _ := out.Float64()
			return &Constant{Value: f}
		}
		return &Constant{Value: out.IntPart()}
	}
	f, _ := out.Float64()
	return &Constant{Value: f}
}

func numericConstant(v interface{}) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	case decimal.Decimal:
		return x, true
	default:
		return decimal.Decimal{}, false
	}
}

// foldCast folds a cast of a folded child only when the conversion is
// lossless; a lossy cast keeps the cast node intact.
func foldCast(c *Constant, typeName string) *Constant {
	if c == nil || c.IsList || c.Value == nil {
		return nil
	}
	t := types.FromSQLName(typeName)
	out, lossless, err := types.Convert(c.Value, t)
	if err != nil || !lossless {
		return nil
	}
	return &Constant{Value: out}
}

func foldScalarFunc(g *EGraph, name string, args []ClassID) *Constant {
	if len(args) != 1 {
		return nil
	}
	c := g.Class(args[0]).facts.Constant
	if c == nil || c.IsList {
		return nil
	}
	s, ok := c.Value.(string)
	if !ok {
		return nil
	}
	switch name {
	case "LOWER":
		return &Constant{Value: strings.ToLower(s)}
	case "UPPER":
		return &Constant{Value: strings.ToUpper(s)}
	default:
		return nil
	}
}
