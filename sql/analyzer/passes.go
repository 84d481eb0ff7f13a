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

package analyzer

import (
	"fmt"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/expression"
	"github.com/dolthub/go-cubesql/sql/plan"
	"github.com/dolthub/go-cubesql/sql/transform"
)

// qualifyColumns rewrites column references so their table is the cube
// name, resolving FROM aliases and bare names. Columns scoped to derived
// tables keep the derived table's alias.
func qualifyColumns(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	aliases := map[string]string{}
	derived := map[string]sql.Schema{}
	transform.Inspect(n, func(node sql.Node) bool {
		switch t := node.(type) {
		case *plan.CubeTable:
			aliases[t.Alias] = t.Cube.Name
		case *plan.SubqueryAlias:
			derived[t.Name()] = t.Schema()
		}
		return true
	})

	return transform.NodeExprs(n, func(e sql.Expression) (sql.Expression, transform.TreeIdentity, error) {
		gf, ok := e.(*expression.GetField)
		if !ok {
			return e, transform.SameTree, nil
		}
		table := gf.Table()
		if table != "" {
			if cubeName, ok := aliases[table]; ok && cubeName != table {
				return gf.WithTable(cubeName), transform.NewTree, nil
			}
			return e, transform.SameTree, nil
		}
		// Bare names resolve against derived tables first, then cubes.
		for alias, schema := range derived {
			if schema.IndexOf(gf.Name(), "") >= 0 {
				return gf.WithTable(alias), transform.NewTree, nil
			}
		}
		if a.Meta != nil {
			if member, ok := a.Meta.ResolveColumn("", gf.Name()); ok {
				return gf.WithTable(member.Cube.Name), transform.NewTree, nil
			}
		}
		return e, transform.SameTree, nil
	})
}

// normalizePlan gives every output column of a projection or aggregation a
// unique name by aliasing duplicates, so later alias-preserving stages
// never collide.
func normalizePlan(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	uniquify := func(exprs []sql.Expression) ([]sql.Expression, bool) {
		seen := map[string]int{}
		changed := false
		out := make([]sql.Expression, len(exprs))
		for i, e := range exprs {
			name := plan.ExpressionToColumn(e).Name
			seen[name]++
			if seen[name] > 1 {
				e = expression.NewAlias(fmt.Sprintf("%s_%d", name, seen[name]-1), unwrapAlias(e))
				changed = true
			}
			out[i] = e
		}
		return out, changed
	}

	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch t := node.(type) {
		case *plan.Project:
			exprs, changed := uniquify(t.Projections)
			if !changed {
				return node, transform.SameTree, nil
			}
			return plan.NewProject(exprs, t.Child), transform.NewTree, nil
		case *plan.GroupBy:
			exprs, changed := uniquify(t.SelectedExprs)
			if !changed {
				return node, transform.SameTree, nil
			}
			return plan.NewGroupBy(exprs, t.GroupByExprs, t.Child), transform.NewTree, nil
		default:
			return node, transform.SameTree, nil
		}
	})
}

func unwrapAlias(e sql.Expression) sql.Expression {
	if a, ok := e.(*expression.Alias); ok {
		return a.Child
	}
	return e
}

// eraseProjection drops projections that re-emit their child's schema
// unchanged.
func eraseProjection(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		project, ok := node.(*plan.Project)
		if !ok {
			return node, transform.SameTree, nil
		}
		childSchema := project.Child.Schema()
		if len(project.Projections) != len(childSchema) {
			return node, transform.SameTree, nil
		}
		for i, e := range project.Projections {
			gf, ok := e.(*expression.GetField)
			if !ok || gf.Name() != childSchema[i].Name {
				return node, transform.SameTree, nil
			}
			if gf.Table() != "" && gf.Table() != childSchema[i].Source {
				return node, transform.SameTree, nil
			}
		}
		return project.Child, transform.NewTree, nil
	})
}

// pushdownFilters moves filters beneath projections when the predicate
// only reads columns the projection passes through.
func pushdownFilters(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		filter, ok := node.(*plan.Filter)
		if !ok {
			return node, transform.SameTree, nil
		}
		project, ok := filter.Child.(*plan.Project)
		if !ok {
			return node, transform.SameTree, nil
		}
		if !exprReadsOnly(filter.Expression, project.Child.Schema()) {
			return node, transform.SameTree, nil
		}
		return plan.NewProject(project.Projections, plan.NewFilter(filter.Expression, project.Child)), transform.NewTree, nil
	})
}

// pushdownSort moves sorts beneath projections under the same condition.
func pushdownSort(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		sort, ok := node.(*plan.Sort)
		if !ok {
			return node, transform.SameTree, nil
		}
		project, ok := sort.Child.(*plan.Project)
		if !ok {
			return node, transform.SameTree, nil
		}
		for _, f := range sort.SortFields {
			if !exprReadsOnly(f.Column, project.Child.Schema()) {
				return node, transform.SameTree, nil
			}
		}
		return plan.NewProject(project.Projections, plan.NewSort(sort.SortFields, project.Child)), transform.NewTree, nil
	})
}

// pushdownLimit moves limits and offsets beneath projections; both are
// row-count operators that never read columns.
func pushdownLimit(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch t := node.(type) {
		case *plan.Limit:
			if project, ok := t.Child.(*plan.Project); ok {
				return plan.NewProject(project.Projections, plan.NewLimit(t.Limit, project.Child)), transform.NewTree, nil
			}
		case *plan.Offset:
			if project, ok := t.Child.(*plan.Project); ok {
				return plan.NewProject(project.Projections, plan.NewOffset(t.Offset, project.Child)), transform.NewTree, nil
			}
		}
		return node, transform.SameTree, nil
	})
}

// splitMetaFilters splits a conjunctive filter into nested filters when
// its conjuncts touch different relations, so each slice can compile
// against its own cube.
func splitMetaFilters(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	return transform.Node(n, func(node sql.Node) (sql.Node, transform.TreeIdentity, error) {
		filter, ok := node.(*plan.Filter)
		if !ok {
			return node, transform.SameTree, nil
		}
		conjuncts := expression.SplitConjunction(filter.Expression)
		if len(conjuncts) < 2 {
			return node, transform.SameTree, nil
		}
		byTable := map[string][]sql.Expression{}
		var order []string
		for _, c := range conjuncts {
			table := singleTableOf(c)
			if _, ok := byTable[table]; !ok {
				order = append(order, table)
			}
			byTable[table] = append(byTable[table], c)
		}
		if len(order) < 2 {
			return node, transform.SameTree, nil
		}
		out := filter.Child
		for i := len(order) - 1; i >= 0; i-- {
			out = plan.NewFilter(expression.JoinAnd(byTable[order[i]]...), out)
		}
		return out, transform.NewTree, nil
	})
}

func singleTableOf(e sql.Expression) string {
	table := ""
	multi := false
	transform.InspectExpr(e, func(x sql.Expression) bool {
		if gf, ok := x.(*expression.GetField); ok && gf.Table() != "" {
			if table == "" {
				table = gf.Table()
			} else if table != gf.Table() {
				multi = true
			}
		}
		return true
	})
	if multi {
		return ""
	}
	return table
}

func exprReadsOnly(e sql.Expression, schema sql.Schema) bool {
	ok := true
	transform.InspectExpr(e, func(x sql.Expression) bool {
		if gf, isCol := x.(*expression.GetField); isCol {
			if schema.IndexOf(gf.Name(), gf.Table()) < 0 {
				ok = false
				return false
			}
		}
		return true
	})
	return ok
}
