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

// Package transform provides bottom-up rewriting and inspection over plan
// trees and the expressions they contain.
package transform

import (
	"github.com/dolthub/go-cubesql/sql"
)

// TreeIdentity tracks whether a transform changed the tree it walked.
type TreeIdentity bool

const (
	// SameTree is returned when the transform made no change.
	SameTree TreeIdentity = true
	// NewTree is returned when the transform changed at least one node.
	NewTree TreeIdentity = false
)

// NodeFunc is a function that transforms a single plan node.
type NodeFunc func(sql.Node) (sql.Node, TreeIdentity, error)

// ExprFunc is a function that transforms a single expression.
type ExprFunc func(sql.Expression) (sql.Expression, TreeIdentity, error)

// Node transforms the plan bottom-up, applying f to every node after its
// children have been transformed.
func Node(node sql.Node, f NodeFunc) (sql.Node, TreeIdentity, error) {
	children := node.Children()
	same := SameTree
	if len(children) > 0 {
		newChildren := make([]sql.Node, len(children))
		for i, child := range children {
			newChild, childSame, err := Node(child, f)
			if err != nil {
				return nil, SameTree, err
			}
			newChildren[i] = newChild
			same = same && childSame
		}
		if !same {
			var err error
			node, err = node.WithChildren(newChildren...)
			if err != nil {
				return nil, SameTree, err
			}
		}
	}
	newNode, nodeSame, err := f(node)
	if err != nil {
		return nil, SameTree, err
	}
	return newNode, same && nodeSame, nil
}

// Expr transforms an expression bottom-up.
func Expr(expr sql.Expression, f ExprFunc) (sql.Expression, TreeIdentity, error) {
	children := expr.Children()
	same := SameTree
	if len(children) > 0 {
		newChildren := make([]sql.Expression, len(children))
		for i, child := range children {
			newChild, childSame, err := Expr(child, f)
			if err != nil {
				return nil, SameTree, err
			}
			newChildren[i] = newChild
			same = same && childSame
		}
		if !same {
			var err error
			expr, err = expr.WithChildren(newChildren...)
			if err != nil {
				return nil, SameTree, err
			}
		}
	}
	newExpr, exprSame, err := f(expr)
	if err != nil {
		return nil, SameTree, err
	}
	return newExpr, same && exprSame, nil
}

// NodeExprs transforms every expression of every node in the plan.
func NodeExprs(node sql.Node, f ExprFunc) (sql.Node, TreeIdentity, error) {
	return Node(node, func(n sql.Node) (sql.Node, TreeIdentity, error) {
		return OneNodeExprs(n, f)
	})
}

// OneNodeExprs transforms the expressions of a single node, leaving its
// children untouched.
func OneNodeExprs(n sql.Node, f ExprFunc) (sql.Node, TreeIdentity, error) {
	ne, ok := n.(sql.Expressioner)
	if !ok {
		return n, SameTree, nil
	}
	exprs := ne.Expressions()
	if len(exprs) == 0 {
		return n, SameTree, nil
	}
	same := SameTree
	newExprs := make([]sql.Expression, len(exprs))
	for i, e := range exprs {
		newExpr, exprSame, err := Expr(e, f)
		if err != nil {
			return nil, SameTree, err
		}
		newExprs[i] = newExpr
		same = same && exprSame
	}
	if same {
		return n, SameTree, nil
	}
	newNode, err := ne.WithExpressions(newExprs...)
	if err != nil {
		return nil, SameTree, err
	}
	return newNode, NewTree, nil
}

// Inspect walks the plan top-down, stopping descent wherever f returns
// false.
func Inspect(node sql.Node, f func(sql.Node) bool) {
	if !f(node) {
		return
	}
	for _, child := range node.Children() {
		Inspect(child, f)
	}
}

// InspectExpr walks an expression top-down, stopping wherever f returns
// false.
func InspectExpr(expr sql.Expression, f func(sql.Expression) bool) {
	if !f(expr) {
		return
	}
	for _, child := range expr.Children() {
		InspectExpr(child, f)
	}
}

// InspectExpressions walks every expression of every node in the plan.
func InspectExpressions(node sql.Node, f func(sql.Expression) bool) {
	Inspect(node, func(n sql.Node) bool {
		if ne, ok := n.(sql.Expressioner); ok {
			for _, e := range ne.Expressions() {
				InspectExpr(e, f)
			}
		}
		return true
	})
}
