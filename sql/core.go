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

package sql

import (
	"fmt"
)

// Node is a node of a logical query plan. Plans are immutable: WithChildren
// returns a new node rather than mutating the receiver.
type Node interface {
	fmt.Stringer
	// Schema of the rows produced by this node.
	Schema() Schema
	// Children nodes, leaves return an empty slice.
	Children() []Node
	// WithChildren returns a copy of the node with the given children. The
	// number of children must match the node's arity.
	WithChildren(children ...Node) (Node, error)
}

// Expression is a scalar expression within a plan node.
type Expression interface {
	fmt.Stringer
	// Type of the value this expression produces.
	Type() Type
	// Children expressions, leaves return an empty slice.
	Children() []Expression
	// WithChildren returns a copy of the expression with the given children.
	WithChildren(children ...Expression) (Expression, error)
}

// Expressioner is a node that holds expressions.
type Expressioner interface {
	// Expressions returns the expressions contained by the node.
	Expressions() []Expression
	// WithExpressions returns a copy of the node with the expressions replaced.
	WithExpressions(exprs ...Expression) (Node, error)
}

// Nameable is something with a name.
type Nameable interface {
	Name() string
}

// Tableable is a node or expression attached to a named relation.
type Tableable interface {
	Table() string
}

// SortOrder is the direction of a sort field.
type SortOrder byte

const (
	Ascending SortOrder = iota
	Descending
)

func (s SortOrder) String() string {
	if s == Descending {
		return "DESC"
	}
	return "ASC"
}

// NullOrdering specifies how null values sort relative to non-nulls.
type NullOrdering byte

const (
	NullsFirst NullOrdering = iota
	NullsLast
)

// SortField is a sort key with its ordering.
type SortField struct {
	Column       Expression
	Order        SortOrder
	NullOrdering NullOrdering
}

func (s SortField) String() string {
	return fmt.Sprintf("%s %s", s.Column, s.Order)
}

// AuthScope identifies the security context a plan was rewritten under. It
// participates only in cache keys: two rewrites with different scopes never
// share a finalized graph.
type AuthScope struct {
	Tenant        string
	Role          string
	SecurityHash  string
	SchemaVersion string
}

// Key returns the cache-key form of the scope.
func (s AuthScope) Key() string {
	return s.Tenant + "\x00" + s.Role + "\x00" + s.SecurityHash + "\x00" + s.SchemaVersion
}

// Transport produces SQL for a semantic request by asking the backend. The
// rewrite core uses it to materialize pushed-down sub-selects; it never
// executes anything itself.
type Transport interface {
	// GenerateInnerSQL renders the SQL for a grouped sub-select request,
	// returning the SQL text and positional bind values.
	GenerateInnerSQL(ctx *Context, req *Request) (string, []interface{}, error)
}
