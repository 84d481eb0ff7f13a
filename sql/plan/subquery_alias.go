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

package plan

import (
	"github.com/dolthub/go-cubesql/sql"
)

// SubqueryAlias is a derived table: a named subquery in FROM position.
type SubqueryAlias struct {
	UnaryNode
	name string
	// ColumnNames optionally renames the subquery's columns.
	ColumnNames []string
}

var _ sql.Node = (*SubqueryAlias)(nil)
var _ sql.Nameable = (*SubqueryAlias)(nil)

// NewSubqueryAlias creates a derived table with the given alias.
func NewSubqueryAlias(name string, child sql.Node) *SubqueryAlias {
	return &SubqueryAlias{UnaryNode{Child: child}, name, nil}
}

// Name implements sql.Nameable.
func (s *SubqueryAlias) Name() string { return s.name }

// Schema implements sql.Node.
func (s *SubqueryAlias) Schema() sql.Schema {
	childSchema := s.Child.Schema()
	schema := make(sql.Schema, len(childSchema))
	for i, col := range childSchema {
		name := col.Name
		if i < len(s.ColumnNames) {
			name = s.ColumnNames[i]
		}
		schema[i] = &sql.Column{Name: name, Type: col.Type, Source: s.name, Nullable: col.Nullable}
	}
	return schema
}

// WithChildren implements sql.Node.
func (s *SubqueryAlias) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	cp := *s
	cp.Child = children[0]
	return &cp, nil
}

func (s *SubqueryAlias) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("SubqueryAlias(%s)", s.name)
	_ = pr.WriteChildren(s.Child.String())
	return pr.String()
}
